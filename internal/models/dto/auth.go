package dto

import "github.com/hongminglow/all-in-auth/internal/models"

type CredentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type UsernameRequest struct {
	Username string `json:"username"`
}

type AuthResponse struct {
	Auth     bool   `json:"auth"`
	Token    string `json:"token,omitempty"`
	Username string `json:"username,omitempty"`
	Message  string `json:"message,omitempty"`
}

type UserFlagResponse struct {
	Message string `json:"message"`
	User    bool   `json:"user"`
}

type ErrorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
	User    *bool  `json:"user,omitempty"`
}

type UsersResponse struct {
	Users []models.User `json:"users"`
}
