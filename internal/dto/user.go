package dto

import "github.com/yukikurage/task-tracker-api/internal/models"

// UserDTO represents a user in API responses
type UserDTO struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// MessageResponse is a body carrying only a message
type MessageResponse struct {
	Message string `json:"message"`
}

// LoginResponse is returned by a successful login
type LoginResponse struct {
	AccessToken string  `json:"access_token"`
	User        UserDTO `json:"user"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
	}
}
