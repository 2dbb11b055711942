package dto

import "github.com/yukikurage/orgtask-api/internal/models"

// LoginRequest is the body of POST /auth/login
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// CreateUserRequest is the body of POST /users
type CreateUserRequest struct {
	Name        string        `json:"name" binding:"required"`
	Email       string        `json:"email" binding:"required,email"`
	Password    string        `json:"password" binding:"required"`
	Department  string        `json:"department"`
	PhoneNumber string        `json:"phone_number"`
	Roles       []models.Role `json:"roles"`
	ParentID    *uint64       `json:"parent_id"`
	TeamID      *uint64       `json:"team_id"`
}

// UpdateUserRequest is the body of PATCH /users/:id
type UpdateUserRequest struct {
	Name        *string       `json:"name"`
	Email       *string       `json:"email"`
	Password    *string       `json:"password"`
	Department  *string       `json:"department"`
	PhoneNumber *string       `json:"phone_number"`
	Roles       []models.Role `json:"roles"`
	ParentID    *uint64       `json:"parent_id"`
	TeamID      *uint64       `json:"team_id"`
}

// FcmTokenRequest registers a device for push delivery
type FcmTokenRequest struct {
	Token string `json:"token" binding:"required"`
}

// UserDTO represents a user in API responses
type UserDTO struct {
	ID          uint64        `json:"id"`
	Name        string        `json:"name"`
	Email       string        `json:"email"`
	Department  string        `json:"department"`
	PhoneNumber string        `json:"phone_number"`
	Roles       []models.Role `json:"roles"`
	ParentID    *uint64       `json:"parent_id"`
	TeamID      *uint64       `json:"team_id"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	roles := []models.Role(user.Roles)
	if roles == nil {
		roles = []models.Role{}
	}
	return UserDTO{
		ID:          user.ID,
		Name:        user.Name,
		Email:       user.Email,
		Department:  user.Department,
		PhoneNumber: user.PhoneNumber,
		Roles:       roles,
		ParentID:    user.ParentID,
		TeamID:      user.TeamID,
	}
}

// ToUserDTOs converts a list of users
func ToUserDTOs(users []models.User) []UserDTO {
	out := make([]UserDTO, len(users))
	for i, u := range users {
		out[i] = ToUserDTO(u)
	}
	return out
}
