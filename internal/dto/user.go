package dto

import "github.com/yukikurage/listing-api/internal/models"

// UserDTO represents a user in API responses
type UserDTO struct {
	ID               string  `json:"id"`
	Username         string  `json:"username"`
	Email            string  `json:"email,omitempty"`
	FirstName        string  `json:"first_name,omitempty"`
	CurrentSponsorID *string `json:"current_sponsor_id,omitempty"`
	HackathonID      *string `json:"hackathon_id,omitempty"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:               user.ID,
		Username:         user.Username,
		Email:            user.Email,
		FirstName:        user.FirstName,
		CurrentSponsorID: user.CurrentSponsorID,
		HackathonID:      user.HackathonID,
	}
}

// ToPublicUserDTO converts a User model without contact or scope fields
func ToPublicUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:       user.ID,
		Username: user.Username,
	}
}
