package usersrepobridge

import (
	"github.com/jrazmi/yata/core/repositories/usersrepo"
	"github.com/jrazmi/yata/sdk/validation"
)

type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

type CreateUserInput struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

func (c CreateUserInput) Validate() error {
	var fe validation.FieldErrors
	if !validation.Required(c.Email) {
		fe.Add("email", "is required")
	}
	return fe.Err()
}

func MarshalToBridge(u usersrepo.User) User {
	return User{
		ID:        u.ID,
		Email:     u.Email,
		CreatedAt: validation.FormatISO8601(u.CreatedAt),
		UpdatedAt: validation.FormatISO8601(u.UpdatedAt),
	}
}

func MarshalCreateToRepository(input CreateUserInput) usersrepo.CreateUser {
	return usersrepo.CreateUser{ID: input.ID, Email: input.Email}
}
