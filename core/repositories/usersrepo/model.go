package usersrepo

import (
	"strings"
	"time"

	"github.com/jrazmi/yata/sdk/validation"
)

// User owns projects, task types and tasks.
type User struct {
	ID        string    `db:"id"`
	Email     string    `db:"email"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// CreateUser contains fields for creating a new user. An empty ID is
// filled with a UUID by the repository.
type CreateUser struct {
	ID    string
	Email string
}

func (c *CreateUser) normalize() {
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
}

func (c CreateUser) Validate() error {
	var fe validation.FieldErrors
	if !validation.Email(c.Email) {
		fe.Add("email", "must be a valid email address")
	}
	return fe.Err()
}
