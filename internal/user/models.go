// Package user manages application accounts: creation with bcrypt-hashed
// passwords and a login operation issuing JWT access tokens.
package user

import (
	"time"

	id "olea/pkg/domain"
)

// User is an application account. The password hash never serializes.
type User struct {
	ID           id.UserID `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
