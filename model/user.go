package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Bio          string    `json:"bio" db:"bio"`
	Image        *string   `json:"image,omitempty" db:"image"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// Profile is the public view of a user, annotated with whether the
// requesting user follows them.
type Profile struct {
	Username  string  `json:"username" db:"username"`
	Bio       string  `json:"bio" db:"bio"`
	Image     *string `json:"image,omitempty" db:"image"`
	Following bool    `json:"following" db:"following"`
}

// SignedUser is a user together with a freshly signed bearer token.
type SignedUser struct {
	Email    string  `json:"email"`
	Token    string  `json:"token"`
	Username string  `json:"username"`
	Bio      string  `json:"bio"`
	Image    *string `json:"image,omitempty"`
}

// UpdateUserInput carries a partial profile update. Nil fields keep their
// stored value.
type UpdateUserInput struct {
	Username     *string
	Email        *string
	PasswordHash *string
	Bio          *string
	Image        *string
}
