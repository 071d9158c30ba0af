// Package service implements the use cases of the platform. Each service is
// a thin, stateless composition of the repositories, token manager and
// password hasher it needs; authorization decisions live here and nowhere
// else.
package service

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Clock supplies the current time. Injected so tests can freeze it.
type Clock func() time.Time

// TokenManager signs and verifies bearer tokens.
type TokenManager interface {
	Sign(userID uuid.UUID, now time.Time) (string, error)
	Verify(authorization string, now time.Time) (uuid.UUID, error)
	VerifyOptional(authorization string, now time.Time) (*uuid.UUID, error)
}

// PasswordHasher hashes and verifies password credentials.
type PasswordHasher interface {
	Hash(ctx context.Context, cleartext string) (string, error)
	Verify(ctx context.Context, cleartext, encoded string) error
}

// Publisher emits domain events. A nil Publisher disables emission.
type Publisher interface {
	Publish(subject string, event interface{})
}

// Services bundles the use-case services for the transport layer to mount.
type Services struct {
	Users    *UserService
	Profiles *ProfileService
	Articles *ArticleService
	Comments *CommentService
}
