package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"conduit/errs"
	models "conduit/model"
)

type UserRepository interface {
	Insert(ctx context.Context, username, email, passwordHash string) (*models.User, error)
	GetByID(ctx context.Context, userID uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, currentUserID *uuid.UUID, username string) (*models.Profile, error)
	Update(ctx context.Context, userID uuid.UUID, input *models.UpdateUserInput) (*models.User, error)
	InsertFollow(ctx context.Context, followerID uuid.UUID, username string) error
	DeleteFollow(ctx context.Context, followerID uuid.UUID, username string) error
}

type userRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

// Insert creates a user with a fresh random id. Uniqueness violations are
// mapped to the specific taken-field error by constraint name.
func (r *userRepository) Insert(ctx context.Context, username, email, passwordHash string) (*models.User, error) {
	query := `
		INSERT INTO users (id, username, email, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING id, username, email, password_hash, bio, image, created_at, updated_at
	`

	var user models.User
	err := r.db.GetContext(ctx, &user, query, uuid.New(), username, email, passwordHash)
	if err != nil {
		err = onConstraint(err, "users_username_key", errs.ErrUsernameTaken)
		err = onConstraint(err, "users_email_key", errs.ErrEmailTaken)
		if errors.Is(err, errs.ErrUsernameTaken) || errors.Is(err, errs.ErrEmailTaken) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return &user, nil
}

// GetByID returns the user with credentials, or nil when no such user exists.
func (r *userRepository) GetByID(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	query := `
		SELECT id, username, email, password_hash, bio, image, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	var user models.User
	err := r.db.GetContext(ctx, &user, query, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}

// GetByEmail returns the user with credentials, or nil when no such user exists.
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `
		SELECT id, username, email, password_hash, bio, image, created_at, updated_at
		FROM users
		WHERE email = $1
	`

	var user models.User
	err := r.db.GetContext(ctx, &user, query, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return &user, nil
}

// GetByUsername returns the public profile annotated with whether
// currentUserID follows it. The flag is false when currentUserID is nil.
// A missing username yields nil, nil.
func (r *userRepository) GetByUsername(ctx context.Context, currentUserID *uuid.UUID, username string) (*models.Profile, error) {
	query := `
		SELECT
			username,
			bio,
			image,
			EXISTS(
				SELECT 1 FROM follows
				WHERE followed_id = users.id AND follower_id = $2
			) AS following
		FROM users
		WHERE username = $1
	`

	var profile models.Profile
	err := r.db.GetContext(ctx, &profile, query, username, currentUserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}

	return &profile, nil
}

// Update applies the non-nil fields and leaves the rest unchanged.
func (r *userRepository) Update(ctx context.Context, userID uuid.UUID, input *models.UpdateUserInput) (*models.User, error) {
	query := `
		UPDATE users SET
			username = COALESCE($1, username),
			email = COALESCE($2, email),
			password_hash = COALESCE($3, password_hash),
			bio = COALESCE($4, bio),
			image = COALESCE($5, image),
			updated_at = now()
		WHERE id = $6
		RETURNING id, username, email, password_hash, bio, image, created_at, updated_at
	`

	var user models.User
	err := r.db.GetContext(ctx, &user, query,
		input.Username, input.Email, input.PasswordHash, input.Bio, input.Image, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errs.ErrCurrentUserNotFound
		}
		err = onConstraint(err, "users_username_key", errs.ErrUsernameTaken)
		err = onConstraint(err, "users_email_key", errs.ErrEmailTaken)
		if errors.Is(err, errs.ErrUsernameTaken) || errors.Is(err, errs.ErrEmailTaken) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return &user, nil
}

// InsertFollow adds a follow edge towards the named user. Following an
// already-followed user is a no-op success. Self-follows are rejected by
// the store's check constraint and surface as ErrForbidden.
func (r *userRepository) InsertFollow(ctx context.Context, followerID uuid.UUID, username string) error {
	query := `
		WITH followee AS (
			SELECT id FROM users WHERE username = $2
		), insertion AS (
			INSERT INTO follows (follower_id, followed_id)
				SELECT $1, id FROM followee
			ON CONFLICT (follower_id, followed_id) DO NOTHING
			RETURNING 1
		)
		SELECT EXISTS(SELECT 1 FROM followee) AS user_exists
	`

	var userExists bool
	err := r.db.GetContext(ctx, &userExists, query, followerID, username)
	if err != nil {
		if mapped := onConstraint(err, "follows_no_self_follow", errs.ErrForbidden); errors.Is(mapped, errs.ErrForbidden) {
			return mapped
		}
		return fmt.Errorf("failed to follow user: %w", err)
	}

	if !userExists {
		return errs.ErrProfileNotFound
	}
	return nil
}

// DeleteFollow removes a follow edge towards the named user. Unfollowing a
// user who was never followed is a no-op success as long as they exist.
func (r *userRepository) DeleteFollow(ctx context.Context, followerID uuid.UUID, username string) error {
	query := `
		WITH followee AS (
			SELECT id FROM users WHERE username = $2
		), deletion AS (
			DELETE FROM follows
			WHERE follower_id = $1 AND followed_id = (SELECT id FROM followee)
			RETURNING 1
		)
		SELECT EXISTS(SELECT 1 FROM followee) AS user_exists
	`

	var userExists bool
	err := r.db.GetContext(ctx, &userExists, query, followerID, username)
	if err != nil {
		return fmt.Errorf("failed to unfollow user: %w", err)
	}

	if !userExists {
		return errs.ErrProfileNotFound
	}
	return nil
}
