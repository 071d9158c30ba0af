package service

import (
	"context"

	"conduit/errs"
	"conduit/events"
	models "conduit/model"
	"conduit/repository"
)

// UserUpdate carries a partial account update. Nil fields keep their
// stored value; a set Password is re-hashed before it reaches the store.
type UserUpdate struct {
	Username *string
	Email    *string
	Password *string
	Bio      *string
	Image    *string
}

// UserService implements registration, login and account maintenance.
type UserService struct {
	users     repository.UserRepository
	tokens    TokenManager
	passwords PasswordHasher
	clock     Clock
	events    Publisher
}

func NewUserService(users repository.UserRepository, tokens TokenManager, passwords PasswordHasher, clock Clock, events Publisher) *UserService {
	return &UserService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		clock:     clock,
		events:    events,
	}
}

// Register creates an account and signs the new user in immediately.
func (s *UserService) Register(ctx context.Context, username, email, password string) (*models.SignedUser, error) {
	passwordHash, err := s.passwords.Hash(ctx, password)
	if err != nil {
		return nil, err
	}

	user, err := s.users.Insert(ctx, username, email, passwordHash)
	if err != nil {
		return nil, err
	}

	signed, err := s.sign(user)
	if err != nil {
		return nil, err
	}

	if s.events != nil {
		s.events.Publish(events.UserRegistered, events.UserRegisteredEvent{
			UserID:   user.ID,
			Username: user.Username,
		})
	}

	return signed, nil
}

// Login authenticates an email/password pair and issues a token. A wrong
// password is Unauthorized; an unknown email is its own conflict error so
// the transport layer can attach it to the email field.
func (s *UserService) Login(ctx context.Context, email, password string) (*models.SignedUser, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errs.ErrEmailNotFound
	}

	if err := s.passwords.Verify(ctx, password, user.PasswordHash); err != nil {
		return nil, err
	}

	return s.sign(user)
}

// Current resolves the bearer token to the signed-in user.
func (s *UserService) Current(ctx context.Context, authorization string) (*models.SignedUser, error) {
	userID, err := s.tokens.Verify(authorization, s.clock())
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errs.ErrCurrentUserNotFound
	}

	return s.sign(user)
}

// Update applies a partial account update for the token's user.
func (s *UserService) Update(ctx context.Context, authorization string, update UserUpdate) (*models.SignedUser, error) {
	userID, err := s.tokens.Verify(authorization, s.clock())
	if err != nil {
		return nil, err
	}

	var passwordHash *string
	if update.Password != nil {
		hash, err := s.passwords.Hash(ctx, *update.Password)
		if err != nil {
			return nil, err
		}
		passwordHash = &hash
	}

	user, err := s.users.Update(ctx, userID, &models.UpdateUserInput{
		Username:     update.Username,
		Email:        update.Email,
		PasswordHash: passwordHash,
		Bio:          update.Bio,
		Image:        update.Image,
	})
	if err != nil {
		return nil, err
	}

	return s.sign(user)
}

func (s *UserService) sign(user *models.User) (*models.SignedUser, error) {
	token, err := s.tokens.Sign(user.ID, s.clock())
	if err != nil {
		return nil, err
	}

	return &models.SignedUser{
		Email:    user.Email,
		Token:    token,
		Username: user.Username,
		Bio:      user.Bio,
		Image:    user.Image,
	}, nil
}
