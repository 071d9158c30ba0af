package service

import (
	"context"

	"github.com/google/uuid"

	"conduit/errs"
	"conduit/events"
	models "conduit/model"
	"conduit/repository"
)

// ProfileService implements profile lookup and the follow graph.
type ProfileService struct {
	users  repository.UserRepository
	tokens TokenManager
	clock  Clock
	events Publisher
}

func NewProfileService(users repository.UserRepository, tokens TokenManager, clock Clock, events Publisher) *ProfileService {
	return &ProfileService{
		users:  users,
		tokens: tokens,
		clock:  clock,
		events: events,
	}
}

// Get returns the named profile. Authentication is optional and only
// affects the following flag.
func (s *ProfileService) Get(ctx context.Context, authorization, username string) (*models.Profile, error) {
	currentUserID, err := s.tokens.VerifyOptional(authorization, s.clock())
	if err != nil {
		return nil, err
	}

	profile, err := s.users.GetByUsername(ctx, currentUserID, username)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, errs.ErrProfileNotFound
	}

	return profile, nil
}

// Follow adds a follow edge towards the named user and returns the updated
// profile. Following an already-followed user succeeds silently.
func (s *ProfileService) Follow(ctx context.Context, authorization, username string) (*models.Profile, error) {
	userID, err := s.tokens.Verify(authorization, s.clock())
	if err != nil {
		return nil, err
	}

	if err := s.users.InsertFollow(ctx, userID, username); err != nil {
		return nil, err
	}

	if s.events != nil {
		s.events.Publish(events.UserFollowed, events.UserFollowedEvent{
			FollowerID:       userID,
			FollowedUsername: username,
		})
	}

	return s.fetch(ctx, userID, username)
}

// Unfollow removes a follow edge towards the named user and returns the
// updated profile. Unfollowing a non-followed user succeeds silently.
func (s *ProfileService) Unfollow(ctx context.Context, authorization, username string) (*models.Profile, error) {
	userID, err := s.tokens.Verify(authorization, s.clock())
	if err != nil {
		return nil, err
	}

	if err := s.users.DeleteFollow(ctx, userID, username); err != nil {
		return nil, err
	}

	return s.fetch(ctx, userID, username)
}

func (s *ProfileService) fetch(ctx context.Context, currentUserID uuid.UUID, username string) (*models.Profile, error) {
	profile, err := s.users.GetByUsername(ctx, &currentUserID, username)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, errs.ErrProfileNotFound
	}
	return profile, nil
}
