package service

import (
	"context"

	"github.com/google/uuid"

	"conduit/errs"
	"conduit/events"
	models "conduit/model"
	"conduit/repository"
)

// ArticleCreate is the input for creating an article.
type ArticleCreate struct {
	Title       string
	Description string
	Body        string
	TagList     []string
}

// ArticleUpdate is a partial article update. A set Title also re-derives
// the slug.
type ArticleUpdate struct {
	Title       *string
	Description *string
	Body        *string
}

// ListQuery selects articles for the list use case. All predicates are
// optional and AND-combined.
type ListQuery struct {
	Tag       *string
	Author    *string
	Favorited *string
	Limit     *int64
	Offset    *int64
}

// FeedQuery paginates the feed use case.
type FeedQuery struct {
	Limit  *int64
	Offset *int64
}

// ArticleService implements the article use cases.
type ArticleService struct {
	articles repository.ArticleRepository
	tokens   TokenManager
	clock    Clock
	events   Publisher
}

func NewArticleService(articles repository.ArticleRepository, tokens TokenManager, clock Clock, events Publisher) *ArticleService {
	return &ArticleService{
		articles: articles,
		tokens:   tokens,
		clock:    clock,
		events:   events,
	}
}

// List returns articles matching the query, newest first. Authentication
// is optional and only affects the per-article flags.
func (s *ArticleService) List(ctx context.Context, authorization string, query ListQuery) ([]models.Article, error) {
	currentUserID, err := s.tokens.VerifyOptional(authorization, s.clock())
	if err != nil {
		return nil, err
	}

	return s.articles.Select(ctx, currentUserID, models.ArticleFilter{
		Tag:         query.Tag,
		Author:      query.Author,
		FavoritedBy: query.Favorited,
		Limit:       query.Limit,
		Offset:      query.Offset,
	})
}

// Feed returns articles authored by users the authenticated user follows.
func (s *ArticleService) Feed(ctx context.Context, authorization string, query FeedQuery) ([]models.Article, error) {
	userID, err := s.tokens.Verify(authorization, s.clock())
	if err != nil {
		return nil, err
	}

	return s.articles.Select(ctx, &userID, models.ArticleFilter{
		FollowedBy: &userID,
		Limit:      query.Limit,
		Offset:     query.Offset,
	})
}

// Get returns the article addressed by slug.
func (s *ArticleService) Get(ctx context.Context, authorization, slug string) (*models.Article, error) {
	currentUserID, err := s.tokens.VerifyOptional(authorization, s.clock())
	if err != nil {
		return nil, err
	}

	return s.fetch(ctx, currentUserID, slug)
}

// Create stores a new article authored by the authenticated user, with the
// slug derived from the title.
func (s *ArticleService) Create(ctx context.Context, authorization string, input ArticleCreate) (*models.Article, error) {
	userID, err := s.tokens.Verify(authorization, s.clock())
	if err != nil {
		return nil, err
	}

	slug := Slugify(input.Title)
	article, err := s.articles.Insert(ctx, userID, slug, input.Title, input.Description, input.Body, input.TagList)
	if err != nil {
		return nil, err
	}

	if s.events != nil {
		s.events.Publish(events.ArticleCreated, events.ArticleCreatedEvent{
			Slug:           article.Slug,
			AuthorID:       userID,
			AuthorUsername: article.AuthorUsername,
			CreatedAt:      article.CreatedAt,
		})
	}

	return article, nil
}

// Update applies a partial update to the authenticated user's own article
// and returns the updated article. A changed title changes the slug.
func (s *ArticleService) Update(ctx context.Context, authorization, slug string, update ArticleUpdate) (*models.Article, error) {
	userID, err := s.tokens.Verify(authorization, s.clock())
	if err != nil {
		return nil, err
	}

	var newSlug *string
	if update.Title != nil {
		derived := Slugify(*update.Title)
		newSlug = &derived
	}

	err = s.articles.Update(ctx, userID, slug, models.UpdateArticleInput{
		Slug:        newSlug,
		Title:       update.Title,
		Description: update.Description,
		Body:        update.Body,
	})
	if err != nil {
		return nil, err
	}

	resultSlug := slug
	if newSlug != nil {
		resultSlug = *newSlug
	}

	selected, err := s.articles.Select(ctx, &userID, models.ArticleFilter{Slug: &resultSlug})
	if err != nil {
		return nil, err
	}
	return single(selected)
}

// Delete removes the authenticated user's own article.
func (s *ArticleService) Delete(ctx context.Context, authorization, slug string) error {
	userID, err := s.tokens.Verify(authorization, s.clock())
	if err != nil {
		return err
	}

	return s.articles.Delete(ctx, userID, slug)
}

// Favorite marks the article as favorited by the authenticated user and
// returns it with the updated count.
func (s *ArticleService) Favorite(ctx context.Context, authorization, slug string) (*models.Article, error) {
	userID, err := s.tokens.Verify(authorization, s.clock())
	if err != nil {
		return nil, err
	}

	if err := s.articles.InsertFavorite(ctx, userID, slug); err != nil {
		return nil, err
	}

	if s.events != nil {
		s.events.Publish(events.ArticleFavorited, events.ArticleFavoritedEvent{
			Slug:   slug,
			UserID: userID,
		})
	}

	return s.fetch(ctx, &userID, slug)
}

// Unfavorite removes the authenticated user's favorite edge and returns the
// article with the updated count.
func (s *ArticleService) Unfavorite(ctx context.Context, authorization, slug string) (*models.Article, error) {
	userID, err := s.tokens.Verify(authorization, s.clock())
	if err != nil {
		return nil, err
	}

	if err := s.articles.DeleteFavorite(ctx, userID, slug); err != nil {
		return nil, err
	}

	return s.fetch(ctx, &userID, slug)
}

// fetch loads at most one article by slug, translating absence into
// ErrArticleNotFound.
func (s *ArticleService) fetch(ctx context.Context, currentUserID *uuid.UUID, slug string) (*models.Article, error) {
	selected, err := s.articles.Select(ctx, currentUserID, models.ArticleFilter{Slug: &slug})
	if err != nil {
		return nil, err
	}

	article, err := singleOrNone(selected)
	if err != nil {
		return nil, err
	}
	if article == nil {
		return nil, errs.ErrArticleNotFound
	}
	return article, nil
}
