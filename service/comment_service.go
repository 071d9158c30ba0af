package service

import (
	"context"

	"conduit/events"
	models "conduit/model"
	"conduit/repository"
)

// CommentService implements the comment use cases.
type CommentService struct {
	comments repository.CommentRepository
	articles repository.ArticleRepository
	tokens   TokenManager
	clock    Clock
	events   Publisher
}

func NewCommentService(comments repository.CommentRepository, articles repository.ArticleRepository, tokens TokenManager, clock Clock, events Publisher) *CommentService {
	return &CommentService{
		comments: comments,
		articles: articles,
		tokens:   tokens,
		clock:    clock,
		events:   events,
	}
}

// List returns the article's comments oldest first. Authentication is
// optional and only affects the following_author flags.
func (s *CommentService) List(ctx context.Context, authorization, slug string) ([]models.Comment, error) {
	currentUserID, err := s.tokens.VerifyOptional(authorization, s.clock())
	if err != nil {
		return nil, err
	}

	articleID, err := s.articles.FetchID(ctx, slug)
	if err != nil {
		return nil, err
	}

	return s.comments.List(ctx, currentUserID, articleID)
}

// Add attaches a comment by the authenticated user to the article
// addressed by slug.
func (s *CommentService) Add(ctx context.Context, authorization, slug, body string) (*models.Comment, error) {
	userID, err := s.tokens.Verify(authorization, s.clock())
	if err != nil {
		return nil, err
	}

	comment, err := s.comments.Insert(ctx, userID, slug, body)
	if err != nil {
		return nil, err
	}

	if s.events != nil {
		s.events.Publish(events.CommentAdded, events.CommentAddedEvent{
			CommentID:   comment.ID,
			ArticleSlug: slug,
			AuthorID:    userID,
			CreatedAt:   comment.CreatedAt,
		})
	}

	return comment, nil
}

// Delete removes the authenticated user's own comment from the addressed
// article.
func (s *CommentService) Delete(ctx context.Context, authorization, slug string, commentID int64) error {
	userID, err := s.tokens.Verify(authorization, s.clock())
	if err != nil {
		return err
	}

	return s.comments.Delete(ctx, userID, slug, commentID)
}
