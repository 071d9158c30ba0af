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

type CommentRepository interface {
	List(ctx context.Context, currentUserID *uuid.UUID, articleID uuid.UUID) ([]models.Comment, error)
	Insert(ctx context.Context, authorID uuid.UUID, slug, body string) (*models.Comment, error)
	Delete(ctx context.Context, authorID uuid.UUID, slug string, commentID int64) error
}

type commentRepository struct {
	db *sqlx.DB
}

func NewCommentRepository(db *sqlx.DB) CommentRepository {
	return &commentRepository{db: db}
}

// List returns the article's comments oldest first, each annotated with
// whether currentUserID follows its author.
func (r *commentRepository) List(ctx context.Context, currentUserID *uuid.UUID, articleID uuid.UUID) ([]models.Comment, error) {
	query := `
		SELECT
			c.comment_id,
			c.created_at,
			c.updated_at,
			c.body,
			author.username AS author_username,
			author.bio AS author_bio,
			author.image AS author_image,
			EXISTS(
				SELECT 1 FROM follows
				WHERE followed_id = author.id AND follower_id = $1
			) AS following_author
		FROM article_comments c
		INNER JOIN users author ON author.id = c.author_id
		WHERE c.article_id = $2
		ORDER BY c.created_at
	`

	comments := []models.Comment{}
	err := r.db.SelectContext(ctx, &comments, query, currentUserID, articleID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}

	return comments, nil
}

// Insert adds a comment to the article addressed by slug. An unresolved
// slug yields ErrArticleNotFound.
func (r *commentRepository) Insert(ctx context.Context, authorID uuid.UUID, slug, body string) (*models.Comment, error) {
	query := `
		WITH inserted AS (
			INSERT INTO article_comments (article_id, author_id, body)
				SELECT id, $1, $2
				FROM articles
				WHERE slug = $3
			RETURNING comment_id, created_at, updated_at, body
		)
		SELECT
			inserted.comment_id,
			inserted.created_at,
			inserted.updated_at,
			inserted.body,
			author.username AS author_username,
			author.bio AS author_bio,
			author.image AS author_image,
			false AS following_author
		FROM inserted
		INNER JOIN users author ON author.id = $1
	`

	var comment models.Comment
	err := r.db.GetContext(ctx, &comment, query, authorID, body, slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errs.ErrArticleNotFound
		}
		return nil, fmt.Errorf("failed to insert comment: %w", err)
	}

	return &comment, nil
}

// Delete removes the comment when it belongs to both the addressed article
// and authorID. NotFound and Forbidden are distinguished in one round trip.
func (r *commentRepository) Delete(ctx context.Context, authorID uuid.UUID, slug string, commentID int64) error {
	query := `
		WITH deleted AS (
			DELETE FROM article_comments
			WHERE comment_id = $1
			AND article_id IN (SELECT id FROM articles WHERE slug = $2)
			AND author_id = $3
			RETURNING 1
		)
		SELECT
			EXISTS(
				SELECT 1 FROM article_comments c
				INNER JOIN articles a ON a.id = c.article_id
				WHERE c.comment_id = $1 AND a.slug = $2
			) AS existed,
			EXISTS(SELECT 1 FROM deleted) AS deleted
	`

	var result struct {
		Existed bool `db:"existed"`
		Deleted bool `db:"deleted"`
	}
	if err := r.db.GetContext(ctx, &result, query, commentID, slug, authorID); err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}

	switch {
	case result.Deleted:
		return nil
	case result.Existed:
		return errs.ErrForbidden
	default:
		return errs.ErrArticleNotFound
	}
}
