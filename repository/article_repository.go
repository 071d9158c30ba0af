package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"conduit/errs"
	models "conduit/model"
)

const defaultArticleLimit = 20

type ArticleRepository interface {
	Select(ctx context.Context, currentUserID *uuid.UUID, filter models.ArticleFilter) ([]models.Article, error)
	FetchID(ctx context.Context, slug string) (uuid.UUID, error)
	Insert(ctx context.Context, authorID uuid.UUID, slug, title, description, body string, tags []string) (*models.Article, error)
	Update(ctx context.Context, authorID uuid.UUID, slug string, input models.UpdateArticleInput) error
	Delete(ctx context.Context, authorID uuid.UUID, slug string) error
	InsertFavorite(ctx context.Context, userID uuid.UUID, slug string) error
	DeleteFavorite(ctx context.Context, userID uuid.UUID, slug string) error
}

type articleRepository struct {
	db *sqlx.DB
}

func NewArticleRepository(db *sqlx.DB) ArticleRepository {
	return &articleRepository{db: db}
}

// Select returns articles matching every set predicate, newest first.
// currentUserID only affects the per-row favorited/following_author flags.
func (r *articleRepository) Select(ctx context.Context, currentUserID *uuid.UUID, filter models.ArticleFilter) ([]models.Article, error) {
	query := `
		SELECT
			a.slug,
			a.title,
			a.description,
			a.body,
			a.tag_list,
			a.created_at,
			a.updated_at,
			EXISTS(
				SELECT 1 FROM article_favorites
				WHERE article_id = a.id AND user_id = $1
			) AS favorited,
			(
				SELECT count(*) FROM article_favorites fav
				WHERE fav.article_id = a.id
			) AS favorites_count,
			author.username AS author_username,
			author.bio AS author_bio,
			author.image AS author_image,
			EXISTS(
				SELECT 1 FROM follows
				WHERE followed_id = author.id AND follower_id = $1
			) AS following_author
		FROM articles a
		INNER JOIN users author ON author.id = a.author_id
		WHERE (
			$2::text IS NULL OR a.slug = $2
		) AND (
			$3::text IS NULL OR a.tag_list @> ARRAY[$3]
		) AND (
			$4::text IS NULL OR author.username = $4
		) AND (
			$5::text IS NULL OR EXISTS(
				SELECT 1 FROM article_favorites
				WHERE user_id = (SELECT id FROM users WHERE username = $5)
				AND article_id = a.id
			)
		) AND (
			$6::uuid IS NULL OR EXISTS(
				SELECT 1 FROM follows
				WHERE follower_id = $6 AND followed_id = author.id
			)
		)
		ORDER BY a.created_at DESC
		LIMIT $7 OFFSET $8
	`

	limit := int64(defaultArticleLimit)
	if filter.Limit != nil {
		limit = *filter.Limit
	}
	var offset int64
	if filter.Offset != nil {
		offset = *filter.Offset
	}

	articles := []models.Article{}
	err := r.db.SelectContext(ctx, &articles, query,
		currentUserID,
		filter.Slug, filter.Tag, filter.Author, filter.FavoritedBy, filter.FollowedBy,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to select articles: %w", err)
	}

	return articles, nil
}

// FetchID resolves a slug to the internal article id.
func (r *articleRepository) FetchID(ctx context.Context, slug string) (uuid.UUID, error) {
	var id uuid.UUID
	err := r.db.GetContext(ctx, &id, `SELECT id FROM articles WHERE slug = $1`, slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return uuid.Nil, errs.ErrArticleNotFound
		}
		return uuid.Nil, fmt.Errorf("failed to fetch article id: %w", err)
	}
	return id, nil
}

// Insert creates an article and returns it with author columns joined in.
// A slug collision maps to DuplicateSlugError carrying the offending slug.
func (r *articleRepository) Insert(ctx context.Context, authorID uuid.UUID, slug, title, description, body string, tags []string) (*models.Article, error) {
	query := `
		WITH inserted AS (
			INSERT INTO articles (id, author_id, slug, title, description, body, tag_list)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING slug, title, description, body, tag_list, created_at, updated_at
		)
		SELECT
			inserted.slug,
			inserted.title,
			inserted.description,
			inserted.body,
			inserted.tag_list,
			inserted.created_at,
			inserted.updated_at,
			false AS favorited,
			0::int8 AS favorites_count,
			author.username AS author_username,
			author.bio AS author_bio,
			author.image AS author_image,
			-- a user cannot follow themselves
			false AS following_author
		FROM inserted
		INNER JOIN users author ON author.id = $2
	`

	var article models.Article
	err := r.db.GetContext(ctx, &article, query,
		uuid.New(), authorID, slug, title, description, body, pq.Array(tags))
	if err != nil {
		if mapped := onConstraint(err, "articles_slug_key", error(&errs.DuplicateSlugError{Slug: slug})); mapped != err {
			return nil, mapped
		}
		return nil, fmt.Errorf("failed to insert article: %w", err)
	}

	return &article, nil
}

// Update applies the non-nil fields inside a single transaction. The target
// row is locked for the duration, so the ownership check cannot interleave
// with a concurrent update or delete of the same article.
func (r *articleRepository) Update(ctx context.Context, authorID uuid.UUID, slug string, input models.UpdateArticleInput) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var meta struct {
		ID       uuid.UUID `db:"id"`
		AuthorID uuid.UUID `db:"author_id"`
	}
	err = tx.GetContext(ctx, &meta,
		`SELECT id, author_id FROM articles WHERE slug = $1 FOR UPDATE`, slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return errs.ErrArticleNotFound
		}
		return fmt.Errorf("failed to lock article row: %w", err)
	}

	if meta.AuthorID != authorID {
		return errs.ErrForbidden
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE articles SET
			slug = COALESCE($1, slug),
			title = COALESCE($2, title),
			description = COALESCE($3, description),
			body = COALESCE($4, body),
			updated_at = now()
		WHERE id = $5
	`, input.Slug, input.Title, input.Description, input.Body, meta.ID)
	if err != nil {
		if input.Slug != nil {
			if mapped := onConstraint(err, "articles_slug_key", error(&errs.DuplicateSlugError{Slug: *input.Slug})); mapped != err {
				return mapped
			}
		}
		return fmt.Errorf("failed to update article: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit article update: %w", err)
	}
	return nil
}

// Delete removes the article when authorID owns it. A single round trip
// distinguishes "never existed" from "owned by someone else".
func (r *articleRepository) Delete(ctx context.Context, authorID uuid.UUID, slug string) error {
	query := `
		WITH deleted AS (
			DELETE FROM articles
			WHERE slug = $1 AND author_id = $2
			RETURNING 1
		)
		SELECT
			EXISTS(SELECT 1 FROM articles WHERE slug = $1) AS existed,
			EXISTS(SELECT 1 FROM deleted) AS deleted
	`

	var result struct {
		Existed bool `db:"existed"`
		Deleted bool `db:"deleted"`
	}
	if err := r.db.GetContext(ctx, &result, query, slug, authorID); err != nil {
		return fmt.Errorf("failed to delete article: %w", err)
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

// InsertFavorite adds a favorite edge. Favoriting twice is a no-op success.
func (r *articleRepository) InsertFavorite(ctx context.Context, userID uuid.UUID, slug string) error {
	query := `
		WITH selected AS (
			SELECT id FROM articles WHERE slug = $1
		), insertion AS (
			INSERT INTO article_favorites (user_id, article_id)
				SELECT $2, id FROM selected
			ON CONFLICT (user_id, article_id) DO NOTHING
		)
		SELECT id FROM selected
	`

	var articleID uuid.UUID
	err := r.db.GetContext(ctx, &articleID, query, slug, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return errs.ErrArticleNotFound
		}
		return fmt.Errorf("failed to favorite article: %w", err)
	}
	return nil
}

// DeleteFavorite removes a favorite edge. Unfavoriting an article that was
// never favorited is a no-op success as long as the article exists.
func (r *articleRepository) DeleteFavorite(ctx context.Context, userID uuid.UUID, slug string) error {
	query := `
		WITH selected AS (
			SELECT id FROM articles WHERE slug = $1
		), deletion AS (
			DELETE FROM article_favorites
			WHERE article_id = (SELECT id FROM selected) AND user_id = $2
		)
		SELECT id FROM selected
	`

	var articleID uuid.UUID
	err := r.db.GetContext(ctx, &articleID, query, slug, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return errs.ErrArticleNotFound
		}
		return fmt.Errorf("failed to unfavorite article: %w", err)
	}
	return nil
}
