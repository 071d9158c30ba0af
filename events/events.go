package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	UserRegistered   = "user.registered"
	UserFollowed     = "user.followed"
	ArticleCreated   = "article.created"
	ArticleFavorited = "article.favorited"
	CommentAdded     = "article.comment.added"
)

type UserRegisteredEvent struct {
	UserID   uuid.UUID `json:"user_id"`
	Username string    `json:"username"`
}

type UserFollowedEvent struct {
	FollowerID       uuid.UUID `json:"follower_id"`
	FollowedUsername string    `json:"followed_username"`
}

type ArticleCreatedEvent struct {
	Slug           string    `json:"slug"`
	AuthorID       uuid.UUID `json:"author_id"`
	AuthorUsername string    `json:"author_username"`
	CreatedAt      time.Time `json:"created_at"`
}

type ArticleFavoritedEvent struct {
	Slug   string    `json:"slug"`
	UserID uuid.UUID `json:"user_id"`
}

type CommentAddedEvent struct {
	CommentID   int64     `json:"comment_id"`
	ArticleSlug string    `json:"article_slug"`
	AuthorID    uuid.UUID `json:"author_id"`
	CreatedAt   time.Time `json:"created_at"`
}
