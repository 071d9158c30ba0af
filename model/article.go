package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type Article struct {
	Slug            string         `json:"slug" db:"slug"`
	Title           string         `json:"title" db:"title"`
	Description     string         `json:"description" db:"description"`
	Body            string         `json:"body" db:"body"`
	TagList         pq.StringArray `json:"tag_list" db:"tag_list"`
	CreatedAt       time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at" db:"updated_at"`
	Favorited       bool           `json:"favorited" db:"favorited"`
	FavoritesCount  int64          `json:"favorites_count" db:"favorites_count"`
	AuthorUsername  string         `json:"-" db:"author_username"`
	AuthorBio       string         `json:"-" db:"author_bio"`
	AuthorImage     *string        `json:"-" db:"author_image"`
	FollowingAuthor bool           `json:"-" db:"following_author"`
}

// Author assembles the embedded author columns into a Profile.
func (a *Article) Author() Profile {
	return Profile{
		Username:  a.AuthorUsername,
		Bio:       a.AuthorBio,
		Image:     a.AuthorImage,
		Following: a.FollowingAuthor,
	}
}

// ArticleFilter selects articles. All predicates are optional and combine
// with AND. FollowedBy is set only by the feed use case.
type ArticleFilter struct {
	Slug        *string
	Tag         *string
	Author      *string
	FavoritedBy *string
	FollowedBy  *uuid.UUID
	Limit       *int64
	Offset      *int64
}

// UpdateArticleInput carries a partial article update. Nil fields keep
// their stored value. Slug is derived from Title by the caller.
type UpdateArticleInput struct {
	Slug        *string
	Title       *string
	Description *string
	Body        *string
}
