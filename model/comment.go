package models

import "time"

type Comment struct {
	ID              int64     `json:"id" db:"comment_id"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
	Body            string    `json:"body" db:"body"`
	AuthorUsername  string    `json:"-" db:"author_username"`
	AuthorBio       string    `json:"-" db:"author_bio"`
	AuthorImage     *string   `json:"-" db:"author_image"`
	FollowingAuthor bool      `json:"-" db:"following_author"`
}

// Author assembles the embedded author columns into a Profile.
func (c *Comment) Author() Profile {
	return Profile{
		Username:  c.AuthorUsername,
		Bio:       c.AuthorBio,
		Image:     c.AuthorImage,
		Following: c.FollowingAuthor,
	}
}
