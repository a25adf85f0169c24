package model

import "time"

// User is the author block embedded in posts and comments.
type User struct {
	ID    string `json:"_id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Image string `json:"image,omitempty"`
}

// CommentRecord is a comment as returned by the comments endpoint.
//
// Replies are embedded one level deep. The backend also returns reply records as
// flat siblings of their parents, so consumers must not assume every top-level
// record is a root comment.
type CommentRecord struct {
	ID        string          `json:"_id"`
	PostID    string          `json:"post,omitempty"`
	User      *User           `json:"user,omitempty"`
	Text      string          `json:"text"`
	Replies   []CommentRecord `json:"replies,omitempty"`
	CreatedAt *time.Time      `json:"createdAt,omitempty"`
}

func (c CommentRecord) AuthorID() string {
	if c.User == nil {
		return ""
	}
	return c.User.ID
}

func (c CommentRecord) AuthorName() string {
	if c.User == nil {
		return ""
	}
	return c.User.Name
}

func (c CommentRecord) AuthorAvatarURL() string {
	if c.User == nil {
		return ""
	}
	return c.User.Image
}

type Post struct {
	ID          string    `json:"_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Images      []string  `json:"images,omitempty"`
	IsPremium   bool      `json:"isPremium"`
	User        *User     `json:"user,omitempty"`
	Upvotes     int       `json:"upvotes"`
	Downvotes   int       `json:"downvotes"`
	CreatedAt   time.Time `json:"createdAt"`
}

// CommentData is the body of both comment writes.
type CommentData struct {
	Post string `json:"post"`
	Text string `json:"text"`
}

// NewComment creates a top-level comment on a post.
type NewComment = CommentData

// NewReply creates a reply under CommentID.
type NewReply struct {
	CommentID string      `json:"commentId"`
	Data      CommentData `json:"data"`
}

// PageMeta is the pagination block of list responses.
type PageMeta struct {
	Page      int `json:"page"`
	Limit     int `json:"limit"`
	Total     int `json:"total"`
	TotalPage int `json:"totalPage"`
}

// Page is one page of posts.
type Page struct {
	Posts []Post   `json:"data"`
	Meta  PageMeta `json:"meta"`
}

// HasMore reports whether a later page exists.
func (p Page) HasMore() bool {
	if p.Meta.TotalPage > 0 {
		return p.Meta.Page < p.Meta.TotalPage
	}
	return p.Meta.Limit > 0 && len(p.Posts) >= p.Meta.Limit
}
