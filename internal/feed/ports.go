// Package feed is the data-access layer: the backend's REST API, a query cache
// in front of it, and the read/write ports the rest of the program depends on.
package feed

import (
	"context"

	"feedview/internal/model"
)

type CommentReader interface {
	FetchComments(ctx context.Context, postID string) ([]model.CommentRecord, error)
}

type CommentWriter interface {
	CreateComment(ctx context.Context, c model.NewComment) error
	CreateReply(ctx context.Context, r model.NewReply) error
}

// PostList names one of the profile post listings.
type PostList string

const (
	ListMyPosts         PostList = "my-posts"
	ListMyPremiumPosts  PostList = "my-premium-posts"
	ListSubscribedPosts PostList = "my-subscribed-posts"
)

func (l PostList) Valid() bool {
	switch l {
	case ListMyPosts, ListMyPremiumPosts, ListSubscribedPosts:
		return true
	}
	return false
}

type PostReader interface {
	ListPosts(ctx context.Context, list PostList, page, limit int) (model.Page, error)
	Post(ctx context.Context, id string) (model.Post, error)
}

// Repository is everything the views need from the backend.
type Repository interface {
	CommentReader
	CommentWriter
	PostReader
}
