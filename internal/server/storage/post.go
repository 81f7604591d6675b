package storage

import (
	"context"

	"github.com/Studio24-sys/classifieds-api/internal/models"
)

// PostFilter narrows post listing
type PostFilter struct {
	// AuthorID limits the result to posts of one user; empty means all posts
	AuthorID string
	Offset   int
	Limit    int
}

// PostStorage defines interface for post persistence
type PostStorage interface {
	// CreatePost stores a new post
	CreatePost(ctx context.Context, post *models.Post) error

	// GetPost retrieves post by ID
	// Returns ErrPostNotFound if post doesn't exist
	GetPost(ctx context.Context, postID string) (*models.Post, error)

	// ListPosts returns a page of posts ordered by creation time (newest first)
	// together with the total number of posts matching the filter.
	// Items carry the author's public fields
	ListPosts(ctx context.Context, filter PostFilter) ([]*models.Post, int, error)

	// UpdatePost overwrites editable fields and updated_at
	// Returns ErrPostNotFound if post doesn't exist
	UpdatePost(ctx context.Context, post *models.Post) error

	// DeletePost removes post by ID
	// Returns ErrPostNotFound if post doesn't exist
	DeletePost(ctx context.Context, postID string) error
}
