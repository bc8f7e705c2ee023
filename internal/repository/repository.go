// Package repository stores posts. The document drivers (file, bolt, s3) keep
// the whole collection in one JSON document that is read and rewritten on every
// call; the sqlite driver keeps one row per post.
package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/debemdeboas/postbox/internal/model"
)

// ErrNotFound is returned when no post has the requested id.
var ErrNotFound = errors.New("post not found")

type PostRepository interface {
	// Insert assigns a fresh id, appends the post and returns it.
	Insert(ctx context.Context, fields model.PostFields) (*model.Post, error)
	GetByID(ctx context.Context, id model.PostID) (*model.Post, error)
	// UpdateByID merges fields into an existing post. It never creates one.
	UpdateByID(ctx context.Context, id model.PostID, fields model.PostFields) (*model.Post, error)
	RemoveByID(ctx context.Context, id model.PostID) (*model.Post, error)
	// List returns every post in insertion order.
	List(ctx context.Context) ([]model.Post, error)

	Close() error
}

var repoLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	repoLogger = l
}

func NewPostID() model.PostID {
	return model.PostID(uuid.New().String())
}
