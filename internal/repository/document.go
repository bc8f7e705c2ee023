package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/debemdeboas/postbox/internal/model"
	"github.com/debemdeboas/postbox/internal/util/compression"
)

type DocumentPostRepository struct { // implements PostRepository
	// Serializes read-modify-write cycles within this process.
	mu sync.Mutex

	blobs      BlobStore
	compressor compression.Compressor

	newID func() model.PostID
}

func NewDocumentPostRepository(blobs BlobStore, compressor compression.Compressor) *DocumentPostRepository {
	if compressor == nil {
		compressor = compression.NoneCompressor{}
	}
	return &DocumentPostRepository{
		blobs:      blobs,
		compressor: compressor,
		newID:      NewPostID,
	}
}

func (r *DocumentPostRepository) load(ctx context.Context) (*model.Document, error) {
	doc := &model.Document{Posts: []model.Post{}}

	raw, err := r.blobs.Load(ctx)
	if errors.Is(err, ErrBlobNotFound) {
		return doc, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error loading posts document: %w", err)
	}

	data, err := r.compressor.Decompress(raw)
	if err != nil {
		return nil, fmt.Errorf("error decompressing posts document: %w", err)
	}
	if len(data) == 0 {
		return doc, nil
	}

	if err := json.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("error decoding posts document: %w", err)
	}
	if doc.Posts == nil {
		doc.Posts = []model.Post{}
	}
	return doc, nil
}

func (r *DocumentPostRepository) save(ctx context.Context, doc *model.Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("error encoding posts document: %w", err)
	}

	compressed, err := r.compressor.Compress(data)
	if err != nil {
		return fmt.Errorf("error compressing posts document: %w", err)
	}

	if err := r.blobs.Save(ctx, compressed); err != nil {
		return fmt.Errorf("error saving posts document: %w", err)
	}
	return nil
}

func (r *DocumentPostRepository) Insert(ctx context.Context, fields model.PostFields) (*model.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	id := r.newID()
	for doc.Index(id) >= 0 {
		id = r.newID()
	}

	post := model.Post{ID: id}
	fields.Apply(&post)
	doc.Posts = append(doc.Posts, post)

	if err := r.save(ctx, doc); err != nil {
		return nil, err
	}

	repoLogger.Debug().Str("post_id", string(post.ID)).Msg("Post inserted")
	return &post, nil
}

func (r *DocumentPostRepository) GetByID(ctx context.Context, id model.PostID) (*model.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	i := doc.Index(id)
	if i < 0 {
		return nil, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	post := doc.Posts[i]
	return &post, nil
}

func (r *DocumentPostRepository) UpdateByID(ctx context.Context, id model.PostID, fields model.PostFields) (*model.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	i := doc.Index(id)
	if i < 0 {
		return nil, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	fields.Apply(&doc.Posts[i])

	if err := r.save(ctx, doc); err != nil {
		return nil, err
	}

	repoLogger.Debug().Str("post_id", string(id)).Msg("Post updated")
	post := doc.Posts[i]
	return &post, nil
}

func (r *DocumentPostRepository) RemoveByID(ctx context.Context, id model.PostID) (*model.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	i := doc.Index(id)
	if i < 0 {
		return nil, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	removed := doc.Posts[i]
	doc.Posts = append(doc.Posts[:i], doc.Posts[i+1:]...)

	if err := r.save(ctx, doc); err != nil {
		return nil, err
	}

	repoLogger.Debug().Str("post_id", string(id)).Msg("Post removed")
	return &removed, nil
}

func (r *DocumentPostRepository) List(ctx context.Context) ([]model.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	return doc.Posts, nil
}

func (r *DocumentPostRepository) Close() error {
	return r.blobs.Close()
}
