package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/debemdeboas/postbox/internal/db"
	"github.com/debemdeboas/postbox/internal/model"
)

type DBPostRepository struct { // implements PostRepository
	db db.DB
}

func NewDBPostRepository(db db.DB) *DBPostRepository {
	return &DBPostRepository{db: db}
}

func (r *DBPostRepository) Insert(ctx context.Context, fields model.PostFields) (*model.Post, error) {
	post := model.Post{ID: NewPostID()}
	fields.Apply(&post)

	if _, err := r.db.Exec(ctx, `INSERT INTO posts (id, body) VALUES (?, ?)`, post.ID, post.Body); err != nil {
		return nil, fmt.Errorf("error saving post: %w", err)
	}

	repoLogger.Debug().Str("post_id", string(post.ID)).Msg("Post inserted")
	return &post, nil
}

func (r *DBPostRepository) GetByID(ctx context.Context, id model.PostID) (*model.Post, error) {
	return scanPost(r.db.QueryRow(ctx, `SELECT id, body FROM posts WHERE id = ?`, id), id)
}

func scanPost(row *sql.Row, id model.PostID) (*model.Post, error) {
	var post model.Post
	err := row.Scan(&post.ID, &post.Body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("error scanning post: %w", err)
	}
	return &post, nil
}

// inTx runs fn inside a transaction, committing only when fn succeeds.
func (r *DBPostRepository) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.Get().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (r *DBPostRepository) UpdateByID(ctx context.Context, id model.PostID, fields model.PostFields) (*model.Post, error) {
	var post *model.Post
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		var err error
		post, err = scanPost(tx.QueryRowContext(ctx, `SELECT id, body FROM posts WHERE id = ?`, id), id)
		if err != nil {
			return err
		}

		fields.Apply(post)
		if _, err := tx.ExecContext(ctx, `UPDATE posts SET body = ? WHERE id = ?`, post.Body, id); err != nil {
			return fmt.Errorf("error updating post: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	repoLogger.Debug().Str("post_id", string(id)).Msg("Post updated")
	return post, nil
}

func (r *DBPostRepository) RemoveByID(ctx context.Context, id model.PostID) (*model.Post, error) {
	var post *model.Post
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		var err error
		post, err = scanPost(tx.QueryRowContext(ctx, `SELECT id, body FROM posts WHERE id = ?`, id), id)
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id); err != nil {
			return fmt.Errorf("error deleting post: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	repoLogger.Debug().Str("post_id", string(id)).Msg("Post removed")
	return post, nil
}

func (r *DBPostRepository) List(ctx context.Context) ([]model.Post, error) {
	rows, err := r.db.Query(ctx, `SELECT id, body FROM posts ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("error querying posts: %w", err)
	}
	defer rows.Close()

	posts := make([]model.Post, 0)
	for rows.Next() {
		var post model.Post
		if err := rows.Scan(&post.ID, &post.Body); err != nil {
			return nil, fmt.Errorf("error scanning post: %w", err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating posts: %w", err)
	}

	return posts, nil
}

func (r *DBPostRepository) Close() error {
	return r.db.Close()
}
