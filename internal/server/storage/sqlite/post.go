package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Studio24-sys/classifieds-api/internal/models"
	"github.com/Studio24-sys/classifieds-api/internal/server/storage"
)

// CreatePost stores a new post
func (s *Storage) CreatePost(ctx context.Context, post *models.Post) error {
	query := `
		INSERT INTO posts (id, title, content, location, price, contact, author_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		post.ID,
		post.Title,
		post.Content,
		post.Location,
		post.Price,
		post.Contact,
		post.AuthorID,
		post.CreatedAt,
		post.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to insert post: %w", err)
	}

	return nil
}

// GetPost retrieves post by ID
func (s *Storage) GetPost(ctx context.Context, postID string) (*models.Post, error) {
	query := `
		SELECT p.id, p.title, p.content, p.location, p.price, p.contact, p.author_id,
		       p.created_at, p.updated_at, u.email
		FROM posts p
		JOIN users u ON u.id = p.author_id
		WHERE p.id = ?
	`

	post, err := scanPost(s.db.QueryRowContext(ctx, query, postID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrPostNotFound
		}
		return nil, fmt.Errorf("failed to get post: %w", err)
	}

	return post, nil
}

// ListPosts returns a page of posts, newest first, and the total count
func (s *Storage) ListPosts(ctx context.Context, filter storage.PostFilter) ([]*models.Post, int, error) {
	where := ""
	args := []any{}
	if filter.AuthorID != "" {
		where = "WHERE p.author_id = ?"
		args = append(args, filter.AuthorID)
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM posts p ` + where
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count posts: %w", err)
	}

	query := `
		SELECT p.id, p.title, p.content, p.location, p.price, p.contact, p.author_id,
		       p.created_at, p.updated_at, u.email
		FROM posts p
		JOIN users u ON u.id = p.author_id
		` + where + `
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT ? OFFSET ?
	`

	rows, err := s.db.QueryContext(ctx, query, append(args, filter.Limit, filter.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query posts: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	posts := make([]*models.Post, 0, filter.Limit)
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, post)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows iteration error: %w", err)
	}

	return posts, total, nil
}

// UpdatePost overwrites editable fields of a post
func (s *Storage) UpdatePost(ctx context.Context, post *models.Post) error {
	query := `
		UPDATE posts
		SET title = ?, content = ?, location = ?, price = ?, contact = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := s.db.ExecContext(ctx, query,
		post.Title,
		post.Content,
		post.Location,
		post.Price,
		post.Contact,
		post.UpdatedAt,
		post.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update post: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return storage.ErrPostNotFound
	}

	return nil
}

// DeletePost removes post by ID
func (s *Storage) DeletePost(ctx context.Context, postID string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, postID)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return storage.ErrPostNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (*models.Post, error) {
	post := &models.Post{}
	var (
		location    sql.NullString
		price       sql.NullInt64
		contact     sql.NullString
		authorEmail string
	)

	if err := row.Scan(
		&post.ID,
		&post.Title,
		&post.Content,
		&location,
		&price,
		&contact,
		&post.AuthorID,
		&post.CreatedAt,
		&post.UpdatedAt,
		&authorEmail,
	); err != nil {
		return nil, err
	}

	if location.Valid {
		post.Location = &location.String
	}
	if price.Valid {
		post.Price = &price.Int64
	}
	if contact.Valid {
		post.Contact = &contact.String
	}
	post.Author = &models.PostAuthor{ID: post.AuthorID, Email: authorEmail}

	return post, nil
}
