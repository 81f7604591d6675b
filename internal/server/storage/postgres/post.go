package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/Studio24-sys/classifieds-api/internal/models"
	"github.com/Studio24-sys/classifieds-api/internal/server/storage"
)

const selectPostColumns = `
	SELECT p.id, p.title, p.content, p.location, p.price, p.contact, p.author_id,
	       p.created_at, p.updated_at, u.email
	FROM posts p
	JOIN users u ON u.id = p.author_id
`

// CreatePost stores a new post
func (s *Storage) CreatePost(ctx context.Context, post *models.Post) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO posts (id, title, content, location, price, contact, author_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
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
	post, err := scanPost(s.db.QueryRowContext(ctx, selectPostColumns+` WHERE p.id = $1`, postID))
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
		where = ` WHERE p.author_id = $1`
		args = append(args, filter.AuthorID)
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts p`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count posts: %w", err)
	}

	n := len(args)
	query := selectPostColumns + where +
		` ORDER BY p.created_at DESC, p.id DESC` +
		` LIMIT $` + strconv.Itoa(n+1) + ` OFFSET $` + strconv.Itoa(n+2)

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
	result, err := s.db.ExecContext(ctx, `
		UPDATE posts
		SET title = $1, content = $2, location = $3, price = $4, contact = $5, updated_at = $6
		WHERE id = $7
	`,
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

	return rowsAffected(result, storage.ErrPostNotFound)
}

// DeletePost removes post by ID
func (s *Storage) DeletePost(ctx context.Context, postID string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, postID)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}

	return rowsAffected(result, storage.ErrPostNotFound)
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
