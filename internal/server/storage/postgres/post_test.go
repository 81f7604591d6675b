package postgres

import (
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Studio24-sys/classifieds-api/internal/models"
	"github.com/Studio24-sys/classifieds-api/internal/server/storage"
)

var postColumns = []string{
	"id", "title", "content", "location", "price", "contact", "author_id",
	"created_at", "updated_at", "email",
}

func TestPostStorage_CreatePost(t *testing.T) {
	s, mock := setupMockStorage(t)
	now := time.Now().UTC()

	post := &models.Post{
		ID:        "p1",
		Title:     "Heladera",
		Content:   "Usada, funciona",
		Price:     int64Ptr(1500000),
		AuthorID:  "u1",
		CreatedAt: now,
		UpdatedAt: now,
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO posts")).
		WithArgs("p1", "Heladera", "Usada, funciona", nil, int64(1500000), nil, "u1", now, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.CreatePost(t.Context(), post))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostStorage_GetPost(t *testing.T) {
	now := time.Now().UTC()

	t.Run("found", func(t *testing.T) {
		s, mock := setupMockStorage(t)

		mock.ExpectQuery(regexp.QuoteMeta("WHERE p.id = $1")).
			WithArgs("p1").
			WillReturnRows(sqlmock.NewRows(postColumns).
				AddRow("p1", "t", "c", "Luque", int64(100), "595981123456", "u1", now, now, "ana@example.com"))

		post, err := s.GetPost(t.Context(), "p1")
		require.NoError(t, err)
		assert.Equal(t, "Luque", *post.Location)
		assert.Equal(t, int64(100), *post.Price)
		assert.Equal(t, "595981123456", *post.Contact)
		require.NotNil(t, post.Author)
		assert.Equal(t, "ana@example.com", post.Author.Email)
		assert.Equal(t, "u1", post.Author.ID)
	})

	t.Run("not found", func(t *testing.T) {
		s, mock := setupMockStorage(t)

		mock.ExpectQuery(regexp.QuoteMeta("WHERE p.id = $1")).
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		post, err := s.GetPost(t.Context(), "missing")
		assert.ErrorIs(t, err, storage.ErrPostNotFound)
		assert.Nil(t, post)
	})
}

func TestPostStorage_ListPosts(t *testing.T) {
	now := time.Now().UTC()

	t.Run("all posts", func(t *testing.T) {
		s, mock := setupMockStorage(t)

		mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM posts p")).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))
		mock.ExpectQuery(regexp.QuoteMeta("ORDER BY p.created_at DESC, p.id DESC LIMIT $1 OFFSET $2")).
			WithArgs(5, 10).
			WillReturnRows(sqlmock.NewRows(postColumns).
				AddRow("p2", "t2", "c2", nil, nil, nil, "u1", now, now, "a@example.com").
				AddRow("p1", "t1", "c1", nil, nil, nil, "u1", now.Add(-time.Minute), now, "a@example.com"))

		posts, total, err := s.ListPosts(t.Context(), storage.PostFilter{Limit: 5, Offset: 10})
		require.NoError(t, err)
		assert.Equal(t, 12, total)
		require.Len(t, posts, 2)
		assert.Equal(t, "p2", posts[0].ID)
		assert.Nil(t, posts[0].Price)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("by author", func(t *testing.T) {
		s, mock := setupMockStorage(t)

		mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM posts p WHERE p.author_id = $1")).
			WithArgs("u1").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectQuery(regexp.QuoteMeta("WHERE p.author_id = $1 ORDER BY p.created_at DESC, p.id DESC LIMIT $2 OFFSET $3")).
			WithArgs("u1", 10, 0).
			WillReturnRows(sqlmock.NewRows(postColumns))

		posts, total, err := s.ListPosts(t.Context(), storage.PostFilter{AuthorID: "u1", Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, 0, total)
		assert.Empty(t, posts)
		assert.NotNil(t, posts)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostStorage_UpdateAndDelete_NotFound(t *testing.T) {
	s, mock := setupMockStorage(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE posts")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM posts WHERE id = $1")).
		WithArgs("p1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, s.UpdatePost(t.Context(), &models.Post{ID: "p1"}), storage.ErrPostNotFound)
	assert.ErrorIs(t, s.DeletePost(t.Context(), "p1"), storage.ErrPostNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostStorage_DeletePost(t *testing.T) {
	s, mock := setupMockStorage(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM posts WHERE id = $1")).
		WithArgs("p1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.DeletePost(t.Context(), "p1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
