package api

import (
	"encoding/json"

	"github.com/Studio24-sys/classifieds-api/internal/models"
)

// PostRequest тело запросов создания и изменения объявления
// Опциональные поля передаются как json.RawMessage, чтобы отличать
// отсутствующее поле от явного null
type PostRequest struct {
	Title    *string         `json:"title,omitempty"`
	Content  *string         `json:"content,omitempty"`
	Location json.RawMessage `json:"location,omitempty"` // строка или null
	Price    json.RawMessage `json:"price,omitempty"`    // число, строка с числом или null
	Contact  json.RawMessage `json:"contact,omitempty"`  // строка/число или null
}

// PostListResponse страница объявлений
type PostListResponse struct {
	Items      []*models.Post `json:"items"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	Total      int            `json:"total"`
	TotalPages int            `json:"totalPages"`
}
