package models

import "time"

// Post представляет объявление
type Post struct {
	CreatedAt time.Time   `json:"createdAt"`        // время создания
	UpdatedAt time.Time   `json:"updatedAt"`        // время последнего изменения
	Location  *string     `json:"location"`         // район/город (опционально)
	Price     *int64      `json:"price"`            // цена, целое >= 0 (опционально)
	Contact   *string     `json:"contact"`          // контакт, только цифры (опционально)
	Author    *PostAuthor `json:"author,omitempty"` // автор, заполняется при выборке списка
	ID        string      `json:"id"`               // UUID объявления
	Title     string      `json:"title"`            // заголовок
	Content   string      `json:"content"`          // текст объявления
	AuthorID  string      `json:"authorId"`         // ID владельца
}

// PostAuthor публичные поля автора объявления
type PostAuthor struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// PostPatch содержит изменяемые поля объявления; nil означает "не менять"
type PostPatch struct {
	Title    *string
	Content  *string
	Location *string
	Price    *int64
	Contact  *string

	// Clear* сбрасывают опциональные поля в NULL
	ClearLocation bool
	ClearPrice    bool
	ClearContact  bool
}

// Apply применяет изменения к объявлению
func (p PostPatch) Apply(post *Post) {
	if p.Title != nil {
		post.Title = *p.Title
	}
	if p.Content != nil {
		post.Content = *p.Content
	}
	switch {
	case p.ClearLocation:
		post.Location = nil
	case p.Location != nil:
		post.Location = p.Location
	}
	switch {
	case p.ClearPrice:
		post.Price = nil
	case p.Price != nil:
		post.Price = p.Price
	}
	switch {
	case p.ClearContact:
		post.Contact = nil
	case p.Contact != nil:
		post.Contact = p.Contact
	}
}
