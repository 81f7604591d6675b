package validation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/Studio24-sys/classifieds-api/internal/models"
	"github.com/Studio24-sys/classifieds-api/pkg/api"
)

const (
	// MaxTitleLen максимальная длина заголовка
	MaxTitleLen = 200
	// MaxContentLen максимальная длина текста объявления
	MaxContentLen = 5000
	// MaxLocationLen максимальная длина района
	MaxLocationLen = 100
	// MaxPrice верхняя граница цены
	MaxPrice = int64(1) << 50
)

var jsonNull = []byte("null")

// PostValidator проверяет и нормализует поля объявления
type PostValidator struct {
	region string
}

// NewPostValidator создает валидатор; region используется для разбора телефонов (например "PY")
func NewPostValidator(region string) *PostValidator {
	return &PostValidator{region: strings.ToUpper(strings.TrimSpace(region))}
}

// postFields нормализованные поля для проверки ozzo
type postFields struct {
	Title    *string `json:"title"`
	Content  *string `json:"content"`
	Location *string `json:"location"`
}

func (f postFields) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Title, validation.NilOrNotEmpty, validation.RuneLength(1, MaxTitleLen)),
		validation.Field(&f.Content, validation.NilOrNotEmpty, validation.RuneLength(1, MaxContentLen)),
		validation.Field(&f.Location, validation.RuneLength(0, MaxLocationLen)),
	)
}

// NewPost строит новое объявление из запроса
// Возвращает ErrMissingFields если title или content пустые
func (v *PostValidator) NewPost(req api.PostRequest) (*models.Post, error) {
	title := trimPtr(req.Title)
	content := trimPtr(req.Content)
	if title == nil || *title == "" || content == nil || *content == "" {
		return nil, ErrMissingFields
	}

	patch, err := v.optionalFields(req)
	if err != nil {
		return nil, err
	}

	fields := postFields{Title: title, Content: content, Location: patch.Location}
	if err := fields.Validate(); err != nil {
		return nil, err
	}

	post := &models.Post{Title: *title, Content: *content}
	patch.Apply(post)

	return post, nil
}

// Patch строит частичное обновление объявления
// Отсутствующие поля не меняются, null сбрасывает опциональные поля
func (v *PostValidator) Patch(req api.PostRequest) (models.PostPatch, error) {
	patch, err := v.optionalFields(req)
	if err != nil {
		return models.PostPatch{}, err
	}

	patch.Title = trimPtr(req.Title)
	patch.Content = trimPtr(req.Content)

	fields := postFields{Title: patch.Title, Content: patch.Content, Location: patch.Location}
	if err := fields.Validate(); err != nil {
		return models.PostPatch{}, err
	}

	return patch, nil
}

// optionalFields разбирает location, price и contact
func (v *PostValidator) optionalFields(req api.PostRequest) (models.PostPatch, error) {
	var patch models.PostPatch

	if len(req.Location) > 0 {
		location, err := decodeString(req.Location)
		if err != nil {
			return patch, fmt.Errorf("location: %w", err)
		}
		if location == nil || strings.TrimSpace(*location) == "" {
			patch.ClearLocation = true
		} else {
			patch.Location = trimPtr(location)
		}
	}

	if len(req.Price) > 0 {
		price, err := ParsePrice(req.Price)
		if err != nil {
			return patch, err
		}
		if price == nil {
			patch.ClearPrice = true
		} else {
			patch.Price = price
		}
	}

	if len(req.Contact) > 0 {
		contact, err := v.parseContact(req.Contact)
		if err != nil {
			return patch, err
		}
		if contact == "" {
			patch.ClearContact = true
		} else {
			patch.Contact = &contact
		}
	}

	return patch, nil
}

// ParsePrice приводит цену к неотрицательному целому
// Принимает JSON число или строку с числом; дробная часть отбрасывается.
// null и пустая строка означают отсутствие цены
func ParsePrice(raw json.RawMessage) (*int64, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, jsonNull) {
		return nil, nil
	}

	var text string
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &text); err != nil {
			return nil, fmt.Errorf("price: must be a number")
		}
		text = strings.TrimSpace(text)
		if text == "" {
			return nil, nil
		}
	} else {
		text = string(raw)
	}

	value, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return nil, fmt.Errorf("price: must be a number")
	}

	value = math.Trunc(value)
	if value < 0 {
		return nil, fmt.Errorf("price: must not be negative")
	}
	if value > float64(MaxPrice) {
		return nil, fmt.Errorf("price: is too large")
	}

	price := int64(value)
	return &price, nil
}

func (v *PostValidator) parseContact(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if bytes.Equal(raw, jsonNull) {
		return "", nil
	}

	var text string
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &text); err != nil {
			return "", fmt.Errorf("contact: must be a string")
		}
	} else {
		// контакт может прийти числом
		var number json.Number
		if err := json.Unmarshal(raw, &number); err != nil {
			return "", fmt.Errorf("contact: must be a string")
		}
		text = number.String()
	}

	return NormalizeContact(text, v.region)
}

func decodeString(raw json.RawMessage) (*string, error) {
	var value *string
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, fmt.Errorf("must be a string")
	}
	return value, nil
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	return &trimmed
}
