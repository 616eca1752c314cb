package domain

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrTitleRequired  = errors.New("title is required")
	ErrInvalidDueDate = errors.New("invalid due date")
	ErrTodoNotFound   = errors.New("todo not found")
	ErrPersistence    = errors.New("persistence failure")
)

// dueDateLayouts are tried in order when parsing a due date sent by a client.
// A bare date is what an HTML date input submits.
var dueDateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

type Todo struct {
	ID        int64
	Title     string
	CreatedAt time.Time
	DueDate   *time.Time
	ImageURL  *string
	ImageAlt  *string
}

// Image is the result of a successful enrichment lookup.
type Image struct {
	URL string
	Alt string
}

func (t *Todo) AttachImage(img *Image) {
	if img == nil {
		t.ImageURL = nil
		t.ImageAlt = nil
		return
	}

	url, alt := img.URL, img.Alt

	t.ImageURL = &url
	t.ImageAlt = &alt
}

func (t *Todo) HasImage() bool {
	return t.ImageURL != nil
}

func (t *Todo) IsOverdue(now time.Time) bool {
	return t.DueDate != nil && t.DueDate.Before(now)
}

func (t *Todo) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"title":      t.Title,
		"created_at": t.CreatedAt,
		"due_date":   t.DueDate,
		"image_url":  t.ImageURL,
		"image_alt":  t.ImageAlt,
	}
}

func ValidateTitle(title *string) error {
	if title == nil || strings.TrimSpace(*title) == "" {
		return ErrTitleRequired
	}

	return nil
}

// ParseDueDate returns nil for an empty value.
func ParseDueDate(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)

	if value == "" {
		return nil, nil
	}

	for _, layout := range dueDateLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			utc := parsed.UTC()
			return &utc, nil
		}
	}

	return nil, ErrInvalidDueDate
}
