package dto

import (
	"encoding/base64"
	"errors"

	jsoniter "github.com/json-iterator/go"

	"github.com/jsamuelsen/library-circulation/internal/domain"
)

// DefaultLimit is the default number of books per page.
const DefaultLimit = 20

// MaxLimit is the maximum allowed books per page.
const MaxLimit = 100

// ErrInvalidCursor is returned when a page cursor cannot be decoded.
var ErrInvalidCursor = errors.New("invalid cursor")

var cursorJSON = jsoniter.ConfigFastest

// PaginationRequest holds GET /catalog query parameters.
type PaginationRequest struct {
	// Cursor is an opaque string from a previous response's NextCursor.
	Cursor string `form:"cursor"`

	// Limit is the maximum number of books to return (1-100, default 20).
	Limit int `form:"limit" validate:"omitempty,gte=1,lte=100"`
}

// GetLimit returns the limit with defaults applied.
func (p *PaginationRequest) GetLimit() int {
	switch {
	case p.Limit <= 0:
		return DefaultLimit
	case p.Limit > MaxLimit:
		return MaxLimit
	default:
		return p.Limit
	}
}

// After returns the book ID the requested page starts after.
// Zero means the first page.
func (p *PaginationRequest) After() (int64, error) {
	if p.Cursor == "" {
		return 0, nil
	}

	return DecodeCursor(p.Cursor)
}

// PaginatedResponse is a page of items with a cursor to the next one.
type PaginatedResponse[T any] struct {
	Items []T `json:"items"`

	// NextCursor is empty on the last page.
	NextCursor string `json:"nextCursor,omitempty"`

	HasMore bool `json:"hasMore"`
}

// NewPaginatedResponse trims items to limit. Pass limit+1 items so a further
// page can be detected; cursorOf yields the position of the last item kept.
func NewPaginatedResponse[T any](items []T, limit int, cursorOf func(T) int64) *PaginatedResponse[T] {
	if items == nil {
		items = []T{}
	}

	hasMore := len(items) > limit
	if hasMore {
		items = items[:limit]
	}

	resp := &PaginatedResponse[T]{Items: items, HasMore: hasMore}

	if hasMore && len(items) > 0 && cursorOf != nil {
		resp.NextCursor = EncodeCursor(cursorOf(items[len(items)-1]))
	}

	return resp
}

type cursorData struct {
	After int64 `json:"after"`
}

// EncodeCursor encodes the last seen book ID as an opaque cursor.
func EncodeCursor(after int64) string {
	raw, err := cursorJSON.Marshal(cursorData{After: after})
	if err != nil {
		return ""
	}

	return base64.URLEncoding.EncodeToString(raw)
}

// DecodeCursor reverses EncodeCursor.
func DecodeCursor(encoded string) (int64, error) {
	raw, err := base64.URLEncoding.DecodeString(encoded)
	if err != nil {
		return 0, ErrInvalidCursor
	}

	var data cursorData
	if err := cursorJSON.Unmarshal(raw, &data); err != nil || data.After < 0 {
		return 0, ErrInvalidCursor
	}

	return data.After, nil
}

// NewBookPage cuts one page out of a catalog ordered by ID.
func NewBookPage(books []domain.Book, req *PaginationRequest) (*PaginatedResponse[BookResponse], error) {
	after, err := req.After()
	if err != nil {
		return nil, err
	}

	limit := req.GetLimit()
	page := make([]BookResponse, 0, limit+1)

	for i := range books {
		if books[i].ID <= after {
			continue
		}

		page = append(page, NewBookResponse(&books[i]))
		if len(page) > limit {
			break
		}
	}

	return NewPaginatedResponse(page, limit, func(b BookResponse) int64 { return b.ID }), nil
}
