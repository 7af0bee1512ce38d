package domain

import "strings"

// Catalog field limits.
const (
	MaxTitleLength  = 200
	MaxAuthorLength = 100
	ISBNLength      = 13
)

// Book is a catalog entry with its circulating copy counts.
// AvailableCopies stays within [0, TotalCopies].
type Book struct {
	ID              int64
	Title           string
	Author          string
	ISBN            string
	TotalCopies     int
	AvailableCopies int
}

// IsAvailable reports whether at least one copy can be borrowed.
func (b Book) IsAvailable() bool {
	return b.AvailableCopies > 0
}

// SearchKind selects the field a catalog search matches against.
type SearchKind string

// Supported search kinds.
const (
	SearchByTitle  SearchKind = "title"
	SearchByAuthor SearchKind = "author"
	SearchByISBN   SearchKind = "isbn"
)

// Matches reports whether the book satisfies a search on kind for the
// already-trimmed term. Unknown kinds never match.
func (b Book) Matches(kind SearchKind, term string) bool {
	switch kind {
	case SearchByTitle:
		return containsFold(b.Title, term)
	case SearchByAuthor:
		return containsFold(b.Author, term)
	case SearchByISBN:
		return b.ISBN == term
	default:
		return false
	}
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// IsValidISBN reports whether s is exactly 13 ASCII digits.
func IsValidISBN(s string) bool {
	return isDigits(s, ISBNLength)
}

func isDigits(s string, n int) bool {
	if len(s) != n {
		return false
	}

	for i := range len(s) {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}

	return true
}
