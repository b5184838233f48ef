package book

import (
	"encoding/json"
	"errors"
)

var (
	// ErrNotFound is returned when a lookup has nothing to report.
	ErrNotFound = errors.New("book not found")
	// ErrInvalidArgument is returned for malformed query parameters.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrStoreUnavailable is returned when the document store cannot be reached.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// Book represents a book document. ID is assigned by the store and is never
// written into the document itself.
type Book struct {
	ID            int64   `json:"id,omitempty"`
	Title         string  `json:"title" validate:"required,max=500"`
	Author        string  `json:"author" validate:"max=300"`
	Genre         string  `json:"genre" validate:"max=100"`
	PublishedYear int     `json:"published_year"`
	Price         float64 `json:"price" validate:"gte=0"`
	InStock       bool    `json:"in_stock"`
	Pages         int     `json:"pages,omitempty" validate:"gte=0"`
	Publisher     string  `json:"publisher,omitempty" validate:"max=300"`
}

// Summary is the title/author/price projection of a book.
type Summary struct {
	Title  string  `json:"title"`
	Author string  `json:"author"`
	Price  float64 `json:"price"`
}

// GenreAverage is the mean price of the books in one genre.
type GenreAverage struct {
	Genre        string  `json:"genre"`
	AveragePrice float64 `json:"averagePrice"`
}

// AuthorCount is the number of books written by one author.
type AuthorCount struct {
	Author    string `json:"author"`
	BookCount int    `json:"bookCount"`
}

// DecadeCount is the number of books published in one decade.
type DecadeCount struct {
	Decade    int `json:"decade"`
	BookCount int `json:"bookCount"`
}

// UpdateResult reports how many documents matched and were changed.
type UpdateResult struct {
	MatchedCount  int64 `json:"matchedCount"`
	ModifiedCount int64 `json:"modifiedCount"`
}

// DeleteResult reports how many documents were removed.
type DeleteResult struct {
	DeletedCount int64 `json:"deletedCount"`
}

// IndexField is one key of an index; Direction is 1 (ascending) or -1 (descending).
type IndexField struct {
	Field     string `json:"field" validate:"required"`
	Direction int    `json:"direction" validate:"oneof=1 -1"`
}

// IndexSpec describes an index over one or more document fields.
type IndexSpec struct {
	Fields []IndexField `json:"fields" validate:"required,min=1,max=8,dive"`
	Unique bool         `json:"unique,omitempty"`
}

// Explain holds the execution statistics reported by the store for a query.
// Plan is the raw store plan and is not interpreted further.
type Explain struct {
	Plan            json.RawMessage `json:"plan"`
	PlanningTimeMS  float64         `json:"planningTimeMs"`
	ExecutionTimeMS float64         `json:"executionTimeMs"`
	NodeType        string          `json:"nodeType"`
	IndexName       string          `json:"indexName,omitempty"`
	ActualRows      int64           `json:"actualRows"`
}

// UsesIndex reports whether any plan node scanned an index.
func (e Explain) UsesIndex() bool {
	return e.IndexName != ""
}
