package repository

import (
	"errors"
	"math"
	"strings"
)

var (
	// ErrNotFound is returned when no record matches.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateKey is returned when a unique index rejects a write.
	ErrDuplicateKey = errors.New("duplicate key")
)

const (
	// DefaultPageSize is used when a listing does not ask for a limit.
	DefaultPageSize = 10
	// MaxPageSize caps the number of records returned by one listing.
	MaxPageSize = 100
	// MaxPage keeps Offset from overflowing.
	MaxPage = math.MaxInt / MaxPageSize
)

// ListOptions selects one page of a listing.
type ListOptions struct {
	Page     int
	Limit    int
	Search   string
	Category string
}

// Normalize clamps the page and limit into their accepted ranges.
func (o ListOptions) Normalize() ListOptions {
	if o.Page < 1 {
		o.Page = 1
	}
	if o.Page > MaxPage {
		o.Page = MaxPage
	}
	if o.Limit < 1 {
		o.Limit = DefaultPageSize
	}
	if o.Limit > MaxPageSize {
		o.Limit = MaxPageSize
	}
	o.Search = strings.TrimSpace(o.Search)
	o.Category = strings.TrimSpace(o.Category)
	return o
}

// Offset returns the number of records to skip.
func (o ListOptions) Offset() int {
	return (o.Page - 1) * o.Limit
}

func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}
