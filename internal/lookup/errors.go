package lookup

import (
	"errors"
	"fmt"
)

// Category classifies a lookup failure.
type Category string

const (
	CategoryNotFound    Category = "not_found"
	CategoryTimeout     Category = "timeout"
	CategoryBadData     Category = "bad_data"
	CategoryOutage      Category = "outage"
	CategoryRateLimited Category = "rate_limited"
)

var (
	// ErrNotFound means the service has no record for the ISBN.
	ErrNotFound = errors.New("book not found")

	// ErrRateLimited means the local lookup budget for the window is spent.
	ErrRateLimited = errors.New("lookup rate limit exceeded")
)

// Error is a categorized failure from the remote service.
type Error struct {
	Category   Category
	ISBN       string
	Underlying error
}

func (e *Error) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("lookup %s [%s]: %v", e.ISBN, e.Category, e.Underlying)
	}
	return fmt.Sprintf("lookup %s [%s]", e.ISBN, e.Category)
}

func (e *Error) Unwrap() error {
	return e.Underlying
}

// CategoryOf extracts the failure category, defaulting to outage.
func CategoryOf(err error) Category {
	var le *Error
	switch {
	case errors.As(err, &le):
		return le.Category
	case errors.Is(err, ErrNotFound):
		return CategoryNotFound
	case errors.Is(err, ErrRateLimited):
		return CategoryRateLimited
	default:
		return CategoryOutage
	}
}
