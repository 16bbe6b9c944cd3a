package blog

import (
	"errors"
	"fmt"
)

var (
	ErrPostNotFound  = errors.New("post not found")
	ErrDuplicateSlug = errors.New("duplicate slug")
	ErrEmptySlug     = errors.New("empty slug")
)

// PostNotFoundError is returned by Resolve when no post carries the slug.
// It matches ErrPostNotFound under errors.Is.
type PostNotFoundError struct {
	Slug string
}

func (e *PostNotFoundError) Error() string {
	return fmt.Sprintf("post not found: %s", e.Slug)
}

func (e *PostNotFoundError) Is(target error) bool { return target == ErrPostNotFound }

// IsNotFound reports whether err is a resolver miss.
func IsNotFound(err error) bool { return errors.Is(err, ErrPostNotFound) }
