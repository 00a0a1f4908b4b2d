// Package store persists courses and their sub-courses.
//
// Stores report storage facts through pkg/platform/sentinel:
//   - ErrNotFound when a course or sub-course does not exist
//   - ErrAlreadyUsed when a slug is taken in its scope
//   - ErrScopeMismatch when a reorder names an id outside its scope
//
// Multi-step operations are made atomic by the caller's tx.Runner; single
// calls validate fully before writing.
package store

import (
	"fmt"

	"academy/pkg/platform/sentinel"
)

func notFound(kind string) error {
	return fmt.Errorf("%s: %w", kind, sentinel.ErrNotFound)
}

func slugTaken(slug string) error {
	return fmt.Errorf("slug %q: %w", slug, sentinel.ErrAlreadyUsed)
}
