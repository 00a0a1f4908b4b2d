package sentinel

import "errors"

// Sentinel errors for storage facts. Stores return these (optionally wrapped)
// and services translate them into domain errors:
//   - ErrNotFound: the record does not exist
//   - ErrAlreadyUsed: a unique key (slug, certificate code) is taken or retired
//   - ErrScopeMismatch: a referenced record belongs to a different parent
//   - ErrUnavailable: the backing service is temporarily unreachable
//
// For validation errors (bad input, missing fields), use pkg/domain-errors directly.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyUsed   = errors.New("already used")
	ErrScopeMismatch = errors.New("scope mismatch")
	ErrUnavailable   = errors.New("unavailable")
)
