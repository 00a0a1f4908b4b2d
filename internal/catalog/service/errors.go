package service

import (
	"errors"
	"strconv"

	id "academy/pkg/domain"
	dErrors "academy/pkg/domain-errors"
	"academy/pkg/platform/sentinel"
)

// translate maps store sentinels to domain errors. Errors that already carry
// a code pass through.
func translate(err error, kind, action string) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, kind+" not found")
	case errors.Is(err, sentinel.ErrAlreadyUsed):
		return dErrors.FieldError(dErrors.CodeDuplicateSlug, "slug", "has already been taken")
	case errors.Is(err, sentinel.ErrScopeMismatch):
		return dErrors.New(dErrors.CodeInvalidScope, kind+" does not belong to this course")
	}
	if _, ok := dErrors.As(err); ok {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to "+action)
}

// internalUnlessCoded wraps errors escaping a transaction (commit failures)
// that do not already carry a domain code.
func internalUnlessCoded(err error, action string) error {
	if _, ok := dErrors.As(err); ok {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to "+action)
}

// asValidation turns a model invariant failure into a client error.
func asValidation(err error) error {
	if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
		return dErrors.New(dErrors.CodeValidation, err.Error())
	}
	return err
}

type comparableID interface {
	id.CourseID | id.SubCourseID
}

func checkReorder[T comparableID](ids []T) error {
	if len(ids) == 0 {
		return dErrors.Validation("ids", "is required")
	}
	seen := make(map[T]struct{}, len(ids))
	for _, v := range ids {
		if _, dup := seen[v]; dup {
			return dErrors.Validation("ids", "must not contain duplicates")
		}
		seen[v] = struct{}{}
	}
	return nil
}

func boolOr(v *bool, fallback bool) bool {
	if v == nil {
		return fallback
	}
	return *v
}

func boolString(b bool) string {
	return strconv.FormatBool(b)
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
