package service

import (
	"errors"
	"strconv"

	dErrors "academy/pkg/domain-errors"
	"academy/pkg/platform/sentinel"
)

// translate maps store sentinels to domain errors. Coded errors pass through.
func translate(err error, action string) error {
	if _, ok := dErrors.As(err); ok {
		return err
	}
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "certificate not found")
	case errors.Is(err, sentinel.ErrAlreadyUsed):
		return dErrors.FieldError(dErrors.CodeDuplicateCode, "certificate_code", "has already been used")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to "+action)
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
