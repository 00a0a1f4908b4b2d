package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasCode(t *testing.T) {
	t.Run("matches outer code", func(t *testing.T) {
		err := New(CodeNotFound, "course not found")
		assert.True(t, HasCode(err, CodeNotFound))
		assert.False(t, HasCode(err, CodeConflict))
	})

	t.Run("matches wrapped code", func(t *testing.T) {
		inner := New(CodeDuplicateSlug, "slug taken")
		outer := Wrap(inner, CodeConflict, "failed to create course")
		assert.True(t, HasCode(outer, CodeConflict))
		assert.True(t, HasCode(outer, CodeDuplicateSlug))
	})

	t.Run("sees through fmt wrapping", func(t *testing.T) {
		err := fmt.Errorf("context: %w", New(CodeInvalidScope, "foreign id"))
		assert.True(t, Is(err, CodeInvalidScope))
	})

	t.Run("plain errors carry no code", func(t *testing.T) {
		assert.False(t, HasCode(errors.New("boom"), CodeInternal))
		assert.Equal(t, CodeInternal, CodeOf(errors.New("boom")))
	})
}

func TestValidationFields(t *testing.T) {
	err := ValidationFields(map[string][]string{
		"title": {"is required"},
		"image": {"is required"},
	})
	require.True(t, HasCode(err, CodeValidation))
	assert.Equal(t, "image is required", err.Error())
	assert.Equal(t, []string{"is required"}, FieldErrors(err)["title"])
}

func TestValidationSingleField(t *testing.T) {
	err := Validation("certificate_code", "empty code")
	assert.Equal(t, "empty code", err.Error())
	assert.Equal(t, map[string][]string{"certificate_code": {"empty code"}}, FieldErrors(err))
}

func TestToHTTPStatus(t *testing.T) {
	cases := map[Code]int{
		CodeValidation:          http.StatusUnprocessableEntity,
		CodeNotFound:            http.StatusNotFound,
		CodeDuplicateSlug:       http.StatusConflict,
		CodeDuplicateCode:       http.StatusConflict,
		CodeInvalidScope:        http.StatusUnprocessableEntity,
		CodeGenerationExhausted: http.StatusServiceUnavailable,
		CodeInternal:            http.StatusInternalServerError,
		Code("unknown"):         http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, ToHTTPStatus(code), "code %s", code)
	}
}

func TestFieldError(t *testing.T) {
	err := FieldError(CodeDuplicateSlug, "slug", "has already been taken")
	assert.True(t, HasCode(err, CodeDuplicateSlug))
	assert.Equal(t, map[string][]string{"slug": {"has already been taken"}}, FieldErrors(err))
}
