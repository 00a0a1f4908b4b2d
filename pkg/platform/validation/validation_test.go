package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "academy/pkg/domain-errors"
)

type sample struct {
	Title string   `json:"title" validate:"required,max=5"`
	IDs   []string `json:"ids" validate:"required,min=1,unique,dive,uuid"`
	Date  string   `json:"issue_date" validate:"omitempty,datetime=2006-01-02"`
	Order *int     `json:"order" validate:"omitempty,gte=0"`
}

func TestStruct(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, Struct(&sample{Title: "Go", IDs: []string{"6f1c2a8e-4d0b-4c6e-9a57-2b1f0c9d3e11"}}))
	})

	t.Run("reports json names", func(t *testing.T) {
		neg := -1
		err := Struct(&sample{Title: "too long", IDs: []string{"a", "a"}, Date: "10/01/2024", Order: &neg})
		require.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
		fields := dErrors.FieldErrors(err)
		assert.Equal(t, []string{"must be at most 5 characters"}, fields["title"])
		assert.Equal(t, []string{"must not contain duplicates"}, fields["ids"])
		assert.Equal(t, []string{"must be a date formatted as YYYY-MM-DD"}, fields["issue_date"])
		assert.Equal(t, []string{"must be greater than or equal to 0"}, fields["order"])
	})

	t.Run("dive reports element path", func(t *testing.T) {
		err := Struct(&sample{Title: "Go", IDs: []string{"nope"}})
		assert.Equal(t, []string{"must be a valid UUID"}, dErrors.FieldErrors(err)["ids[0]"])
	})
}

func TestMerge(t *testing.T) {
	assert.NoError(t, Merge(nil, nil))

	err := Merge(dErrors.Validation("title", "is required"), nil, dErrors.Validation("slug", "is invalid"))
	assert.Len(t, dErrors.FieldErrors(err), 2)

	boom := errors.New("boom")
	assert.Equal(t, boom, Merge(dErrors.Validation("title", "x"), boom))
}
