package query

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"academy/internal/catalog/models"
)

func ints(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i + 1
	}
	return out
}

func TestPaginate(t *testing.T) {
	t.Run("empty input is page 1 of 1", func(t *testing.T) {
		p := Paginate([]int{}, 1, 9)
		assert.Empty(t, p.Items)
		assert.NotNil(t, p.Items)
		assert.Equal(t, 1, p.CurrentPage)
		assert.Equal(t, 1, p.TotalPages)
		assert.Equal(t, 0, p.Total)
	})

	t.Run("last partial page", func(t *testing.T) {
		p := Paginate(ints(10), 2, 9)
		assert.Equal(t, []int{10}, p.Items)
		assert.Equal(t, 2, p.CurrentPage)
		assert.Equal(t, 2, p.TotalPages)
	})

	t.Run("page past the end is clamped", func(t *testing.T) {
		p := Paginate(ints(10), 5, 9)
		assert.Equal(t, 2, p.CurrentPage)
		assert.Equal(t, []int{10}, p.Items)
	})

	t.Run("page below one is clamped", func(t *testing.T) {
		p := Paginate(ints(3), -4, 2)
		assert.Equal(t, 1, p.CurrentPage)
		assert.Equal(t, []int{1, 2}, p.Items)
	})

	t.Run("zero page size uses default", func(t *testing.T) {
		p := Paginate(ints(20), 1, 0)
		assert.Equal(t, DefaultPageSize, p.PageSize)
		assert.Len(t, p.Items, 9)
		assert.Equal(t, 3, p.TotalPages)
	})

	t.Run("exact multiple", func(t *testing.T) {
		p := Paginate(ints(18), 2, 9)
		assert.Equal(t, 2, p.TotalPages)
		assert.Equal(t, 10, p.Items[0])
	})

	t.Run("items are copied", func(t *testing.T) {
		src := ints(3)
		p := Paginate(src, 1, 9)
		p.Items[0] = 99
		assert.Equal(t, 1, src[0])
	})
}

func TestMapPage(t *testing.T) {
	p := MapPage(Paginate(ints(5), 2, 2), func(i int) string { return fmt.Sprint(i) })
	assert.Equal(t, []string{"3", "4"}, p.Items)
	assert.Equal(t, 2, p.CurrentPage)
	assert.Equal(t, 3, p.TotalPages)
	assert.Equal(t, 5, p.Total)
}

func TestFilterCourses(t *testing.T) {
	courses := []*models.Course{
		{Title: "Engines", Description: "Internal combustion"},
		{Title: "Avionics", Description: "Flight ENGINE controls"},
		{Title: "Welding", Description: "Joining metal"},
	}

	t.Run("search matches title or description ignoring case", func(t *testing.T) {
		got := FilterCourses(courses, Filter{Search: "engine"})
		require.Len(t, got, 2)
		assert.Equal(t, "Engines", got[0].Title)
		assert.Equal(t, "Avionics", got[1].Title)
	})

	t.Run("empty filter keeps everything", func(t *testing.T) {
		assert.Len(t, FilterCourses(courses, Filter{}), 3)
		assert.Len(t, FilterCourses(courses, Filter{Search: "   "}), 3)
	})

	t.Run("category excludes uncategorised courses", func(t *testing.T) {
		assert.Empty(t, FilterCourses(courses, Filter{Category: "news"}))
	})

	t.Run("no match", func(t *testing.T) {
		assert.Empty(t, FilterCourses(courses, Filter{Search: "pottery"}))
	})
}

type post struct {
	title    string
	category string
}

func (p post) FilterText() []string   { return []string{p.title} }
func (p post) FilterCategory() string { return p.category }

func TestApplyCategory(t *testing.T) {
	posts := []post{{"Launch", "news"}, {"Tips", "guides"}, {"Release", "news"}}
	got := Apply(posts, Filter{Category: "news"})
	assert.Equal(t, []post{{"Launch", "news"}, {"Release", "news"}}, got)

	got = Apply(posts, Filter{Category: "news", Search: "rel"})
	assert.Equal(t, []post{{"Release", "news"}}, got)
}

func TestClampPageSize(t *testing.T) {
	assert.Equal(t, DefaultPageSize, ClampPageSize(0))
	assert.Equal(t, 20, ClampPageSize(20))
	assert.Equal(t, MaxPageSize, ClampPageSize(1000))
}
