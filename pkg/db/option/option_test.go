package option

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOrdering(t *testing.T) {
	allowed := map[string]string{"unit_price": "p.unit_price"}

	sort := ParseOrdering("-unit_price", allowed)
	require.NotNil(t, sort)
	assert.Equal(t, "p.unit_price", sort.Column)
	assert.True(t, sort.Desc)

	sort = ParseOrdering("unit_price", allowed)
	require.NotNil(t, sort)
	assert.False(t, sort.Desc)

	assert.Nil(t, ParseOrdering("inventory", allowed))
	assert.Nil(t, ParseOrdering("-", allowed))
	assert.Nil(t, ParseOrdering("", allowed))
}

func TestWithQuerySortBy(t *testing.T) {
	allowed := map[string]bool{"title": true}

	sort := WithQuerySortBy("Title", "DESC", allowed)
	require.NotNil(t, sort)
	assert.Equal(t, "title", sort.Column)
	assert.True(t, sort.Desc)

	assert.Nil(t, WithQuerySortBy("id; drop table", "asc", allowed))
}

func TestParseOrderings(t *testing.T) {
	allowed := map[string]string{"first_name": "c.first_name", "last_name": "c.last_name"}

	sorts := ParseOrderings("first_name, -last_name,phone", allowed)
	require.Len(t, sorts, 2)
	assert.Equal(t, SortBy{Column: "c.first_name"}, sorts[0])
	assert.Equal(t, SortBy{Column: "c.last_name", Desc: true}, sorts[1])

	assert.Empty(t, ParseOrderings("", allowed))
}

func TestLikePatterns(t *testing.T) {
	assert.Equal(t, "%abc%", Contains("abc"))
	assert.Equal(t, "%!%%", Contains("%"))
	assert.Equal(t, "%a!_b%", Contains("a_b"))
	assert.Equal(t, "%1!!%", Contains("1!"))
	assert.Equal(t, "jo!%%", StartsWith("jo%"))
}
