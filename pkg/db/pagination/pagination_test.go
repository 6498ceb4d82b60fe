package pagination

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOffsetAndLimit(t *testing.T) {
	p := Pagination{Page: 3}
	assert.Equal(t, 20, p.Offset())
	assert.Equal(t, DefaultPageSize, p.Limit())

	assert.Equal(t, 0, Pagination{Page: -2}.Offset())
}

func TestBuildPageLinks(t *testing.T) {
	base, err := url.Parse("/store/products/?collection_id=7")
	require.NoError(t, err)

	first := BuildPage([]int{1, 2}, 25, Pagination{Page: 1}, base)
	require.NotNil(t, first.Next)
	assert.Contains(t, *first.Next, "page=2")
	assert.Contains(t, *first.Next, "collection_id=7")
	assert.Nil(t, first.Previous)

	second := BuildPage([]int{1}, 25, Pagination{Page: 2}, base)
	require.NotNil(t, second.Previous)
	assert.NotContains(t, *second.Previous, "page=")

	last := BuildPage([]int{1}, 25, Pagination{Page: 3}, base)
	assert.Nil(t, last.Next)
}

func TestBuildPageNilResultsRenderEmpty(t *testing.T) {
	page := BuildPage[int](nil, 0, Pagination{}, nil)
	assert.NotNil(t, page.Results)
	assert.Empty(t, page.Results)
}
