package dataview

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStateQueryRoundTrip(t *testing.T) {
	values, err := url.ParseQuery("q=+water+&f.status=active&f.category=all&page=3&other=1")
	assert.NoError(t, err)

	st := StateFromQuery(values)
	assert.Equal(t, "water", st.Search)
	assert.Equal(t, 3, st.Page)
	assert.Equal(t, "active", st.Filter("status"))
	assert.Equal(t, AllValue, st.Filter("category"))
	assert.Equal(t, AllValue, st.Filter("missing"))
	assert.True(t, st.Active())

	assert.Equal(t, "f.status=active&page=3&q=water", st.Query().Encode())
	assert.Equal(t, "f.status=active&q=water", st.WithPage(1).Query().Encode())
	assert.Equal(t, 3, st.Page, "WithPage copies")
}

func TestStateIgnoresBadPage(t *testing.T) {
	st := StateFromQuery(url.Values{"page": {"-4"}})
	assert.Equal(t, 1, st.Page)
	st = StateFromQuery(url.Values{"page": {"abc"}})
	assert.Equal(t, 1, st.Page)
	assert.False(t, st.Active())
}
