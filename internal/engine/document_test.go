package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/storecore/domain"
)

func TestIDsCoercesCanonicalForms(t *testing.T) {
	doc, err := ParseDocument([]byte(`{"recommendations":["7", 12, 3.0, "07", "+7", "abc", 4.5, null, true, ["1"]]}`))
	require.NoError(t, err)

	ids, present, err := doc.IDs("recommendations")
	require.NoError(t, err)
	assert.True(t, present)
	assert.Equal(t, []domain.ProductID{7, 12, 3}, ids)
}

func TestIDsMissingOrNullField(t *testing.T) {
	doc, err := ParseDocument([]byte(`{"global_trending":null}`))
	require.NoError(t, err)

	for _, field := range []string{"global_trending", "recommendations"} {
		ids, present, err := doc.IDs(field)
		require.NoError(t, err)
		assert.False(t, present, field)
		assert.Empty(t, ids)
	}
}

func TestIDsRejectsNonArray(t *testing.T) {
	doc, err := ParseDocument([]byte(`{"recommendations":"1,2"}`))
	require.NoError(t, err)

	_, present, err := doc.IDs("recommendations")
	assert.True(t, present)
	assert.Error(t, err)
}

func TestParseDocumentShape(t *testing.T) {
	for _, input := range []string{``, `  `, `[]`, `"x"`, `null`, `{} {}`, `{"a":1`} {
		_, err := ParseDocument([]byte(input))
		assert.Error(t, err, input)
	}

	doc, err := ParseDocument([]byte("\n {\"tag_trending\":[1],\"error\":\"no data\"}\n"))
	require.NoError(t, err)
	msg, ok := doc.String("error")
	assert.True(t, ok)
	assert.Equal(t, "no data", msg)
}

func TestStringsSkipsNonStrings(t *testing.T) {
	doc, err := ParseDocument([]byte(`{"favorite_categories":["beauty", 3, "groceries"]}`))
	require.NoError(t, err)

	cats, present, err := doc.Strings("favorite_categories")
	require.NoError(t, err)
	assert.True(t, present)
	assert.Equal(t, []string{"beauty", "groceries"}, cats)
}
