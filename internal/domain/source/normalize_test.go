package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		p, err := Normalize(map[string]any{"bookSourceUrl": "https://a.example"})
		require.NoError(t, err)
		assert.Equal(t, "https://a.example", p[KeyName])
		assert.Equal(t, "", p[KeyGroup])
		assert.Equal(t, 0, p[KeyType])
		assert.Equal(t, true, p[KeyEnabled])
	})

	t.Run("enabled only false when literally false", func(t *testing.T) {
		p, err := Normalize(map[string]any{"bookSourceUrl": "u", "enabled": false})
		require.NoError(t, err)
		assert.Equal(t, false, p[KeyEnabled])

		p, err = Normalize(map[string]any{"bookSourceUrl": "u", "enabled": 0})
		require.NoError(t, err)
		assert.Equal(t, true, p[KeyEnabled])
	})

	t.Run("unknown keys preserved", func(t *testing.T) {
		in := map[string]any{"bookSourceUrl": "u", "custom": []any{"x"}}
		p, err := Normalize(in)
		require.NoError(t, err)
		assert.Equal(t, []any{"x"}, p["custom"])
		_, touched := in[KeyName]
		assert.False(t, touched)
	})

	t.Run("type coercion", func(t *testing.T) {
		for _, v := range []any{int64(0), float64(0), "0", nil} {
			p, err := Normalize(map[string]any{"bookSourceUrl": "u", "bookSourceType": v})
			require.NoError(t, err, "%v", v)
			assert.Equal(t, 0, p[KeyType])
		}
		p, err := Normalize(map[string]any{"bookSourceUrl": "u", "bookSourceType": "2"})
		require.NoError(t, err)
		assert.Equal(t, 2, p[KeyType])
	})

	t.Run("missing url", func(t *testing.T) {
		_, err := Normalize(map[string]any{"bookSourceName": "x"})
		assert.ErrorIs(t, err, ErrInvalidSource)
		_, err = Normalize("not an object")
		assert.ErrorIs(t, err, ErrInvalidSource)
	})
}

func TestValidateRejectsNonText(t *testing.T) {
	_, err := Validate(map[string]any{"bookSourceUrl": "u", "bookSourceType": int64(1)})
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestDecode(t *testing.T) {
	p, err := Validate(map[string]any{
		"bookSourceUrl": "https://a.example",
		"searchUrl":     "/s?q={{key}}",
		"header":        `{"Referer":"https://a.example"}`,
		"ruleSearch":    map[string]any{"bookList": ".item", "name": "a@text"},
		"ruleToc":       map[string]any{"chapterList": "li", "nextTocUrl": "a.next@href"},
	})
	require.NoError(t, err)

	src, err := Decode(p)
	require.NoError(t, err)
	assert.Equal(t, "https://a.example", src.URL)
	assert.True(t, src.Enabled)
	assert.True(t, src.Searchable())
	assert.Equal(t, ".item", src.Search.BookList)
	assert.Equal(t, "a.next@href", src.Toc.NextTocURL)
	assert.Nil(t, src.Content)
	assert.Equal(t, `{"Referer":"https://a.example"}`, src.Header)
}
