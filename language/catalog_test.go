package language

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_KeepsDocumentOrder(t *testing.T) {
	c, err := Parse([]byte(`{"ZH": "Chinese", "AR": "Arabic", "es": "Spanish"}`))
	require.NoError(t, err)

	assert.Equal(t, []string{"ZH", "AR", "ES"}, c.Codes())
}

func TestParse_LanguageCodesKey(t *testing.T) {
	doc := `
prefix: ignored
language_codes:
  EN-US: English (American)
  DE: German
`
	c, err := Parse([]byte(doc))
	require.NoError(t, err)

	assert.Equal(t, 2, c.Len())
	assert.Equal(t, []string{"EN-US", "DE"}, c.Codes())
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"empty", ``, "empty document"},
		{"list", `["EN"]`, "must be a mapping"},
		{"nested value", `{"EN": {"name": "English"}}`, "must be a string"},
		{"duplicate after normalising", `{"en": "English", "EN": "English"}`, "duplicate code"},
		{"no entries", `{}`, "catalog is empty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestDefaultCatalog(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	for _, code := range Popular {
		assert.True(t, c.Contains(code), "default catalog should contain %s", code)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "languages.yaml")
	require.NoError(t, os.WriteFile(path, []byte("FR: French\nIT: Italian\n"), 0644))

	c, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"FR", "IT"}, c.Codes())

	_, err = LoadFile(filepath.Join(dir, "missing.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not read language file")
}

func TestLookup(t *testing.T) {
	c, err := Parse([]byte(`{"PT-BR": "Portuguese (Brazilian)"}`))
	require.NoError(t, err)

	e, err := c.Lookup(" pt-br ")
	require.NoError(t, err)
	assert.Equal(t, Entry{Code: "PT-BR", Name: "Portuguese (Brazilian)"}, e)

	_, err = c.Lookup("XX")
	assert.ErrorIs(t, err, ErrUnknownCode)
}

func TestSortedByName(t *testing.T) {
	c, err := Parse([]byte(`{"ZH-HANS": "Chinese", "AR": "Arabic", "DE": "German", "ZH": "Chinese"}`))
	require.NoError(t, err)

	got := c.SortedByName()
	want := []Entry{
		{Code: "AR", Name: "Arabic"},
		{Code: "ZH-HANS", Name: "Chinese"},
		{Code: "ZH", Name: "Chinese"},
		{Code: "DE", Name: "German"},
	}
	assert.Equal(t, want, got)
	// Equal names keep catalog order and the catalog itself is untouched.
	assert.Equal(t, []string{"ZH-HANS", "AR", "DE", "ZH"}, c.Codes())
}

func catalogOf(t *testing.T, entries ...Entry) *Catalog {
	t.Helper()
	c, err := NewCatalog(entries)
	require.NoError(t, err)
	return c
}

func bigCatalog(t *testing.T, n int) *Catalog {
	t.Helper()
	entries := make([]Entry, 0, n)
	for i := 0; i < n; i++ {
		entries = append(entries, Entry{Code: fmt.Sprintf("X%02d", i), Name: fmt.Sprintf("Lang %d", i)})
	}
	return catalogOf(t, entries...)
}
