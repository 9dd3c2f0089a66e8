package content

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Embedded(t *testing.T) {
	b, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 6, b.Catalog.Len())
	web, ok := b.Catalog.Lookup("web-development")
	require.True(t, ok)
	assert.Equal(t, int64(5000), web.Price)
	custom, ok := b.Catalog.Lookup("custom")
	require.True(t, ok)
	assert.True(t, custom.IsCustomPriced())

	georgia, ok := b.Country("GEORGIA")
	require.True(t, ok)
	assert.True(t, georgia.Available)
	require.NotEmpty(t, georgia.Packages)
	for i := 1; i < len(georgia.Packages); i++ {
		assert.LessOrEqual(t, georgia.Packages[i-1].Order, georgia.Packages[i].Order)
	}

	for _, lang := range []string{"en", "tr", "pt", "es"} {
		require.Contains(t, b.Locales, lang)
		assert.NotEmpty(t, b.Locales[lang]["home"], "lang %s", lang)
	}
	assert.Equal(t, "Ana Sayfa", b.Locales["tr"]["home"])
	assert.Equal(t, []string{"en", "es", "pt", "tr"}, b.Languages())
	assert.Positive(t, b.AvailableCountries())
	assert.LessOrEqual(t, b.AvailableCountries(), len(b.Countries))
}

func minimalFS() fstest.MapFS {
	return fstest.MapFS{
		"data/catalog.yaml":   {Data: []byte("- {id: a, name: A, price: 10}\n")},
		"data/countries.yaml": {Data: []byte("- code: XX\n  packages:\n    - {id: p2, order: 2}\n    - {id: p1, order: 1}\n")},
		"locales/en.yaml":     {Data: []byte("home: Home\n")},
	}
}

func TestLoadFS_SortsPackagesAndLowercasesCodes(t *testing.T) {
	b, err := LoadFS(minimalFS())
	require.NoError(t, err)

	c, ok := b.Country("xx")
	require.True(t, ok)
	assert.Equal(t, "xx", c.Code)
	assert.Equal(t, "p1", c.Packages[0].ID)
	assert.Equal(t, "p2", c.Packages[1].ID)

	_, ok = b.Country("yy")
	assert.False(t, ok)
}

func TestLoadFS_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		data    string
		wantErr string
	}{
		{"duplicate service", "data/catalog.yaml", "- {id: a}\n- {id: a}\n", "duplicate id"},
		{"bad yaml", "data/catalog.yaml", "{{", "parse data/catalog.yaml"},
		{"duplicate country", "data/countries.yaml", "- {code: xx}\n- {code: XX}\n", "duplicate code"},
		{"duplicate package", "data/countries.yaml", "- code: xx\n  packages: [{id: p}, {id: p}]\n", "duplicate package"},
		{"negative package price", "data/countries.yaml", "- code: xx\n  packages: [{id: p, price: -5}]\n", "negative price"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys := minimalFS()
			fsys[tt.file] = &fstest.MapFile{Data: []byte(tt.data)}

			_, err := LoadFS(fsys)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadFS_MissingFile(t *testing.T) {
	fsys := minimalFS()
	delete(fsys, "data/countries.yaml")

	_, err := LoadFS(fsys)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read data/countries.yaml")
}
