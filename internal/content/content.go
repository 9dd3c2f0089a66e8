// Package content loads the static marketing data compiled into the binary:
// the service catalog, the country list and the translation dictionaries.
package content

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/way-19/consulting19/internal/domain"
)

//go:embed data/*.yaml locales/*.yaml
var embedded embed.FS

// Bundle is the parsed static content.
type Bundle struct {
	Catalog   *domain.Catalog
	Countries []domain.Country
	// Locales maps a language code to its key/value dictionary.
	Locales map[string]map[string]string

	countryIndex map[string]int
}

// Load parses the embedded content.
func Load() (*Bundle, error) {
	return LoadFS(embedded)
}

// LoadFS parses content from fsys, which must contain data/catalog.yaml,
// data/countries.yaml and one locales/<lang>.yaml per language.
func LoadFS(fsys fs.FS) (*Bundle, error) {
	var offerings []domain.ServiceOffering
	if err := decodeFile(fsys, "data/catalog.yaml", &offerings); err != nil {
		return nil, err
	}
	catalog, err := domain.NewCatalog(offerings)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	var countries []domain.Country
	if err := decodeFile(fsys, "data/countries.yaml", &countries); err != nil {
		return nil, err
	}
	index, err := indexCountries(countries)
	if err != nil {
		return nil, err
	}

	locales, err := loadLocales(fsys)
	if err != nil {
		return nil, err
	}

	return &Bundle{
		Catalog:      catalog,
		Countries:    countries,
		Locales:      locales,
		countryIndex: index,
	}, nil
}

// Country returns the country with the given code (case-insensitive).
func (b *Bundle) Country(code string) (*domain.Country, bool) {
	i, ok := b.countryIndex[strings.ToLower(code)]
	if !ok {
		return nil, false
	}
	return &b.Countries[i], true
}

// Languages returns the codes of the loaded dictionaries, sorted.
func (b *Bundle) Languages() []string {
	langs := make([]string, 0, len(b.Locales))
	for lang := range b.Locales {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}

// AvailableCountries counts the countries open for company formation.
func (b *Bundle) AvailableCountries() int {
	n := 0
	for _, c := range b.Countries {
		if c.Available {
			n++
		}
	}
	return n
}

func decodeFile(fsys fs.FS, name string, out any) error {
	raw, err := fs.ReadFile(fsys, name)
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := yaml.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	return nil
}

func indexCountries(countries []domain.Country) (map[string]int, error) {
	index := make(map[string]int, len(countries))
	for i := range countries {
		c := &countries[i]
		c.Code = strings.ToLower(c.Code)
		if c.Code == "" {
			return nil, fmt.Errorf("country %d: empty code", i)
		}
		if _, dup := index[c.Code]; dup {
			return nil, fmt.Errorf("country %q: duplicate code", c.Code)
		}

		seen := make(map[string]struct{}, len(c.Packages))
		for _, p := range c.Packages {
			if p.ID == "" {
				return nil, fmt.Errorf("country %q: package with empty id", c.Code)
			}
			if _, dup := seen[p.ID]; dup {
				return nil, fmt.Errorf("country %q: duplicate package %q", c.Code, p.ID)
			}
			if p.Price < 0 {
				return nil, fmt.Errorf("country %q: package %q has negative price", c.Code, p.ID)
			}
			seen[p.ID] = struct{}{}
		}
		sort.SliceStable(c.Packages, func(a, b int) bool {
			return c.Packages[a].Order < c.Packages[b].Order
		})
		index[c.Code] = i
	}
	return index, nil
}

func loadLocales(fsys fs.FS) (map[string]map[string]string, error) {
	files, err := fs.Glob(fsys, "locales/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("list locales: %w", err)
	}
	locales := make(map[string]map[string]string, len(files))
	for _, name := range files {
		dict := map[string]string{}
		if err := decodeFile(fsys, name, &dict); err != nil {
			return nil, err
		}
		lang := strings.TrimSuffix(path.Base(name), ".yaml")
		locales[lang] = dict
	}
	return locales, nil
}
