// Package i18n implements the site's translation lookup and the visitor's
// persisted language preference.
package i18n

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// PreferenceKey is the fixed key the language preference is stored under.
const PreferenceKey = "consulting19-language"

// ErrUnsupportedLanguage is returned by SetLanguage for unknown codes.
var ErrUnsupportedLanguage = errors.New("unsupported language")

// Language is a supported UI language code.
type Language string

const (
	English    Language = "en"
	Turkish    Language = "tr"
	Portuguese Language = "pt"
	Spanish    Language = "es"
)

// DefaultLanguage is used when no valid preference exists.
const DefaultLanguage = English

// Supported returns every supported language in display order.
func Supported() []Language {
	return []Language{English, Turkish, Portuguese, Spanish}
}

// ParseLanguage validates code. Surrounding whitespace and case are
// ignored.
func ParseLanguage(code string) (Language, bool) {
	l := Language(strings.ToLower(strings.TrimSpace(code)))
	for _, s := range Supported() {
		if l == s {
			return l, true
		}
	}
	return "", false
}

// PreferenceStore is a string key/value store scoped to one visitor.
// Get returns "" with a nil error when the key is absent.
type PreferenceStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// Translator resolves dictionary keys. It is immutable and safe for
// concurrent use.
type Translator struct {
	dicts map[Language]map[string]string
}

// NewTranslator builds a translator from dictionaries keyed by language
// code. Dictionaries for unsupported codes are ignored.
func NewTranslator(locales map[string]map[string]string) *Translator {
	dicts := make(map[Language]map[string]string, len(locales))
	for code, dict := range locales {
		if lang, ok := ParseLanguage(code); ok {
			dicts[lang] = dict
		}
	}
	return &Translator{dicts: dicts}
}

// T returns the translation of key in lang, or key itself when there is
// none.
func (t *Translator) T(lang Language, key string) string {
	if v, ok := t.dicts[lang][key]; ok && v != "" {
		return v
	}
	return key
}

// TranslateAll resolves every key in lang.
func (t *Translator) TranslateAll(lang Language, keys []string) map[string]string {
	out := make(map[string]string, len(keys))
	for _, k := range keys {
		out[k] = t.T(lang, k)
	}
	return out
}

// Localizer binds a Translator to one visitor's preference.
type Localizer struct {
	translator *Translator
	store      PreferenceStore
	lang       Language
}

// NewLocalizer reads the stored preference. A missing, unparseable or
// unsupported value selects DefaultLanguage. A store error is returned
// alongside a usable Localizer set to DefaultLanguage.
func NewLocalizer(ctx context.Context, translator *Translator, store PreferenceStore) (*Localizer, error) {
	l := &Localizer{translator: translator, store: store, lang: DefaultLanguage}

	raw, err := store.Get(ctx, PreferenceKey)
	if err != nil {
		return l, fmt.Errorf("read language preference: %w", err)
	}
	if lang, ok := ParseLanguage(raw); ok {
		l.lang = lang
	}
	return l, nil
}

// Language returns the active language.
func (l *Localizer) Language() Language {
	return l.lang
}

// SetLanguage validates code, persists it and makes it active.
func (l *Localizer) SetLanguage(ctx context.Context, code string) error {
	lang, ok := ParseLanguage(code)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnsupportedLanguage, code)
	}
	if err := l.store.Set(ctx, PreferenceKey, string(lang)); err != nil {
		return fmt.Errorf("persist language preference: %w", err)
	}
	l.lang = lang
	return nil
}

// T translates key in the active language.
func (l *Localizer) T(key string) string {
	return l.translator.T(l.lang, key)
}
