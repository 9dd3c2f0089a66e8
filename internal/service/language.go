package service

import (
	"context"
	"log/slog"

	"github.com/way-19/consulting19/internal/i18n"
	"github.com/way-19/consulting19/internal/repository"
)

// visitorStore scopes a PreferenceRepository to one visitor so it satisfies
// i18n.PreferenceStore.
type visitorStore struct {
	prefs     repository.PreferenceRepository
	visitorID string
}

func (s visitorStore) Get(ctx context.Context, key string) (string, error) {
	return s.prefs.Get(ctx, s.visitorID, key)
}

func (s visitorStore) Set(ctx context.Context, key, value string) error {
	return s.prefs.Set(ctx, s.visitorID, key, value)
}

// LanguageService exposes the visitor's language preference and the
// translator bound to it.
type LanguageService struct {
	prefs      repository.PreferenceRepository
	translator *i18n.Translator
	logger     *slog.Logger
}

// NewLanguageService creates a new language service.
func NewLanguageService(prefs repository.PreferenceRepository, translator *i18n.Translator, logger *slog.Logger) *LanguageService {
	return &LanguageService{
		prefs:      prefs,
		translator: translator,
		logger:     logger,
	}
}

// Localizer returns the visitor's localizer. An unreadable preference falls
// back to the default language.
func (s *LanguageService) Localizer(ctx context.Context, visitorID string) *i18n.Localizer {
	l, err := i18n.NewLocalizer(ctx, s.translator, visitorStore{prefs: s.prefs, visitorID: visitorID})
	if err != nil {
		s.logger.WarnContext(ctx, "language preference unavailable, using default",
			slog.String("error", err.Error()),
		)
	}
	return l
}

// Current returns the visitor's active language.
func (s *LanguageService) Current(ctx context.Context, visitorID string) i18n.Language {
	return s.Localizer(ctx, visitorID).Language()
}

// SetLanguage validates and persists the visitor's language.
func (s *LanguageService) SetLanguage(ctx context.Context, visitorID, code string) (i18n.Language, error) {
	l := s.Localizer(ctx, visitorID)
	if err := l.SetLanguage(ctx, code); err != nil {
		return l.Language(), mapDomainError(err)
	}
	s.logger.InfoContext(ctx, "language changed", slog.String("language", string(l.Language())))
	return l.Language(), nil
}

// Translate resolves keys in the visitor's language. Unknown keys map to
// themselves.
func (s *LanguageService) Translate(ctx context.Context, visitorID string, keys []string) (i18n.Language, map[string]string) {
	lang := s.Current(ctx, visitorID)
	return lang, s.translator.TranslateAll(lang, keys)
}
