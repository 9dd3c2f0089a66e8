package service

import (
	"errors"

	"github.com/way-19/consulting19/internal/domain"
	"github.com/way-19/consulting19/internal/i18n"
	apperrors "github.com/way-19/consulting19/pkg/errors"
)

// mapDomainError turns domain sentinel errors into AppErrors. Anything else
// is returned unchanged.
func mapDomainError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrSubmitInProgress),
		errors.Is(err, domain.ErrAlreadySubmitted):
		return apperrors.Conflict(err.Error())
	case errors.Is(err, domain.ErrUnknownField),
		errors.Is(err, domain.ErrFieldType),
		errors.Is(err, domain.ErrUnknownService),
		errors.Is(err, domain.ErrUnknownVariant),
		errors.Is(err, domain.ErrUnknownPackage),
		errors.Is(err, domain.ErrEmptySelection),
		errors.Is(err, domain.ErrUnknownCategory),
		errors.Is(err, domain.ErrNecessaryLocked),
		errors.Is(err, domain.ErrAtFirstStep),
		errors.Is(err, domain.ErrStepOutOfRange),
		errors.Is(err, domain.ErrStepLocked),
		errors.Is(err, domain.ErrNotAtFinalStep),
		errors.Is(err, i18n.ErrUnsupportedLanguage):
		return apperrors.InvalidInput(err.Error())
	}
	return err
}
