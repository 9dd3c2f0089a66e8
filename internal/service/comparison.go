package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/way-19/consulting19/internal/content"
	"github.com/way-19/consulting19/internal/domain"
	"github.com/way-19/consulting19/internal/repository"
	apperrors "github.com/way-19/consulting19/pkg/errors"
)

// ComparisonService manages the per-country package comparison widget.
type ComparisonService struct {
	repo    repository.ComparisonRepository
	content *content.Bundle
	logger  *slog.Logger
}

// NewComparisonService creates a new comparison service.
func NewComparisonService(repo repository.ComparisonRepository, bundle *content.Bundle, logger *slog.Logger) *ComparisonService {
	return &ComparisonService{
		repo:    repo,
		content: bundle,
		logger:  logger,
	}
}

// ComparisonView is the widget state. Matrix is only filled while the
// comparison table is shown.
type ComparisonView struct {
	Country      string                  `json:"country"`
	PackageIDs   []string                `json:"package_ids"`
	Selected     []domain.CountryPackage `json:"selected"`
	Viewing      bool                    `json:"viewing"`
	LimitReached bool                    `json:"limit_reached"`
	MaxSelection int                     `json:"max_selection"`
	Features     []string                `json:"features,omitempty"`
	Matrix       []domain.MatrixRow      `json:"matrix,omitempty"`
	// Changed is set by Toggle; false means the request was a no-op.
	Changed *bool `json:"changed,omitempty"`
}

// Get returns the visitor's selection for a country.
func (s *ComparisonService) Get(ctx context.Context, visitorID, code string) (*ComparisonView, error) {
	country, sel, err := s.load(ctx, visitorID, code)
	if err != nil {
		return nil, err
	}
	return s.view(country, sel), nil
}

// Toggle adds or removes a package. Adding beyond the limit leaves the
// selection unchanged and reports Changed=false.
func (s *ComparisonService) Toggle(ctx context.Context, visitorID, code, packageID string) (*ComparisonView, error) {
	country, sel, err := s.load(ctx, visitorID, code)
	if err != nil {
		return nil, err
	}
	if _, ok := country.Package(packageID); !ok {
		return nil, apperrors.NotFound("package", packageID)
	}

	changed := sel.Toggle(packageID)
	if changed {
		if err := s.repo.Save(ctx, visitorID, sel); err != nil {
			return nil, fmt.Errorf("save comparison: %w", err)
		}
	}

	v := s.view(country, sel)
	v.Changed = &changed
	return v, nil
}

// EnterView shows the comparison table; the selection must not be empty.
func (s *ComparisonService) EnterView(ctx context.Context, visitorID, code string) (*ComparisonView, error) {
	country, sel, err := s.load(ctx, visitorID, code)
	if err != nil {
		return nil, err
	}
	if err := sel.EnterView(); err != nil {
		return nil, mapDomainError(err)
	}
	if err := s.repo.Save(ctx, visitorID, sel); err != nil {
		return nil, fmt.Errorf("save comparison: %w", err)
	}
	return s.view(country, sel), nil
}

// ExitView returns to the package grid.
func (s *ComparisonService) ExitView(ctx context.Context, visitorID, code string) (*ComparisonView, error) {
	country, sel, err := s.load(ctx, visitorID, code)
	if err != nil {
		return nil, err
	}
	sel.ExitView()
	if err := s.repo.Save(ctx, visitorID, sel); err != nil {
		return nil, fmt.Errorf("save comparison: %w", err)
	}
	return s.view(country, sel), nil
}

func (s *ComparisonService) load(ctx context.Context, visitorID, code string) (*domain.Country, *domain.ComparisonSelection, error) {
	country, ok := s.content.Country(code)
	if !ok {
		return nil, nil, apperrors.NotFound("country", code)
	}

	sel, err := s.repo.Get(ctx, visitorID, country.Code)
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		sel = domain.NewComparisonSelection(country.Code)
	case err != nil:
		return nil, nil, fmt.Errorf("get comparison: %w", err)
	}
	sel.Country = country.Code
	sel.Prune(country)
	return country, sel, nil
}

func (s *ComparisonService) view(country *domain.Country, sel *domain.ComparisonSelection) *ComparisonView {
	selected := make([]domain.CountryPackage, 0, len(sel.PackageIDs))
	for _, id := range sel.PackageIDs {
		if p, ok := country.Package(id); ok {
			selected = append(selected, p)
		}
	}

	v := &ComparisonView{
		Country:      country.Code,
		PackageIDs:   append([]string{}, sel.PackageIDs...),
		Selected:     selected,
		Viewing:      sel.Viewing,
		LimitReached: sel.LimitReached(),
		MaxSelection: domain.MaxComparison,
	}
	if sel.Viewing {
		v.Features = domain.UnionOfFeatures(selected)
		v.Matrix = domain.BuildMatrix(selected)
	}
	return v
}
