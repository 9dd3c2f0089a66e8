package domain

import (
	"errors"
	"slices"
)

// MaxComparison is the number of packages that can be compared at once.
const MaxComparison = 3

var (
	// ErrEmptySelection is returned when entering the comparison view with
	// nothing selected.
	ErrEmptySelection = errors.New("select at least one package to compare")

	// ErrUnknownPackage is returned for a package id not offered in the country.
	ErrUnknownPackage = errors.New("unknown package")

	// ErrUnknownCountry is returned for a country code with no data.
	ErrUnknownCountry = errors.New("unknown country")
)

// CountryPackage is a priced formation package offered in one country.
type CountryPackage struct {
	ID            string   `json:"id" yaml:"id"`
	Name          string   `json:"name" yaml:"name"`
	Price         int64    `json:"price" yaml:"price"`
	OriginalPrice int64    `json:"original_price,omitempty" yaml:"original_price"`
	Popular       bool     `json:"popular" yaml:"popular"`
	Recommended   bool     `json:"recommended" yaml:"recommended"`
	Features      []string `json:"features" yaml:"features"`
	Description   string   `json:"description" yaml:"description"`
	Available     bool     `json:"available" yaml:"available"`
	Order         int      `json:"order" yaml:"order"`
}

// HasFeature reports whether the package lists name among its features.
func (p CountryPackage) HasFeature(name string) bool {
	return slices.Contains(p.Features, name)
}

// Country is a jurisdiction with its packages sorted by Order.
type Country struct {
	Code        string           `json:"code" yaml:"code"`
	Name        string           `json:"name" yaml:"name"`
	Flag        string           `json:"flag" yaml:"flag"`
	Region      string           `json:"region" yaml:"region"`
	Capital     string           `json:"capital" yaml:"capital"`
	Description string           `json:"description" yaml:"description"`
	Available   bool             `json:"available" yaml:"available"`
	Highlights  []string         `json:"highlights" yaml:"highlights"`
	Packages    []CountryPackage `json:"packages,omitempty" yaml:"packages"`
}

// Package returns the package with the given id.
func (c *Country) Package(id string) (CountryPackage, bool) {
	for _, p := range c.Packages {
		if p.ID == id {
			return p, true
		}
	}
	return CountryPackage{}, false
}

// ComparisonSelection is a visitor's set of packages chosen for comparison
// within one country.
type ComparisonSelection struct {
	Country    string   `json:"country"`
	PackageIDs []string `json:"package_ids"`
	Viewing    bool     `json:"viewing"`
}

// NewComparisonSelection returns an empty selection for country.
func NewComparisonSelection(country string) *ComparisonSelection {
	return &ComparisonSelection{Country: country, PackageIDs: []string{}}
}

// Toggle removes id when selected and adds it when there is room. Adding a
// package beyond MaxComparison is silently ignored; the return value
// reports whether the selection changed.
func (s *ComparisonSelection) Toggle(id string) bool {
	if i := slices.Index(s.PackageIDs, id); i >= 0 {
		s.PackageIDs = slices.Delete(s.PackageIDs, i, i+1)
		if len(s.PackageIDs) == 0 {
			s.Viewing = false
		}
		return true
	}
	if len(s.PackageIDs) >= MaxComparison {
		return false
	}
	s.PackageIDs = append(s.PackageIDs, id)
	return true
}

// LimitReached reports whether no further package can be added.
func (s *ComparisonSelection) LimitReached() bool {
	return len(s.PackageIDs) >= MaxComparison
}

// IsSelected reports whether id is selected.
func (s *ComparisonSelection) IsSelected(id string) bool {
	return slices.Contains(s.PackageIDs, id)
}

// EnterView switches to the comparison table.
func (s *ComparisonSelection) EnterView() error {
	if len(s.PackageIDs) == 0 {
		return ErrEmptySelection
	}
	s.Viewing = true
	return nil
}

// ExitView returns to the selection grid.
func (s *ComparisonSelection) ExitView() {
	s.Viewing = false
}

// Prune drops selected ids that are no longer offered in c, keeping the
// MaxComparison invariant for selections restored from storage.
func (s *ComparisonSelection) Prune(c *Country) {
	kept := make([]string, 0, len(s.PackageIDs))
	for _, id := range s.PackageIDs {
		if _, ok := c.Package(id); ok && !slices.Contains(kept, id) && len(kept) < MaxComparison {
			kept = append(kept, id)
		}
	}
	s.PackageIDs = kept
	if len(kept) == 0 {
		s.Viewing = false
	}
}

// UnionOfFeatures returns every feature of packages in first-seen order
// without duplicates.
func UnionOfFeatures(packages []CountryPackage) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, p := range packages {
		for _, f := range p.Features {
			if _, ok := seen[f]; ok {
				continue
			}
			seen[f] = struct{}{}
			out = append(out, f)
		}
	}
	return out
}

// MatrixRow is one feature line of the comparison table.
type MatrixRow struct {
	Feature  string `json:"feature"`
	Included []bool `json:"included"`
}

// BuildMatrix lays out packages against the union of their features. The
// i-th entry of each row's Included corresponds to packages[i].
func BuildMatrix(packages []CountryPackage) []MatrixRow {
	features := UnionOfFeatures(packages)
	rows := make([]MatrixRow, len(features))
	for i, f := range features {
		included := make([]bool, len(packages))
		for j, p := range packages {
			included[j] = p.HasFeature(f)
		}
		rows[i] = MatrixRow{Feature: f, Included: included}
	}
	return rows
}
