package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/way-19/consulting19/internal/domain"
)

type mockUpserter struct {
	mock.Mock
}

func (m *mockUpserter) Upsert(ctx context.Context, p *domain.BlogPost) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

var seedNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func sampleCountries() []domain.Country {
	return []domain.Country{
		{
			Code:        "georgia",
			Name:        "Georgia",
			Description: "Fast registration and low taxes.",
			Available:   true,
			Highlights:  []string{"1% small business tax"},
			Packages:    []domain.CountryPackage{{ID: "georgia-llc", Name: "LLC", Price: 1200}},
		},
		{Code: "malta", Name: "Malta", Available: false},
		{Code: "uae", Name: "UAE", Description: "Free zones.", Available: true},
	}
}

func TestCountryGuides(t *testing.T) {
	posts := countryGuides(sampleCountries(), "Team", seedNow)

	require.Len(t, posts, 2)

	g := posts[0]
	assert.Equal(t, "georgia-company-formation-guide", g.Slug)
	assert.Equal(t, "Company formation in Georgia", g.Title)
	assert.Equal(t, "georgia", g.CountryCode)
	assert.Equal(t, []string{"georgia", "company-formation"}, g.Tags)
	assert.True(t, g.IsFeatured)
	assert.Contains(t, g.Content, "- 1% small business tax")
	assert.Contains(t, g.Content, "- LLC (1200 USD)")
	require.NotNil(t, g.PublishedAt)
	assert.Equal(t, seedNow, *g.PublishedAt)

	assert.Equal(t, "uae", posts[1].CountryCode)
	assert.False(t, posts[1].IsFeatured)
}

func TestCountryGuides_StableIDs(t *testing.T) {
	a := countryGuides(sampleCountries(), "Team", seedNow)
	b := countryGuides(sampleCountries(), "Team", seedNow.Add(time.Hour))

	assert.Equal(t, a[0].ID, b[0].ID)
	assert.NotEqual(t, a[0].ID, a[1].ID)
}

func TestSeedPosts_SkipsFailures(t *testing.T) {
	repo := new(mockUpserter)
	posts := countryGuides(sampleCountries(), "Team", seedNow)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	repo.On("Upsert", mock.Anything, mock.MatchedBy(func(p *domain.BlogPost) bool { return p.CountryCode == "georgia" })).
		Return(errors.New("constraint violation"))
	repo.On("Upsert", mock.Anything, mock.MatchedBy(func(p *domain.BlogPost) bool { return p.CountryCode == "uae" })).
		Return(nil)

	n, err := seedPosts(context.Background(), repo, posts, log)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	repo.AssertExpectations(t)
}

func TestSeedPosts_AllFail(t *testing.T) {
	repo := new(mockUpserter)
	posts := countryGuides(sampleCountries(), "Team", seedNow)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	repo.On("Upsert", mock.Anything, mock.Anything).Return(errors.New("database down"))

	_, err := seedPosts(context.Background(), repo, posts, log)
	assert.Error(t, err)
}
