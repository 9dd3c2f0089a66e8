package service

import (
	"context"
	"fmt"

	"github.com/way-19/consulting19/internal/content"
	"github.com/way-19/consulting19/internal/domain"
	"github.com/way-19/consulting19/internal/i18n"
	"github.com/way-19/consulting19/internal/repository"
	apperrors "github.com/way-19/consulting19/pkg/errors"
	"github.com/way-19/consulting19/pkg/pagination"
)

// staticPages maps a page name to its title and body translation keys.
var staticPages = map[string][2]string{
	"privacy":       {"privacyTitle", "privacyBody"},
	"cookie-policy": {"cookiePolicyTitle", "cookiePolicyBody"},
	"about":         {"aboutTitle", "aboutBody"},
	"terms":         {"termsTitle", "termsBody"},
}

// ContentService serves the semi-dynamic marketing content.
type ContentService struct {
	bundle     *content.Bundle
	blog       repository.BlogRepository
	translator *i18n.Translator
}

// NewContentService creates a new content service.
func NewContentService(bundle *content.Bundle, blog repository.BlogRepository, translator *i18n.Translator) *ContentService {
	return &ContentService{
		bundle:     bundle,
		blog:       blog,
		translator: translator,
	}
}

// CountrySummary is a country without its packages.
type CountrySummary struct {
	Code         string   `json:"code"`
	Name         string   `json:"name"`
	Flag         string   `json:"flag"`
	Region       string   `json:"region"`
	Available    bool     `json:"available"`
	Highlights   []string `json:"highlights"`
	PackageCount int      `json:"package_count"`
}

// Page is a translated static page.
type Page struct {
	Name     string `json:"name"`
	Language string `json:"language"`
	Title    string `json:"title"`
	Body     string `json:"body"`
}

// Services returns the service catalog in catalog order.
func (s *ContentService) Services() []domain.ServiceOffering {
	return s.bundle.Catalog.All()
}

// Countries lists every country.
func (s *ContentService) Countries() []CountrySummary {
	out := make([]CountrySummary, len(s.bundle.Countries))
	for i, c := range s.bundle.Countries {
		highlights := c.Highlights
		if highlights == nil {
			highlights = []string{}
		}
		out[i] = CountrySummary{
			Code:         c.Code,
			Name:         c.Name,
			Flag:         c.Flag,
			Region:       c.Region,
			Available:    c.Available,
			Highlights:   highlights,
			PackageCount: len(c.Packages),
		}
	}
	return out
}

// Country returns a country with its packages.
func (s *ContentService) Country(code string) (*domain.Country, error) {
	c, ok := s.bundle.Country(code)
	if !ok {
		return nil, apperrors.NotFound("country", code)
	}
	return c, nil
}

// ListBlog returns one page of published posts.
func (s *ContentService) ListBlog(ctx context.Context, filter domain.BlogFilter, params pagination.Params) (pagination.Result[domain.BlogPost], error) {
	filter.Page = params.Page
	filter.PerPage = params.PerPage

	posts, total, err := s.blog.ListPublished(ctx, filter)
	if err != nil {
		return pagination.Result[domain.BlogPost]{}, fmt.Errorf("list blog posts: %w", err)
	}
	return pagination.NewResult(posts, total, params), nil
}

// BlogPost returns a published post by slug.
func (s *ContentService) BlogPost(ctx context.Context, slug string) (*domain.BlogPost, error) {
	p, err := s.blog.GetPublishedBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("get blog post: %w", err)
	}
	return p, nil
}

// Page returns a static page translated into lang.
func (s *ContentService) Page(lang i18n.Language, name string) (*Page, error) {
	keys, ok := staticPages[name]
	if !ok {
		return nil, apperrors.NotFound("page", name)
	}
	return &Page{
		Name:     name,
		Language: string(lang),
		Title:    s.translator.T(lang, keys[0]),
		Body:     s.translator.T(lang, keys[1]),
	}, nil
}
