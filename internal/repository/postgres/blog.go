package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/way-19/consulting19/internal/domain"
	"github.com/way-19/consulting19/pkg/database"
	apperrors "github.com/way-19/consulting19/pkg/errors"
)

const blogColumns = `id, slug, title, excerpt, content, category, tags, COALESCE(country_code, ''), language, author_name, cover_image, is_featured, COALESCE(published_at, created_at), created_at, updated_at`

// BlogRepository implements repository.BlogRepository using PostgreSQL.
type BlogRepository struct {
	pool database.DBTX
}

// NewBlogRepository creates a new PostgreSQL-backed blog repository.
func NewBlogRepository(pool database.DBTX) *BlogRepository {
	return &BlogRepository{pool: pool}
}

// ListPublished returns published posts matching the filter, newest first,
// with the total count of matching posts.
func (r *BlogRepository) ListPublished(ctx context.Context, filter domain.BlogFilter) (posts []domain.BlogPost, total int, err error) {
	var (
		conditions = []string{"is_published = TRUE"}
		args       []any
		argIndex   int = 1
	)

	if filter.CountryCode != "" {
		conditions = append(conditions, fmt.Sprintf("country_code = $%d", argIndex))
		args = append(args, strings.ToLower(filter.CountryCode))
		argIndex++
	}

	if filter.Language != "" {
		conditions = append(conditions, fmt.Sprintf("language = $%d", argIndex))
		args = append(args, filter.Language)
		argIndex++
	}

	if filter.Category != "" {
		conditions = append(conditions, fmt.Sprintf("category = $%d", argIndex))
		args = append(args, filter.Category)
		argIndex++
	}

	if filter.Tag != "" {
		conditions = append(conditions, fmt.Sprintf("$%d = ANY(tags)", argIndex))
		args = append(args, filter.Tag)
		argIndex++
	}

	query := fmt.Sprintf(`
		SELECT %s,
			   count(*) OVER() AS total_count
		FROM blog_posts
		WHERE %s
		ORDER BY is_featured DESC, published_at DESC NULLS LAST
		LIMIT $%d OFFSET $%d`,
		blogColumns, strings.Join(conditions, " AND "), argIndex, argIndex+1,
	)

	limit := filter.PerPage
	if limit <= 0 {
		limit = 20
	}
	offset := 0
	if filter.Page > 1 {
		offset = (filter.Page - 1) * limit
	}
	args = append(args, limit, offset)

	ctx, end := database.TraceQuery(ctx, "postgresql", "ListPublishedBlogPosts", query)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list blog posts: %w", err)
	}
	defer rows.Close()

	posts = make([]domain.BlogPost, 0)
	for rows.Next() {
		var (
			p           domain.BlogPost
			publishedAt time.Time
		)
		if err := rows.Scan(
			&p.ID,
			&p.Slug,
			&p.Title,
			&p.Excerpt,
			&p.Content,
			&p.Category,
			&p.Tags,
			&p.CountryCode,
			&p.Language,
			&p.AuthorName,
			&p.CoverImage,
			&p.IsFeatured,
			&publishedAt,
			&p.CreatedAt,
			&p.UpdatedAt,
			&total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan blog post row: %w", err)
		}
		p.PublishedAt = &publishedAt
		if p.Tags == nil {
			p.Tags = []string{}
		}
		// Listings carry the excerpt only.
		p.Content = ""
		posts = append(posts, p)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate blog post rows: %w", err)
	}

	return posts, total, nil
}

// GetPublishedBySlug retrieves a single published post.
func (r *BlogRepository) GetPublishedBySlug(ctx context.Context, slug string) (*domain.BlogPost, error) {
	query := `SELECT ` + blogColumns + `
		FROM blog_posts
		WHERE slug = $1 AND is_published = TRUE`

	var (
		p           domain.BlogPost
		publishedAt time.Time
	)

	err := r.pool.QueryRow(ctx, query, slug).Scan(
		&p.ID,
		&p.Slug,
		&p.Title,
		&p.Excerpt,
		&p.Content,
		&p.Category,
		&p.Tags,
		&p.CountryCode,
		&p.Language,
		&p.AuthorName,
		&p.CoverImage,
		&p.IsFeatured,
		&publishedAt,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("blog post", slug)
		}
		return nil, fmt.Errorf("scan blog post: %w", err)
	}
	p.PublishedAt = &publishedAt
	if p.Tags == nil {
		p.Tags = []string{}
	}

	return &p, nil
}

// Upsert inserts a published post or, when the slug exists, replaces its
// content. Used by the seeder.
func (r *BlogRepository) Upsert(ctx context.Context, p *domain.BlogPost) (err error) {
	query := `
		INSERT INTO blog_posts (id, slug, title, excerpt, content, category, tags, country_code,
			language, author_name, cover_image, is_published, is_featured, published_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), $9, $10, $11, TRUE, $12, $13, $14, $14)
		ON CONFLICT (slug) DO UPDATE SET
			title = EXCLUDED.title,
			excerpt = EXCLUDED.excerpt,
			content = EXCLUDED.content,
			category = EXCLUDED.category,
			tags = EXCLUDED.tags,
			country_code = EXCLUDED.country_code,
			language = EXCLUDED.language,
			author_name = EXCLUDED.author_name,
			cover_image = EXCLUDED.cover_image,
			is_featured = EXCLUDED.is_featured,
			updated_at = EXCLUDED.updated_at`

	ctx, end := database.TraceQuery(ctx, "postgresql", "UpsertBlogPost", query)
	defer func() { end(err) }()

	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}

	_, err = r.pool.Exec(ctx, query,
		p.ID,
		p.Slug,
		p.Title,
		p.Excerpt,
		p.Content,
		p.Category,
		tags,
		strings.ToLower(p.CountryCode),
		p.Language,
		p.AuthorName,
		p.CoverImage,
		p.IsFeatured,
		p.PublishedAt,
		p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert blog post %q: %w", p.Slug, err)
	}
	return nil
}
