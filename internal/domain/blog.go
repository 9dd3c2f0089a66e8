package domain

import "time"

// BlogPost is a published article shown on the blog and country pages.
type BlogPost struct {
	ID          string     `json:"id"`
	Slug        string     `json:"slug"`
	Title       string     `json:"title"`
	Excerpt     string     `json:"excerpt"`
	Content     string     `json:"content,omitempty"`
	Category    string     `json:"category,omitempty"`
	Tags        []string   `json:"tags"`
	CountryCode string     `json:"country_code,omitempty"`
	Language    string     `json:"language"`
	AuthorName  string     `json:"author_name,omitempty"`
	CoverImage  string     `json:"cover_image,omitempty"`
	IsFeatured  bool       `json:"is_featured"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// BlogFilter narrows a blog listing.
type BlogFilter struct {
	CountryCode string
	Language    string
	Category    string
	Tag         string
	Page        int
	PerPage     int
}
