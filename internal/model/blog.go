package model

// BlogPost is one entry of the "blog" collection.
//
// Dates are plain "2006-01-02" strings, not time.Time: the admin UI sends
// and expects them in that form, and stored documents are returned verbatim.
type BlogPost struct {
	ID          string   `json:"id"`
	Title       string   `json:"title" validate:"required,max=200"`
	Slug        string   `json:"slug" validate:"omitempty,slug"`
	Excerpt     string   `json:"excerpt" validate:"max=1000"`
	Content     string   `json:"content"`
	Author      *Author  `json:"author,omitempty"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`
	CoverImage  string   `json:"coverImage" validate:"omitempty,url|startswith=/"`
	Featured    bool     `json:"featured"`
	PublishedAt string   `json:"publishedAt,omitempty" validate:"omitempty,date"`
	UpdatedAt   string   `json:"updatedAt,omitempty" validate:"omitempty,date"`
	ReadingTime int      `json:"readingTime,omitempty" validate:"gte=0"`
}

type Author struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}
