package model

// About is the document behind the "about" section of the home page.
type About struct {
	Bio        string      `json:"bio"`
	Stats      []Stat      `json:"stats" validate:"dive"`
	Highlights []Highlight `json:"highlights" validate:"dive"`
	Badges     []string    `json:"badges" validate:"dive,max=80"`
}

// Stat is a headline number such as {"FaCode", "10+", "Web Applications"}.
type Stat struct {
	Icon   string `json:"icon"`
	Number string `json:"number" validate:"max=20"`
	Label  string `json:"label" validate:"max=80"`
}

type Highlight struct {
	Icon        string `json:"icon"`
	Title       string `json:"title" validate:"max=120"`
	Description string `json:"description" validate:"max=500"`
}

// SEO holds the site-wide meta tags rendered into every public page.
type SEO struct {
	Title       string   `json:"title" validate:"max=120"`
	Description string   `json:"description" validate:"max=320"`
	Keywords    []string `json:"keywords"`
	OGImage     string   `json:"ogImage"`
	TwitterCard string   `json:"twitterCard" validate:"omitempty,oneof=summary summary_large_image app player"`
}
