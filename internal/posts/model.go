package posts

import "time"

type Category string

const (
	CategoryFrontend Category = "Frontend"
	CategoryBackend  Category = "Backend"
	CategoryDevOps   Category = "DevOps"
	CategoryCareer   Category = "Carreira"
	CategoryOther    Category = "Outros"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryFrontend, CategoryBackend, CategoryDevOps, CategoryCareer, CategoryOther:
		return true
	}
	return false
}

type Post struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Summary     string    `json:"summary"`
	Content     string    `json:"content"`
	Author      string    `json:"author"`
	Thumbnail   string    `json:"thumbnail"`
	Tags        []string  `json:"tags"`
	Category    Category  `json:"category"`
	Likes       int64     `json:"likes"`
	Views       int64     `json:"views"`
	PublishedAt time.Time `json:"published_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Summary is the reduced shape returned by post listings.
type Summary struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Summary     string    `json:"summary"`
	Thumbnail   string    `json:"thumbnail"`
	Author      string    `json:"author"`
	Category    Category  `json:"category"`
	Likes       int64     `json:"likes"`
	PublishedAt time.Time `json:"published_at"`
}

type Comment struct {
	ID          int64     `json:"id"`
	PostID      int64     `json:"post_id"`
	Author      string    `json:"author"`
	Content     string    `json:"content"`
	PublishedAt time.Time `json:"published_at"`
}

type Filter struct {
	Category Category
	Tag      string
	Limit    int
}

// Update carries a partial post edit; nil fields are left untouched.
type Update struct {
	Title     *string
	Summary   *string
	Content   *string
	Author    *string
	Thumbnail *string
	Tags      *[]string
	Category  *Category
}
