package posts

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"
)

var (
	ErrPostNotFound  = errors.New("post not found")
	ErrDuplicateSlug = errors.New("a post with this title already exists")
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

const postColumns = `id, title, slug, summary, content, author, thumbnail, tags, category, likes, views, published_at, updated_at`

func scanPost(row *sql.Row) (*Post, error) {
	p := &Post{}
	var tags pq.StringArray
	if err := row.Scan(&p.ID, &p.Title, &p.Slug, &p.Summary, &p.Content, &p.Author,
		&p.Thumbnail, &tags, &p.Category, &p.Likes, &p.Views, &p.PublishedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	p.Tags = []string(tags)
	return p, nil
}

func (s *Store) Create(ctx context.Context, p *Post) error {
	if p.Slug == "" {
		p.Slug = Slugify(p.Title)
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	now := time.Now().UTC()
	if p.PublishedAt.IsZero() {
		p.PublishedAt = now
	}
	const q = `
		INSERT INTO posts (title, slug, summary, content, author, thumbnail, tags, category, published_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, likes, views, updated_at
	`
	row := s.db.QueryRowContext(ctx, q,
		p.Title,
		p.Slug,
		p.Summary,
		p.Content,
		p.Author,
		p.Thumbnail,
		pq.Array(p.Tags),
		p.Category,
		p.PublishedAt,
		now,
	)
	if err := row.Scan(&p.ID, &p.Likes, &p.Views, &p.UpdatedAt); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicateSlug
		}
		return err
	}
	return nil
}

func (s *Store) List(ctx context.Context, f Filter) ([]Summary, error) {
	clauses := []string{"1=1"}
	args := []interface{}{}
	argIdx := 1

	if f.Category != "" {
		clauses = append(clauses, "category = $"+itoa(argIdx))
		args = append(args, string(f.Category))
		argIdx++
	}
	if f.Tag != "" {
		clauses = append(clauses, "$"+itoa(argIdx)+" = ANY(tags)")
		args = append(args, f.Tag)
		argIdx++
	}

	limit := f.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	query := "SELECT id, title, slug, summary, thumbnail, author, category, likes, published_at FROM posts WHERE " +
		strings.Join(clauses, " AND ") + " ORDER BY published_at DESC LIMIT " + itoa(limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Summary
	for rows.Next() {
		var sm Summary
		if err := rows.Scan(&sm.ID, &sm.Title, &sm.Slug, &sm.Summary, &sm.Thumbnail,
			&sm.Author, &sm.Category, &sm.Likes, &sm.PublishedAt); err != nil {
			return nil, err
		}
		result = append(result, sm)
	}
	return result, rows.Err()
}

func (s *Store) GetBySlug(ctx context.Context, slug string) (*Post, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts WHERE slug = $1`, slug)
	return scanPost(row)
}

func (s *Store) Update(ctx context.Context, slug string, upd Update) (*Post, error) {
	sets := []string{}
	args := []interface{}{}
	argIdx := 1

	add := func(col string, val interface{}) {
		sets = append(sets, col+" = $"+itoa(argIdx))
		args = append(args, val)
		argIdx++
	}
	if upd.Title != nil {
		add("title", *upd.Title)
	}
	if upd.Summary != nil {
		add("summary", *upd.Summary)
	}
	if upd.Content != nil {
		add("content", *upd.Content)
	}
	if upd.Author != nil {
		add("author", *upd.Author)
	}
	if upd.Thumbnail != nil {
		add("thumbnail", *upd.Thumbnail)
	}
	if upd.Tags != nil {
		add("tags", pq.Array(*upd.Tags))
	}
	if upd.Category != nil {
		add("category", string(*upd.Category))
	}
	add("updated_at", time.Now().UTC())

	query := "UPDATE posts SET " + strings.Join(sets, ", ") +
		" WHERE slug = $" + itoa(argIdx) + " RETURNING " + postColumns
	args = append(args, slug)

	return scanPost(s.db.QueryRowContext(ctx, query, args...))
}

func (s *Store) Delete(ctx context.Context, slug string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE slug = $1`, slug)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrPostNotFound
	}
	return nil
}

// IncrementViews bumps the view counter in a single statement and returns
// the updated post.
func (s *Store) IncrementViews(ctx context.Context, slug string) (*Post, error) {
	row := s.db.QueryRowContext(ctx,
		`UPDATE posts SET views = views + 1 WHERE slug = $1 RETURNING `+postColumns, slug)
	return scanPost(row)
}

func (s *Store) IncrementLikes(ctx context.Context, slug string) (*Post, error) {
	row := s.db.QueryRowContext(ctx,
		`UPDATE posts SET likes = likes + 1 WHERE slug = $1 RETURNING `+postColumns, slug)
	return scanPost(row)
}

func (s *Store) AddComment(ctx context.Context, slug string, c *Comment) error {
	var postID int64
	err := s.db.QueryRowContext(ctx, `SELECT id FROM posts WHERE slug = $1`, slug).Scan(&postID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrPostNotFound
		}
		return err
	}
	c.PostID = postID
	if c.PublishedAt.IsZero() {
		c.PublishedAt = time.Now().UTC()
	}
	const q = `
		INSERT INTO comments (post_id, author, content, published_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	return s.db.QueryRowContext(ctx, q, c.PostID, c.Author, c.Content, c.PublishedAt).Scan(&c.ID)
}

func (s *Store) ListComments(ctx context.Context, slug string) ([]Comment, error) {
	var postID int64
	err := s.db.QueryRowContext(ctx, `SELECT id FROM posts WHERE slug = $1`, slug).Scan(&postID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	const q = `
		SELECT id, post_id, author, content, published_at
		FROM comments WHERE post_id = $1 ORDER BY published_at DESC
	`
	rows, err := s.db.QueryContext(ctx, q, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []Comment{}
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.Author, &c.Content, &c.PublishedAt); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

func itoa(i int) string {
	return strconv.Itoa(i)
}
