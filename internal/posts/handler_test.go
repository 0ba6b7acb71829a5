package posts

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"log/slog"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memPostStore struct {
	posts    map[string]*Post
	comments map[string][]Comment
	nextID   int64
}

func newMemPostStore() *memPostStore {
	return &memPostStore{
		posts:    map[string]*Post{},
		comments: map[string][]Comment{},
	}
}

func (m *memPostStore) Create(_ context.Context, p *Post) error {
	if p.Slug == "" {
		p.Slug = Slugify(p.Title)
	}
	if _, ok := m.posts[p.Slug]; ok {
		return ErrDuplicateSlug
	}
	m.nextID++
	p.ID = m.nextID
	now := time.Now().UTC()
	p.PublishedAt = now
	p.UpdatedAt = now
	cp := *p
	m.posts[p.Slug] = &cp
	return nil
}

func (m *memPostStore) List(_ context.Context, f Filter) ([]Summary, error) {
	var out []Summary
	for _, p := range m.posts {
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		out = append(out, Summary{
			ID: p.ID, Title: p.Title, Slug: p.Slug, Summary: p.Summary,
			Thumbnail: p.Thumbnail, Author: p.Author, Category: p.Category,
			Likes: p.Likes, PublishedAt: p.PublishedAt,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PublishedAt.After(out[j].PublishedAt) })
	return out, nil
}

func (m *memPostStore) GetBySlug(_ context.Context, slug string) (*Post, error) {
	p, ok := m.posts[slug]
	if !ok {
		return nil, ErrPostNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memPostStore) Update(_ context.Context, slug string, upd Update) (*Post, error) {
	p, ok := m.posts[slug]
	if !ok {
		return nil, ErrPostNotFound
	}
	if upd.Title != nil {
		p.Title = *upd.Title
	}
	if upd.Summary != nil {
		p.Summary = *upd.Summary
	}
	if upd.Content != nil {
		p.Content = *upd.Content
	}
	if upd.Thumbnail != nil {
		p.Thumbnail = *upd.Thumbnail
	}
	if upd.Category != nil {
		p.Category = *upd.Category
	}
	p.UpdatedAt = time.Now().UTC()
	cp := *p
	return &cp, nil
}

func (m *memPostStore) Delete(_ context.Context, slug string) error {
	if _, ok := m.posts[slug]; !ok {
		return ErrPostNotFound
	}
	delete(m.posts, slug)
	return nil
}

func (m *memPostStore) IncrementViews(_ context.Context, slug string) (*Post, error) {
	p, ok := m.posts[slug]
	if !ok {
		return nil, ErrPostNotFound
	}
	p.Views++
	cp := *p
	return &cp, nil
}

func (m *memPostStore) IncrementLikes(_ context.Context, slug string) (*Post, error) {
	p, ok := m.posts[slug]
	if !ok {
		return nil, ErrPostNotFound
	}
	p.Likes++
	cp := *p
	return &cp, nil
}

func (m *memPostStore) AddComment(_ context.Context, slug string, c *Comment) error {
	p, ok := m.posts[slug]
	if !ok {
		return ErrPostNotFound
	}
	m.nextID++
	c.ID = m.nextID
	c.PostID = p.ID
	c.PublishedAt = time.Now().UTC()
	m.comments[slug] = append([]Comment{*c}, m.comments[slug]...)
	return nil
}

func (m *memPostStore) ListComments(_ context.Context, slug string) ([]Comment, error) {
	if _, ok := m.posts[slug]; !ok {
		return nil, ErrPostNotFound
	}
	return m.comments[slug], nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(bytes.NewBuffer(nil), nil))
}

func newTestHandler() (*Handler, *memPostStore) {
	store := newMemPostStore()
	return &Handler{Store: store, Logger: testLogger()}, store
}

func seedPost(t *testing.T, store *memPostStore, title string) *Post {
	t.Helper()
	p := &Post{
		Title:    title,
		Summary:  "summary",
		Content:  "content",
		Author:   "alice",
		Category: CategoryBackend,
	}
	require.NoError(t, store.Create(context.Background(), p))
	return p
}

func doJSON(h http.HandlerFunc, method, target, slug string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, target, &buf)
	if slug != "" {
		req = mux.SetURLVars(req, map[string]string{"slug": slug})
	}
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func TestCreatePost(t *testing.T) {
	h, store := newTestHandler()

	rec := doJSON(h.Create, http.MethodPost, "/api/posts", "", map[string]interface{}{
		"title":    "Hello World",
		"summary":  "s",
		"content":  "c",
		"category": "Backend",
		"tags":     []string{"go"},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created Post
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "hello-world", created.Slug)
	assert.Contains(t, store.posts, "hello-world")

	// Same title derives the same slug.
	rec = doJSON(h.Create, http.MethodPost, "/api/posts", "", map[string]interface{}{
		"title":    "Hello World",
		"summary":  "s",
		"content":  "c",
		"category": "Backend",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreatePostValidation(t *testing.T) {
	h, _ := newTestHandler()

	rec := doJSON(h.Create, http.MethodPost, "/api/posts", "", map[string]interface{}{
		"title": "No Body Fields",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(h.Create, http.MethodPost, "/api/posts", "", map[string]interface{}{
		"title":    "Bad Category",
		"summary":  "s",
		"content":  "c",
		"category": "Sports",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDetailCountsView(t *testing.T) {
	h, store := newTestHandler()
	p := seedPost(t, store, "Hello World")

	rec := doJSON(h.Detail, http.MethodGet, "/api/posts/"+p.Slug, p.Slug, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got Post
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, int64(1), got.Views)

	rec = doJSON(h.Detail, http.MethodGet, "/api/posts/missing", "missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLike(t *testing.T) {
	h, store := newTestHandler()
	p := seedPost(t, store, "Hello World")

	rec := doJSON(h.Like, http.MethodPut, "/api/posts/"+p.Slug+"/like", p.Slug, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = doJSON(h.Like, http.MethodPut, "/api/posts/"+p.Slug+"/like", p.Slug, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got Post
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, int64(2), got.Likes)
}

func TestUpdateAndDelete(t *testing.T) {
	h, store := newTestHandler()
	p := seedPost(t, store, "Hello World")

	rec := doJSON(h.Update, http.MethodPut, "/api/posts/"+p.Slug, p.Slug, map[string]interface{}{
		"summary": "rewritten",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var got Post
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "rewritten", got.Summary)
	assert.Equal(t, "content", got.Content, "unset fields stay")

	rec = doJSON(h.Delete, http.MethodDelete, "/api/posts/"+p.Slug, p.Slug, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = doJSON(h.Delete, http.MethodDelete, "/api/posts/"+p.Slug, p.Slug, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestComments(t *testing.T) {
	h, store := newTestHandler()
	p := seedPost(t, store, "Hello World")

	rec := doJSON(h.AddComment, http.MethodPost, "/api/posts/"+p.Slug+"/comments", p.Slug, map[string]string{
		"author": "bob", "content": "nice post",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(h.AddComment, http.MethodPost, "/api/posts/"+p.Slug+"/comments", p.Slug, map[string]string{
		"author": "", "content": "missing author",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(h.ListComments, http.MethodGet, "/api/posts/"+p.Slug+"/comments", p.Slug, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var comments []Comment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &comments))
	require.Len(t, comments, 1)
	assert.Equal(t, "bob", comments[0].Author)
	assert.Equal(t, p.ID, comments[0].PostID)
}

func TestListFiltersByCategory(t *testing.T) {
	h, store := newTestHandler()
	seedPost(t, store, "Go Post")
	other := &Post{Title: "Ops Post", Summary: "s", Content: "c", Category: CategoryDevOps}
	require.NoError(t, store.Create(context.Background(), other))

	req := httptest.NewRequest(http.MethodGet, "/api/posts?category=DevOps", nil)
	rec := httptest.NewRecorder()
	h.List(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var got []Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "ops-post", got[0].Slug)
}
