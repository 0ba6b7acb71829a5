package posts

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"log/slog"

	"github.com/gorilla/mux"
)

// PostStore is what the handlers need from the storage layer. *Store
// satisfies it; tests use an in-memory implementation.
type PostStore interface {
	Create(ctx context.Context, p *Post) error
	List(ctx context.Context, f Filter) ([]Summary, error)
	GetBySlug(ctx context.Context, slug string) (*Post, error)
	Update(ctx context.Context, slug string, upd Update) (*Post, error)
	Delete(ctx context.Context, slug string) error
	IncrementViews(ctx context.Context, slug string) (*Post, error)
	IncrementLikes(ctx context.Context, slug string) (*Post, error)
	AddComment(ctx context.Context, slug string, c *Comment) error
	ListComments(ctx context.Context, slug string) ([]Comment, error)
}

type Handler struct {
	Store  PostStore
	Logger *slog.Logger
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := Filter{
		Category: Category(q.Get("category")),
		Tag:      q.Get("tag"),
	}
	if limitStr := q.Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil {
			f.Limit = l
		}
	}
	summaries, err := h.Store.List(r.Context(), f)
	if err != nil {
		h.Logger.Error("list posts", "err", err)
		writeError(w, http.StatusInternalServerError, "server error")
		return
	}
	if summaries == nil {
		summaries = []Summary{}
	}
	writeJSON(w, http.StatusOK, summaries)
}

// Detail returns a single post by slug and counts the read as a view.
func (h *Handler) Detail(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]
	post, err := h.Store.IncrementViews(r.Context(), slug)
	if err != nil {
		h.notFoundOr500(w, err, "get post")
		return
	}
	writeJSON(w, http.StatusOK, post)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title     string   `json:"title"`
		Summary   string   `json:"summary"`
		Content   string   `json:"content"`
		Author    string   `json:"author"`
		Thumbnail string   `json:"thumbnail"`
		Tags      []string `json:"tags"`
		Category  Category `json:"category"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Title == "" || req.Summary == "" || req.Content == "" {
		writeError(w, http.StatusBadRequest, "title, summary and content are required")
		return
	}
	if !req.Category.Valid() {
		writeError(w, http.StatusBadRequest, "invalid category")
		return
	}
	post := &Post{
		Title:     req.Title,
		Summary:   req.Summary,
		Content:   req.Content,
		Author:    req.Author,
		Thumbnail: req.Thumbnail,
		Tags:      req.Tags,
		Category:  req.Category,
	}
	if err := h.Store.Create(r.Context(), post); err != nil {
		if errors.Is(err, ErrDuplicateSlug) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.Logger.Error("create post", "err", err)
		writeError(w, http.StatusInternalServerError, "server error")
		return
	}
	writeJSON(w, http.StatusCreated, post)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]
	var req struct {
		Title     *string   `json:"title"`
		Summary   *string   `json:"summary"`
		Content   *string   `json:"content"`
		Author    *string   `json:"author"`
		Thumbnail *string   `json:"thumbnail"`
		Tags      *[]string `json:"tags"`
		Category  *Category `json:"category"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Category != nil && !req.Category.Valid() {
		writeError(w, http.StatusBadRequest, "invalid category")
		return
	}
	post, err := h.Store.Update(r.Context(), slug, Update{
		Title:     req.Title,
		Summary:   req.Summary,
		Content:   req.Content,
		Author:    req.Author,
		Thumbnail: req.Thumbnail,
		Tags:      req.Tags,
		Category:  req.Category,
	})
	if err != nil {
		h.notFoundOr500(w, err, "update post")
		return
	}
	writeJSON(w, http.StatusOK, post)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]
	if err := h.Store.Delete(r.Context(), slug); err != nil {
		h.notFoundOr500(w, err, "delete post")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Like(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]
	post, err := h.Store.IncrementLikes(r.Context(), slug)
	if err != nil {
		h.notFoundOr500(w, err, "like post")
		return
	}
	writeJSON(w, http.StatusOK, post)
}

func (h *Handler) AddComment(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]
	var req struct {
		Author  string `json:"author"`
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Author == "" || req.Content == "" {
		writeError(w, http.StatusBadRequest, "author and content are required")
		return
	}
	comment := &Comment{Author: req.Author, Content: req.Content}
	if err := h.Store.AddComment(r.Context(), slug, comment); err != nil {
		h.notFoundOr500(w, err, "add comment")
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}

func (h *Handler) ListComments(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]
	comments, err := h.Store.ListComments(r.Context(), slug)
	if err != nil {
		h.notFoundOr500(w, err, "list comments")
		return
	}
	writeJSON(w, http.StatusOK, comments)
}

func (h *Handler) notFoundOr500(w http.ResponseWriter, err error, op string) {
	if errors.Is(err, ErrPostNotFound) {
		writeError(w, http.StatusNotFound, "post not found")
		return
	}
	h.Logger.Error(op, "err", err)
	writeError(w, http.StatusInternalServerError, "server error")
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"msg": msg})
}
