package httpserver

import (
	"encoding/json"
	"net/http"

	"log/slog"

	"github.com/gorilla/mux"

	"inkpress/internal/auth"
	"inkpress/internal/posts"
)

func NewRouter(logger *slog.Logger, authSvc *auth.Service, postStore posts.PostStore) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()

	// Auth
	api.Handle("/auth/register", registerHandler(authSvc, logger)).Methods(http.MethodPost)
	api.Handle("/auth/login", loginHandler(authSvc, logger)).Methods(http.MethodPost)

	ph := &posts.Handler{Store: postStore, Logger: logger}

	// Public reads, likes and comments
	api.HandleFunc("/posts", ph.List).Methods(http.MethodGet)
	api.HandleFunc("/posts/{slug}", ph.Detail).Methods(http.MethodGet)
	api.HandleFunc("/posts/{slug}/like", ph.Like).Methods(http.MethodPut)
	api.HandleFunc("/posts/{slug}/comments", ph.ListComments).Methods(http.MethodGet)
	api.HandleFunc("/posts/{slug}/comments", ph.AddComment).Methods(http.MethodPost)

	// Mutations require a valid token; delete is admin-only.
	secured := auth.RequireAuth(authSvc)
	api.Handle("/posts", secured(http.HandlerFunc(ph.Create))).Methods(http.MethodPost)
	api.Handle("/posts/{slug}", secured(http.HandlerFunc(ph.Update))).Methods(http.MethodPut)
	api.Handle("/posts/{slug}",
		secured(auth.RequireRole(http.HandlerFunc(ph.Delete), auth.RoleAdmin))).Methods(http.MethodDelete)

	return withCORS(r)
}
