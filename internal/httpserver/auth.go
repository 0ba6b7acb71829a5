package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"log/slog"

	"inkpress/internal/auth"
)

type tokenResponse struct {
	Token string `json:"token"`
}

func registerHandler(svc *auth.Service, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Username string    `json:"username"`
			Password string    `json:"password"`
			Role     auth.Role `json:"role"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeMsg(w, http.StatusBadRequest, "invalid request body")
			return
		}
		_, token, err := svc.Register(r.Context(), req.Username, req.Password, req.Role)
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrDuplicateUsername),
				errors.Is(err, auth.ErrMissingFields),
				errors.Is(err, auth.ErrInvalidRole):
				writeMsg(w, http.StatusBadRequest, err.Error())
			default:
				logger.Error("register", "err", err)
				writeMsg(w, http.StatusInternalServerError, "server error")
			}
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(tokenResponse{Token: token})
	})
}

func loginHandler(svc *auth.Service, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeMsg(w, http.StatusBadRequest, "invalid request body")
			return
		}
		_, token, err := svc.Authenticate(r.Context(), req.Username, req.Password)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidCredentials) {
				writeMsg(w, http.StatusBadRequest, err.Error())
				return
			}
			logger.Error("login", "err", err)
			writeMsg(w, http.StatusInternalServerError, "server error")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(tokenResponse{Token: token})
	})
}

func writeMsg(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"msg": msg})
}
