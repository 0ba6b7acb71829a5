package auth

import (
	"context"
	"encoding/json"
	"net/http"
)

// TokenHeader is the request header protected routes read the token from.
const TokenHeader = "x-auth-token"

// Identity is the decoded token payload attached to the request context.
// It is trusted for the token's lifetime; role changes made after issuance
// are not visible until the token expires and is reissued.
type Identity struct {
	UserID int64
	Role   Role
}

type contextKey string

const identityContextKey contextKey = "inkpress_identity"

func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, id)
}

func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(identityContextKey).(*Identity)
	return id, ok
}

// RequireAuth gates a handler behind token verification. A missing token
// ends the request with 401 {"msg":"no token"}, a bad or expired one with
// 401 {"msg":"invalid token"}; the wrapped handler never runs in either case.
func RequireAuth(svc *Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get(TokenHeader)
			if token == "" {
				writeAuthError(w, http.StatusUnauthorized, "no token")
				return
			}
			claims, err := svc.ParseToken(token)
			if err != nil {
				writeAuthError(w, http.StatusUnauthorized, "invalid token")
				return
			}
			id := &Identity{
				UserID: claims.UserID,
				Role:   claims.Role,
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// RequireRole rejects authenticated requests whose role is not in the
// allowed set. It must run inside RequireAuth.
func RequireRole(next http.Handler, roles ...Role) http.Handler {
	allowed := make(map[Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := IdentityFromContext(r.Context())
		if !ok {
			writeAuthError(w, http.StatusUnauthorized, "no token")
			return
		}
		if _, ok := allowed[id.Role]; !ok {
			writeAuthError(w, http.StatusForbidden, "forbidden")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeAuthError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"msg": msg})
}
