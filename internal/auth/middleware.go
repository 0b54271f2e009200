package auth

import (
	"context"
	"encoding/json"
	"net/http"
)

const CookieName = "session_token"

// SessionReader is what the middleware needs from the session store.
type SessionReader interface {
	Get(ctx context.Context, token string) (Session, error)
}

type ctxKey struct{}

// FromContext returns the session attached by RequireUser/RequireAdmin.
func FromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(Session)
	return s, ok
}

func denied(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sessionFrom(r *http.Request, store SessionReader) (Session, bool) {
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return Session{}, false
	}
	sess, err := store.Get(r.Context(), c.Value)
	if err != nil {
		return Session{}, false
	}
	return sess, true
}

// RequireUser rejects requests without a valid session.
func RequireUser(store SessionReader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, ok := sessionFrom(r, store)
			if !ok {
				denied(w, http.StatusUnauthorized, "login required")
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, sess)))
		})
	}
}

// RequireAdmin rejects requests without an admin session.
func RequireAdmin(store SessionReader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, ok := sessionFrom(r, store)
			if !ok {
				denied(w, http.StatusUnauthorized, "login required")
				return
			}
			if !sess.IsAdmin {
				denied(w, http.StatusForbidden, "admin permission required")
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, sess)))
		})
	}
}
