package api

import (
	"context"
	"crypto/subtle"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	SessionHeaderName = "X-Session-ID"
	SessionCookieName = "doorstep_sid"
	sessionCookieTTL  = 24 * time.Hour
)

type contextKey int

const sessionIDKey contextKey = iota

var sessionIDPattern = regexp.MustCompile(`^[A-Za-z0-9._:-]{1,128}$`)

// SessionIDFromContext returns the client session id set by the middleware.
func SessionIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(sessionIDKey).(string); ok {
		return v
	}
	return ""
}

// sessionID resolves the conversation a request belongs to: the X-Session-ID
// header, then the cookie, then a fresh id. The id is echoed back in both.
func sessionID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := validSessionID(r.Header.Get(SessionHeaderName))
		if id == "" {
			if c, err := r.Cookie(SessionCookieName); err == nil {
				id = validSessionID(c.Value)
			}
		}
		if id == "" {
			id = uuid.NewString()
		}

		http.SetCookie(w, &http.Cookie{
			Name:     SessionCookieName,
			Value:    id,
			Path:     "/",
			MaxAge:   int(sessionCookieTTL.Seconds()),
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
		w.Header().Set(SessionHeaderName, id)

		ctx := context.WithValue(r.Context(), sessionIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func validSessionID(id string) string {
	id = strings.TrimSpace(id)
	if !sessionIDPattern.MatchString(id) {
		return ""
	}
	return id
}

// requirePIN guards manager routes with the shared PIN from the pin query
// parameter. An empty configured PIN locks the routes.
func requirePIN(pin string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.URL.Query().Get("pin")
			if pin == "" || subtle.ConstantTimeCompare([]byte(got), []byte(pin)) != 1 {
				Error(w, http.StatusUnauthorized, "invalid PIN")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
