package auth

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const CookieName = "session"

// Authenticate resolves the bearer token or session cookie into a User.
// Requests without valid credentials pass through anonymously; the role
// always comes from the users table, never from the token.
func Authenticate(a *AuthService, users *Users, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := tokenFromRequest(r)
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}
			claims, err := a.Parse(raw)
			if err != nil {
				log.Debug("rejected token", zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}
			id, err := claims.UserID()
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			u, err := users.GetByID(r.Context(), id)
			switch {
			case err == nil:
				next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
			case errors.Is(err, ErrUserNotFound):
				next.ServeHTTP(w, r)
			default:
				log.Error("load session user", zap.Int64("user_id", id), zap.Error(err))
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
		})
	}
}

func tokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	if c, err := r.Cookie(CookieName); err == nil {
		return c.Value
	}
	return ""
}

// RequireUser redirects anonymous browser requests to loginPath.
func RequireUser(loginPath string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := UserFromContext(r.Context()); !ok {
				http.Redirect(w, r, loginPath, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAPIUser answers 401 for anonymous API requests.
func RequireAPIUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := UserFromContext(r.Context()); !ok {
			w.Header().Set("WWW-Authenticate", `Bearer realm="`+issuer+`"`)
			http.Error(w, "missing or invalid credentials", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func SetSessionCookie(w http.ResponseWriter, token string, ttl time.Duration, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(ttl.Seconds()),
	})
}

func ClearSessionCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}
