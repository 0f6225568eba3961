package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"
)

// POST /auth/token  { "username": "...", "password": "..." }
func TokenHandler(a *AuthService, users *Users, log *zap.Logger) http.HandlerFunc {
	type out struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
		ExpiresIn   int    `json:"expires_in"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		u, err := users.Authenticate(r.Context(), req.Username, req.Password)
		if errors.Is(err, ErrInvalidCredentials) {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		if err != nil {
			log.Error("authenticate", zap.Error(err))
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		tok, err := a.IssueJWT(u)
		if err != nil {
			log.Error("issue token", zap.Error(err))
			http.Error(w, "issue token", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(out{AccessToken: tok, TokenType: "Bearer", ExpiresIn: int(a.ttl.Seconds())})
	}
}
