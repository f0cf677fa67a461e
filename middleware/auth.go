package middleware

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ShinAdam/Badminton-Elo-App/services"
)

type contextKey string

const accessTokenContextKey contextKey = "access_token"

// Authenticate requires a valid, unrevoked bearer token and stores it in the
// request context.
func Authenticate(authService services.AuthService, logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r)
			if !ok {
				writeError(w, http.StatusUnauthorized, "missing or malformed authorization header")
				return
			}

			token, err := authService.Authenticate(r.Context(), raw)
			if err != nil {
				switch {
				case errors.Is(err, services.ErrTokenRevoked):
					writeError(w, http.StatusUnauthorized, "token has been revoked")
				case errors.Is(err, services.ErrTokenInvalid):
					writeError(w, http.StatusUnauthorized, "invalid or expired token")
				default:
					logger.ErrorContext(r.Context(), "token verification failed", slog.Any("error", err))
					writeError(w, http.StatusInternalServerError, "the server encountered a problem and could not process your request")
				}
				return
			}

			next.ServeHTTP(w, r.WithContext(WithAccessToken(r.Context(), token)))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
