package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/vancomm/minesweeper-ai/internal/config"
)

type CtxKey int

const (
	CtxOperatorClaims CtxKey = iota
)

func OperatorClaims(ctx context.Context) (*config.OperatorClaims, bool) {
	claims, ok := ctx.Value(CtxOperatorClaims).(*config.OperatorClaims)
	return claims, ok
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if ok && token != "" {
		return token, true
	}
	// browsers cannot set headers on websocket handshakes
	if token := r.URL.Query().Get("access_token"); token != "" {
		return token, true
	}
	return "", false
}

/*
Auth puts the operator claims of a valid bearer token into the request
context. Requests without a token pass through unchanged; requests with an
invalid token are rejected.
*/
func Auth(logger *slog.Logger, j *config.JWT) Middleware {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				h.ServeHTTP(w, r)
				return
			}
			claims, err := j.ParseOperator(token)
			if err != nil {
				logger.Debug("rejected token", slog.Any("error", err))
				w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), CtxOperatorClaims, claims)
			h.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireOperator rejects requests that [Auth] did not authenticate.
func RequireOperator(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := OperatorClaims(r.Context()); !ok {
			w.Header().Set("WWW-Authenticate", "Bearer")
			http.Error(w, "operator token required", http.StatusUnauthorized)
			return
		}
		h(w, r)
	}
}
