package api

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/erazemk/stockledger/internal/access"
	"github.com/erazemk/stockledger/internal/auth"
	"github.com/erazemk/stockledger/internal/store"
)

type contextKey string

const (
	claimsKey  contextKey = "claims"
	requestKey contextKey = "request"
)

// requestInfo is filled in by inner middleware and read back by the request
// logger once the handler returns.
type requestInfo struct {
	userID *int64
}

// AuthMiddleware validates the bearer token, rejects revoked tokens and adds
// the claims to the context.
func AuthMiddleware(secret string, st *store.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				jsonError(w, http.StatusUnauthorized, "missing or invalid authorization header")
				return
			}

			claims, err := auth.ValidateToken(secret, strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				jsonError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			revoked, err := st.IsTokenRevoked(r.Context(), claims.ID)
			if err != nil {
				slog.Error("checking token revocation", "error", err)
				jsonError(w, http.StatusInternalServerError, "internal error")
				return
			}
			if revoked {
				jsonError(w, http.StatusUnauthorized, "token has been revoked")
				return
			}

			if info, ok := r.Context().Value(requestKey).(*requestInfo); ok {
				id := claims.UserID
				info.userID = &id
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireCapability rejects callers whose role may not perform op.
func RequireCapability(op access.Operation) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := GetClaims(r.Context())
			if claims == nil {
				jsonError(w, http.StatusUnauthorized, "not authenticated")
				return
			}
			if err := claims.Actor().Authorize(op); err != nil {
				writeError(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetClaims retrieves the token claims from the context.
func GetClaims(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(claimsKey).(*auth.Claims)
	return claims
}

// actor returns the authenticated caller. Only valid behind AuthMiddleware.
func actor(r *http.Request) access.Actor {
	if claims := GetClaims(r.Context()); claims != nil {
		return claims.Actor()
	}
	return access.Actor{}
}

// RequestLogger logs every request with slog and records it in api_logs.
func RequestLogger(st *store.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			info := &requestInfo{}
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r.WithContext(context.WithValue(r.Context(), requestKey, info)))

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			elapsed := time.Since(start)
			reqID := middleware.GetReqID(r.Context())

			slog.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"duration", elapsed.Round(time.Millisecond),
				"request_id", reqID,
			)

			err := st.RecordAPILog(context.WithoutCancel(r.Context()), store.APILog{
				UserID:     info.userID,
				Method:     r.Method,
				Path:       r.URL.Path,
				StatusCode: status,
				DurationMS: elapsed.Milliseconds(),
				RequestID:  reqID,
			})
			if err != nil {
				slog.Warn("recording api log", "error", err)
			}
		})
	}
}
