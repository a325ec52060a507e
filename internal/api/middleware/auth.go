package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"graficaos.service/internal/core"
	"graficaos.service/internal/core/model"
	"graficaos.service/pkg/auth"
	"graficaos.service/pkg/telemetry"
)

type contextKey string

const requesterKey contextKey = "requester"

// TokenParser verifies bearer tokens.
type TokenParser interface {
	ParseToken(token string) (*auth.Claims, error)
}

// Authenticate rejects requests without a valid bearer token and stores the
// caller in the request context.
func Authenticate(parser TokenParser) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				writeError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			claims, err := parser.ParseToken(token)
			if err != nil {
				writeError(w, http.StatusUnauthorized, err.Error())
				return
			}

			req := core.Requester{UserID: claims.UserID, Role: model.Role(claims.Role)}
			trace.SpanFromContext(r.Context()).SetAttributes(
				attribute.String("app.user_id", req.UserID),
				attribute.String("app.role", string(req.Role)),
			)

			ctx := ContextWithRequester(r.Context(), req)
			ctx = telemetry.ContextWithUserID(ctx, req.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole only lets callers with the given role through.
func RequireRole(role model.Role) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			req, ok := RequesterFromContext(r.Context())
			if !ok || req.Role != role {
				writeError(w, http.StatusForbidden, core.ErrForbidden.Error())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func ContextWithRequester(ctx context.Context, req core.Requester) context.Context {
	return context.WithValue(ctx, requesterKey, req)
}

func RequesterFromContext(ctx context.Context) (core.Requester, bool) {
	req, ok := ctx.Value(requesterKey).(core.Requester)
	return req, ok
}
