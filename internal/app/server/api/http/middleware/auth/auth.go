package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"crownsync/internal/domain/session"
	"crownsync/internal/domain/user"
)

type Auth struct {
	session session.Servicer
	log     *slog.Logger
}

func New(session session.Servicer, log *slog.Logger) *Auth {
	return &Auth{
		session: session,
		log:     log.With(slog.String("component", "auth_middleware")),
	}
}

type contextKey string

const principalKey contextKey = "principal"

// Middleware проверяет Bearer токен и кладёт Principal в контекст
func (a *Auth) Middleware() func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		header := ctx.Header("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			a.log.Debug("missing bearer token", "path", ctx.URL().Path)
			writeError(ctx, http.StatusUnauthorized, "Unauthorized")
			return
		}

		p, err := a.session.Validate(ctx.Context(), token)
		if err != nil {
			a.log.Warn("token rejected", "path", ctx.URL().Path, "error", err)
			writeError(ctx, http.StatusUnauthorized, "Unauthorized")
			return
		}

		next(huma.WithContext(ctx, WithPrincipal(ctx.Context(), p)))
	}
}

// RequireWriter пропускает только пользователей с правом записи, ставится после Middleware
func RequireWriter() func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		p, ok := GetPrincipal(ctx.Context())
		if !ok || !p.Role.CanWrite() {
			writeError(ctx, http.StatusForbidden, "Forbidden")
			return
		}
		next(ctx)
	}
}

func WithPrincipal(ctx context.Context, p session.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

func GetPrincipal(ctx context.Context) (session.Principal, bool) {
	p, ok := ctx.Value(principalKey).(session.Principal)
	return p, ok
}

func GetUserID(ctx context.Context) (int, bool) {
	p, ok := GetPrincipal(ctx)
	return p.UserID, ok
}

func GetRole(ctx context.Context) user.Role {
	p, _ := GetPrincipal(ctx)
	return p.Role
}

func writeError(ctx huma.Context, status int, msg string) {
	ctx.SetHeader("Content-Type", "application/json")
	ctx.SetStatus(status)
	_ = json.NewEncoder(ctx.BodyWriter()).Encode(map[string]string{"error": msg})
}
