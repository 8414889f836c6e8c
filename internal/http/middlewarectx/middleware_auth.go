// Package middlewarectx содержит HTTP middleware слоя аутентификации.
//
// JWTMiddleware извлекает bearer-токен из настроенного заголовка и при
// успешной проверке кладёт принципала в контекст запроса. Отсутствующий
// или невалидный токен запрос не отклоняет — запрос проходит дальше
// неаутентифицированным, а отказ выносят RequireAuthenticated и
// RequireRole на защищённых маршрутах.
package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/auth-service/internal/config"
	"github.com/magabrotheeeer/auth-service/internal/http/response"
	"github.com/magabrotheeeer/auth-service/internal/lib/sl"
	"github.com/magabrotheeeer/auth-service/internal/models"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

// PrincipalKey — ключ, под которым принципал лежит в контексте запроса.
const PrincipalKey Key = "principal"

// Service описывает интерфейс сервиса для валидации JWT токена.
type Service interface {
	ValidateToken(ctx context.Context, token string) (*models.Principal, error)
}

// JWTMiddleware возвращает HTTP middleware, который проверяет токен
// в заголовке cfg.AuthHeader с префиксом cfg.TokenPrefix.
//
// Валидный токен добавляет принципала в контекст; любой другой исход
// пропускает запрос дальше без принципала. Middleware не мутирует
// ничего, кроме контекста запроса.
func JWTMiddleware(authService Service, cfg config.JWTToken, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.JWTMiddleware"

			authHeader := r.Header.Get(cfg.AuthHeader)
			if !strings.HasPrefix(authHeader, cfg.TokenPrefix) {
				next.ServeHTTP(w, r)
				return
			}
			tokenStr := strings.TrimPrefix(authHeader, cfg.TokenPrefix)

			principal, err := authService.ValidateToken(r.Context(), tokenStr)
			if err != nil {
				log.Warn("token rejected, request continues unauthenticated",
					slog.String("op", op),
					slog.String("request_id", middleware.GetReqID(r.Context())),
					sl.Err(err))
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), PrincipalKey, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// PrincipalFromContext возвращает принципала запроса, если он есть.
func PrincipalFromContext(ctx context.Context) (*models.Principal, bool) {
	p, ok := ctx.Value(PrincipalKey).(*models.Principal)
	return p, ok
}

// RequireAuthenticated отклоняет запросы без принципала со статусом 401.
func RequireAuthenticated(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := PrincipalFromContext(r.Context()); !ok {
				log.Warn("unauthenticated request to protected route",
					slog.String("request_id", middleware.GetReqID(r.Context())))
				w.WriteHeader(http.StatusUnauthorized)
				render.JSON(w, r, response.Error("authentication required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole отклоняет запросы, принципал которых не несёт указанную
// authority: без принципала — 401, без роли — 403.
func RequireRole(role string, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := PrincipalFromContext(r.Context())
			if !ok {
				w.WriteHeader(http.StatusUnauthorized)
				render.JSON(w, r, response.Error("authentication required"))
				return
			}
			if !slices.Contains(p.Authorities, role) {
				log.Warn("insufficient authorities",
					slog.String("username", p.Username),
					slog.String("required_role", role),
					slog.String("request_id", middleware.GetReqID(r.Context())))
				w.WriteHeader(http.StatusForbidden)
				render.JSON(w, r, response.Error("access denied"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
