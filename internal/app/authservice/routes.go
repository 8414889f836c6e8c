package authservice

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/auth-service/internal/config"
	"github.com/magabrotheeeer/auth-service/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/auth-service/internal/http/handlers/health"
	"github.com/magabrotheeeer/auth-service/internal/http/handlers/user/admincreate"
	"github.com/magabrotheeeer/auth-service/internal/http/handlers/user/available"
	"github.com/magabrotheeeer/auth-service/internal/http/handlers/user/list"
	"github.com/magabrotheeeer/auth-service/internal/http/handlers/user/read"
	"github.com/magabrotheeeer/auth-service/internal/http/handlers/user/register"
	"github.com/magabrotheeeer/auth-service/internal/http/handlers/user/remove"
	"github.com/magabrotheeeer/auth-service/internal/http/handlers/user/update"
	"github.com/magabrotheeeer/auth-service/internal/http/middlewarectx"
	"github.com/magabrotheeeer/auth-service/internal/models"
	authservice "github.com/magabrotheeeer/auth-service/internal/services/auth"
	userservice "github.com/magabrotheeeer/auth-service/internal/services/user"
	"github.com/magabrotheeeer/auth-service/internal/storage/repository"
)

// RegisterRoutes регистрирует все маршруты приложения.
//
// Токен проверяется на каждом запросе: невалидный токен не прерывает
// запрос, а оставляет его неаутентифицированным. Отказ выносят
// RequireAuthenticated и RequireRole на защищённых группах.
func RegisterRoutes(r chi.Router, logger *slog.Logger, cfg *config.Config, storage *repository.Storage, users *userservice.Service, auth *authservice.Service) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
		middlewarectx.JWTMiddleware(auth, cfg.JWTToken, logger),
	)

	// Открытые конечные точки
	r.Group(func(r chi.Router) {
		r.Use(middlewarectx.RateLimitMiddleware(logger))
		r.Post("/login", login.New(logger, auth, cfg.JWTToken).ServeHTTP)
	})
	r.Post("/users", register.New(logger, users).ServeHTTP)
	r.Get("/users/available", available.New(logger, users).ServeHTTP)
	r.Get("/health", health.New(logger, storage).ServeHTTP)

	// Группа для аутентифицированных пользователей
	r.Group(func(r chi.Router) {
		r.Use(middlewarectx.RequireAuthenticated(logger))
		r.Put("/users", update.New(logger, users).ServeHTTP)
	})

	// Группа только для администраторов
	r.Group(func(r chi.Router) {
		r.Use(middlewarectx.RequireAuthenticated(logger))
		r.Use(middlewarectx.RequireRole(models.RoleAdmin, logger))

		readHandler := read.New(logger, users)
		r.Get("/users", list.New(logger, users).ServeHTTP)
		r.Get("/users/id/{id}", readHandler.ByID)
		r.Get("/users/username/{username}", readHandler.ByUsername)
		r.Get("/users/email/{email}", readHandler.ByEmail)
		r.Post("/users/admin", admincreate.New(logger, users).ServeHTTP)
		r.Delete("/users/{id}", remove.New(logger, users).ServeHTTP)
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
