// Package available реализует HTTP-обработчик проверки доступности
// имени пользователя или email до регистрации.
package available

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/auth-service/internal/http/response"
	"github.com/magabrotheeeer/auth-service/internal/lib/sl"
)

// Service описывает интерфейс проверки уникальности.
type Service interface {
	IsUsernameAvailable(ctx context.Context, username string) (bool, error)
	IsEmailAvailable(ctx context.Context, email string) (bool, error)
}

// Handler обрабатывает запросы проверки доступности.
type Handler struct {
	log   *slog.Logger
	users Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, users Service) *Handler {
	return &Handler{log: log, users: users}
}

// ServeHTTP godoc
// @Summary Проверка доступности имени пользователя или email
// @Description Принимает query-параметр username или email и сообщает, свободно ли значение.
// @Tags Users
// @Produce  json
// @Param username query string false "Имя пользователя"
// @Param email query string false "Email"
// @Success 200 {object} response.Response "Результат проверки"
// @Failure 400 {object} response.ErrorResponse "Не указан ни username, ни email"
// @Router /users/available [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.available"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var (
		available bool
		err       error
	)
	switch {
	case r.URL.Query().Get("username") != "":
		available, err = h.users.IsUsernameAvailable(r.Context(), r.URL.Query().Get("username"))
	case r.URL.Query().Get("email") != "":
		available, err = h.users.IsEmailAvailable(r.Context(), r.URL.Query().Get("email"))
	default:
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("username or email query parameter is required"))
		return
	}
	if err != nil {
		log.Error("failed to check availability", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to check availability"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]bool{"available": available}))
}
