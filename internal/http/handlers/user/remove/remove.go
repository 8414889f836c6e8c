// Package remove реализует HTTP-обработчик удаления учётной записи.
package remove

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/auth-service/internal/http/response"
	"github.com/magabrotheeeer/auth-service/internal/lib/sl"
	userservice "github.com/magabrotheeeer/auth-service/internal/services/user"
)

// Service описывает интерфейс удаления учётной записи.
type Service interface {
	DeleteUserByID(ctx context.Context, id int) (bool, error)
}

// Handler обрабатывает запросы удаления учётной записи.
type Handler struct {
	log   *slog.Logger
	users Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, users Service) *Handler {
	return &Handler{log: log, users: users}
}

// ServeHTTP godoc
// @Summary Удаление учётной записи
// @Description Удаляет учётную запись по id. Доступно только администраторам.
// @Tags Users
// @Produce  json
// @Security BearerAuth
// @Param id path int true "Идентификатор учётной записи"
// @Success 200 {object} response.Response "Учётная запись удалена"
// @Failure 400 {object} response.ErrorResponse "Некорректный идентификатор"
// @Failure 404 {object} response.ErrorResponse "Учётная запись не найдена"
// @Router /users/{id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.remove"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		log.Error("invalid id", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid id"))
		return
	}

	if _, err := h.users.DeleteUserByID(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, userservice.ErrInvalidArgument):
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid id"))
		case errors.Is(err, userservice.ErrUserNotFound):
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("user not found"))
		default:
			log.Error("failed to delete user", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to delete user"))
		}
		return
	}

	log.Info("user deleted", slog.Int("id", id))
	render.JSON(w, r, response.OKWithData(map[string]int{"id": id}))
}
