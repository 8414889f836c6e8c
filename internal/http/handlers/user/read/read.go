// Package read реализует HTTP-обработчики поиска учётной записи по
// идентификатору, имени пользователя и email.
package read

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
	"github.com/magabrotheeeer/auth-service/internal/models"
	userservice "github.com/magabrotheeeer/auth-service/internal/services/user"
)

// Service описывает интерфейс поиска учётных записей.
type Service interface {
	FindByID(ctx context.Context, id int) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

// Handler обрабатывает запросы поиска учётной записи.
type Handler struct {
	log   *slog.Logger
	users Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, users Service) *Handler {
	return &Handler{log: log, users: users}
}

// ByID godoc
// @Summary Поиск учётной записи по id
// @Tags Users
// @Produce  json
// @Security BearerAuth
// @Param id path int true "Идентификатор учётной записи"
// @Success 200 {object} response.Response "Учётная запись"
// @Failure 400 {object} response.ErrorResponse "Некорректный идентификатор"
// @Failure 404 {object} response.ErrorResponse "Учётная запись не найдена"
// @Router /users/id/{id} [get]
func (h *Handler) ByID(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.read.ByID"

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

	u, err := h.users.FindByID(r.Context(), id)
	if err != nil {
		writeFindError(w, r, log, err)
		return
	}
	render.JSON(w, r, response.OKWithData(u.Public()))
}

// ByUsername godoc
// @Summary Поиск учётной записи по имени пользователя
// @Tags Users
// @Produce  json
// @Security BearerAuth
// @Param username path string true "Имя пользователя"
// @Success 200 {object} response.Response "Учётная запись"
// @Failure 404 {object} response.ErrorResponse "Учётная запись не найдена"
// @Router /users/username/{username} [get]
func (h *Handler) ByUsername(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.read.ByUsername"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	u, err := h.users.FindByUsername(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		writeFindError(w, r, log, err)
		return
	}
	render.JSON(w, r, response.OKWithData(u.Public()))
}

// ByEmail godoc
// @Summary Поиск учётной записи по email
// @Tags Users
// @Produce  json
// @Security BearerAuth
// @Param email path string true "Email"
// @Success 200 {object} response.Response "Учётная запись"
// @Failure 404 {object} response.ErrorResponse "Учётная запись не найдена"
// @Router /users/email/{email} [get]
func (h *Handler) ByEmail(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.read.ByEmail"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	u, err := h.users.FindByEmail(r.Context(), chi.URLParam(r, "email"))
	if err != nil {
		writeFindError(w, r, log, err)
		return
	}
	render.JSON(w, r, response.OKWithData(u.Public()))
}

// writeFindError транслирует ошибки поиска в HTTP-статусы.
func writeFindError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	switch {
	case errors.Is(err, userservice.ErrInvalidArgument):
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request"))
	case errors.Is(err, userservice.ErrUserNotFound):
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("user not found"))
	default:
		log.Error("failed to find user", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to find user"))
	}
}
