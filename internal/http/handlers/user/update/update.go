// Package update реализует HTTP-обработчик изменения учётной записи.
//
// Смена роли разрешена только если запрос выполняет администратор:
// признак берётся из принципала в контексте запроса.
package update

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"slices"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/auth-service/internal/http/middlewarectx"
	"github.com/magabrotheeeer/auth-service/internal/http/response"
	"github.com/magabrotheeeer/auth-service/internal/lib/sl"
	"github.com/magabrotheeeer/auth-service/internal/models"
	userservice "github.com/magabrotheeeer/auth-service/internal/services/user"
)

// Request — входные данные для изменения учётной записи.
type Request struct {
	ID        int    `json:"id" validate:"required,min=1"`
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Username  string `json:"username" validate:"required,min=3,max=50"`
	Password  string `json:"password" validate:"required,min=6"`
	Role      string `json:"role" validate:"required,oneof=user admin"`
}

// Service описывает интерфейс изменения учётной записи.
type Service interface {
	UpdateUser(ctx context.Context, u models.User, allowRoleChange bool) (bool, error)
}

// Handler обрабатывает запросы изменения учётной записи.
type Handler struct {
	log      *slog.Logger
	users    Service
	validate *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, users Service) *Handler {
	return &Handler{
		log:      log,
		users:    users,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Изменение учётной записи
// @Description Перезаписывает учётную запись. Смена роли доступна только администраторам.
// @Tags Users
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body Request true "Новое состояние учётной записи"
// @Success 200 {object} response.Response "Учётная запись обновлена"
// @Failure 404 {object} response.ErrorResponse "Учётная запись не найдена"
// @Failure 409 {object} response.ErrorResponse "Конфликт уникальности или запрещённая смена роли"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /users [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.update"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	allowRoleChange := false
	if p, ok := middlewarectx.PrincipalFromContext(r.Context()); ok {
		allowRoleChange = slices.Contains(p.Authorities, models.RoleAdmin)
	}

	_, err := h.users.UpdateUser(r.Context(), models.User{
		ID:        req.ID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Username:  req.Username,
		Password:  req.Password,
		Role:      req.Role,
	}, allowRoleChange)
	if err != nil {
		switch {
		case errors.Is(err, userservice.ErrInvalidUser):
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("missing or invalid user fields"))
		case errors.Is(err, userservice.ErrUpdateUserNotFound):
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("user not found"))
		case errors.Is(err, userservice.ErrUsernameTaken):
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("username is already taken"))
		case errors.Is(err, userservice.ErrEmailTaken):
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("email is already taken"))
		case errors.Is(err, userservice.ErrRoleChangeNotAllowed):
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("role change is not allowed"))
		default:
			log.Error("failed to update user", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to update user"))
		}
		return
	}

	log.Info("user updated", slog.Int("id", req.ID))
	render.JSON(w, r, response.OKWithData(map[string]int{"id": req.ID}))
}
