// Package register реализует HTTP-обработчик самостоятельной регистрации.
// Роль новой учётной записи всегда user; администраторов создаёт
// отдельный обработчик admincreate.
package register

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/auth-service/internal/http/response"
	"github.com/magabrotheeeer/auth-service/internal/lib/sl"
	"github.com/magabrotheeeer/auth-service/internal/models"
	userservice "github.com/magabrotheeeer/auth-service/internal/services/user"
)

// Request — входные данные для регистрации.
type Request struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Username  string `json:"username" validate:"required,min=3,max=50"`
	Password  string `json:"password" validate:"required,min=6"`
}

// Service описывает интерфейс создания учётной записи.
type Service interface {
	AddUser(ctx context.Context, u models.User) (*models.User, error)
}

// Handler обрабатывает запросы регистрации.
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
// @Summary Регистрация пользователя
// @Description Создаёт учётную запись с ролью user.
// @Tags Users
// @Accept  json
// @Produce  json
// @Param request body Request true "Данные новой учётной записи"
// @Success 201 {object} response.Response "Учётная запись создана"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 409 {object} response.ErrorResponse "Имя пользователя или email заняты"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /users [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.register"

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

	created, err := h.users.AddUser(r.Context(), models.User{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Username:  req.Username,
		Password:  req.Password,
		Role:      models.RoleUser,
	})
	if err != nil {
		writeAddUserError(w, r, log, err)
		return
	}

	log.Info("user registered", slog.String("username", created.Username))
	w.WriteHeader(http.StatusCreated)
	render.JSON(w, r, response.OKWithData(created.Public()))
}

// writeAddUserError транслирует ошибки создания учётной записи в HTTP-статусы.
func writeAddUserError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	switch {
	case errors.Is(err, userservice.ErrInvalidUser):
		log.Error("invalid user fields", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("missing or invalid user fields"))
	case errors.Is(err, userservice.ErrUsernameTaken):
		log.Warn("username already taken")
		w.WriteHeader(http.StatusConflict)
		render.JSON(w, r, response.Error("username is already taken"))
	case errors.Is(err, userservice.ErrEmailTaken):
		log.Warn("email already taken")
		w.WriteHeader(http.StatusConflict)
		render.JSON(w, r, response.Error("email is already taken"))
	default:
		log.Error("failed to create user", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to create user"))
	}
}
