// Package user содержит бизнес-логику работы с учётными записями:
// проверку полей, контроль уникальности username и email, контролируемую
// смену роли и построение принципала для слоя аутентификации.
package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/auth-service/internal/events"
	"github.com/magabrotheeeer/auth-service/internal/lib/password"
	"github.com/magabrotheeeer/auth-service/internal/lib/sl"
	"github.com/magabrotheeeer/auth-service/internal/models"
	"github.com/magabrotheeeer/auth-service/internal/storage/repository"
)

// Время жизни закешированной учётной записи.
const cacheTTL = time.Hour

// UserRepository описывает контракт для работы с учётными записями в базе данных.
type UserRepository interface {
	// SaveUser сохраняет нового пользователя и возвращает назначенный id.
	SaveUser(ctx context.Context, user models.User) (int, error)
	// GetUserByID возвращает пользователя по id или repository.ErrUserNotFound.
	GetUserByID(ctx context.Context, id int) (*models.User, error)
	// GetUserByUsername возвращает пользователя по имени или repository.ErrUserNotFound.
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	// GetUserByEmail возвращает пользователя по email или repository.ErrUserNotFound.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	// ListUsers возвращает все учётные записи.
	ListUsers(ctx context.Context) ([]*models.User, error)
	// UpdateUser перезаписывает запись и возвращает число обновлённых строк.
	UpdateUser(ctx context.Context, user models.User) (int64, error)
	// DeleteUser удаляет запись и возвращает число удалённых строк.
	DeleteUser(ctx context.Context, id int) (int64, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Invalidate(ctx context.Context, key string) error
}

// EventPublisher публикует события жизненного цикла учётной записи.
type EventPublisher interface {
	Publish(event events.UserEvent) error
}

// Service реализует бизнес-логику учётных записей поверх хранилища,
// кеша и издателя событий.
type Service struct {
	repo      UserRepository
	cache     Cache
	publisher EventPublisher
	log       *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo UserRepository, cache Cache, publisher EventPublisher, log *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		cache:     cache,
		publisher: publisher,
		log:       log,
	}
}

// ValidateFields проверяет заполненность всех обязательных полей и
// допустимость роли. Чистый предикат без побочных эффектов: при любом
// сомнении возвращает false.
func (s *Service) ValidateFields(u *models.User) bool {
	if u == nil {
		return false
	}
	if u.FirstName == "" || u.LastName == "" || u.Email == "" ||
		u.Username == "" || u.Password == "" {
		return false
	}
	return u.Role == models.RoleUser || u.Role == models.RoleAdmin
}

// FindByID возвращает учётную запись по id, используя кеш или хранилище.
func (s *Service) FindByID(ctx context.Context, id int) (*models.User, error) {
	if id <= 0 {
		return nil, ErrInvalidArgument
	}

	var cached *models.User
	cacheKey := fmt.Sprintf("user:%d", id)
	found, err := s.cache.Get(ctx, cacheKey, &cached)
	if err != nil {
		s.log.Warn("failed to read user from cache", slog.String("key", cacheKey), sl.Err(err))
	}
	if found {
		return cached, nil
	}

	u, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if err := s.cache.Set(ctx, cacheKey, u, cacheTTL); err != nil {
		s.log.Warn("failed to cache user", slog.String("key", cacheKey), sl.Err(err))
	}
	return u, nil
}

// FindByUsername возвращает учётную запись по имени пользователя.
func (s *Service) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	if username == "" {
		return nil, ErrInvalidArgument
	}
	u, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

// FindByEmail возвращает учётную запись по email.
func (s *Service) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if email == "" {
		return nil, ErrInvalidArgument
	}
	u, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

// FindAll возвращает все учётные записи.
func (s *Service) FindAll(ctx context.Context) ([]*models.User, error) {
	return s.repo.ListUsers(ctx)
}

// IsUsernameAvailable сообщает, свободно ли имя пользователя.
// Сам ввод при этом не проверяется.
func (s *Service) IsUsernameAvailable(ctx context.Context, username string) (bool, error) {
	_, err := s.repo.GetUserByUsername(ctx, username)
	if errors.Is(err, repository.ErrUserNotFound) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return false, nil
}

// IsEmailAvailable сообщает, свободен ли email.
func (s *Service) IsEmailAvailable(ctx context.Context, email string) (bool, error) {
	_, err := s.repo.GetUserByEmail(ctx, email)
	if errors.Is(err, repository.ErrUserNotFound) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return false, nil
}

// AddUser создаёт новую учётную запись.
//
// Порядок проверок фиксирован: поля, затем занятость username, затем
// занятость email — первый конфликт выигрывает. Пароль хэшируется
// непосредственно перед записью. Проверка и запись не атомарны;
// проигранную гонку ловит ограничение UNIQUE в базе, которое
// возвращается как конфликт занятого username.
func (s *Service) AddUser(ctx context.Context, u models.User) (*models.User, error) {
	if !s.ValidateFields(&u) {
		return nil, ErrInvalidUser
	}

	available, err := s.IsUsernameAvailable(ctx, u.Username)
	if err != nil {
		return nil, err
	}
	if !available {
		return nil, ErrUsernameTaken
	}

	available, err = s.IsEmailAvailable(ctx, u.Email)
	if err != nil {
		return nil, err
	}
	if !available {
		return nil, ErrEmailTaken
	}

	hashed, err := password.GetHash(u.Password)
	if err != nil {
		return nil, err
	}
	u.Password = hashed

	id, err := s.repo.SaveUser(ctx, u)
	if err != nil {
		if errors.Is(err, repository.ErrUniqueViolation) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}
	u.ID = id

	s.log.Info("created new user", slog.Int("id", id), slog.String("username", u.Username))

	cacheKey := fmt.Sprintf("user:%d", id)
	if err := s.cache.Set(ctx, cacheKey, &u, cacheTTL); err != nil {
		s.log.Warn("failed to cache user", slog.String("key", cacheKey), sl.Err(err))
	}
	s.publish(events.UserCreated, u.Username)

	return &u, nil
}

// UpdateUser перезаписывает учётную запись с данным id.
//
// Изменённые username и email повторно проверяются на занятость другой
// записью. Смена роли без allowRoleChange отклоняется; при запрете роль
// сохраняется из персистентной записи. Пароль хэшируется заново.
func (s *Service) UpdateUser(ctx context.Context, u models.User, allowRoleChange bool) (bool, error) {
	if !s.ValidateFields(&u) {
		return false, ErrInvalidUser
	}

	persisted, err := s.repo.GetUserByID(ctx, u.ID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return false, ErrUpdateUserNotFound
		}
		return false, err
	}

	if u.Username != persisted.Username {
		other, err := s.repo.GetUserByUsername(ctx, u.Username)
		if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
			return false, err
		}
		if other != nil && other.ID != u.ID {
			return false, ErrUsernameTaken
		}
	}

	if u.Email != persisted.Email {
		other, err := s.repo.GetUserByEmail(ctx, u.Email)
		if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
			return false, err
		}
		if other != nil && other.ID != u.ID {
			return false, ErrEmailTaken
		}
	}

	if u.Role != persisted.Role && !allowRoleChange {
		return false, ErrRoleChangeNotAllowed
	}

	hashed, err := password.GetHash(u.Password)
	if err != nil {
		return false, err
	}
	u.Password = hashed

	count, err := s.repo.UpdateUser(ctx, u)
	if err != nil {
		if errors.Is(err, repository.ErrUniqueViolation) {
			return false, ErrUsernameTaken
		}
		return false, err
	}
	if count == 0 {
		return false, ErrUpdateUserNotFound
	}

	s.log.Info("updated user", slog.Int("id", u.ID))

	cacheKey := fmt.Sprintf("user:%d", u.ID)
	if err := s.cache.Invalidate(ctx, cacheKey); err != nil {
		s.log.Warn("failed to invalidate cache", slog.String("key", cacheKey), sl.Err(err))
	}
	s.publish(events.UserUpdated, u.Username)

	return true, nil
}

// DeleteUserByID удаляет учётную запись по id.
func (s *Service) DeleteUserByID(ctx context.Context, id int) (bool, error) {
	if id <= 0 {
		return false, ErrInvalidArgument
	}

	persisted, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return false, ErrUserNotFound
		}
		return false, err
	}

	if _, err := s.repo.DeleteUser(ctx, id); err != nil {
		return false, err
	}

	s.log.Info("deleted user", slog.Int("id", id))

	cacheKey := fmt.Sprintf("user:%d", id)
	if err := s.cache.Invalidate(ctx, cacheKey); err != nil {
		s.log.Warn("failed to invalidate cache", slog.String("key", cacheKey), sl.Err(err))
	}
	s.publish(events.UserDeleted, persisted.Username)

	return true, nil
}

// LoadPrincipalByUsername строит принципала для слоя аутентификации.
// Принципал несёт хэш пароля для сверки и список authorities,
// производный от единственной роли записи.
func (s *Service) LoadPrincipalByUsername(ctx context.Context, username string) (*models.Principal, error) {
	if username == "" {
		return nil, ErrInvalidArgument
	}
	u, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUnknownUser
		}
		return nil, err
	}
	return &models.Principal{
		Username:     u.Username,
		PasswordHash: u.Password,
		Authorities:  []string{u.Role},
		User:         u,
	}, nil
}

// publish отправляет событие жизненного цикла; сбой только логируется.
func (s *Service) publish(eventType, username string) {
	if s.publisher == nil {
		return
	}
	event := events.NewUserEvent(eventType, username)
	if err := s.publisher.Publish(event); err != nil {
		s.log.Warn("failed to publish user event",
			slog.String("type", eventType), sl.Err(err))
	}
}
