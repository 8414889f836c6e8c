// Package auth содержит логику аутентификации: вход по учётным данным
// с выпуском токена и проверку токена с восстановлением принципала.
package auth

import (
	"context"
	"errors"

	"github.com/magabrotheeeer/auth-service/internal/lib/jwt"
	"github.com/magabrotheeeer/auth-service/internal/lib/password"
	"github.com/magabrotheeeer/auth-service/internal/models"
)

// ErrInvalidCredentials возвращается при неизвестном пользователе или
// несовпавшем пароле. Наружу причина не различается, чтобы не выдавать
// существование учётной записи.
var ErrInvalidCredentials = errors.New("invalid credentials")

// PrincipalLoader описывает контракт загрузки принципала по имени пользователя.
type PrincipalLoader interface {
	LoadPrincipalByUsername(ctx context.Context, username string) (*models.Principal, error)
}

// LoginResult — исход успешного входа: выпущенный токен и публичное
// представление учётной записи для тела ответа.
type LoginResult struct {
	Token string
	User  models.PublicUser
}

// Service отвечает за вход пользователя и проверку токенов.
type Service struct {
	users    PrincipalLoader
	jwtMaker jwt.Maker
}

// New создает новый экземпляр Service.
func New(users PrincipalLoader, jwtMaker jwt.Maker) *Service {
	return &Service{
		users:    users,
		jwtMaker: jwtMaker,
	}
}

// Login проверяет учётные данные и при успехе выпускает токен.
//
// Исход моделируется значением: либо LoginResult, либо
// ErrInvalidCredentials. Повторных попыток нет — неудачный вход
// терминален для запроса.
func (s *Service) Login(ctx context.Context, username, rawPassword string) (*LoginResult, error) {
	p, err := s.users.LoadPrincipalByUsername(ctx, username)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if err := password.CompareHash(p.PasswordHash, rawPassword); err != nil {
		return nil, ErrInvalidCredentials
	}
	token, err := s.jwtMaker.GenerateToken(p.Username, p.Authorities)
	if err != nil {
		return nil, err
	}
	return &LoginResult{
		Token: token,
		User:  p.User.Public(),
	}, nil
}

// ValidateToken проверяет токен и восстанавливает принципала из claims.
// Запись пользователя повторно не читается: токен самодостаточен,
// устаревшие authorities — осознанная плата за отсутствие состояния.
func (s *Service) ValidateToken(_ context.Context, token string) (*models.Principal, error) {
	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		return nil, err
	}
	return &models.Principal{
		Username:    claims.Username,
		Authorities: claims.Authorities,
	}, nil
}
