// Package jwt реализует выпуск и проверку подписанных bearer-токенов.
//
// Токен самодостаточен: в claims входят имя пользователя (subject),
// список authorities одной строкой через запятую, время выпуска и время
// истечения. Проверка — это только подпись и срок действия, состояние
// на сервере не хранится и запись пользователя повторно не читается.
package jwt

import (
	"errors"
	"time"
)

// Ошибки проверки токена. Все сбои подписи и структуры сводятся к
// ErrInvalidToken, истёкший срок действия выделен отдельно.
var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

// Maker описывает интерфейс для выпуска и проверки токенов.
type Maker interface {
	// GenerateToken выпускает подписанный токен для принципала.
	GenerateToken(username string, authorities []string) (string, error)
	// ParseToken проверяет подпись и срок действия токена и возвращает
	// восстановленные из claims имя пользователя и authorities.
	ParseToken(tokenStr string) (*TokenClaims, error)
}

// MakerImpl реализует интерфейс Maker с использованием секретного ключа
// и времени жизни токена (TTL).
type MakerImpl struct {
	secretKey string        // Секретный ключ для подписи токенов.
	tokenTTL  time.Duration // Время жизни токена.
}

// NewJWTMaker создаёт новый экземпляр MakerImpl на основе секретного ключа и TTL.
func NewJWTMaker(secretKey string, ttl time.Duration) *MakerImpl {
	return &MakerImpl{
		secretKey: secretKey,
		tokenTTL:  ttl,
	}
}
