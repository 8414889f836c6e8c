package jwt

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims описывает данные, хранящиеся внутри токена.
// Subject стандартного набора claims содержит имя пользователя,
// Authorities — список ролей одной строкой через запятую.
type Claims struct {
	Authorities          string `json:"authorities"`
	jwt.RegisteredClaims        // Встроенные стандартные claims JWT (ExpiresAt, IssuedAt и пр.)
}

// TokenClaims — результат успешной проверки токена.
type TokenClaims struct {
	Username    string
	Authorities []string
}

// GenerateToken выпускает токен HS256 с subject = username и списком
// authorities, подписывая его секретным ключом. Срок действия — tokenTTL
// от момента выпуска.
func (j *MakerImpl) GenerateToken(username string, authorities []string) (string, error) {
	const op = "jwt.GenerateToken"
	now := time.Now()
	claims := Claims{
		Authorities: strings.Join(authorities, ","),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.tokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(j.secretKey))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return signed, nil
}

// ParseToken проверяет подпись и срок действия токена.
//
// Истёкший токен возвращает ErrExpiredToken, любая другая проблема
// (неверная подпись, повреждённая структура, пустые claims) —
// ErrInvalidToken.
func (j *MakerImpl) ParseToken(tokenStr string) (*TokenClaims, error) {
	const op = "jwt.ParseToken"
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(_ *jwt.Token) (any, error) {
		return []byte(j.secretKey), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%s: %w", op, ErrExpiredToken)
		}
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}
	var authorities []string
	if claims.Authorities != "" {
		authorities = strings.Split(claims.Authorities, ",")
	}
	return &TokenClaims{
		Username:    claims.Subject,
		Authorities: authorities,
	}, nil
}
