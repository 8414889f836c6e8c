// Package models содержит доменные структуры сервиса аутентификации:
// учётную запись пользователя, её публичное представление и принципала,
// восстанавливаемого из учётных данных или из проверенного токена.
package models

// Допустимые роли пользователя. Других значений поле Role принимать не может.
const (
	// RoleUser — обычный пользователь, назначается при самостоятельной регистрации.
	RoleUser = "user"
	// RoleAdmin — администратор, может управлять учётными записями.
	RoleAdmin = "admin"
)

// User представляет учётную запись пользователя системы.
//
// Идентификатор назначается хранилищем при создании и далее не меняется.
// Поле Password при создании и обновлении содержит пароль в открытом виде;
// сервисный слой заменяет его bcrypt-хэшем до записи в хранилище,
// поэтому из хранилища поле всегда читается как хэш.
type User struct {
	ID        int    // Идентификатор, назначается базой данных
	FirstName string // Имя
	LastName  string // Фамилия
	Email     string // Электронная почта (уникальная)
	Username  string // Имя пользователя (уникальное)
	Password  string // Пароль на входе, bcrypt-хэш в хранилище
	Role      string // Роль пользователя, user или admin
}

// PublicUser — представление учётной записи без хэша пароля.
// Именно оно возвращается наружу в HTTP-ответах.
type PublicUser struct {
	ID        int    `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	Role      string `json:"role"`
}

// Public возвращает публичное представление пользователя.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Username:  u.Username,
		Role:      u.Role,
	}
}

// Principal — аутентифицированная личность в рамках одного запроса.
// Создаётся либо при успешном входе, либо при проверке токена;
// никогда не сохраняется и живёт только в контексте запроса.
//
// PasswordHash заполняется только при загрузке из хранилища —
// он нужен слою аутентификации для сверки пароля. Принципал,
// восстановленный из токена, хэша не содержит.
type Principal struct {
	Username     string
	PasswordHash string
	Authorities  []string
	User         *User
}
