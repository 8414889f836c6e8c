package user

import "errors"

// Таксономия ошибок сервиса учётных записей. Обработчики транслируют
// их в HTTP-статусы: некорректный ввод — 400/422, отсутствие записи —
// 404, конфликты уникальности и прав — 409, неизвестный пользователь
// при входе — 401.
var (
	// ErrInvalidUser — пользователь отсутствует или не прошёл проверку полей.
	ErrInvalidUser = errors.New("user is missing required fields")
	// ErrInvalidArgument — пустой или некорректный ключ поиска.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrUserNotFound — запись с указанным ключом отсутствует.
	ErrUserNotFound = errors.New("user not found")
	// ErrUpdateUserNotFound — обновление нацелено на несуществующий id.
	ErrUpdateUserNotFound = errors.New("no user exists with the given id")
	// ErrUsernameTaken — имя пользователя занято другой записью.
	ErrUsernameTaken = errors.New("username is already taken")
	// ErrEmailTaken — email занят другой записью.
	ErrEmailTaken = errors.New("email is already taken")
	// ErrRoleChangeNotAllowed — попытка сменить роль без соответствующего права.
	ErrRoleChangeNotAllowed = errors.New("role change is not permitted")
	// ErrUnknownUser — учётные данные ссылаются на неизвестного пользователя.
	ErrUnknownUser = errors.New("unknown user")
)
