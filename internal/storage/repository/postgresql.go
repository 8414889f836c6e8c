// Package repository реализует хранилище учётных записей на основе
// PostgreSQL. Предоставляет методы создания, чтения, обновления и
// удаления пользователей; уникальность username и email дополнительно
// страхуется ограничениями UNIQUE на уровне базы.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	// Регистрация драйвера pgx для использования с database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Ошибки хранилища, по которым сервисный слой строит свою таксономию.
var (
	// ErrUserNotFound — запись с указанным ключом отсутствует.
	ErrUserNotFound = errors.New("user not found")
	// ErrUniqueViolation — вставка или обновление нарушили ограничение
	// уникальности username либо email. Срабатывает, когда проверка
	// check-then-act в сервисном слое проиграла гонку.
	ErrUniqueViolation = errors.New("username or email already exists")
)

// Storage инкапсулирует соединение с базой данных PostgreSQL
// и реализует методы работы с учётными записями.
type Storage struct {
	DB *sql.DB
}

// New создаёт подключение к PostgreSQL и проверяет его доступность.
func New(storageConnectionString string) (*Storage, error) {
	const op = "storage.New"

	db, err := sql.Open("pgx", storageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{
		DB: db,
	}, nil
}

// CheckDatabaseReady проверяет готовность базы данных.
func (s *Storage) CheckDatabaseReady(ctx context.Context) error {
	var exists bool
	err := s.DB.QueryRowContext(ctx, `SELECT EXISTS (
        SELECT FROM information_schema.tables
        WHERE table_name = 'users'
    )`).Scan(&exists)
	if err != nil || !exists {
		return fmt.Errorf("required table users missing or query error: %w", err)
	}
	return nil
}
