package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/magabrotheeeer/auth-service/internal/models"
)

// SaveUser сохраняет нового пользователя и возвращает назначенный базой id.
// Поле Password должно уже содержать bcrypt-хэш.
func (s *Storage) SaveUser(ctx context.Context, user models.User) (int, error) {
	const op = "storage.SaveUser"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newID int
	query := `INSERT INTO users (first_name, last_name, email, username, password_hash, role)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING id;`
	if err := s.DB.QueryRowContext(ctx, query,
		user.FirstName, user.LastName, user.Email, user.Username,
		user.Password, user.Role).Scan(&newID); err != nil {
		return 0, fmt.Errorf("%s: %w", op, mapUniqueViolation(err))
	}
	return newID, nil
}

// GetUserByID возвращает пользователя по его id.
func (s *Storage) GetUserByID(ctx context.Context, id int) (*models.User, error) {
	const op = "storage.GetUserByID"
	return s.getUser(ctx, op, `WHERE id = $1`, id)
}

// GetUserByUsername возвращает пользователя по его username.
func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	const op = "storage.GetUserByUsername"
	return s.getUser(ctx, op, `WHERE username = $1`, username)
}

// GetUserByEmail возвращает пользователя по его email.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.GetUserByEmail"
	return s.getUser(ctx, op, `WHERE email = $1`, email)
}

func (s *Storage) getUser(ctx context.Context, op, where string, key any) (*models.User, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, first_name, last_name, email, username, password_hash, role
			  FROM users ` + where
	u := &models.User{}
	row := s.DB.QueryRowContext(ctx, query, key)
	if err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email,
		&u.Username, &u.Password, &u.Role); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// ListUsers возвращает все учётные записи, отсортированные по id.
func (s *Storage) ListUsers(ctx context.Context) ([]*models.User, error) {
	const op = "storage.ListUsers"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, first_name, last_name, email, username, password_hash, role
			  FROM users
			  ORDER BY id;`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()
	var result []*models.User
	for rows.Next() {
		var u models.User
		if err = rows.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email,
			&u.Username, &u.Password, &u.Role); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &u)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdateUser перезаписывает все поля учётной записи с указанным id
// и возвращает количество обновлённых строк.
func (s *Storage) UpdateUser(ctx context.Context, user models.User) (int64, error) {
	const op = "storage.UpdateUser"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET first_name = $1, last_name = $2, email = $3,
			      username = $4, password_hash = $5, role = $6
			  WHERE id = $7`
	res, err := s.DB.ExecContext(ctx, query,
		user.FirstName, user.LastName, user.Email, user.Username,
		user.Password, user.Role, user.ID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, mapUniqueViolation(err))
	}
	count, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

// DeleteUser удаляет учётную запись по id и возвращает количество
// удалённых строк.
func (s *Storage) DeleteUser(ctx context.Context, id int) (int64, error) {
	const op = "storage.DeleteUser"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	res, err := s.DB.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return ErrUniqueViolation
	}
	return err
}
