package repository

import (
	"context"
	"errors"

	"guesswho_backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UserRepository - внешний каталог пользователей (реляционный).
// Здесь только чтение профилей: аутентификация и регистрация вне системы
type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

// GetByID возвращает (nil, nil) для неизвестного пользователя
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, username, COALESCE(profile_picture_path, ''), COALESCE(profile_picture_mime, '')
		FROM users
		WHERE id = $1
	`, id)

	var u domain.User
	if err := row.Scan(&u.ID, &u.Username, &u.ProfilePicturePath, &u.ProfilePictureMime); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}
