package repository

import (
	"context"

	"guesswho_backend/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

// CharacterRepository - каталог персонажей (реляционный, read-only)
type CharacterRepository struct {
	db *pgxpool.Pool
}

func NewCharacterRepository(db *pgxpool.Pool) *CharacterRepository {
	return &CharacterRepository{db: db}
}

// Random выдает n случайных персонажей для ростера матча
func (r *CharacterRepository) Random(ctx context.Context, n int) ([]domain.Character, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name
		FROM characters
		ORDER BY random()
		LIMIT $1
	`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Character
	for rows.Next() {
		var c domain.Character
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
