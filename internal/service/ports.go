package service

import (
	"context"

	"guesswho_backend/internal/domain"
)

// Broadcaster - шлюз push-событий. Реализуется ws.Hub,
// в тестах подменяется фейком
type Broadcaster interface {
	Publish(topic string, event any)
	// PublishExcept - семантика toOthers: инициатор уже знает исход
	// из собственного ответа
	PublishExcept(topic string, exceptUserID int64, event any)
}

// UserDirectory - внешний каталог пользователей для профилей в ответах
type UserDirectory interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

// CharacterCatalog - внешний каталог персонажей для ростера матча
type CharacterCatalog interface {
	Random(ctx context.Context, n int) ([]domain.Character, error)
}
