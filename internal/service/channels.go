package service

import (
	"context"
	"strconv"
	"strings"

	"guesswho_backend/internal/domain"
	"guesswho_backend/internal/logger"
	"guesswho_backend/internal/repository"
	"guesswho_backend/internal/ws"
)

// NewChannelAuthorizer решает, кому можно подписаться на топик.
// lobby.<id> - обоим участникам лобби, game.<id>.player.<uid> - только
// самому uid и только если он игрок матча. Остальное закрыто
func NewChannelAuthorizer(lobbies *repository.LobbyRepository, games *repository.GameRepository) ws.AuthorizeFunc {
	return func(ctx context.Context, userID int64, channel string) bool {
		parts := strings.Split(channel, ".")
		switch {
		case len(parts) == 2 && parts[0] == "lobby":
			id, err := strconv.Atoi(parts[1])
			if err != nil {
				return false
			}
			for _, slot := range []domain.PlayerSlot{domain.SlotPlayer1, domain.SlotPlayer2} {
				p, err := lobbies.Player(ctx, id, slot)
				if err != nil {
					logger.Error("авторизация канала лобби", "channel", channel, "error", err)
					return false
				}
				if p != nil && p.ID == userID {
					return true
				}
			}
			return false

		case len(parts) == 4 && parts[0] == "game" && parts[2] == "player":
			id, err := strconv.Atoi(parts[1])
			if err != nil {
				return false
			}
			owner, err := strconv.ParseInt(parts[3], 10, 64)
			if err != nil || owner != userID {
				return false
			}
			_, member, err := games.Slot(ctx, id, userID)
			if err != nil {
				logger.Error("авторизация канала игры", "channel", channel, "error", err)
				return false
			}
			return member
		}
		return false
	}
}
