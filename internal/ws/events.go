package ws

import "guesswho_backend/internal/domain"

// Действия событий лобби
const (
	ActionJoin   = "JOIN"
	ActionExit   = "EXIT"
	ActionReady  = "READY"
	ActionDelete = "DELETE"
	ActionStart  = "START"
)

// Событие лобби: уходит на приватный канал lobby.<id> второму участнику
// (инициатор узнает результат из собственного HTTP-ответа)
type LobbyEvent struct {
	LobbyID int          `json:"lobby_id"`
	Action  string       `json:"action"`
	User    *domain.User `json:"user,omitempty"`
	Ready   *bool        `json:"ready,omitempty"`

	// поля START
	AIHelp        *bool        `json:"aihelp,omitempty"`
	Timeout       int          `json:"timeout,omitempty"`
	GameID        *int         `json:"game_id,omitempty"`
	GameWebsocket string       `json:"game_websocket,omitempty"`
	Enemy         *domain.User `json:"enemy,omitempty"`
}

// Событие матча: уходит на канал game.<id>.player.<playerId> ровно
// одному игроку, с локальным кодом фазы его роли
type GameEvent struct {
	GamePhase int            `json:"game_phase"`
	Payload   map[string]any `json:"payload"`
}
