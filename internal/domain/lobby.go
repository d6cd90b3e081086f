package domain

// Видимость лобби
type LobbyVisibility int

const (
	VisibilityPublic  LobbyVisibility = 0
	VisibilityPrivate LobbyVisibility = 1
)

// Лобби - комната ожидания ровно для двух игроков.
// Хранится как hash lobby:<id>, игроки - в lobby:<id>:player1 и lobby:<id>:player2
type Lobby struct {
	ID         int
	Name       string
	Code       string // секрет для входа в приватное лобби, 8 символов
	Visibility LobbyVisibility
	AIHelp     bool
	Timeout    int // таймаут хода в секундах
}

// Слот игрока в лобби. player1 - всегда создатель
type LobbyPlayer struct {
	ID    int64
	Ready bool
}
