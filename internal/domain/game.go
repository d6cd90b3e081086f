package domain

// Слот игрока в матче
type PlayerSlot int

const (
	SlotPlayer1 PlayerSlot = 1
	SlotPlayer2 PlayerSlot = 2
)

// Other возвращает противоположный слот
func (s PlayerSlot) Other() PlayerSlot {
	if s == SlotPlayer1 {
		return SlotPlayer2
	}
	return SlotPlayer1
}

// Авторитетная фаза матча. Каждый клиент видит свой локальный код фазы (1..13),
// вычисляемый проекцией из (фаза, владелец хода, слот наблюдателя)
type GamePhase int

const (
	PhaseLoad       GamePhase = iota + 1 // оба клиента грузят кэш и модель
	PhaseChoose                          // оба выбирают секретного персонажа
	PhaseAsk                             // владелец хода выбирает вопрос
	PhaseAnswer                          // пассивный игрок отвечает да/нет
	PhaseClosure                         // владелец хода закрывает кандидатов
	PhaseGuess                           // владелец хода называет персонажа
	PhaseGuessAwait                      // противник подтверждает догадку
	PhaseEnd                             // терминальная фаза, win/lose
)

// Матч. Хранится как hash game:<id>, игроки - в game:<id>:player1 и game:<id>:player2.
// Создается потреблением ровно одного лобби
type Game struct {
	ID         int
	AIHelp     bool
	Timeout    int
	Phase      GamePhase
	Turn       PlayerSlot // владелец активной роли в асимметричной фазе
	Characters string     // закэшированный ростер персонажей (JSON), "" пока не выдан
}

// Состояние игрока в матче
type GamePlayer struct {
	ID        int64
	Loading   bool
	Character int // секретный персонаж, 0 = еще не выбран
	Guess     int // названный при угадывании персонаж, 0 = не называл
}
