package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"guesswho_backend/internal/domain"
	"guesswho_backend/internal/game"
	pkglock "guesswho_backend/internal/lock"
	"guesswho_backend/internal/logger"
	"guesswho_backend/internal/repository"
	"guesswho_backend/internal/ws"
)

const (
	gameLease = 5 * time.Second
	// создание игры сериализуется отдельно от мутаций лобби
	createGameLease = 10 * time.Second
	// размер ростера персонажей на матч
	rosterSize = 24
)

func gameLock(id int) string { return fmt.Sprintf("game_%d", id) }

func playerTopic(gameID int, userID int64) string {
	return fmt.Sprintf("game.%d.player.%d", gameID, userID)
}

// GameService - координатор матча: владеет 13-фазным протоколом хода,
// считает асимметричные представления и шлет каждому игроку событие его роли
type GameService struct {
	lobbies    *repository.LobbyRepository
	games      *repository.GameRepository
	locker     *pkglock.Locker
	users      UserDirectory
	characters CharacterCatalog
	events     Broadcaster
}

func NewGameService(lobbies *repository.LobbyRepository, games *repository.GameRepository, locker *pkglock.Locker, users UserDirectory, characters CharacterCatalog, events Broadcaster) *GameService {
	return &GameService{
		lobbies:    lobbies,
		games:      games,
		locker:     locker,
		users:      users,
		characters: characters,
		events:     events,
	}
}

type StartResult struct {
	GameID    int          `json:"game_id"`
	AIHelp    bool         `json:"aihelp"`
	Timeout   int          `json:"timeout"`
	Websocket string       `json:"game_websocket"`
	Enemy     *domain.User `json:"enemy,omitempty"`
}

// Start потребляет укомплектованное лобби и материализует игру.
// Двойная блокировка: create_game сериализует выдачу id, lobby_<id> -
// мутацию конкретного лобби. Лобби удаляется атомарно внутри секции
func (s *GameService) Start(ctx context.Context, callerID int64, lobbyID int) (*StartResult, error) {
	var res StartResult
	err := pkglock.WithLock(ctx, s.locker, "create_game", createGameLease, func(ctx context.Context) error {
		return pkglock.WithLock(ctx, s.locker, fmt.Sprintf("lobby_%d", lobbyID), gameLease, func(ctx context.Context) error {
			l, err := s.lobbies.Get(ctx, lobbyID)
			if err != nil {
				return err
			}
			if l == nil {
				return ErrNotFound
			}
			p1, err := s.lobbies.Player(ctx, lobbyID, domain.SlotPlayer1)
			if err != nil {
				return err
			}
			p2, err := s.lobbies.Player(ctx, lobbyID, domain.SlotPlayer2)
			if err != nil {
				return err
			}
			if p1 == nil || (callerID != p1.ID && (p2 == nil || callerID != p2.ID)) {
				return ErrForbidden
			}
			if p2 == nil || !p2.Ready {
				return ErrConflict
			}

			gameID, err := s.games.AllocateID(ctx)
			if err != nil {
				return err
			}

			g := &domain.Game{
				ID:      gameID,
				AIHelp:  l.AIHelp,
				Timeout: l.Timeout,
				Phase:   domain.PhaseLoad,
				// создатель лобби ходит первым
				Turn: domain.SlotPlayer1,
			}
			if err := s.games.Save(ctx, g); err != nil {
				return err
			}
			if err := s.games.SavePlayer(ctx, gameID, domain.SlotPlayer1, &domain.GamePlayer{ID: p1.ID, Loading: true}); err != nil {
				return err
			}
			if err := s.games.SavePlayer(ctx, gameID, domain.SlotPlayer2, &domain.GamePlayer{ID: p2.ID, Loading: true}); err != nil {
				return err
			}

			if err := s.lobbies.DeleteAll(ctx, lobbyID); err != nil {
				return err
			}

			guestID := p1.ID
			if callerID == p1.ID {
				guestID = p2.ID
			}

			aihelp := l.AIHelp
			s.events.PublishExcept(lobbyTopic(lobbyID), callerID, ws.LobbyEvent{
				LobbyID:       lobbyID,
				Action:        ws.ActionStart,
				AIHelp:        &aihelp,
				Timeout:       l.Timeout,
				GameID:        &gameID,
				GameWebsocket: playerTopic(gameID, guestID),
				Enemy:         s.gameProfile(ctx, callerID),
			})

			res = StartResult{
				GameID:    gameID,
				AIHelp:    l.AIHelp,
				Timeout:   l.Timeout,
				Websocket: playerTopic(gameID, callerID),
				Enemy:     s.gameProfile(ctx, guestID),
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	gamesStarted.Inc()
	logger.Info("матч запущен", "game_id", res.GameID, "lobby_id", lobbyID)
	return &res, nil
}

// Characters выдает ростер матча: первый вызов тянет случайных персонажей
// из каталога и кэширует их в записи игры, повторные возвращают тот же набор
func (s *GameService) Characters(ctx context.Context, callerID int64, id int) ([]domain.Character, error) {
	var roster []domain.Character
	err := s.withGame(ctx, id, func(ctx context.Context, g *domain.Game) error {
		if _, err := s.callerSlot(ctx, id, callerID); err != nil {
			return err
		}
		if g.Characters != "" {
			return json.Unmarshal([]byte(g.Characters), &roster)
		}

		drawn, err := s.characters.Random(ctx, rosterSize)
		if err != nil {
			return err
		}
		raw, err := json.Marshal(drawn)
		if err != nil {
			return err
		}
		g.Characters = string(raw)
		if err := s.games.Save(ctx, g); err != nil {
			return err
		}
		roster = drawn
		return nil
	})
	if err != nil {
		return nil, err
	}
	return roster, nil
}

// EndLoading отмечает готовность клиента; когда готовы оба -
// переход к выбору персонажа
func (s *GameService) EndLoading(ctx context.Context, callerID int64, id int) error {
	return s.withGame(ctx, id, func(ctx context.Context, g *domain.Game) error {
		if g.Phase != domain.PhaseLoad {
			return ErrConflict
		}
		slot, err := s.callerSlot(ctx, id, callerID)
		if err != nil {
			return err
		}

		p, err := s.games.Player(ctx, id, slot)
		if err != nil {
			return err
		}
		p.Loading = false
		if err := s.games.SavePlayer(ctx, id, slot, p); err != nil {
			return err
		}

		p1, err := s.games.Player(ctx, id, domain.SlotPlayer1)
		if err != nil {
			return err
		}
		p2, err := s.games.Player(ctx, id, domain.SlotPlayer2)
		if err != nil {
			return err
		}
		if p1.Loading || p2.Loading {
			return nil
		}

		g.Phase = domain.PhaseChoose
		if err := s.games.Save(ctx, g); err != nil {
			return err
		}
		return s.emit(ctx, g, nil)
	})
}

// ChooseCharacter фиксирует секретного персонажа; когда выбрали оба -
// первый вопрос за создателем
func (s *GameService) ChooseCharacter(ctx context.Context, callerID int64, id int, character int) error {
	return s.withGame(ctx, id, func(ctx context.Context, g *domain.Game) error {
		if g.Phase != domain.PhaseChoose || character == 0 {
			return ErrConflict
		}
		slot, err := s.callerSlot(ctx, id, callerID)
		if err != nil {
			return err
		}

		p, err := s.games.Player(ctx, id, slot)
		if err != nil {
			return err
		}
		p.Character = character
		if err := s.games.SavePlayer(ctx, id, slot, p); err != nil {
			return err
		}

		p1, err := s.games.Player(ctx, id, domain.SlotPlayer1)
		if err != nil {
			return err
		}
		p2, err := s.games.Player(ctx, id, domain.SlotPlayer2)
		if err != nil {
			return err
		}
		if p1.Character == 0 || p2.Character == 0 {
			return nil
		}

		g.Phase = domain.PhaseAsk
		g.Turn = domain.SlotPlayer1
		if err := s.games.Save(ctx, g); err != nil {
			return err
		}
		return s.emit(ctx, g, nil)
	})
}

// ChooseQuestion: владелец хода задает вопрос, пассивному игроку он
// уходит в payload
func (s *GameService) ChooseQuestion(ctx context.Context, callerID int64, id int, question int) error {
	return s.withGame(ctx, id, func(ctx context.Context, g *domain.Game) error {
		if err := s.requireActor(ctx, g, callerID, domain.PhaseAsk); err != nil {
			return err
		}

		g.Phase = domain.PhaseAnswer
		if err := s.games.Save(ctx, g); err != nil {
			return err
		}
		return s.emit(ctx, g, map[domain.PlayerSlot]map[string]any{
			g.Turn.Other(): {"question": question},
		})
	})
}

// Answer: пассивный игрок отвечает да/нет, ответ уходит спросившему
func (s *GameService) Answer(ctx context.Context, callerID int64, id int, response bool) error {
	return s.withGame(ctx, id, func(ctx context.Context, g *domain.Game) error {
		if err := s.requireActor(ctx, g, callerID, domain.PhaseAnswer); err != nil {
			return err
		}

		g.Phase = domain.PhaseClosure
		if err := s.games.Save(ctx, g); err != nil {
			return err
		}
		return s.emit(ctx, g, map[domain.PlayerSlot]map[string]any{
			g.Turn: {"response": response},
		})
	})
}

// EndClosure завершает закрытие кандидатов и передает ход;
// новому владельцу сообщается остаток противника
func (s *GameService) EndClosure(ctx context.Context, callerID int64, id int, remaining int) error {
	return s.withGame(ctx, id, func(ctx context.Context, g *domain.Game) error {
		if err := s.requireActor(ctx, g, callerID, domain.PhaseClosure); err != nil {
			return err
		}

		g.Phase = domain.PhaseAsk
		g.Turn = g.Turn.Other()
		if err := s.games.Save(ctx, g); err != nil {
			return err
		}
		return s.emit(ctx, g, map[domain.PlayerSlot]map[string]any{
			g.Turn: {"remaining": remaining},
		})
	})
}

// Skip - принудительная передача хода по клиентскому отсчету;
// принимается от активного игрока в фазах вопроса и закрытия
func (s *GameService) Skip(ctx context.Context, callerID int64, id int) error {
	return s.withGame(ctx, id, func(ctx context.Context, g *domain.Game) error {
		return s.skipTurn(ctx, g, callerID)
	})
}

func (s *GameService) skipTurn(ctx context.Context, g *domain.Game, callerID int64) error {
	if g.Phase != domain.PhaseAsk && g.Phase != domain.PhaseClosure {
		return ErrConflict
	}
	slot, err := s.callerSlot(ctx, g.ID, callerID)
	if err != nil {
		return err
	}
	if slot != g.Turn {
		return ErrConflict
	}

	g.Phase = domain.PhaseAsk
	g.Turn = g.Turn.Other()
	if err := s.games.Save(ctx, g); err != nil {
		return err
	}
	return s.emit(ctx, g, nil)
}

// Guess: активный игрок вместо вопроса решается назвать персонажа
func (s *GameService) Guess(ctx context.Context, callerID int64, id int) error {
	return s.withGame(ctx, id, func(ctx context.Context, g *domain.Game) error {
		if err := s.requireActor(ctx, g, callerID, domain.PhaseAsk); err != nil {
			return err
		}

		g.Phase = domain.PhaseGuess
		if err := s.games.Save(ctx, g); err != nil {
			return err
		}
		return s.emit(ctx, g, nil)
	})
}

// GuessCharacter фиксирует догадку; противнику она уходит на подтверждение
func (s *GameService) GuessCharacter(ctx context.Context, callerID int64, id int, character int) error {
	return s.withGame(ctx, id, func(ctx context.Context, g *domain.Game) error {
		if err := s.requireActor(ctx, g, callerID, domain.PhaseGuess); err != nil {
			return err
		}

		p, err := s.games.Player(ctx, id, g.Turn)
		if err != nil {
			return err
		}
		p.Guess = character
		if err := s.games.SavePlayer(ctx, id, g.Turn, p); err != nil {
			return err
		}

		g.Phase = domain.PhaseGuessAwait
		if err := s.games.Save(ctx, g); err != nil {
			return err
		}
		return s.emit(ctx, g, map[domain.PlayerSlot]map[string]any{
			g.Turn.Other(): {"character": character},
		})
	})
}

// GuessResponse завершает матч. Подтверждение клиента принимается,
// но исход считается авторитетно: догадка против сохраненного секрета
func (s *GameService) GuessResponse(ctx context.Context, callerID int64, id int, confirm bool) error {
	return s.withGame(ctx, id, func(ctx context.Context, g *domain.Game) error {
		if err := s.requireActor(ctx, g, callerID, domain.PhaseGuessAwait); err != nil {
			return err
		}

		guesser, err := s.games.Player(ctx, id, g.Turn)
		if err != nil {
			return err
		}
		confirmer, err := s.games.Player(ctx, id, g.Turn.Other())
		if err != nil {
			return err
		}

		// подтверждение не влияет: исход решает сравнение с секретом
		loser := g.Turn
		if guesser.Guess == confirmer.Character {
			loser = g.Turn.Other()
		}
		return s.finish(ctx, g, loser)
	})
}

// EndTimer - реакция на ноль клиентского отсчета. В фазах вопроса
// и закрытия это пропуск хода, в остальных - форфейт не успевшего
func (s *GameService) EndTimer(ctx context.Context, callerID int64, id int) error {
	return s.withGame(ctx, id, func(ctx context.Context, g *domain.Game) error {
		switch g.Phase {
		case domain.PhaseLoad:
			// прогрев не на часах: нулевой отсчет здесь молча игнорируется
			_, err := s.callerSlot(ctx, id, callerID)
			return err
		case domain.PhaseAsk, domain.PhaseClosure:
			return s.skipTurn(ctx, g, callerID)
		case domain.PhaseChoose:
			// проигрывает тот, кто так и не выбрал персонажа
			p1, err := s.games.Player(ctx, id, domain.SlotPlayer1)
			if err != nil {
				return err
			}
			p2, err := s.games.Player(ctx, id, domain.SlotPlayer2)
			if err != nil {
				return err
			}
			if p1.Character == 0 {
				return s.finish(ctx, g, domain.SlotPlayer1)
			}
			if p2.Character == 0 {
				return s.finish(ctx, g, domain.SlotPlayer2)
			}
			return ErrConflict
		}

		pending, ok := game.ExpectedActor(g.Phase, g.Turn)
		if !ok {
			return ErrConflict
		}
		return s.finish(ctx, g, pending)
	})
}

// Forfeit - выход из матча: вышедший проигрывает
func (s *GameService) Forfeit(ctx context.Context, callerID int64, id int) error {
	return s.withGame(ctx, id, func(ctx context.Context, g *domain.Game) error {
		slot, err := s.callerSlot(ctx, id, callerID)
		if err != nil {
			return err
		}
		return s.finish(ctx, g, slot)
	})
}

// HintQuestions ранжирует неотвеченные вопросы по качеству деления
// оставшихся кандидатов; чистый счет над данными клиента
func (s *GameService) HintQuestions(ctx context.Context, callerID int64, id int, candidates []game.Candidate, answered []int64) ([]game.RankedQuestion, error) {
	if err := s.requireAIHelp(ctx, callerID, id); err != nil {
		return nil, err
	}
	return game.RankQuestions(candidates, answered), nil
}

// HintClosure помечает кандидатов, несовместимых с услышанным ответом
func (s *GameService) HintClosure(ctx context.Context, callerID int64, id int, candidates []game.Candidate, questionID int64, answer bool) ([]int64, error) {
	if err := s.requireAIHelp(ctx, callerID, id); err != nil {
		return nil, err
	}
	return game.Eliminate(candidates, questionID, answer), nil
}

func (s *GameService) requireAIHelp(ctx context.Context, callerID int64, id int) error {
	g, err := s.games.Get(ctx, id)
	if err != nil {
		return err
	}
	if g == nil {
		return ErrNotFound
	}
	if _, err := s.callerSlot(ctx, id, callerID); err != nil {
		return err
	}
	if !g.AIHelp {
		return ErrForbidden
	}
	return nil
}

// withGame - критическая секция матча: блокировка game_<id>, чтение записи,
// валидация и мутация внутри, освобождение на любом выходе
func (s *GameService) withGame(ctx context.Context, id int, fn func(ctx context.Context, g *domain.Game) error) error {
	return pkglock.WithLock(ctx, s.locker, gameLock(id), gameLease, func(ctx context.Context) error {
		g, err := s.games.Get(ctx, id)
		if err != nil {
			return err
		}
		if g == nil {
			return ErrNotFound
		}
		if g.Phase == domain.PhaseEnd {
			// терминальная фаза мутаций не принимает
			return ErrConflict
		}
		return fn(ctx, g)
	})
}

func (s *GameService) callerSlot(ctx context.Context, id int, callerID int64) (domain.PlayerSlot, error) {
	slot, ok, err := s.games.Slot(ctx, id, callerID)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, ErrForbidden
	}
	return slot, nil
}

// requireActor: фаза совпадает и вызывающий - именно тот игрок,
// чьего действия фаза ждет
func (s *GameService) requireActor(ctx context.Context, g *domain.Game, callerID int64, phase domain.GamePhase) error {
	if g.Phase != phase {
		return ErrConflict
	}
	slot, err := s.callerSlot(ctx, g.ID, callerID)
	if err != nil {
		return err
	}
	expected, ok := game.ExpectedActor(g.Phase, g.Turn)
	if !ok || slot != expected {
		return ErrConflict
	}
	return nil
}

// emit шлет каждому игроку событие с локальным кодом его роли;
// extra - добавочные payload'ы по слотам
func (s *GameService) emit(ctx context.Context, g *domain.Game, extra map[domain.PlayerSlot]map[string]any) error {
	for _, slot := range []domain.PlayerSlot{domain.SlotPlayer1, domain.SlotPlayer2} {
		p, err := s.games.Player(ctx, g.ID, slot)
		if err != nil {
			return err
		}
		if p == nil {
			continue
		}
		payload := extra[slot]
		if payload == nil {
			payload = map[string]any{}
		}
		s.events.Publish(playerTopic(g.ID, p.ID), ws.GameEvent{
			GamePhase: game.LocalPhase(g.Phase, g.Turn, slot),
			Payload:   payload,
		})
	}
	return nil
}

// finish переводит матч в терминальную фазу, шлет win/lose и сносит запись
func (s *GameService) finish(ctx context.Context, g *domain.Game, loser domain.PlayerSlot) error {
	g.Phase = domain.PhaseEnd
	if err := s.games.Save(ctx, g); err != nil {
		return err
	}

	err := s.emit(ctx, g, map[domain.PlayerSlot]map[string]any{
		loser:         {"end": false},
		loser.Other(): {"end": true},
	})
	if err != nil {
		return err
	}

	if err := s.games.DeleteAll(ctx, g.ID); err != nil {
		return err
	}
	gamesFinished.Inc()
	logger.Info("матч завершен", "game_id", g.ID, "loser_slot", int(loser))
	return nil
}

func (s *GameService) gameProfile(ctx context.Context, userID int64) *domain.User {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil || u == nil {
		return &domain.User{ID: userID}
	}
	return &domain.User{ID: u.ID, Username: u.Username, ProfilePicturePath: u.ProfilePicturePath}
}
