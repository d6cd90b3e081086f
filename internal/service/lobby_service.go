package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	mrand "math/rand"
	"strings"
	"time"

	"guesswho_backend/internal/domain"
	pkglock "guesswho_backend/internal/lock"
	"guesswho_backend/internal/logger"
	"guesswho_backend/internal/repository"
	"guesswho_backend/internal/ws"
)

const (
	lobbyLease = 5 * time.Second
	// список открытых лобби в discovery отдается страницей
	listLimit = 20
	// слотов в лобби всегда ровно два
	maxPlayers = 2
)

func lobbyLock(id int) string { return fmt.Sprintf("lobby_%d", id) }

func lobbyTopic(id int) string { return fmt.Sprintf("lobby.%d", id) }

// LobbyService - реестр лобби: создание, discovery, вход с паролем,
// готовность и teardown. Все мутации - под блокировкой lobby_<id>
type LobbyService struct {
	lobbies *repository.LobbyRepository
	locker  *pkglock.Locker
	users   UserDirectory
	events  Broadcaster
}

func NewLobbyService(lobbies *repository.LobbyRepository, locker *pkglock.Locker, users UserDirectory, events Broadcaster) *LobbyService {
	return &LobbyService{lobbies: lobbies, locker: locker, users: users, events: events}
}

type LobbySummary struct {
	ID         int                    `json:"id"`
	Name       string                 `json:"name"`
	Visibility domain.LobbyVisibility `json:"visibility"`
}

type ListFilter struct {
	Visibility *domain.LobbyVisibility
	NamePrefix string
}

// List - best-effort снимок первых 20 открытых лобби (открытое = слот
// player2 пуст). Без блокировки: листинг совещательный, не авторитетный
func (s *LobbyService) List(ctx context.Context, filter ListFilter) ([]LobbySummary, error) {
	ids, err := s.lobbies.IDs(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]LobbySummary, 0, listLimit)
	for _, id := range ids {
		if len(result) >= listLimit {
			break
		}
		l, err := s.lobbies.Get(ctx, id)
		if err != nil || l == nil {
			continue
		}
		p2, err := s.lobbies.Player(ctx, id, domain.SlotPlayer2)
		if err != nil || p2 != nil {
			continue
		}
		if filter.Visibility != nil && l.Visibility != *filter.Visibility {
			continue
		}
		if filter.NamePrefix != "" && !strings.HasPrefix(l.Name, filter.NamePrefix) {
			continue
		}
		result = append(result, LobbySummary{ID: l.ID, Name: l.Name, Visibility: l.Visibility})
	}
	return result, nil
}

type CreateResult struct {
	LobbyID   int    `json:"lobby_id"`
	Websocket string `json:"lobby_websocket"`
}

// Create создает лобби под блокировкой lobby_create: минимальный свободный
// id, 8-символьный код входа, случайное имя из двух слов; создатель садится
// в player1 и сразу готов
func (s *LobbyService) Create(ctx context.Context, callerID int64, visibility domain.LobbyVisibility, aiHelp bool, timeoutSec int) (*CreateResult, error) {
	var res CreateResult
	err := pkglock.WithLock(ctx, s.locker, "lobby_create", lobbyLease, func(ctx context.Context) error {
		id, err := s.lobbies.AllocateID(ctx)
		if err != nil {
			return err
		}

		l := &domain.Lobby{
			ID:         id,
			Name:       generateLobbyName(),
			Code:       generateJoinCode(),
			Visibility: visibility,
			AIHelp:     aiHelp,
			Timeout:    timeoutSec,
		}
		if err := s.lobbies.Save(ctx, l); err != nil {
			return err
		}
		if err := s.lobbies.SavePlayer(ctx, id, domain.SlotPlayer1, &domain.LobbyPlayer{ID: callerID, Ready: true}); err != nil {
			return err
		}

		res = CreateResult{LobbyID: id, Websocket: lobbyTopic(id)}
		return nil
	})
	if err != nil {
		return nil, err
	}

	lobbiesCreated.Inc()
	logger.Info("лобби создано", "lobby_id", res.LobbyID, "user_id", callerID)
	return &res, nil
}

type LobbyPlayerDetail struct {
	ID                 int64  `json:"id"`
	Username           string `json:"username"`
	ProfilePicturePath string `json:"profile_picture_path,omitempty"`
	ProfilePictureMime string `json:"profile_picture_mime,omitempty"`
	Ready              bool   `json:"status"`
}

type LobbyDetail struct {
	ID         int                    `json:"id"`
	Name       string                 `json:"name"`
	Code       string                 `json:"code"`
	Visibility domain.LobbyVisibility `json:"visibility"`
	Players    []LobbyPlayerDetail    `json:"players"`
}

// Show отдает лобби с развернутыми профилями игроков; только участникам
func (s *LobbyService) Show(ctx context.Context, callerID int64, id int) (*LobbyDetail, error) {
	var detail *LobbyDetail
	err := pkglock.WithLock(ctx, s.locker, lobbyLock(id), lobbyLease, func(ctx context.Context) error {
		l, err := s.lobbies.Get(ctx, id)
		if err != nil {
			return err
		}
		if l == nil {
			return ErrNotFound
		}

		member := false
		players := make([]LobbyPlayerDetail, 0, maxPlayers)
		for _, slot := range []domain.PlayerSlot{domain.SlotPlayer1, domain.SlotPlayer2} {
			p, err := s.lobbies.Player(ctx, id, slot)
			if err != nil {
				return err
			}
			if p == nil {
				continue
			}
			if p.ID == callerID {
				member = true
			}
			players = append(players, s.playerDetail(ctx, p))
		}
		if !member {
			return ErrForbidden
		}

		detail = &LobbyDetail{
			ID:         l.ID,
			Name:       l.Name,
			Code:       l.Code,
			Visibility: l.Visibility,
			Players:    players,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return detail, nil
}

func (s *LobbyService) playerDetail(ctx context.Context, p *domain.LobbyPlayer) LobbyPlayerDetail {
	d := LobbyPlayerDetail{ID: p.ID, Ready: p.Ready}
	if u, err := s.users.GetByID(ctx, p.ID); err == nil && u != nil {
		d.Username = u.Username
		d.ProfilePicturePath = u.ProfilePicturePath
		d.ProfilePictureMime = u.ProfilePictureMime
	}
	return d
}

type JoinResult struct {
	LobbyID   int    `json:"lobby_id"`
	Websocket string `json:"lobby_websocket"`
}

// Join сажает вызывающего в player2. Отказ без мутации если лобби
// отсутствует, занято, вызывающий - создатель, или пароль приватного
// лобби не совпал с кодом
func (s *LobbyService) Join(ctx context.Context, callerID int64, id int, password string) (*JoinResult, error) {
	err := pkglock.WithLock(ctx, s.locker, lobbyLock(id), lobbyLease, func(ctx context.Context) error {
		l, err := s.lobbies.Get(ctx, id)
		if err != nil {
			return err
		}
		if l == nil {
			return ErrNotFound
		}

		p1, err := s.lobbies.Player(ctx, id, domain.SlotPlayer1)
		if err != nil {
			return err
		}
		p2, err := s.lobbies.Player(ctx, id, domain.SlotPlayer2)
		if err != nil {
			return err
		}
		if p2 != nil || (p1 != nil && p1.ID == callerID) {
			return ErrConflict
		}
		if l.Visibility == domain.VisibilityPrivate && password != l.Code {
			return ErrConflict
		}

		if err := s.lobbies.SavePlayer(ctx, id, domain.SlotPlayer2, &domain.LobbyPlayer{ID: callerID, Ready: false}); err != nil {
			return err
		}

		s.events.PublishExcept(lobbyTopic(id), callerID, ws.LobbyEvent{
			LobbyID: id,
			Action:  ws.ActionJoin,
			User:    s.publicProfile(ctx, callerID),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &JoinResult{LobbyID: id, Websocket: lobbyTopic(id)}, nil
}

// SetReady выставляет готовность player2 и уведомляет создателя
func (s *LobbyService) SetReady(ctx context.Context, callerID int64, id int, ready bool) error {
	return pkglock.WithLock(ctx, s.locker, lobbyLock(id), lobbyLease, func(ctx context.Context) error {
		l, err := s.lobbies.Get(ctx, id)
		if err != nil {
			return err
		}
		if l == nil {
			return ErrNotFound
		}
		p2, err := s.lobbies.Player(ctx, id, domain.SlotPlayer2)
		if err != nil {
			return err
		}
		if p2 == nil || p2.ID != callerID {
			return ErrForbidden
		}

		p2.Ready = ready
		if err := s.lobbies.SavePlayer(ctx, id, domain.SlotPlayer2, p2); err != nil {
			return err
		}

		s.events.PublishExcept(lobbyTopic(id), callerID, ws.LobbyEvent{
			LobbyID: id,
			Action:  ws.ActionReady,
			User:    s.publicProfile(ctx, callerID),
			Ready:   &ready,
		})
		return nil
	})
}

// Exit освобождает слот player2; выход создателя - это Delete
func (s *LobbyService) Exit(ctx context.Context, callerID int64, id int) error {
	return pkglock.WithLock(ctx, s.locker, lobbyLock(id), lobbyLease, func(ctx context.Context) error {
		l, err := s.lobbies.Get(ctx, id)
		if err != nil {
			return err
		}
		if l == nil {
			return ErrNotFound
		}
		p2, err := s.lobbies.Player(ctx, id, domain.SlotPlayer2)
		if err != nil {
			return err
		}
		if p2 == nil || p2.ID != callerID {
			return nil
		}

		if err := s.lobbies.DeletePlayer(ctx, id, domain.SlotPlayer2); err != nil {
			return err
		}

		s.events.PublishExcept(lobbyTopic(id), callerID, ws.LobbyEvent{
			LobbyID: id,
			Action:  ws.ActionExit,
			User:    s.publicProfile(ctx, callerID),
		})
		return nil
	})
}

// Delete сносит лобби целиком; разрешено только создателю
func (s *LobbyService) Delete(ctx context.Context, callerID int64, id int) error {
	return pkglock.WithLock(ctx, s.locker, lobbyLock(id), lobbyLease, func(ctx context.Context) error {
		l, err := s.lobbies.Get(ctx, id)
		if err != nil {
			return err
		}
		if l == nil {
			return ErrNotFound
		}
		p1, err := s.lobbies.Player(ctx, id, domain.SlotPlayer1)
		if err != nil {
			return err
		}
		if p1 == nil || p1.ID != callerID {
			return ErrForbidden
		}

		if err := s.lobbies.DeleteAll(ctx, id); err != nil {
			return err
		}

		s.events.PublishExcept(lobbyTopic(id), callerID, ws.LobbyEvent{
			LobbyID: id,
			Action:  ws.ActionDelete,
		})
		return nil
	})
}

// Timer - idle-sweep по нулю клиентского отсчета: сносит лобби
// без проверки владельца
func (s *LobbyService) Timer(ctx context.Context, id int) error {
	return pkglock.WithLock(ctx, s.locker, lobbyLock(id), lobbyLease, func(ctx context.Context) error {
		l, err := s.lobbies.Get(ctx, id)
		if err != nil || l == nil {
			return err
		}
		logger.Info("лобби удалено по таймеру простоя", "lobby_id", id)
		return s.lobbies.DeleteAll(ctx, id)
	})
}

// публичная часть профиля для полей событий
func (s *LobbyService) publicProfile(ctx context.Context, userID int64) *domain.User {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil || u == nil {
		return &domain.User{ID: userID}
	}
	return &domain.User{ID: u.ID, Username: u.Username, ProfilePicturePath: u.ProfilePicturePath}
}

var (
	lobbyAdjectives = []string{"sleepy", "stoic", "eager", "brave", "frosty", "serene", "bold", "mystic", "clever", "happy"}
	lobbyScientists = []string{"turing", "morse", "curie", "babbage", "lovelace", "hopper", "einstein", "tesla", "newton", "fermi"}
)

// имя лобби: прилагательное_ученый_5 случайных строчных символов
func generateLobbyName() string {
	const alnum = "abcdefghijklmnopqrstuvwxyz0123456789"
	suffix := make([]byte, 5)
	for i := range suffix {
		suffix[i] = alnum[mrand.Intn(len(alnum))]
	}
	return lobbyAdjectives[mrand.Intn(len(lobbyAdjectives))] +
		"_" + lobbyScientists[mrand.Intn(len(lobbyScientists))] +
		"_" + string(suffix)
}

// 8-символьный непрозрачный секрет входа
func generateJoinCode() string {
	const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	code := make([]byte, 8)
	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(letters))))
		if err != nil {
			code[i] = letters[mrand.Intn(len(letters))]
			continue
		}
		code[i] = letters[n.Int64()]
	}
	return string(code)
}
