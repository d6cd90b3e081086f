package repository

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"guesswho_backend/internal/domain"
	"guesswho_backend/internal/kv"
)

// TTL записей лобби: единственный GC помимо явного удаления
const lobbyTTL = 2 * time.Hour

// LobbyRepository - типизированная граница над hash-записями lobby:<id>.
// Вся остальная система работает с domain.Lobby, не с сырыми map'ами
type LobbyRepository struct {
	store kv.Store
}

func NewLobbyRepository(store kv.Store) *LobbyRepository {
	return &LobbyRepository{store: store}
}

func lobbyKey(id int) string { return fmt.Sprintf("lobby:%d", id) }

func lobbyPlayerKey(id int, slot domain.PlayerSlot) string {
	return fmt.Sprintf("lobby:%d:player%d", id, slot)
}

// Get возвращает (nil, nil) для отсутствующего лобби
func (r *LobbyRepository) Get(ctx context.Context, id int) (*domain.Lobby, error) {
	data, err := r.store.HGetAll(ctx, lobbyKey(id))
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}

	visibility, _ := strconv.Atoi(data["visibility"])
	timeout, _ := strconv.Atoi(data["timeout"])
	return &domain.Lobby{
		ID:         id,
		Name:       data["name"],
		Code:       data["code"],
		Visibility: domain.LobbyVisibility(visibility),
		AIHelp:     data["aihelp"] == "1",
		Timeout:    timeout,
	}, nil
}

func (r *LobbyRepository) Save(ctx context.Context, l *domain.Lobby) error {
	key := lobbyKey(l.ID)
	fields := map[string]string{
		"id":         strconv.Itoa(l.ID),
		"name":       l.Name,
		"code":       l.Code,
		"visibility": strconv.Itoa(int(l.Visibility)),
		"aihelp":     boolField(l.AIHelp),
		"timeout":    strconv.Itoa(l.Timeout),
	}
	for f, v := range fields {
		if err := r.store.HSet(ctx, key, f, v); err != nil {
			return err
		}
	}
	if err := r.store.SAdd(ctx, "lobbies", strconv.Itoa(l.ID)); err != nil {
		return err
	}
	return r.store.Expire(ctx, key, lobbyTTL)
}

// Player возвращает (nil, nil) для пустого слота
func (r *LobbyRepository) Player(ctx context.Context, id int, slot domain.PlayerSlot) (*domain.LobbyPlayer, error) {
	data, err := r.store.HGetAll(ctx, lobbyPlayerKey(id, slot))
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}
	userID, _ := strconv.ParseInt(data["id"], 10, 64)
	return &domain.LobbyPlayer{
		ID:    userID,
		Ready: data["status"] == "1",
	}, nil
}

func (r *LobbyRepository) SavePlayer(ctx context.Context, id int, slot domain.PlayerSlot, p *domain.LobbyPlayer) error {
	key := lobbyPlayerKey(id, slot)
	if err := r.store.HSet(ctx, key, "id", strconv.FormatInt(p.ID, 10)); err != nil {
		return err
	}
	if err := r.store.HSet(ctx, key, "status", boolField(p.Ready)); err != nil {
		return err
	}
	return r.store.Expire(ctx, key, lobbyTTL)
}

func (r *LobbyRepository) DeletePlayer(ctx context.Context, id int, slot domain.PlayerSlot) error {
	return r.store.Del(ctx, lobbyPlayerKey(id, slot))
}

// IDs - id живых лобби по возрастанию
func (r *LobbyRepository) IDs(ctx context.Context) ([]int, error) {
	members, err := r.store.SMembers(ctx, "lobbies")
	if err != nil {
		return nil, err
	}
	ids := make([]int, 0, len(members))
	for _, m := range members {
		id, err := strconv.Atoi(m)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids, nil
}

// AllocateID - минимальный свободный неотрицательный id;
// id переиспользуются после удаления записи. Вызывать под lobby_create
func (r *LobbyRepository) AllocateID(ctx context.Context) (int, error) {
	ids, err := r.IDs(ctx)
	if err != nil {
		return 0, err
	}
	return smallestFree(ids), nil
}

// DeleteAll удаляет весь префикс lobby:<id>* и убирает id из множества.
// Шаблон с двоеточием, чтобы lobby:1* не зацепил lobby:10
func (r *LobbyRepository) DeleteAll(ctx context.Context, id int) error {
	keys, err := r.store.Keys(ctx, lobbyKey(id)+":*")
	if err != nil {
		return err
	}
	keys = append(keys, lobbyKey(id))
	if err := r.store.Del(ctx, keys...); err != nil {
		return err
	}
	return r.store.SRem(ctx, "lobbies", strconv.Itoa(id))
}

func boolField(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func smallestFree(sorted []int) int {
	id := 0
	for _, used := range sorted {
		if used == id {
			id++
		} else if used > id {
			break
		}
	}
	return id
}
