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

const gameTTL = 24 * time.Hour

// GameRepository - типизированная граница над hash-записями game:<id>
type GameRepository struct {
	store kv.Store
}

func NewGameRepository(store kv.Store) *GameRepository {
	return &GameRepository{store: store}
}

func gameKey(id int) string { return fmt.Sprintf("game:%d", id) }

func gamePlayerKey(id int, slot domain.PlayerSlot) string {
	return fmt.Sprintf("game:%d:player%d", id, slot)
}

// Get возвращает (nil, nil) для отсутствующей игры
func (r *GameRepository) Get(ctx context.Context, id int) (*domain.Game, error) {
	data, err := r.store.HGetAll(ctx, gameKey(id))
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}

	phase, _ := strconv.Atoi(data["phase"])
	turn, _ := strconv.Atoi(data["turn"])
	timeout, _ := strconv.Atoi(data["timeout"])
	return &domain.Game{
		ID:         id,
		AIHelp:     data["aihelp"] == "1",
		Timeout:    timeout,
		Phase:      domain.GamePhase(phase),
		Turn:       domain.PlayerSlot(turn),
		Characters: data["characters"],
	}, nil
}

func (r *GameRepository) Save(ctx context.Context, g *domain.Game) error {
	key := gameKey(g.ID)
	fields := map[string]string{
		"id":         strconv.Itoa(g.ID),
		"aihelp":     boolField(g.AIHelp),
		"timeout":    strconv.Itoa(g.Timeout),
		"phase":      strconv.Itoa(int(g.Phase)),
		"turn":       strconv.Itoa(int(g.Turn)),
		"characters": g.Characters,
	}
	for f, v := range fields {
		if err := r.store.HSet(ctx, key, f, v); err != nil {
			return err
		}
	}
	if err := r.store.SAdd(ctx, "games", strconv.Itoa(g.ID)); err != nil {
		return err
	}
	return r.store.Expire(ctx, key, gameTTL)
}

func (r *GameRepository) Player(ctx context.Context, id int, slot domain.PlayerSlot) (*domain.GamePlayer, error) {
	data, err := r.store.HGetAll(ctx, gamePlayerKey(id, slot))
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}
	userID, _ := strconv.ParseInt(data["id"], 10, 64)
	character, _ := strconv.Atoi(data["character"])
	guess, _ := strconv.Atoi(data["guess_character"])
	return &domain.GamePlayer{
		ID:        userID,
		Loading:   data["loading"] == "1",
		Character: character,
		Guess:     guess,
	}, nil
}

func (r *GameRepository) SavePlayer(ctx context.Context, id int, slot domain.PlayerSlot, p *domain.GamePlayer) error {
	key := gamePlayerKey(id, slot)
	fields := map[string]string{
		"id":              strconv.FormatInt(p.ID, 10),
		"loading":         boolField(p.Loading),
		"character":       strconv.Itoa(p.Character),
		"guess_character": strconv.Itoa(p.Guess),
	}
	for f, v := range fields {
		if err := r.store.HSet(ctx, key, f, v); err != nil {
			return err
		}
	}
	return r.store.Expire(ctx, key, gameTTL)
}

// Slot определяет слот пользователя в игре; ok=false если он не участник
func (r *GameRepository) Slot(ctx context.Context, id int, userID int64) (domain.PlayerSlot, bool, error) {
	for _, slot := range []domain.PlayerSlot{domain.SlotPlayer1, domain.SlotPlayer2} {
		p, err := r.Player(ctx, id, slot)
		if err != nil {
			return 0, false, err
		}
		if p != nil && p.ID == userID {
			return slot, true, nil
		}
	}
	return 0, false, nil
}

func (r *GameRepository) IDs(ctx context.Context) ([]int, error) {
	members, err := r.store.SMembers(ctx, "games")
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

// AllocateID - минимальный свободный id игры. Вызывать под create_game
func (r *GameRepository) AllocateID(ctx context.Context) (int, error) {
	ids, err := r.IDs(ctx)
	if err != nil {
		return 0, err
	}
	return smallestFree(ids), nil
}

func (r *GameRepository) DeleteAll(ctx context.Context, id int) error {
	keys, err := r.store.Keys(ctx, gameKey(id)+":*")
	if err != nil {
		return err
	}
	keys = append(keys, gameKey(id))
	if err := r.store.Del(ctx, keys...); err != nil {
		return err
	}
	return r.store.SRem(ctx, "games", strconv.Itoa(id))
}
