package repository

import (
	"context"
	"testing"

	"guesswho_backend/internal/domain"
	"guesswho_backend/internal/kv"
)

func TestLobbyRoundTrip(t *testing.T) {
	ctx := context.Background()
	r := NewLobbyRepository(kv.NewMemory())

	l := &domain.Lobby{
		ID:         3,
		Name:       "brave_curie_abcde",
		Code:       "QWERTY12",
		Visibility: domain.VisibilityPrivate,
		AIHelp:     true,
		Timeout:    120,
	}
	if err := r.Save(ctx, l); err != nil {
		t.Fatalf("save: %v", err)
	}
	_ = r.SavePlayer(ctx, 3, domain.SlotPlayer1, &domain.LobbyPlayer{ID: 7, Ready: true})

	got, err := r.Get(ctx, 3)
	if err != nil || got == nil {
		t.Fatalf("get: %v %v", got, err)
	}
	if *got != *l {
		t.Fatalf("лобби исказилось при (де)сериализации: %+v", got)
	}

	p, _ := r.Player(ctx, 3, domain.SlotPlayer1)
	if p == nil || p.ID != 7 || !p.Ready {
		t.Fatalf("player1: %+v", p)
	}
	if p2, _ := r.Player(ctx, 3, domain.SlotPlayer2); p2 != nil {
		t.Fatalf("пустой слот должен читаться как nil")
	}
}

func TestSmallestFreeID(t *testing.T) {
	ctx := context.Background()
	r := NewLobbyRepository(kv.NewMemory())

	for _, id := range []int{0, 1, 2} {
		_ = r.Save(ctx, &domain.Lobby{ID: id, Name: "x", Code: "C", Timeout: 60})
	}
	if id, _ := r.AllocateID(ctx); id != 3 {
		t.Fatalf("ожидался id 3, получен %d", id)
	}

	// после удаления id переиспользуется
	_ = r.DeleteAll(ctx, 1)
	if id, _ := r.AllocateID(ctx); id != 1 {
		t.Fatalf("ожидалось переиспользование id 1, получен %d", id)
	}
}

func TestDeleteAllRemovesPrefixOnly(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	r := NewLobbyRepository(store)

	_ = r.Save(ctx, &domain.Lobby{ID: 1, Name: "a", Code: "C", Timeout: 60})
	_ = r.SavePlayer(ctx, 1, domain.SlotPlayer1, &domain.LobbyPlayer{ID: 5, Ready: true})
	_ = r.Save(ctx, &domain.Lobby{ID: 10, Name: "b", Code: "C", Timeout: 60})

	if err := r.DeleteAll(ctx, 1); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if got, _ := r.Get(ctx, 1); got != nil {
		t.Fatalf("лобби 1 должно быть удалено")
	}
	if p, _ := r.Player(ctx, 1, domain.SlotPlayer1); p != nil {
		t.Fatalf("ключи префикса должны быть удалены")
	}
	// сосед с id 10 не задет шаблоном lobby:1*
	if got, _ := r.Get(ctx, 10); got == nil {
		t.Fatalf("лобби 10 не должно быть задето")
	}
	ids, _ := r.IDs(ctx)
	if len(ids) != 1 || ids[0] != 10 {
		t.Fatalf("множество lobbies: %v", ids)
	}
}
