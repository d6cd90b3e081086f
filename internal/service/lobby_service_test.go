package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"guesswho_backend/internal/domain"
	"guesswho_backend/internal/kv"
	"guesswho_backend/internal/lock"
	"guesswho_backend/internal/repository"
)

type published struct {
	topic  string
	except int64
	event  any
}

type fakeBroadcaster struct {
	mu     sync.Mutex
	events []published
}

func (b *fakeBroadcaster) Publish(topic string, event any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, published{topic: topic, except: -1, event: event})
}

func (b *fakeBroadcaster) PublishExcept(topic string, exceptUserID int64, event any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, published{topic: topic, except: exceptUserID, event: event})
}

func (b *fakeBroadcaster) all() []published {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]published, len(b.events))
	copy(out, b.events)
	return out
}

type fakeUsers struct{}

func (fakeUsers) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return &domain.User{ID: id, Username: "user"}, nil
}

type fakeCatalog struct{}

func (fakeCatalog) Random(ctx context.Context, n int) ([]domain.Character, error) {
	out := make([]domain.Character, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, domain.Character{ID: int64(i), Name: "персонаж"})
	}
	return out, nil
}

type fixture struct {
	store   *kv.Memory
	lobbies *repository.LobbyRepository
	games   *repository.GameRepository
	events  *fakeBroadcaster
	lobby   *LobbyService
	game    *GameService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := kv.NewMemory()
	locker := lock.New(store)
	lobbies := repository.NewLobbyRepository(store)
	games := repository.NewGameRepository(store)
	events := &fakeBroadcaster{}
	return &fixture{
		store:   store,
		lobbies: lobbies,
		games:   games,
		events:  events,
		lobby:   NewLobbyService(lobbies, locker, fakeUsers{}, events),
		game:    NewGameService(lobbies, games, locker, fakeUsers{}, fakeCatalog{}, events),
	}
}

// makeLobby создает лобби за игрока 100 и, если join=true, сажает 200
func makeLobby(t *testing.T, f *fixture, join bool) int {
	t.Helper()
	ctx := context.Background()
	res, err := f.lobby.Create(ctx, 100, domain.VisibilityPublic, true, 30)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if join {
		if _, err := f.lobby.Join(ctx, 200, res.LobbyID, ""); err != nil {
			t.Fatalf("join: %v", err)
		}
	}
	return res.LobbyID
}

func TestLobbyCreateAllocatesSmallestID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a, _ := f.lobby.Create(ctx, 1, domain.VisibilityPublic, false, 30)
	b, _ := f.lobby.Create(ctx, 2, domain.VisibilityPublic, false, 30)
	if a.LobbyID != 1 || b.LobbyID != 2 {
		t.Fatalf("ожидались id 1 и 2, получено %d и %d", a.LobbyID, b.LobbyID)
	}

	if err := f.lobby.Delete(ctx, 1, a.LobbyID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	c, _ := f.lobby.Create(ctx, 3, domain.VisibilityPublic, false, 30)
	if c.LobbyID != 1 {
		t.Fatalf("освободившийся id 1 не переиспользован, получен %d", c.LobbyID)
	}
}

func TestLobbyJoinRejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.lobby.Join(ctx, 200, 99, ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("вход в несуществующее лобби: ожидался ErrNotFound, получено %v", err)
	}

	id := makeLobby(t, f, false)
	if _, err := f.lobby.Join(ctx, 100, id, ""); !errors.Is(err, ErrConflict) {
		t.Fatalf("вход создателя к себе: ожидался ErrConflict, получено %v", err)
	}

	if _, err := f.lobby.Join(ctx, 200, id, ""); err != nil {
		t.Fatalf("join: %v", err)
	}
	if _, err := f.lobby.Join(ctx, 300, id, ""); !errors.Is(err, ErrConflict) {
		t.Fatalf("вход в занятое лобби: ожидался ErrConflict, получено %v", err)
	}
}

func TestLobbyJoinPrivatePassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.lobby.Create(ctx, 100, domain.VisibilityPrivate, false, 30)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	l, err := f.lobbies.Get(ctx, res.LobbyID)
	if err != nil || l == nil {
		t.Fatalf("лобби не найдено в хранилище: %v", err)
	}

	if _, err := f.lobby.Join(ctx, 200, res.LobbyID, "wrong"); !errors.Is(err, ErrConflict) {
		t.Fatalf("неверный пароль: ожидался ErrConflict, получено %v", err)
	}
	if _, err := f.lobby.Join(ctx, 200, res.LobbyID, l.Code); err != nil {
		t.Fatalf("вход с верным кодом: %v", err)
	}
}

func TestLobbyConcurrentJoinSingleWinner(t *testing.T) {
	f := newFixture(t)
	id := makeLobby(t, f, false)

	const contenders = 8
	var wg sync.WaitGroup
	errs := make([]error, contenders)
	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.lobby.Join(context.Background(), int64(200+i), id, "")
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
		} else if !errors.Is(err, ErrConflict) {
			t.Fatalf("неожиданная ошибка гонки за слот: %v", err)
		}
	}
	if ok != 1 {
		t.Fatalf("слот player2 должен достаться ровно одному, выиграли %d", ok)
	}
}

func TestLobbyShowMembersOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := makeLobby(t, f, true)

	detail, err := f.lobby.Show(ctx, 100, id)
	if err != nil {
		t.Fatalf("show участником: %v", err)
	}
	if len(detail.Players) != 2 {
		t.Fatalf("ожидалось 2 игрока, получено %d", len(detail.Players))
	}

	if _, err := f.lobby.Show(ctx, 999, id); !errors.Is(err, ErrForbidden) {
		t.Fatalf("show посторонним: ожидался ErrForbidden, получено %v", err)
	}
}

func TestLobbyReadyGuestOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := makeLobby(t, f, true)

	if err := f.lobby.SetReady(ctx, 100, id, true); !errors.Is(err, ErrForbidden) {
		t.Fatalf("ready от создателя: ожидался ErrForbidden, получено %v", err)
	}
	if err := f.lobby.SetReady(ctx, 200, id, true); err != nil {
		t.Fatalf("ready гостем: %v", err)
	}

	p2, err := f.lobbies.Player(ctx, id, domain.SlotPlayer2)
	if err != nil || p2 == nil || !p2.Ready {
		t.Fatalf("готовность гостя не сохранилась: %+v, %v", p2, err)
	}
}

func TestLobbyExitFreesSlot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := makeLobby(t, f, true)

	if err := f.lobby.Exit(ctx, 200, id); err != nil {
		t.Fatalf("exit: %v", err)
	}
	p2, err := f.lobbies.Player(ctx, id, domain.SlotPlayer2)
	if err != nil {
		t.Fatalf("player: %v", err)
	}
	if p2 != nil {
		t.Fatal("слот player2 должен освободиться после выхода")
	}

	if _, err := f.lobby.Join(ctx, 300, id, ""); err != nil {
		t.Fatalf("повторный вход в освобожденный слот: %v", err)
	}
}

func TestLobbyDeleteOwnerOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := makeLobby(t, f, true)

	if err := f.lobby.Delete(ctx, 200, id); !errors.Is(err, ErrForbidden) {
		t.Fatalf("delete гостем: ожидался ErrForbidden, получено %v", err)
	}
	if err := f.lobby.Delete(ctx, 100, id); err != nil {
		t.Fatalf("delete создателем: %v", err)
	}

	l, err := f.lobbies.Get(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if l != nil {
		t.Fatal("лобби должно исчезнуть из хранилища")
	}
}

func TestLobbyListFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	pub, _ := f.lobby.Create(ctx, 1, domain.VisibilityPublic, false, 30)
	f.lobby.Create(ctx, 2, domain.VisibilityPrivate, false, 30)
	full, _ := f.lobby.Create(ctx, 3, domain.VisibilityPublic, false, 30)
	f.lobby.Join(ctx, 4, full.LobbyID, "")

	vis := domain.VisibilityPublic
	list, err := f.lobby.List(ctx, ListFilter{Visibility: &vis})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].ID != pub.LobbyID {
		t.Fatalf("ожидалось одно открытое публичное лобби %d, получено %+v", pub.LobbyID, list)
	}
}

func TestLobbyTimerSweepsIdle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := makeLobby(t, f, true)

	if err := f.lobby.Timer(ctx, id); err != nil {
		t.Fatalf("timer: %v", err)
	}
	l, err := f.lobbies.Get(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if l != nil {
		t.Fatal("лобби должно сноситься по таймеру простоя")
	}
	if err := f.lobby.Timer(ctx, id); err != nil {
		t.Fatalf("повторный таймер по пустому id должен молча проходить: %v", err)
	}
}
