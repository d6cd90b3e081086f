package game

import (
	"testing"

	"guesswho_backend/internal/domain"
)

func TestLocalPhaseProjection(t *testing.T) {
	p1 := domain.SlotPlayer1
	p2 := domain.SlotPlayer2

	cases := []struct {
		phase  domain.GamePhase
		holder domain.PlayerSlot
		active int
		other  int
	}{
		{domain.PhaseLoad, p1, 1, 1},
		{domain.PhaseChoose, p1, 2, 2},
		{domain.PhaseAsk, p1, 3, 6},
		{domain.PhaseAnswer, p1, 4, 7},
		{domain.PhaseClosure, p1, 5, 8},
		{domain.PhaseGuess, p1, 9, 11},
		{domain.PhaseGuessAwait, p1, 10, 12},
		{domain.PhaseEnd, p1, 13, 13},
	}

	for _, c := range cases {
		if got := LocalPhase(c.phase, c.holder, c.holder); got != c.active {
			t.Errorf("фаза %d: активному ожидался код %d, получен %d", c.phase, c.active, got)
		}
		if got := LocalPhase(c.phase, c.holder, c.holder.Other()); got != c.other {
			t.Errorf("фаза %d: пассивному ожидался код %d, получен %d", c.phase, c.other, got)
		}
	}

	// симметрия: владелец хода player2 меняет коды местами
	if got := LocalPhase(domain.PhaseAsk, p2, p1); got != 6 {
		t.Errorf("player1 при чужом ходе: %d", got)
	}
	if got := LocalPhase(domain.PhaseAsk, p2, p2); got != 3 {
		t.Errorf("player2 при своем ходе: %d", got)
	}
}

func TestExpectedActor(t *testing.T) {
	p1 := domain.SlotPlayer1

	for _, phase := range []domain.GamePhase{domain.PhaseAsk, domain.PhaseClosure, domain.PhaseGuess} {
		actor, ok := ExpectedActor(phase, p1)
		if !ok || actor != p1 {
			t.Errorf("фаза %d: ожидался владелец хода, получено %v %v", phase, actor, ok)
		}
	}
	for _, phase := range []domain.GamePhase{domain.PhaseAnswer, domain.PhaseGuessAwait} {
		actor, ok := ExpectedActor(phase, p1)
		if !ok || actor != domain.SlotPlayer2 {
			t.Errorf("фаза %d: ожидался пассивный игрок, получено %v %v", phase, actor, ok)
		}
	}
	for _, phase := range []domain.GamePhase{domain.PhaseLoad, domain.PhaseChoose, domain.PhaseEnd} {
		if _, ok := ExpectedActor(phase, p1); ok {
			t.Errorf("фаза %d не ждет одного конкретного игрока", phase)
		}
	}
}
