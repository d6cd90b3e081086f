// Пакет game - чистая логика протокола хода: проекция фаз на локальные
// коды клиентов и ранжирование подсказок. Без состояния и без I/O
package game

import "guesswho_backend/internal/domain"

// Локальные коды фаз на проводе. Оба игрока делят одну авторитетную пару
// (фаза, владелец хода), каждому уходит код его роли
const (
	CodeLoad                 = 1  // оба: прогрев кэшей и модели
	CodeChooseCharacter      = 2  // оба: выбор секретного персонажа
	CodeAskQuestion          = 3  // активный: выбор вопроса
	CodeWaitResponse         = 4  // активный: ждет ответа
	CodeCloseCharacters      = 5  // активный: закрытие кандидатов
	CodeWaitQuestion         = 6  // пассивный: ждет вопрос
	CodeResponseQuestion     = 7  // пассивный: отвечает да/нет
	CodeWaitCharacterClosure = 8  // пассивный: ждет конца закрытия
	CodeGuessCharacter       = 9  // угадывающий: называет персонажа
	CodeWaitGuessResponse    = 10 // угадывающий: ждет подтверждения
	CodeWaitGuess            = 11 // пассивный: противник угадывает
	CodeResponseGuess        = 12 // пассивный: подтверждает догадку
	CodeEnd                  = 13 // оба: терминальная, win/lose
)

// LocalPhase проецирует авторитетное состояние на локальный код фазы
// наблюдателя. Чистая функция: сервер шлет каждому игроку код его роли
func LocalPhase(phase domain.GamePhase, holder, viewer domain.PlayerSlot) int {
	active := viewer == holder
	switch phase {
	case domain.PhaseLoad:
		return CodeLoad
	case domain.PhaseChoose:
		return CodeChooseCharacter
	case domain.PhaseAsk:
		if active {
			return CodeAskQuestion
		}
		return CodeWaitQuestion
	case domain.PhaseAnswer:
		if active {
			return CodeWaitResponse
		}
		return CodeResponseQuestion
	case domain.PhaseClosure:
		if active {
			return CodeCloseCharacters
		}
		return CodeWaitCharacterClosure
	case domain.PhaseGuess:
		if active {
			return CodeGuessCharacter
		}
		return CodeWaitGuess
	case domain.PhaseGuessAwait:
		if active {
			return CodeWaitGuessResponse
		}
		return CodeResponseGuess
	case domain.PhaseEnd:
		return CodeEnd
	}
	return CodeEnd
}

// ExpectedActor - слот, чьего действия ждет фаза; ok=false когда ждут обоих
// или никого. Та же таблица решает, кто проигрывает по таймауту
func ExpectedActor(phase domain.GamePhase, holder domain.PlayerSlot) (domain.PlayerSlot, bool) {
	switch phase {
	case domain.PhaseAsk, domain.PhaseClosure, domain.PhaseGuess:
		return holder, true
	case domain.PhaseAnswer, domain.PhaseGuessAwait:
		return holder.Other(), true
	}
	return 0, false
}
