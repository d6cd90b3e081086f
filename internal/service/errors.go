package service

import "errors"

// Таксономия ожидаемых отказов. Все проверки выполняются под блокировкой
// до первой записи: отказ никогда не оставляет частичной мутации
var (
	// лобби или игра с таким id отсутствует
	ErrNotFound = errors.New("service: запись не найдена")
	// вызывающий не участник
	ErrForbidden = errors.New("service: доступ запрещен")
	// лобби занято, неверный пароль или действие не подходит фазе/роли
	ErrConflict = errors.New("service: действие конфликтует с текущим состоянием")
)
