// Package common — errors.go определяет пользовательские ошибки,
// которые используются во всех модулях бота.
// Эти ошибки позволяют обработчикам различать типы проблем
// и отправлять пользователю понятные сообщения.
package common

import "errors"

// Ошибки баланса и леджера
var (
	// ErrInsufficientBalance — недостаточно очков на счёте
	ErrInsufficientBalance = errors.New("недостаточно очков на счёте")
	// ErrInvalidAmount — некорректная сумма (ноль или отрицательная)
	ErrInvalidAmount = errors.New("сумма должна быть положительной")
	// ErrUserNotFound — пользователь не найден в базе
	ErrUserNotFound = errors.New("пользователь не найден")
	// ErrUnknownPlayer — в игровом сообщении упомянут неизвестный участник
	ErrUnknownPlayer = errors.New("упомянутый участник не зарегистрирован в чате")
)

// Ошибки админки
var (
	// ErrNotAdmin — пользователь не является администратором
	ErrNotAdmin = errors.New("у вас нет прав администратора")
	// ErrWrongPassword — неверный пароль
	ErrWrongPassword = errors.New("неверный пароль")
	// ErrTooManyAttempts — слишком много неудачных попыток входа
	ErrTooManyAttempts = errors.New("слишком много попыток, подождите 1 час")
	// ErrSessionExpired — сессия истекла
	ErrSessionExpired = errors.New("сессия истекла, авторизуйтесь заново")
)

// Ошибки магазина
var (
	// ErrItemNotFound — такого товара нет в каталоге
	ErrItemNotFound = errors.New("такого товара нет в магазине")
	// ErrAlreadyOwned — у пользователя уже есть активный грант на этот товар
	ErrAlreadyOwned = errors.New("этот товар уже куплен и ещё действует")
)
