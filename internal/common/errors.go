// Package common — errors.go определяет пользовательские ошибки,
// которые используются во всех модулях движка экономики.
// Эти ошибки позволяют вызывающему слою различать типы проблем
// и отдавать пользователю понятные сообщения.
package common

import "errors"

// Ошибки «не найдено»
var (
	// ErrAccountNotFound — аккаунт не найден в базе
	ErrAccountNotFound = errors.New("аккаунт не найден")
)

// Ошибки «уже сделано» — повтор операции, допустимой только один раз
var (
	// ErrAlreadyCheckedIn — сегодня чек-ин уже выполнен
	ErrAlreadyCheckedIn = errors.New("чек-ин сегодня уже выполнен")
	// ErrReferralAlreadySet — реферер у аккаунта уже установлен
	ErrReferralAlreadySet = errors.New("реферальный бонус уже начислен")
	// ErrAlreadyAdmin — аккаунт уже является администратором
	ErrAlreadyAdmin = errors.New("аккаунт уже администратор")
)

// Ошибки ресурсов и некорректных состояний
var (
	// ErrInsufficientFunds — не хватает ни монет, ни бонусных слотов
	ErrInsufficientFunds = errors.New("недостаточно монет и бонусных слотов")
	// ErrReferrerNotFound — аккаунт реферера не существует
	ErrReferrerNotFound = errors.New("реферер не найден")
	// ErrSelfReferral — попытка указать себя как реферера
	ErrSelfReferral = errors.New("нельзя быть реферером самому себе")
	// ErrSelfDelete — администратор пытается удалить собственный аккаунт
	ErrSelfDelete = errors.New("нельзя удалить собственный аккаунт")
	// ErrInvalidAmount — некорректная сумма (ноль или отрицательная)
	ErrInvalidAmount = errors.New("сумма должна быть положительной")
)

// Инфраструктурные ошибки
var (
	// ErrStoreUnavailable — хранилище недоступно, операцию можно повторить:
	// ничего не было записано
	ErrStoreUnavailable = errors.New("хранилище временно недоступно")
)

// Kind — класс ошибки для вызывающего слоя (HTTP-статусы, тексты).
type Kind int

const (
	// KindUnknown — неклассифицированная ошибка
	KindUnknown Kind = iota
	// KindNotFound — сущность не найдена
	KindNotFound
	// KindAlreadyDone — операция уже была выполнена
	KindAlreadyDone
	// KindInsufficientResources — не хватает средств
	KindInsufficientResources
	// KindInvalidState — бизнес-правило нарушено
	KindInvalidState
	// KindStoreUnavailable — временный сбой, повтор безопасен
	KindStoreUnavailable
)

// KindOf классифицирует ошибку движка по таксономии.
// Работает через errors.Is, поэтому обёртки %w не мешают.
func KindOf(err error) Kind {
	switch {
	case errors.Is(err, ErrAccountNotFound):
		return KindNotFound
	case errors.Is(err, ErrAlreadyCheckedIn), errors.Is(err, ErrReferralAlreadySet), errors.Is(err, ErrAlreadyAdmin):
		return KindAlreadyDone
	case errors.Is(err, ErrInsufficientFunds):
		return KindInsufficientResources
	// Отсутствующий реферер — ошибка состояния операции, а не «не найдено»:
	// сам вызывающий аккаунт существует
	case errors.Is(err, ErrReferrerNotFound), errors.Is(err, ErrSelfReferral),
		errors.Is(err, ErrSelfDelete), errors.Is(err, ErrInvalidAmount):
		return KindInvalidState
	case errors.Is(err, ErrStoreUnavailable):
		return KindStoreUnavailable
	default:
		return KindUnknown
	}
}

// IsBusinessError сообщает, является ли ошибка бизнес-отказом.
// Бизнес-отказ откатывает транзакцию чисто: повторять её бессмысленно,
// но и частичных записей после неё не остаётся.
func IsBusinessError(err error) bool {
	switch KindOf(err) {
	case KindNotFound, KindAlreadyDone, KindInsufficientResources, KindInvalidState:
		return true
	default:
		return false
	}
}
