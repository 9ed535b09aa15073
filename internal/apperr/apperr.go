// Package apperr определяет таксономию ошибок движка: каждая ошибка уровня
// компонента транслируется в один из видов ниже и возвращается
// непосредственному вызывающему без автоматических повторов.
package apperr

import (
	"errors"
	"net/http"
)

// Виды ошибок движка. Сервисы оборачивают их через fmt.Errorf("%s: %w", ...),
// обработчики сопоставляют с HTTP-статусом через Status.
var (
	// ErrValidation — некорректный вход или несоответствие формата.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound — отсутствует сущность, на которую ссылается запрос.
	ErrNotFound = errors.New("not found")
	// ErrConflict — повторная покупка, использованный купон, повторное
	// бронирование, уже действующая подписка.
	ErrConflict = errors.New("conflict")
	// ErrUnauthorized — нет права доступа (entitlement отсутствует).
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden — действие запрещено состоянием сущности
	// (например, модуль ещё не опубликован).
	ErrForbidden = errors.New("forbidden")
	// ErrInsufficientFunds — недостаточно средств на карте.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrPersistence — сбой нижележащего хранилища.
	ErrPersistence = errors.New("persistence failure")
)

// Status возвращает HTTP-статус для вида ошибки.
// Неклассифицированные ошибки считаются сбоем хранилища/сервера.
func Status(err error) int {
	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrInsufficientFunds):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
