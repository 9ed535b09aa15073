package models

import (
	"fmt"
	"regexp"
)

// GrantKind — типизированная категория гранта, по которой диспетчеризуются
// купоны и позиции корзины. Тегированный вариант вместо сравнения строк:
// парсинг на границе, дальше только исчерпывающий switch.
type GrantKind string

const (
	// GrantCubes — зачисление кубов.
	GrantCubes GrantKind = "cubes"
	// GrantSubscription — оформление подписки.
	GrantSubscription GrantKind = "subscription"
	// GrantExam — покупка экзамена.
	GrantExam GrantKind = "exam"
)

// ParseGrantKind превращает строку внешнего запроса в GrantKind.
func ParseGrantKind(s string) (GrantKind, error) {
	switch GrantKind(s) {
	case GrantCubes, GrantSubscription, GrantExam:
		return GrantKind(s), nil
	default:
		return "", fmt.Errorf("unknown category: %q", s)
	}
}

// couponCodePattern — код купона всегда 32-символьный hex-токен.
var couponCodePattern = regexp.MustCompile(`^[a-fA-F0-9]{32}$`)

// ValidCouponCode проверяет структурный формат кода купона.
func ValidCouponCode(code string) bool {
	return couponCodePattern.MatchString(code)
}

// Coupon — одноразовый купон. Используется глобально, а не на пользователя:
// код достаётся первому предъявившему. Переход Used false → true однократный
// и необратимый.
type Coupon struct {
	Code   string    `json:"coupon"`
	Kind   GrantKind `json:"type"`
	Target string    `json:"target"` // интерпретируется по Kind
	Used   bool      `json:"used"`
}
