// Package models содержит доменные структуры платформы: пользователей,
// баланс кубов, подписки, экзамены, купоны, платёжные карты и модули.
// Структуры используются в бизнес-логике и при работе с хранилищем.
package models

import "time"

// User представляет зарегистрированного пользователя платформы.
type User struct {
	ID               string    // Уникальный идентификатор пользователя (UUID)
	Name             string    // Полное имя
	Username         string    // Имя пользователя (уникальное)
	Email            string    // Электронная почта (уникальная)
	PasswordHash     string    // Bcrypt-хэш пароля
	RegistrationDate time.Time // Дата регистрации
}

// SessionUser — снимок данных пользователя, зашитый в токен на момент его
// выпуска. Операции доверяют снимку и не перечитывают хранилище, поэтому
// значения Cubes и Subscription могут отставать от актуального состояния.
type SessionUser struct {
	ID               string                `json:"id"`
	Name             string                `json:"name"`
	Username         string                `json:"username"`
	Email            string                `json:"email"`
	RegistrationDate time.Time             `json:"registrationDate"`
	Cubes            int                   `json:"cubes"`
	Subscription     EffectiveSubscription `json:"subscription"`
}
