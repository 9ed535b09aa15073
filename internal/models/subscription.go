package models

import "time"

// SubscriptionPlan описывает тарифный план из каталога.
// Справочные данные, неизменяемые со стороны движка.
type SubscriptionPlan struct {
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	Cost           float64  `json:"cost"`   // в USD
	Reward         int      `json:"reward"` // в кубах
	DurationMonths int      `json:"duration"`
	UnlockedTiers  []string `json:"unlockedTiers"`
}

// FreePlanName и UnlimitedPlanName — синтетические планы, которые никогда
// не сохраняются в хранилище и исключаются из выдачи каталога.
const (
	FreePlanName      = "free"
	UnlimitedPlanName = "Unlimited"
)

// FreePlan — план по умолчанию для пользователей без действующей подписки.
var FreePlan = SubscriptionPlan{
	Name:          FreePlanName,
	Description:   "Free subscription",
	UnlockedTiers: []string{},
}

// SyntheticExpiry — дата истечения синтетических подписок (free, Unlimited).
// Закреплена далеко в будущем, чтобы путь с фолбэком не "истекал" повторно.
var SyntheticExpiry = time.Date(2100, time.January, 1, 0, 0, 0, 0, time.UTC)

// UserSubscription — сохранённая подписка пользователя.
// Не более одной записи на пользователя; "живость" определяется
// условием ExpiresAt > now, а не фактом существования записи.
type UserSubscription struct {
	UserID           string    `json:"userId"`
	SubscriptionName string    `json:"subscriptionName"`
	ExpiresAt        time.Time `json:"expiresAt"`
}

// EffectiveSubscription — подписка, фактически действующая для пользователя
// после применения правил стафф-домена и фолбэка на free.
type EffectiveSubscription struct {
	UserID           string    `json:"userId"`
	SubscriptionName string    `json:"subscriptionName"`
	ExpiresAt        time.Time `json:"expiresAt"`
}

// Expired сообщает, истекла ли действующая подписка к моменту now.
func (e EffectiveSubscription) Expired(now time.Time) bool {
	return !e.ExpiresAt.After(now)
}
