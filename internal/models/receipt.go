package models

import "time"

// Receipt — событие успешной покупки, публикуемое в очередь квитанций.
// Потребляется воркером receipt-sender для отправки письма.
type Receipt struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	Source    string    `json:"source"` // payment или coupon
	Summary   string    `json:"summary"`
	TotalUSD  float64   `json:"total_usd"`
	CreatedAt time.Time `json:"created_at"`
}
