package models

import "time"

// Admin - оператор магазина.
type Admin struct {
	ID         int64     `json:"id"`
	TelegramID int64     `json:"telegram_id"`
	Role       string    `json:"role"`
	IsActive   bool      `json:"is_active"`
	FirstName  string    `json:"first_name"`
	Username   string    `json:"username"`
	CreatedAt  time.Time `json:"created_at"`
}
