package models

import "time"

// Theme - оформление витрины. Активна не более чем одна тема.
type Theme struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	BackgroundValue string    `json:"background_value"`
	IsActive        bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
}
