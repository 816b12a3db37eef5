package models

import "time"

// Customer - агрегированная карточка покупателя, обновляется при каждом заказе.
type Customer struct {
	TelegramID  int64     `json:"telegram_id"`
	FirstName   string    `json:"first_name"`
	Username    string    `json:"username"`
	Phone       string    `json:"phone"`
	OrdersCount int64     `json:"orders_count"`
	TotalSpent  int64     `json:"total_spent"`
	LastOrderAt time.Time `json:"last_order_at"`
}

// Notification - запись об отправленном вручную уведомлении.
type Notification struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	IsSent    bool      `json:"is_sent"`
	CreatedAt time.Time `json:"created_at"`
}

// ConfirmationCode подтверждает опасные действия владельца.
type ConfirmationCode struct {
	ID        int64     `json:"id"`
	Code      string    `json:"code"`
	IsActive  bool      `json:"is_active"`
	CreatedBy int64     `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}
