package models

import "time"

// Promocode - скидочный код. Выводится из оборота деактивацией, не удалением.
type Promocode struct {
	ID             int64     `json:"id"`
	Code           string    `json:"code"`
	DiscountType   string    `json:"discount_type"`
	DiscountValue  int64     `json:"discount_value"`
	MinOrderAmount int64     `json:"min_order_amount"`
	MaxUses        NullInt64 `json:"max_uses"`
	UsedCount      int64     `json:"used_count"`
	ValidFrom      NullTime  `json:"valid_from"`
	ValidUntil     NullTime  `json:"valid_until"`
	IsActive       bool      `json:"is_active"`
	CreatedBy      NullInt64 `json:"created_by"`
	CreatedAt      time.Time `json:"created_at"`
}
