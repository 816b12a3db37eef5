package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// OrderItem - позиция заказа. Снимок на момент оформления, после создания не меняется.
type OrderItem struct {
	Name      string `json:"name"`
	Quantity  int64  `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
	LineTotal int64  `json:"line_total"`
}

// OrderItems хранится в колонке JSONB.
type OrderItems []OrderItem

// Value реализует driver.Valuer.
func (items OrderItems) Value() (driver.Value, error) {
	if items == nil {
		return "[]", nil
	}
	b, err := json.Marshal(items)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan реализует sql.Scanner.
func (items *OrderItems) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*items = OrderItems{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("OrderItems: неподдерживаемый тип %T", src)
	}
	return json.Unmarshal(raw, items)
}

// Total - сумма строк заказа.
func (items OrderItems) Total() int64 {
	var total int64
	for _, it := range items {
		total += it.LineTotal
	}
	return total
}

var ErrEmptyItems = errors.New("заказ не содержит позиций")

// Order - заказ покупателя.
type Order struct {
	ID              int64      `json:"id"`
	UserID          int64      `json:"user_id"`
	UserName        string     `json:"user_name"`
	UserUsername    string     `json:"user_username"`
	Phone           string     `json:"phone"`
	Items           OrderItems `json:"items"`
	DeliveryOption  string     `json:"delivery_option"`
	DeliveryAddress NullString `json:"delivery_address"`
	TotalAmount     int64      `json:"total_amount"`
	DeliveryFee     int64      `json:"delivery_fee"`
	DiscountAmount  int64      `json:"discount_amount"`
	FinalAmount     int64      `json:"final_amount"`
	PromocodeID     NullInt64  `json:"promocode_id"`
	StatusID        int        `json:"status_id"`
	Profit          int64      `json:"profit"`
	Comment         NullString `json:"comment"`
	OrderTime       string     `json:"order_time"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// OrderFilter - параметры выборки заказов для админки и отчетов.
type OrderFilter struct {
	StatusID int
	From     time.Time
	To       time.Time
	Limit    int
}

// OrderStatus - строка справочника order_statuses.
type OrderStatus struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}
