package db

import (
	"context"
	"fmt"

	"artflora/internal/models"
)

// RecordCustomerOrder обновляет карточку покупателя после заказа: имя, телефон, счетчики.
func (s *Store) RecordCustomerOrder(ctx context.Context, order models.Order) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	_, err := s.DB.ExecContext(ctx, `
        INSERT INTO customers (telegram_id, first_name, username, phone, orders_count, total_spent, last_order_at)
        VALUES ($1, $2, $3, $4, 1, $5, NOW())
        ON CONFLICT (telegram_id) DO UPDATE SET
            first_name = EXCLUDED.first_name,
            username = EXCLUDED.username,
            phone = EXCLUDED.phone,
            orders_count = customers.orders_count + 1,
            total_spent = customers.total_spent + EXCLUDED.total_spent,
            last_order_at = NOW()`,
		order.UserID, order.UserName, order.UserUsername, order.Phone, order.FinalAmount)
	if err != nil {
		return fmt.Errorf("ошибка обновления покупателя %d: %w", order.UserID, err)
	}
	return nil
}

// ListCustomers возвращает покупателей, последние заказавшие первыми.
func (s *Store) ListCustomers(ctx context.Context, limit int) ([]models.Customer, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	query := `SELECT telegram_id, first_name, username, phone, orders_count, total_spent, last_order_at
              FROM customers ORDER BY last_order_at DESC`
	args := []interface{}{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка выборки покупателей: %w", err)
	}
	defer rows.Close()

	customers := []models.Customer{}
	for rows.Next() {
		var c models.Customer
		if err := rows.Scan(&c.TelegramID, &c.FirstName, &c.Username, &c.Phone, &c.OrdersCount, &c.TotalSpent, &c.LastOrderAt); err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}
