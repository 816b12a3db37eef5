package db

import (
	"context"
	"fmt"

	"artflora/internal/models"
)

// GetStats собирает сводку для админ-панели.
func (s *Store) GetStats(ctx context.Context) (models.Stats, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	stats := models.Stats{OrdersByStatus: make(map[int]int64)}
	err := s.DB.QueryRowContext(ctx, `
        SELECT
            (SELECT COUNT(*) FROM orders),
            (SELECT COALESCE(SUM(total_amount), 0) FROM orders),
            (SELECT COALESCE(SUM(profit), 0) FROM orders),
            (SELECT COUNT(*) FROM products),
            (SELECT COUNT(*) FROM admins WHERE is_active = TRUE),
            (SELECT COUNT(*) FROM customers)`,
	).Scan(&stats.TotalOrders, &stats.TotalRevenue, &stats.TotalProfit,
		&stats.TotalProducts, &stats.ActiveAdmins, &stats.TotalCustomers)
	if err != nil {
		return stats, fmt.Errorf("ошибка расчета статистики: %w", err)
	}

	rows, err := s.DB.QueryContext(ctx, `SELECT status_id, COUNT(*) FROM orders GROUP BY status_id`)
	if err != nil {
		return stats, fmt.Errorf("ошибка расчета статистики по статусам: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var statusID int
		var count int64
		if err := rows.Scan(&statusID, &count); err != nil {
			return stats, err
		}
		stats.OrdersByStatus[statusID] = count
	}
	return stats, rows.Err()
}

// CountRows возвращает число строк в таблице. Используется проверкой здоровья.
func (s *Store) CountRows(ctx context.Context, table string) (int64, error) {
	if !knownTables[table] {
		return 0, fmt.Errorf("неизвестная таблица '%s'", table)
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var n int64
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+table).Scan(&n); err != nil {
		return 0, fmt.Errorf("ошибка подсчета строк в %s: %w", table, err)
	}
	return n, nil
}

// KnownTables - таблицы схемы магазина.
var KnownTables = []string{
	"products", "orders", "admins", "shop_settings", "shop_themes",
	"promocodes", "order_statuses", "categories", "customers", "confirmation_codes",
}

var knownTables = func() map[string]bool {
	m := make(map[string]bool, len(KnownTables))
	for _, t := range KnownTables {
		m[t] = true
	}
	return m
}()
