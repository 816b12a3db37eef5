package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"artflora/internal/constants"
	"artflora/internal/models"
)

const orderColumns = `
    id, user_id, user_name, user_username, phone, items, delivery_option, delivery_address,
    total_amount, delivery_fee, discount_amount, final_amount, promocode_id, status_id,
    profit, comment, order_time, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOrder(row rowScanner) (models.Order, error) {
	var o models.Order
	err := row.Scan(
		&o.ID, &o.UserID, &o.UserName, &o.UserUsername, &o.Phone, &o.Items, &o.DeliveryOption,
		&o.DeliveryAddress, &o.TotalAmount, &o.DeliveryFee, &o.DiscountAmount, &o.FinalAmount,
		&o.PromocodeID, &o.StatusID, &o.Profit, &o.Comment, &o.OrderTime, &o.CreatedAt, &o.UpdatedAt,
	)
	return o, err
}

// CreateOrder сохраняет заказ и заполняет ID и отметки времени.
func (s *Store) CreateOrder(ctx context.Context, order *models.Order) error {
	if len(order.Items) == 0 {
		return models.ErrEmptyItems
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	query := `
        INSERT INTO orders (
            user_id, user_name, user_username, phone, items, delivery_option, delivery_address,
            total_amount, delivery_fee, discount_amount, final_amount, promocode_id, status_id,
            profit, comment, order_time, created_at, updated_at
        )
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, NOW(), NOW())
        RETURNING id, created_at, updated_at`

	err := s.DB.QueryRowContext(ctx, query,
		order.UserID, order.UserName, order.UserUsername, order.Phone, order.Items,
		order.DeliveryOption, order.DeliveryAddress, order.TotalAmount, order.DeliveryFee,
		order.DiscountAmount, order.FinalAmount, order.PromocodeID, order.StatusID,
		order.Profit, order.Comment, order.OrderTime,
	).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		log.Printf("CreateOrder: ошибка INSERT заказа (клиент %d): %v", order.UserID, err)
		return fmt.Errorf("ошибка сохранения заказа: %w", err)
	}

	log.WithFields(log.Fields{"order_id": order.ID, "user_id": order.UserID}).Info("Заказ сохранен")
	return nil
}

// GetOrderByID извлекает заказ по его ID.
func (s *Store) GetOrderByID(ctx context.Context, id int64) (models.Order, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	row := s.DB.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	order, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Order{}, ErrNotFound
	}
	if err != nil {
		return models.Order{}, fmt.Errorf("ошибка получения заказа #%d: %w", id, err)
	}
	return order, nil
}

// ListOrders возвращает заказы по фильтру, новые первыми.
func (s *Store) ListOrders(ctx context.Context, f models.OrderFilter) ([]models.Order, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var (
		conds []string
		args  []interface{}
	)
	if f.StatusID != 0 {
		args = append(args, f.StatusID)
		conds = append(conds, fmt.Sprintf("status_id = $%d", len(args)))
	}
	if !f.From.IsZero() {
		args = append(args, f.From)
		conds = append(conds, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if !f.To.IsZero() {
		args = append(args, f.To)
		conds = append(conds, fmt.Sprintf("created_at < $%d", len(args)))
	}

	query := `SELECT ` + orderColumns + ` FROM orders`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка выборки заказов: %w", err)
	}
	defer rows.Close()

	orders := []models.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования заказа: %w", err)
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// SetOrderStatus меняет статус заказа. Если profit валиден, прибыль перезаписывается.
func (s *Store) SetOrderStatus(ctx context.Context, id int64, statusID int, profit sql.NullInt64) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	res, err := s.DB.ExecContext(ctx, `
        UPDATE orders
        SET status_id = $2,
            profit = CASE WHEN $3::BIGINT IS NULL THEN profit ELSE $3::BIGINT END,
            updated_at = NOW()
        WHERE id = $1`, id, statusID, profit)
	if err != nil {
		return fmt.Errorf("ошибка обновления статуса заказа #%d: %w", id, err)
	}
	return expectAffected(res)
}

// DeleteOrder удаляет один заказ без каскада.
func (s *Store) DeleteOrder(ctx context.Context, id int64) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	res, err := s.DB.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("ошибка удаления заказа #%d: %w", id, err)
	}
	return expectAffected(res)
}

// GetOrderStatuses возвращает справочник статусов.
func (s *Store) GetOrderStatuses(ctx context.Context) ([]models.OrderStatus, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rows, err := s.DB.QueryContext(ctx, `SELECT id, name FROM order_statuses ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("ошибка выборки статусов: %w", err)
	}
	defer rows.Close()

	statuses := []models.OrderStatus{}
	for rows.Next() {
		var st models.OrderStatus
		if err := rows.Scan(&st.ID, &st.Name); err != nil {
			return nil, err
		}
		statuses = append(statuses, st)
	}
	return statuses, rows.Err()
}

func (s *Store) seedOrderStatuses(ctx context.Context) error {
	for id := constants.STATUS_NEW; id <= constants.STATUS_CANCELLED; id++ {
		_, err := s.DB.ExecContext(ctx,
			`INSERT INTO order_statuses (id, name) VALUES ($1, $2) ON CONFLICT (id) DO NOTHING`,
			id, constants.StatusNames[id])
		if err != nil {
			return fmt.Errorf("ошибка заполнения справочника статусов: %w", err)
		}
	}
	return nil
}

func expectAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
