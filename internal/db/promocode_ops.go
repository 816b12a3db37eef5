package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"artflora/internal/models"
)

// ErrPromocodeExists - код уже занят.
var ErrPromocodeExists = errors.New("промокод с таким кодом уже существует")

const promocodeColumns = `
    id, code, discount_type, discount_value, min_order_amount, max_uses, used_count,
    valid_from, valid_until, is_active, created_by, created_at`

func scanPromocode(row rowScanner) (models.Promocode, error) {
	var p models.Promocode
	err := row.Scan(&p.ID, &p.Code, &p.DiscountType, &p.DiscountValue, &p.MinOrderAmount,
		&p.MaxUses, &p.UsedCount, &p.ValidFrom, &p.ValidUntil, &p.IsActive, &p.CreatedBy, &p.CreatedAt)
	return p, err
}

func (s *Store) getPromocode(ctx context.Context, where string, arg interface{}) (models.Promocode, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	row := s.DB.QueryRowContext(ctx, `SELECT `+promocodeColumns+` FROM promocodes WHERE `+where, arg)
	p, err := scanPromocode(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Promocode{}, ErrNotFound
	}
	if err != nil {
		return models.Promocode{}, fmt.Errorf("ошибка поиска промокода: %w", err)
	}
	return p, nil
}

// GetPromocodeByCode ищет промокод по коду с учетом регистра.
func (s *Store) GetPromocodeByCode(ctx context.Context, code string) (models.Promocode, error) {
	return s.getPromocode(ctx, `code = $1`, code)
}

// GetPromocodeByID ищет промокод по ID.
func (s *Store) GetPromocodeByID(ctx context.Context, id int64) (models.Promocode, error) {
	return s.getPromocode(ctx, `id = $1`, id)
}

// ListPromocodes возвращает все промокоды, новые первыми.
func (s *Store) ListPromocodes(ctx context.Context) ([]models.Promocode, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rows, err := s.DB.QueryContext(ctx, `SELECT `+promocodeColumns+` FROM promocodes ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("ошибка выборки промокодов: %w", err)
	}
	defer rows.Close()

	codes := []models.Promocode{}
	for rows.Next() {
		p, err := scanPromocode(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования промокода: %w", err)
		}
		codes = append(codes, p)
	}
	return codes, rows.Err()
}

// CreatePromocode сохраняет новый промокод с used_count = 0.
func (s *Store) CreatePromocode(ctx context.Context, p *models.Promocode) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	err := s.DB.QueryRowContext(ctx, `
        INSERT INTO promocodes (code, discount_type, discount_value, min_order_amount, max_uses,
                                used_count, valid_from, valid_until, is_active, created_by)
        VALUES ($1, $2, $3, $4, $5, 0, $6, $7, $8, $9)
        RETURNING id, used_count, created_at`,
		p.Code, p.DiscountType, p.DiscountValue, p.MinOrderAmount, p.MaxUses,
		p.ValidFrom, p.ValidUntil, p.IsActive, p.CreatedBy,
	).Scan(&p.ID, &p.UsedCount, &p.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrPromocodeExists
		}
		return fmt.Errorf("ошибка создания промокода: %w", err)
	}
	return nil
}

// DeactivatePromocode выводит промокод из оборота. Строка не удаляется.
func (s *Store) DeactivatePromocode(ctx context.Context, id int64) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	res, err := s.DB.ExecContext(ctx, `UPDATE promocodes SET is_active = FALSE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("ошибка деактивации промокода #%d: %w", id, err)
	}
	return expectAffected(res)
}

// IncrementPromocodeUsage увеличивает used_count на единицу.
// Лимит max_uses здесь не проверяется: два одновременных заказа с последним
// использованием кода оба пройдут проверку и оба увеличат счетчик.
func (s *Store) IncrementPromocodeUsage(ctx context.Context, id int64) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	res, err := s.DB.ExecContext(ctx, `UPDATE promocodes SET used_count = used_count + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("ошибка учета использования промокода #%d: %w", id, err)
	}
	return expectAffected(res)
}
