package db

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	log "github.com/sirupsen/logrus"

	"artflora/internal/constants"
	"artflora/internal/models"
)

// ListThemes возвращает все темы оформления.
func (s *Store) ListThemes(ctx context.Context) ([]models.Theme, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rows, err := s.DB.QueryContext(ctx, `SELECT id, name, background_value, is_active, created_at FROM shop_themes ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("ошибка выборки тем: %w", err)
	}
	defer rows.Close()

	themes := []models.Theme{}
	for rows.Next() {
		var t models.Theme
		if err := rows.Scan(&t.ID, &t.Name, &t.BackgroundValue, &t.IsActive, &t.CreatedAt); err != nil {
			return nil, err
		}
		themes = append(themes, t)
	}
	return themes, rows.Err()
}

// CreateTheme добавляет неактивную тему.
func (s *Store) CreateTheme(ctx context.Context, t *models.Theme) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	err := s.DB.QueryRowContext(ctx, `
        INSERT INTO shop_themes (name, background_value, is_active) VALUES ($1, $2, FALSE)
        RETURNING id, is_active, created_at`,
		t.Name, t.BackgroundValue,
	).Scan(&t.ID, &t.IsActive, &t.CreatedAt)
	if err != nil {
		return fmt.Errorf("ошибка создания темы: %w", err)
	}
	return nil
}

// ActivateTheme делает тему единственной активной и записывает ее в active_theme.
func (s *Store) ActivateTheme(ctx context.Context, id int64) (err error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `UPDATE shop_themes SET is_active = FALSE WHERE is_active = TRUE`); err != nil {
		return fmt.Errorf("ошибка сброса активной темы: %w", err)
	}
	res, err := tx.ExecContext(ctx, `UPDATE shop_themes SET is_active = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("ошибка активации темы #%d: %w", id, err)
	}
	if err = expectAffected(res); err != nil {
		return err
	}

	value, err := json.Marshal(map[string]string{"value": strconv.FormatInt(id, 10)})
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `
        INSERT INTO shop_settings (key, value, updated_at) VALUES ($1, $2::JSONB, NOW())
        ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`,
		constants.SETTING_ACTIVE_THEME, string(value))
	if err != nil {
		return fmt.Errorf("ошибка сохранения active_theme: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("ошибка фиксации транзакции: %w", err)
	}
	log.Printf("Активирована тема #%d", id)
	return nil
}
