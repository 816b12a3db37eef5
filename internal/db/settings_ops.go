package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"artflora/internal/models"
)

// GetSettings возвращает все настройки магазина по ключу.
func (s *Store) GetSettings(ctx context.Context) (map[string]models.ShopSetting, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rows, err := s.DB.QueryContext(ctx, `SELECT key, value, updated_at FROM shop_settings`)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения настроек: %w", err)
	}
	defer rows.Close()

	settings := make(map[string]models.ShopSetting)
	for rows.Next() {
		var (
			st  models.ShopSetting
			raw []byte
		)
		if err := rows.Scan(&st.Key, &raw, &st.UpdatedAt); err != nil {
			return nil, fmt.Errorf("ошибка сканирования настройки: %w", err)
		}
		st.Value = json.RawMessage(raw)
		settings[st.Key] = st
	}
	return settings, rows.Err()
}

// GetSetting возвращает одну настройку. Отсутствие ключа - ErrNotFound.
func (s *Store) GetSetting(ctx context.Context, key string) (models.ShopSetting, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var (
		st  = models.ShopSetting{Key: key}
		raw []byte
	)
	err := s.DB.QueryRowContext(ctx, `SELECT value, updated_at FROM shop_settings WHERE key = $1`, key).
		Scan(&raw, &st.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return st, ErrNotFound
	}
	if err != nil {
		return st, fmt.Errorf("ошибка чтения настройки '%s': %w", key, err)
	}
	st.Value = json.RawMessage(raw)
	return st, nil
}

// UpsertSetting записывает значение настройки. value должен быть корректным JSON.
func (s *Store) UpsertSetting(ctx context.Context, key string, value json.RawMessage) error {
	if !json.Valid(value) {
		return fmt.Errorf("значение настройки '%s' не является JSON", key)
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	_, err := s.DB.ExecContext(ctx, `
        INSERT INTO shop_settings (key, value, updated_at) VALUES ($1, $2::JSONB, NOW())
        ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`,
		key, string(value))
	if err != nil {
		return fmt.Errorf("ошибка сохранения настройки '%s': %w", key, err)
	}
	return nil
}
