package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ShopSetting - пара ключ/значение из shop_settings. Значение хранится как JSON.
type ShopSetting struct {
	Key       string          `json:"key"`
	Value     json.RawMessage `json:"value"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Int64 читает числовую настройку. Поддерживаются формы 200, "200" и {"value": 200 | "200"}.
func (s ShopSetting) Int64() (int64, error) {
	return ParseNumericValue(s.Value)
}

// ParseNumericValue разбирает числовое значение настройки.
func ParseNumericValue(raw json.RawMessage) (int64, error) {
	var wrapped struct {
		Value json.RawMessage `json:"value"`
	}
	trimmed := strings.TrimSpace(string(raw))
	if strings.HasPrefix(trimmed, "{") {
		if err := json.Unmarshal(raw, &wrapped); err != nil {
			return 0, err
		}
		if len(wrapped.Value) == 0 {
			return 0, fmt.Errorf("в настройке нет поля value")
		}
		trimmed = strings.TrimSpace(string(wrapped.Value))
	}

	var s string
	if err := json.Unmarshal([]byte(trimmed), &s); err == nil {
		trimmed = strings.TrimSpace(s)
	}
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, fmt.Errorf("значение '%s' не является числом", trimmed)
	}
	return int64(f), nil
}
