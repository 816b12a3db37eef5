// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	BotToken    string
	DatabaseURL string
	AppEnv      string
	LogLevel    string
	Port        string
	BotUsername string
	WebAppURL   string

	// WebhookSecret сверяется с заголовком X-Telegram-Bot-Api-Secret-Token вебхука.
	WebhookSecret string

	// AdminChatIDs - дополнительные получатели уведомлений о заказах помимо таблицы admins.
	AdminChatIDs []int64

	VerifyInitData bool
	BotPolling     bool
	NotifyTimeout  time.Duration
	DBTimeout      time.Duration
	AllowedOrigins []string
}

var (
	ErrMissingBotToken    = errors.New("BOT_TOKEN не установлен")
	ErrMissingDatabaseURL = errors.New("DATABASE_URL не установлен")
)

// LoadConfig загружает конфигурацию из переменных окружения.
// Отсутствие BOT_TOKEN или DATABASE_URL - ошибка запуска.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "prod")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("VERIFY_INIT_DATA", false)
	v.SetDefault("BOT_POLLING", false)
	v.SetDefault("NOTIFY_TIMEOUT", "10s")
	v.SetDefault("DB_TIMEOUT", "10s")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "https://*,http://*")

	cfg := &Config{
		BotToken:       strings.TrimSpace(v.GetString("BOT_TOKEN")),
		DatabaseURL:    strings.TrimSpace(v.GetString("DATABASE_URL")),
		AppEnv:         v.GetString("ENV"),
		LogLevel:       v.GetString("LOG_LEVEL"),
		Port:           v.GetString("PORT"),
		BotUsername:    strings.TrimPrefix(v.GetString("BOT_USERNAME"), "@"),
		WebAppURL:      v.GetString("WEBAPP_URL"),
		WebhookSecret:  strings.TrimSpace(v.GetString("WEBHOOK_SECRET")),
		VerifyInitData: v.GetBool("VERIFY_INIT_DATA"),
		BotPolling:     v.GetBool("BOT_POLLING"),
		NotifyTimeout:  v.GetDuration("NOTIFY_TIMEOUT"),
		DBTimeout:      v.GetDuration("DB_TIMEOUT"),
		AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
	}

	if cfg.BotToken == "" {
		return nil, ErrMissingBotToken
	}
	if cfg.DatabaseURL == "" {
		return nil, ErrMissingDatabaseURL
	}

	ids, err := parseChatIDs(v.GetString("ADMIN_CHAT_ID"))
	if err != nil {
		return nil, fmt.Errorf("ADMIN_CHAT_ID: %w", err)
	}
	cfg.AdminChatIDs = ids

	if cfg.NotifyTimeout <= 0 {
		log.Printf("Предупреждение: некорректный NOTIFY_TIMEOUT, используется 10s")
		cfg.NotifyTimeout = 10 * time.Second
	}
	if cfg.DBTimeout <= 0 {
		log.Printf("Предупреждение: некорректный DB_TIMEOUT, используется 10s")
		cfg.DBTimeout = 10 * time.Second
	}
	if cfg.BotUsername == "" {
		log.Println("Предупреждение: BOT_USERNAME не установлен. QR-код магазина недоступен.")
	}
	if cfg.WebAppURL == "" {
		log.Println("Предупреждение: WEBAPP_URL не установлен. Кнопка магазина в /start не будет отправлена.")
	}

	if cfg.WebhookSecret == "" && !cfg.BotPolling {
		log.Println("Предупреждение: WEBHOOK_SECRET не установлен. POST /api/bot принимает обновления без проверки.")
	}

	log.Println("Конфигурация загружена.")
	return cfg, nil
}

// IsDev сообщает, запущено ли приложение в режиме разработки.
func (c *Config) IsDev() bool {
	return c.AppEnv == "dev"
}

// parseChatIDs разбирает список chat_id через запятую. Пустая строка - пустой список.
func parseChatIDs(raw string) ([]int64, error) {
	var ids []int64
	for _, part := range splitList(raw) {
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("некорректный chat_id '%s': %w", part, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
