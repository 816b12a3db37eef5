// Файл: internal/db/db.go
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	log "github.com/sirupsen/logrus"
)

// ErrNotFound возвращается, когда запрошенная строка отсутствует.
var ErrNotFound = errors.New("запись не найдена")

// Store - подключение к PostgreSQL. Все операции с данными - методы Store.
type Store struct {
	DB      *sql.DB
	timeout time.Duration
}

// Open открывает соединение с базой данных и проверяет его.
func Open(databaseURL string, timeout time.Duration) (*Store, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL не установлена")
	}

	conn, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к базе данных: %w", err)
	}

	conn.SetMaxOpenConns(25)
	conn.SetMaxIdleConns(10)
	conn.SetConnMaxLifetime(5 * time.Minute)

	s := New(conn, timeout)
	if err := s.Ping(context.Background()); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ошибка проверки соединения с базой данных: %w", err)
	}

	log.Println("Успешное подключение к базе данных.")
	return s, nil
}

// New оборачивает готовое соединение.
func New(conn *sql.DB, timeout time.Duration) *Store {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Store{DB: conn, timeout: timeout}
}

// withTimeout ограничивает время запроса к базе.
func (s *Store) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

// Ping проверяет доступность базы.
func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.DB.PingContext(ctx)
}

// Close закрывает соединение с базой данных.
func (s *Store) Close() {
	if s != nil && s.DB != nil {
		s.DB.Close()
		log.Println("Соединение с базой данных закрыто.")
	}
}

const createTablesSQL = `
    CREATE TABLE IF NOT EXISTS admins (
        id SERIAL PRIMARY KEY,
        telegram_id BIGINT UNIQUE NOT NULL,
        role TEXT NOT NULL DEFAULT 'manager' CHECK (role IN ('manager', 'admin', 'owner')),
        is_active BOOLEAN NOT NULL DEFAULT TRUE,
        first_name TEXT NOT NULL DEFAULT '',
        username TEXT NOT NULL DEFAULT '',
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    );
    CREATE TABLE IF NOT EXISTS order_statuses (
        id INTEGER PRIMARY KEY,
        name TEXT NOT NULL
    );
    CREATE TABLE IF NOT EXISTS categories (
        id SERIAL PRIMARY KEY,
        name TEXT NOT NULL,
        sort_order INTEGER NOT NULL DEFAULT 0
    );
    CREATE TABLE IF NOT EXISTS products (
        id SERIAL PRIMARY KEY,
        name TEXT NOT NULL,
        description TEXT,
        price BIGINT NOT NULL DEFAULT 0,
        image_url TEXT,
        category_id INTEGER REFERENCES categories(id) ON DELETE SET NULL,
        is_available BOOLEAN NOT NULL DEFAULT TRUE,
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    );
    CREATE TABLE IF NOT EXISTS promocodes (
        id SERIAL PRIMARY KEY,
        code TEXT UNIQUE NOT NULL,
        discount_type TEXT NOT NULL CHECK (discount_type IN ('percentage', 'fixed')),
        discount_value BIGINT NOT NULL,
        min_order_amount BIGINT NOT NULL DEFAULT 0,
        max_uses BIGINT,
        used_count BIGINT NOT NULL DEFAULT 0,
        valid_from TIMESTAMPTZ,
        valid_until TIMESTAMPTZ,
        is_active BOOLEAN NOT NULL DEFAULT TRUE,
        created_by INTEGER,
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    );
    CREATE TABLE IF NOT EXISTS orders (
        id SERIAL PRIMARY KEY,
        user_id BIGINT NOT NULL,
        user_name TEXT NOT NULL DEFAULT '',
        user_username TEXT NOT NULL DEFAULT '',
        phone TEXT NOT NULL DEFAULT '',
        items JSONB NOT NULL DEFAULT '[]',
        delivery_option TEXT NOT NULL DEFAULT 'pickup',
        delivery_address TEXT,
        total_amount BIGINT NOT NULL DEFAULT 0,
        delivery_fee BIGINT NOT NULL DEFAULT 0,
        discount_amount BIGINT NOT NULL DEFAULT 0,
        final_amount BIGINT NOT NULL DEFAULT 0,
        promocode_id INTEGER,
        status_id INTEGER NOT NULL DEFAULT 1,
        profit BIGINT NOT NULL DEFAULT 0,
        comment TEXT,
        order_time TEXT NOT NULL DEFAULT '',
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
        updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    );
    CREATE TABLE IF NOT EXISTS shop_settings (
        key TEXT PRIMARY KEY,
        value JSONB NOT NULL,
        updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    );
    CREATE TABLE IF NOT EXISTS shop_themes (
        id SERIAL PRIMARY KEY,
        name TEXT NOT NULL,
        background_value TEXT NOT NULL,
        is_active BOOLEAN NOT NULL DEFAULT FALSE,
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    );
    CREATE TABLE IF NOT EXISTS customers (
        telegram_id BIGINT PRIMARY KEY,
        first_name TEXT NOT NULL DEFAULT '',
        username TEXT NOT NULL DEFAULT '',
        phone TEXT NOT NULL DEFAULT '',
        orders_count BIGINT NOT NULL DEFAULT 0,
        total_spent BIGINT NOT NULL DEFAULT 0,
        last_order_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    );
    CREATE TABLE IF NOT EXISTS customer_stats (
        telegram_id BIGINT PRIMARY KEY,
        data JSONB NOT NULL DEFAULT '{}',
        updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    );
    CREATE TABLE IF NOT EXISTS confirmation_codes (
        id SERIAL PRIMARY KEY,
        code TEXT UNIQUE NOT NULL,
        is_active BOOLEAN NOT NULL DEFAULT TRUE,
        created_by BIGINT NOT NULL DEFAULT 0,
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    );
    CREATE TABLE IF NOT EXISTS notifications (
        id SERIAL PRIMARY KEY,
        user_id BIGINT NOT NULL,
        type TEXT NOT NULL DEFAULT 'info',
        title TEXT NOT NULL DEFAULT '',
        message TEXT NOT NULL,
        is_sent BOOLEAN NOT NULL DEFAULT FALSE,
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    );
`

const createIndexesSQL = `
    CREATE INDEX IF NOT EXISTS idx_orders_user_id ON orders(user_id);
    CREATE INDEX IF NOT EXISTS idx_orders_status_id ON orders(status_id);
    CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders(created_at);
    CREATE INDEX IF NOT EXISTS idx_products_category_id ON products(category_id);
    CREATE INDEX IF NOT EXISTS idx_notifications_user_id ON notifications(user_id);
`

// Migrate создает таблицы, выполняет миграции схемы, индексы и справочник статусов.
// Все шаги идемпотентны.
func (s *Store) Migrate(ctx context.Context) (err error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("ошибка начала транзакции для создания таблиц: %w", err)
	}
	defer func() {
		if err != nil {
			log.Printf("Откат транзакции из-за ошибки: %v", err)
			tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, createTablesSQL); err != nil {
		return fmt.Errorf("ошибка создания таблиц: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("ошибка фиксации транзакции создания таблиц: %w", err)
	}
	log.Println("Создание таблиц (если не существуют) завершено.")

	if err = s.migrateSchema(ctx); err != nil {
		return fmt.Errorf("ошибка выполнения миграции схемы: %w", err)
	}

	for _, stmt := range strings.Split(strings.TrimSpace(createIndexesSQL), ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, errIdx := s.DB.ExecContext(ctx, stmt); errIdx != nil {
			log.Printf("Предупреждение: ошибка при создании индекса ('%s'): %v", stmt, errIdx)
		}
	}

	if err = s.seedOrderStatuses(ctx); err != nil {
		return err
	}

	log.Println("Инициализация базы данных успешно завершена.")
	return nil
}

// migrateSchema добавляет колонки, появившиеся после первой версии схемы.
func (s *Store) migrateSchema(ctx context.Context) error {
	migrations := []struct {
		name string
		sql  string
	}{
		{
			name: "orders.delivery_fee",
			sql:  `ALTER TABLE orders ADD COLUMN IF NOT EXISTS delivery_fee BIGINT NOT NULL DEFAULT 0;`,
		},
		{
			name: "orders.updated_at",
			sql:  `ALTER TABLE orders ADD COLUMN IF NOT EXISTS updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW();`,
		},
		{
			name: "promocodes.created_by",
			sql:  `ALTER TABLE promocodes ADD COLUMN IF NOT EXISTS created_by INTEGER;`,
		},
	}

	for _, m := range migrations {
		if _, err := s.DB.ExecContext(ctx, m.sql); err != nil {
			if strings.Contains(err.Error(), "already exists") {
				log.Printf("INFO: Миграция '%s' пропущена: %v", m.name, err)
				continue
			}
			return fmt.Errorf("ошибка миграции схемы ('%s'): %w", m.name, err)
		}
		log.Debugf("Миграция ('%s') применена.", m.name)
	}
	return nil
}
