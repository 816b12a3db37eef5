package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	log "github.com/sirupsen/logrus"

	"artflora/internal/models"
)

// ErrAdminExists - администратор с таким telegram_id уже есть.
var ErrAdminExists = errors.New("администратор уже существует")

const adminColumns = `id, telegram_id, role, is_active, first_name, username, created_at`

func scanAdmin(row rowScanner) (models.Admin, error) {
	var a models.Admin
	err := row.Scan(&a.ID, &a.TelegramID, &a.Role, &a.IsActive, &a.FirstName, &a.Username, &a.CreatedAt)
	return a, err
}

// GetAdminByTelegramID ищет администратора по telegram_id. Отсутствие строки - ErrNotFound.
func (s *Store) GetAdminByTelegramID(ctx context.Context, telegramID int64) (models.Admin, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	row := s.DB.QueryRowContext(ctx, `SELECT `+adminColumns+` FROM admins WHERE telegram_id = $1`, telegramID)
	admin, err := scanAdmin(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Admin{}, ErrNotFound
	}
	if err != nil {
		return models.Admin{}, fmt.Errorf("ошибка поиска администратора %d: %w", telegramID, err)
	}
	return admin, nil
}

// ListAdmins возвращает всех администраторов, при activeOnly - только активных.
func (s *Store) ListAdmins(ctx context.Context, activeOnly bool) ([]models.Admin, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	query := `SELECT ` + adminColumns + ` FROM admins`
	if activeOnly {
		query += ` WHERE is_active = TRUE`
	}
	query += ` ORDER BY id`

	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ошибка выборки администраторов: %w", err)
	}
	defer rows.Close()

	admins := []models.Admin{}
	for rows.Next() {
		a, err := scanAdmin(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования администратора: %w", err)
		}
		admins = append(admins, a)
	}
	return admins, rows.Err()
}

// ListActiveAdminChatIDs возвращает telegram_id всех активных администраторов.
func (s *Store) ListActiveAdminChatIDs(ctx context.Context) ([]int64, error) {
	admins, err := s.ListAdmins(ctx, true)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(admins))
	for _, a := range admins {
		ids = append(ids, a.TelegramID)
	}
	return ids, nil
}

// CreateAdmin добавляет администратора.
func (s *Store) CreateAdmin(ctx context.Context, admin *models.Admin) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	err := s.DB.QueryRowContext(ctx, `
        INSERT INTO admins (telegram_id, role, is_active, first_name, username)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at`,
		admin.TelegramID, admin.Role, admin.IsActive, admin.FirstName, admin.Username,
	).Scan(&admin.ID, &admin.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrAdminExists
		}
		return fmt.Errorf("ошибка добавления администратора: %w", err)
	}
	log.Printf("Добавлен администратор %d с ролью %s", admin.TelegramID, admin.Role)
	return nil
}

// DeleteAdmin удаляет администратора по ID строки.
func (s *Store) DeleteAdmin(ctx context.Context, id int64) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	res, err := s.DB.ExecContext(ctx, `DELETE FROM admins WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("ошибка удаления администратора #%d: %w", id, err)
	}
	return expectAffected(res)
}
