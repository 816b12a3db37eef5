package db

import (
	"context"
	"fmt"

	"artflora/internal/models"
)

// CreateNotification записывает факт отправки уведомления.
func (s *Store) CreateNotification(ctx context.Context, n *models.Notification) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	err := s.DB.QueryRowContext(ctx, `
        INSERT INTO notifications (user_id, type, title, message, is_sent)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at`,
		n.UserID, n.Type, n.Title, n.Message, n.IsSent,
	).Scan(&n.ID, &n.CreatedAt)
	if err != nil {
		return fmt.Errorf("ошибка записи уведомления: %w", err)
	}
	return nil
}
