package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"artflora/internal/constants"
)

var (
	// ErrInvalidConfirmationCode - код не существует или уже использован.
	ErrInvalidConfirmationCode = errors.New("Invalid confirmation code")
	// ErrUnknownAction - действие не входит в список опасных действий.
	ErrUnknownAction = errors.New("Unknown action")
)

// maintenanceStatements - SQL для каждого опасного действия, в порядке выполнения.
var maintenanceStatements = map[string][]string{
	constants.ACTION_RESET_ORDERS: {
		`DELETE FROM orders`,
	},
	constants.ACTION_RESET_STATS: {
		`UPDATE orders SET profit = 0`,
		`DELETE FROM customer_stats`,
	},
	constants.ACTION_DELETE_PROMOCODES: {
		`DELETE FROM promocodes`,
	},
	constants.ACTION_DELETE_PRODUCTS: {
		`DELETE FROM products`,
	},
	constants.ACTION_CLEAR_CUSTOMERS: {
		`DELETE FROM customers`,
		`DELETE FROM customer_stats`,
	},
	constants.ACTION_RESET_SHOP: {
		`DELETE FROM orders`,
		`DELETE FROM customer_stats`,
		`DELETE FROM customers`,
		`DELETE FROM promocodes`,
		`DELETE FROM products`,
		`DELETE FROM notifications`,
	},
}

// IsMaintenanceAction сообщает, известно ли действие.
func IsMaintenanceAction(action string) bool {
	_, ok := maintenanceStatements[action]
	return ok
}

// CreateConfirmationCode сохраняет новый активный код подтверждения.
func (s *Store) CreateConfirmationCode(ctx context.Context, code string, createdBy int64) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO confirmation_codes (code, is_active, created_by) VALUES ($1, TRUE, $2)`, code, createdBy)
	if err != nil {
		return fmt.Errorf("ошибка сохранения кода подтверждения: %w", err)
	}
	return nil
}

// RunMaintenance выполняет опасное действие. Код подтверждения гасится в той же
// транзакции; при неверном коде ничего не меняется.
func (s *Store) RunMaintenance(ctx context.Context, action, code string) (err error) {
	statements, ok := maintenanceStatements[action]
	if !ok {
		return ErrUnknownAction
	}

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

	var codeID int64
	err = tx.QueryRowContext(ctx, `
        UPDATE confirmation_codes SET is_active = FALSE
        WHERE code = $1 AND is_active = TRUE
        RETURNING id`, code).Scan(&codeID)
	if errors.Is(err, sql.ErrNoRows) {
		err = ErrInvalidConfirmationCode
		return err
	}
	if err != nil {
		return fmt.Errorf("ошибка проверки кода подтверждения: %w", err)
	}

	for _, stmt := range statements {
		if _, err = tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ошибка выполнения '%s': %w", stmt, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("ошибка фиксации транзакции: %w", err)
	}
	log.WithFields(log.Fields{"action": action, "code_id": codeID}).Warn("Выполнено опасное действие")
	return nil
}
