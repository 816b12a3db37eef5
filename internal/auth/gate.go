// Package auth решает, является ли вызывающий активным администратором и какая у него роль.
package auth

import (
	"context"
	"errors"
	"fmt"

	"artflora/internal/constants"
	"artflora/internal/db"
	"artflora/internal/models"
	"artflora/internal/utils"
)

// AdminLookup - источник записей администраторов.
// Отсутствие записи сообщается ошибкой db.ErrNotFound.
type AdminLookup interface {
	GetAdminByTelegramID(ctx context.Context, telegramID int64) (models.Admin, error)
}

// Gate - проверка прав. Состояния не хранит, каждое решение читает свежую запись.
type Gate struct {
	admins AdminLookup
}

func NewGate(admins AdminLookup) *Gate {
	return &Gate{admins: admins}
}

// Standing - положение вызывающего. Found=false, если записи нет.
type Standing struct {
	Admin models.Admin
	Found bool
}

// IsAdmin - запись есть и активна.
func (s Standing) IsAdmin() bool {
	return s.Found && s.Admin.IsActive
}

// IsOwner - активный администратор с ролью owner.
func (s Standing) IsOwner() bool {
	return s.IsAdmin() && s.Admin.Role == constants.ROLE_OWNER
}

// HasRole - активный администратор с ролью не ниже minRole.
func (s Standing) HasRole(minRole string) bool {
	return s.IsAdmin() && utils.IsRoleOrHigher(s.Admin.Role, minRole)
}

// Standing загружает запись администратора. Отсутствие записи и id == 0 - не ошибка.
// Ошибка возвращается только при сбое хранилища.
func (g *Gate) Standing(ctx context.Context, telegramID int64) (Standing, error) {
	if telegramID == 0 {
		return Standing{}, nil
	}
	admin, err := g.admins.GetAdminByTelegramID(ctx, telegramID)
	if errors.Is(err, db.ErrNotFound) {
		return Standing{}, nil
	}
	if err != nil {
		return Standing{}, fmt.Errorf("проверка прав %d: %w", telegramID, err)
	}
	return Standing{Admin: admin, Found: true}, nil
}

func (g *Gate) IsAdmin(ctx context.Context, telegramID int64) (bool, error) {
	st, err := g.Standing(ctx, telegramID)
	return st.IsAdmin(), err
}

func (g *Gate) IsOwner(ctx context.Context, telegramID int64) (bool, error) {
	st, err := g.Standing(ctx, telegramID)
	return st.IsOwner(), err
}

func (g *Gate) HasRole(ctx context.Context, telegramID int64, minRole string) (bool, error) {
	st, err := g.Standing(ctx, telegramID)
	return st.HasRole(minRole), err
}
