package api

import (
	"context"
	"encoding/json"

	"artflora/internal/models"
)

// ShopStore - операции хранилища, которые вызывают HTTP-обработчики напрямую.
// Заказы создаются и меняются через orders.Manager.
type ShopStore interface {
	GetAdminByTelegramID(ctx context.Context, telegramID int64) (models.Admin, error)
	ListAdmins(ctx context.Context, activeOnly bool) ([]models.Admin, error)
	CreateAdmin(ctx context.Context, admin *models.Admin) error
	DeleteAdmin(ctx context.Context, id int64) error

	ListOrders(ctx context.Context, f models.OrderFilter) ([]models.Order, error)
	GetOrderStatuses(ctx context.Context) ([]models.OrderStatus, error)
	GetStats(ctx context.Context) (models.Stats, error)
	ListCustomers(ctx context.Context, limit int) ([]models.Customer, error)

	ListPromocodes(ctx context.Context) ([]models.Promocode, error)
	CreatePromocode(ctx context.Context, p *models.Promocode) error
	DeactivatePromocode(ctx context.Context, id int64) error

	ListProducts(ctx context.Context, availableOnly bool) ([]models.Product, error)
	GetProductByID(ctx context.Context, id int64) (models.Product, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
	CreateProduct(ctx context.Context, p *models.Product) error
	UpdateProduct(ctx context.Context, p models.Product) error
	DeleteProduct(ctx context.Context, id int64) error

	GetSettings(ctx context.Context) (map[string]models.ShopSetting, error)
	UpsertSetting(ctx context.Context, key string, value json.RawMessage) error
	ListThemes(ctx context.Context) ([]models.Theme, error)
	CreateTheme(ctx context.Context, t *models.Theme) error
	ActivateTheme(ctx context.Context, id int64) error

	CreateConfirmationCode(ctx context.Context, code string, createdBy int64) error
	RunMaintenance(ctx context.Context, action, code string) error
	CreateNotification(ctx context.Context, n *models.Notification) error

	Ping(ctx context.Context) error
	CountRows(ctx context.Context, table string) (int64, error)
}
