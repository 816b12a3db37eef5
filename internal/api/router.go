package api

import (
	"context"
	"net/http"

	tgbotapi "github.com/OvyFlash/telegram-bot-api"
	"github.com/go-chi/chi/v5"

	"artflora/internal/auth"
	"artflora/internal/config"
	"artflora/internal/constants"
	"artflora/internal/models"
	"artflora/internal/orders"
)

// Notifier - исходящие сообщения, которые отправляют обработчики помимо заказов.
type Notifier interface {
	Broadcast(ctx context.Context, html string) error
	SendTo(chatID int64, text, parseMode string) error
	SendDocument(chatID int64, fileName string, data []byte, caption string) error
}

// OrderService - жизненный цикл заказа.
type OrderService interface {
	CreateOrder(ctx context.Context, in orders.NewOrder) (models.Order, error)
	UpdateStatus(ctx context.Context, orderID int64, statusID int) (bool, error)
	DeleteOrder(ctx context.Context, orderID int64) error
	ValidatePromocode(ctx context.Context, code string, amount int64) (models.Promocode, int64, error)
}

// UpdateHandler обрабатывает обновления бота из вебхука.
type UpdateHandler interface {
	HandleUpdate(update tgbotapi.Update)
}

// BotPinger проверяет доступность Bot API.
type BotPinger interface {
	Ping() (string, error)
}

// ApiDependencies содержит зависимости для обработчиков API.
type ApiDependencies struct {
	Config   *config.Config
	Store    ShopStore
	Gate     *auth.Gate
	Orders   OrderService
	Notifier Notifier
	Bot      UpdateHandler
	Pinger   BotPinger
}

type server struct {
	deps ApiDependencies
}

// SetupRoutes настраивает все маршруты для API.
func SetupRoutes(r chi.Router, deps ApiDependencies) {
	s := &server{deps: deps}
	gate := deps.Gate

	r.Route("/api", func(r chi.Router) {
		r.Use(IdentityMiddleware(deps.Config.VerifyInitData, deps.Config.BotToken))

		// --- Публичные маршруты ---
		r.Post("/order", s.CreateOrder)
		r.Get("/products", s.ListProducts)
		r.Get("/products/{id}", s.GetProduct)
		r.Get("/categories", s.ListCategories)
		r.Get("/settings", s.GetSettings)
		r.Get("/themes", s.ListThemes)
		r.Post("/promocodes", s.PromocodesPost)
		r.Get("/health", s.Health)
		r.Post("/health/error", s.ReportError)
		r.Get("/shop/qr", s.ShopQRCode)
		r.Get("/bot", s.BotStatus)
		r.Post("/bot", s.BotWebhook)

		// статус проверяется внутри, без 403
		r.Get("/admin", s.AdminStatus)

		// --- Маршруты для администраторов ---
		r.Group(func(r chi.Router) {
			r.Use(RequireAdmin(gate))

			r.Put("/order", s.UpdateOrderStatus)
			r.Post("/notifications", s.SendNotification)

			r.Get("/admin/orders", s.ListOrders)
			r.Get("/admin/orders/export", s.ExportOrders)
			r.Delete("/admin/orders/{id}", s.DeleteOrder)
			r.Get("/admin/admins", s.ListAdmins)
			r.Get("/admin/stats", s.GetStats)
			r.Get("/admin/statuses", s.ListStatuses)
			r.Get("/admin/customers", s.ListCustomers)

			r.Post("/admin/products", s.CreateProduct)
			r.Put("/admin/products/{id}", s.UpdateProduct)
			r.Delete("/admin/products/{id}", s.DeleteProduct)
		})

		r.Group(func(r chi.Router) {
			r.Use(RequireRole(gate, constants.ROLE_ADMIN))
			r.Put("/themes", s.UpdateThemes)
			r.Post("/themes", s.CreateTheme)
		})

		// --- Маршруты для владельца ---
		r.Group(func(r chi.Router) {
			r.Use(RequireOwner(gate))

			r.Post("/admin/admins", s.CreateAdmin)
			r.Delete("/admin/admins/{id}", s.DeleteAdmin)
			r.Get("/promocodes", s.ListPromocodes)
			r.Delete("/promocodes/{id}", s.DeactivatePromocode)
			r.Put("/settings", s.UpdateSetting)
			r.Post("/dangerous", s.DangerousAction)
			r.Post("/dangerous/code", s.IssueConfirmationCode)
		})
	})
}

// ownerOnly проверяет владельца внутри обработчика, когда маршрут общий с публичным действием.
func (s *server) ownerOnly(w http.ResponseWriter, r *http.Request, denied string) (auth.Standing, bool) {
	st, err := s.deps.Gate.Standing(r.Context(), callerID(r.Context()))
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return st, false
	}
	if !st.IsOwner() {
		writeJSONError(w, http.StatusForbidden, denied)
		return st, false
	}
	return st, true
}
