// Package orders ведет жизненный цикл заказа: оформление, смена статуса, удаление.
package orders

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"artflora/internal/constants"
	"artflora/internal/db"
	"artflora/internal/formatters"
	"artflora/internal/models"
	"artflora/internal/pricing"
)

// Store - операции хранилища, нужные менеджеру заказов.
type Store interface {
	GetSettings(ctx context.Context) (map[string]models.ShopSetting, error)
	GetPromocodeByCode(ctx context.Context, code string) (models.Promocode, error)
	GetPromocodeByID(ctx context.Context, id int64) (models.Promocode, error)
	IncrementPromocodeUsage(ctx context.Context, id int64) error
	CreateOrder(ctx context.Context, order *models.Order) error
	GetOrderByID(ctx context.Context, id int64) (models.Order, error)
	SetOrderStatus(ctx context.Context, id int64, statusID int, profit sql.NullInt64) error
	DeleteOrder(ctx context.Context, id int64) error
	RecordCustomerOrder(ctx context.Context, order models.Order) error
}

// Notifier - уведомления по заказу.
type Notifier interface {
	NotifyAdmins(ctx context.Context, order models.Order) error
	NotifyCustomer(ctx context.Context, order models.Order, text string) error
	NotifyStatusChange(ctx context.Context, order models.Order, statusID int) (bool, error)
}

// ErrPersist - заказ не удалось сохранить, уведомления не отправлялись.
var ErrPersist = errors.New("не удалось сохранить заказ")

const orderTimeLayout = "02.01.2006 15:04"

// NewOrder - данные заказа от покупателя. Суммы считаются на сервере по позициям.
type NewOrder struct {
	UserID          int64
	UserName        string
	UserUsername    string
	Phone           string
	Items           models.OrderItems
	DeliveryOption  string
	DeliveryAddress string
	Comment         string
	OrderTime       string
	PromocodeCode   string
	PromocodeID     int64
}

type Manager struct {
	store    Store
	notifier Notifier
	now      func() time.Time
}

func NewManager(store Store, notifier Notifier) *Manager {
	return &Manager{store: store, notifier: notifier, now: time.Now}
}

// WithClock подменяет часы, используется в тестах сроков промокодов.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}

// lookupPromocode ищет промокод по коду или id. Отсутствующий код - отказ "не найден".
func (m *Manager) lookupPromocode(ctx context.Context, code string, id int64) (*models.Promocode, error) {
	var (
		p   models.Promocode
		err error
	)
	switch {
	case strings.TrimSpace(code) != "":
		p, err = m.store.GetPromocodeByCode(ctx, strings.TrimSpace(code))
	case id > 0:
		p, err = m.store.GetPromocodeByID(ctx, id)
	default:
		return nil, nil
	}
	if errors.Is(err, db.ErrNotFound) {
		return nil, pricing.NotFound()
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (m *Manager) deliverySettings(ctx context.Context) pricing.DeliverySettings {
	settings, err := m.store.GetSettings(ctx)
	if err != nil {
		log.Printf("deliverySettings: ошибка чтения настроек, используются значения по умолчанию: %v", err)
		return pricing.DefaultDeliverySettings()
	}
	return pricing.SettingsFromMap(settings)
}

// Quote считает заказ без сохранения.
func (m *Manager) Quote(ctx context.Context, in NewOrder) (pricing.Quote, error) {
	promo, err := m.lookupPromocode(ctx, in.PromocodeCode, in.PromocodeID)
	if err != nil {
		return pricing.Quote{}, err
	}
	return pricing.Calculate(in.Items.Total(), in.DeliveryOption, m.deliverySettings(ctx), promo, m.now())
}

// CreateOrder оформляет заказ. Отказ по промокоду возвращается до сохранения.
// Ошибки уведомлений и учета покупателя только логируются.
func (m *Manager) CreateOrder(ctx context.Context, in NewOrder) (models.Order, error) {
	if len(in.Items) == 0 {
		return models.Order{}, models.ErrEmptyItems
	}

	quote, err := m.Quote(ctx, in)
	if err != nil {
		return models.Order{}, err
	}

	orderTime := in.OrderTime
	if orderTime == "" {
		orderTime = m.now().Format(orderTimeLayout)
	}

	order := models.Order{
		UserID:          in.UserID,
		UserName:        in.UserName,
		UserUsername:    in.UserUsername,
		Phone:           in.Phone,
		Items:           in.Items,
		DeliveryOption:  in.DeliveryOption,
		DeliveryAddress: models.NewNullString(in.DeliveryAddress),
		TotalAmount:     quote.TotalAmount,
		DeliveryFee:     quote.DeliveryFee,
		DiscountAmount:  quote.DiscountAmount,
		FinalAmount:     quote.FinalAmount,
		PromocodeID:     quote.PromocodeID,
		StatusID:        constants.STATUS_NEW,
		Profit:          0,
		Comment:         models.NewNullString(in.Comment),
		OrderTime:       orderTime,
	}

	if err := m.store.CreateOrder(ctx, &order); err != nil {
		return models.Order{}, fmt.Errorf("%w: %v", ErrPersist, err)
	}

	logger := log.WithFields(log.Fields{"order_id": order.ID, "user_id": order.UserID})

	if err := m.notifier.NotifyAdmins(ctx, order); err != nil {
		logger.Printf("Уведомление администраторов о заказе не отправлено: %v", err)
	}
	if err := m.notifier.NotifyCustomer(ctx, order, formatters.FormatCustomerConfirmation(order)); err != nil {
		logger.Printf("Подтверждение покупателю не отправлено: %v", err)
	}

	if order.PromocodeID.Valid {
		if err := m.store.IncrementPromocodeUsage(ctx, order.PromocodeID.Int64); err != nil {
			logger.Printf("Не удалось увеличить счетчик промокода %d: %v", order.PromocodeID.Int64, err)
		}
	}

	if err := m.store.RecordCustomerOrder(ctx, order); err != nil {
		logger.Printf("Карточка покупателя не обновлена: %v", err)
	}

	logger.WithFields(log.Fields{"final_amount": order.FinalAmount}).Info("Заказ оформлен")
	return order, nil
}

// UpdateStatus переводит заказ в новый статус и уведомляет покупателя.
// Переход в "доставлен" фиксирует прибыль: сумма минус скидка.
// Возвращает, было ли отправлено уведомление.
func (m *Manager) UpdateStatus(ctx context.Context, orderID int64, statusID int) (bool, error) {
	order, err := m.store.GetOrderByID(ctx, orderID)
	if err != nil {
		return false, err
	}

	profit := sql.NullInt64{}
	if statusID == constants.STATUS_DELIVERED {
		profit = sql.NullInt64{Int64: pricing.DeliveredProfit(order.TotalAmount, order.DiscountAmount), Valid: true}
	}

	if err := m.store.SetOrderStatus(ctx, orderID, statusID, profit); err != nil {
		return false, err
	}
	order.StatusID = statusID
	if profit.Valid {
		order.Profit = profit.Int64
	}

	sent, err := m.notifier.NotifyStatusChange(ctx, order, statusID)
	if err != nil {
		log.WithFields(log.Fields{"order_id": orderID, "status_id": statusID}).
			Printf("Уведомление о смене статуса не отправлено: %v", err)
	}
	return sent, nil
}

// DeleteOrder удаляет заказ. Неизвестный id - db.ErrNotFound.
func (m *Manager) DeleteOrder(ctx context.Context, orderID int64) error {
	if err := m.store.DeleteOrder(ctx, orderID); err != nil {
		return err
	}
	log.WithFields(log.Fields{"order_id": orderID}).Info("Заказ удален")
	return nil
}

// ValidatePromocode проверяет код для суммы без побочных эффектов.
func (m *Manager) ValidatePromocode(ctx context.Context, code string, amount int64) (models.Promocode, int64, error) {
	promo, err := m.lookupPromocode(ctx, code, 0)
	if err != nil {
		return models.Promocode{}, 0, err
	}
	if promo == nil {
		return models.Promocode{}, 0, pricing.NotFound()
	}
	discount, err := pricing.ValidatePromocode(promo, amount, m.now())
	if err != nil {
		return models.Promocode{}, 0, err
	}
	return *promo, discount, nil
}
