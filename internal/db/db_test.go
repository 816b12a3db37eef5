package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"artflora/internal/constants"
	"artflora/internal/models"
)

// testStore подключается к TEST_DATABASE_URL. Без нее интеграционные тесты пропускаются.
func testStore(t *testing.T) *Store {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL не задан, интеграционный тест пропущен")
	}
	s, err := Open(url, 5*time.Second)
	require.NoError(t, err)
	require.NoError(t, s.Migrate(context.Background()))
	t.Cleanup(s.Close)
	return s
}

func sampleOrder(userID int64) *models.Order {
	return &models.Order{
		UserID:          userID,
		UserName:        "Анна",
		UserUsername:    "anna",
		Phone:           "+79990001122",
		Items:           models.OrderItems{{Name: "Тюльпаны", Quantity: 5, UnitPrice: 500, LineTotal: 2500}},
		DeliveryOption:  constants.DELIVERY_DELIVERY,
		DeliveryAddress: models.NewNullString("ул. Цветочная, 1"),
		TotalAmount:     2500,
		DeliveryFee:     200,
		FinalAmount:     2700,
		StatusID:        constants.STATUS_NEW,
		OrderTime:       "08.03.2025 12:00",
	}
}

func TestOrderRoundTrip(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	order := sampleOrder(time.Now().UnixNano())
	require.NoError(t, s.CreateOrder(ctx, order))
	require.NotZero(t, order.ID)

	got, err := s.GetOrderByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.Items, got.Items)
	assert.Equal(t, int64(2700), got.FinalAmount)
	assert.Equal(t, "ул. Цветочная, 1", got.DeliveryAddress.String)

	require.NoError(t, s.SetOrderStatus(ctx, order.ID, constants.STATUS_DELIVERED, sql.NullInt64{Int64: 2500, Valid: true}))
	require.NoError(t, s.SetOrderStatus(ctx, order.ID, constants.STATUS_CANCELLED, sql.NullInt64{}))
	got, err = s.GetOrderByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.STATUS_CANCELLED, got.StatusID)
	assert.Equal(t, int64(2500), got.Profit, "leaving delivered keeps profit")

	require.NoError(t, s.DeleteOrder(ctx, order.ID))
	assert.ErrorIs(t, s.DeleteOrder(ctx, order.ID), ErrNotFound)
	_, err = s.GetOrderByID(ctx, order.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateOrderRejectsEmptyItems(t *testing.T) {
	s := New(nil, time.Second)
	order := sampleOrder(1)
	order.Items = nil
	assert.ErrorIs(t, s.CreateOrder(context.Background(), order), models.ErrEmptyItems)
}

func TestPromocodeUsageAndDeactivation(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	p := &models.Promocode{
		Code:          "T-" + uuid.NewString()[:8],
		DiscountType:  constants.DISCOUNT_PERCENTAGE,
		DiscountValue: 10,
		MaxUses:       models.NewNullInt64(1),
		IsActive:      true,
	}
	require.NoError(t, s.CreatePromocode(ctx, p))
	assert.ErrorIs(t, s.CreatePromocode(ctx, p), ErrPromocodeExists)

	require.NoError(t, s.IncrementPromocodeUsage(ctx, p.ID))
	require.NoError(t, s.IncrementPromocodeUsage(ctx, p.ID))
	got, err := s.GetPromocodeByCode(ctx, p.Code)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.UsedCount, "increment does not enforce the limit")

	require.NoError(t, s.DeactivatePromocode(ctx, p.ID))
	got, err = s.GetPromocodeByID(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
}

func TestSettingsAndThemes(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertSetting(ctx, constants.SETTING_DELIVERY_PRICE, json.RawMessage(`{"value":"250"}`)))
	st, err := s.GetSetting(ctx, constants.SETTING_DELIVERY_PRICE)
	require.NoError(t, err)
	v, err := st.Int64()
	require.NoError(t, err)
	assert.Equal(t, int64(250), v)

	assert.Error(t, s.UpsertSetting(ctx, "broken", json.RawMessage(`{`)))

	first := &models.Theme{Name: "Весна", BackgroundValue: "#fde"}
	second := &models.Theme{Name: "Зима", BackgroundValue: "#def"}
	require.NoError(t, s.CreateTheme(ctx, first))
	require.NoError(t, s.CreateTheme(ctx, second))
	require.NoError(t, s.ActivateTheme(ctx, first.ID))
	require.NoError(t, s.ActivateTheme(ctx, second.ID))

	themes, err := s.ListThemes(ctx)
	require.NoError(t, err)
	active := 0
	for _, th := range themes {
		if th.IsActive {
			active++
			assert.Equal(t, second.ID, th.ID)
		}
	}
	assert.Equal(t, 1, active)
	assert.ErrorIs(t, s.ActivateTheme(ctx, -1), ErrNotFound)
}

func TestRunMaintenanceRequiresCode(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	order := sampleOrder(time.Now().UnixNano())
	require.NoError(t, s.CreateOrder(ctx, order))

	assert.ErrorIs(t, s.RunMaintenance(ctx, constants.ACTION_RESET_ORDERS, "wrong"), ErrInvalidConfirmationCode)
	_, err := s.GetOrderByID(ctx, order.ID)
	require.NoError(t, err, "invalid code must not mutate")

	assert.ErrorIs(t, s.RunMaintenance(ctx, "drop_everything", "x"), ErrUnknownAction)

	code := uuid.NewString()
	require.NoError(t, s.CreateConfirmationCode(ctx, code, 1))
	require.NoError(t, s.RunMaintenance(ctx, constants.ACTION_RESET_STATS, code))
	assert.ErrorIs(t, s.RunMaintenance(ctx, constants.ACTION_RESET_STATS, code), ErrInvalidConfirmationCode,
		"codes are single use")
}

func TestCustomersAndProducts(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	order := sampleOrder(time.Now().UnixNano())
	require.NoError(t, s.RecordCustomerOrder(ctx, *order))
	require.NoError(t, s.RecordCustomerOrder(ctx, *order))

	customers, err := s.ListCustomers(ctx, 1)
	require.NoError(t, err)
	require.Len(t, customers, 1)
	assert.Equal(t, order.UserID, customers[0].TelegramID)
	assert.Equal(t, int64(2), customers[0].OrdersCount)
	assert.Equal(t, int64(5400), customers[0].TotalSpent)

	p := &models.Product{Name: "Пионы " + uuid.NewString()[:8], Price: 450, IsAvailable: true}
	require.NoError(t, s.CreateProduct(ctx, p))
	got, err := s.GetProductByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(450), got.Price)

	require.NoError(t, s.DeleteProduct(ctx, p.ID))
	_, err = s.GetProductByID(ctx, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
