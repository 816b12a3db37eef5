package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"

	tgbotapi "github.com/OvyFlash/telegram-bot-api"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"artflora/internal/auth"
	"artflora/internal/config"
	"artflora/internal/constants"
	"artflora/internal/db"
	"artflora/internal/models"
	"artflora/internal/orders"
	"artflora/internal/pricing"
)

const (
	ownerID   int64 = 100
	adminID   int64 = 200
	managerID int64 = 300
	userID    int64 = 400
)

// fakeStore реализует только то, что вызывают тесты; остальные методы паникуют через nil-интерфейс.
type fakeStore struct {
	ShopStore

	admins      map[int64]models.Admin
	adminErr    error
	maintenance []string
	codes       []string
	settings    map[string]json.RawMessage
	orders      []models.Order
	notes       []models.Notification
	products    map[int64]models.Product
	customers   []models.Customer
	promocodes  map[string]models.Promocode
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		admins: map[int64]models.Admin{
			ownerID:   {ID: 1, TelegramID: ownerID, Role: constants.ROLE_OWNER, IsActive: true, FirstName: "Вера"},
			adminID:   {ID: 2, TelegramID: adminID, Role: constants.ROLE_ADMIN, IsActive: true},
			managerID: {ID: 3, TelegramID: managerID, Role: constants.ROLE_MANAGER, IsActive: true},
		},
		settings: map[string]json.RawMessage{},
	}
}

func (f *fakeStore) GetAdminByTelegramID(_ context.Context, id int64) (models.Admin, error) {
	if f.adminErr != nil {
		return models.Admin{}, f.adminErr
	}
	a, ok := f.admins[id]
	if !ok {
		return models.Admin{}, db.ErrNotFound
	}
	return a, nil
}

func (f *fakeStore) RunMaintenance(_ context.Context, action, code string) error {
	if !db.IsMaintenanceAction(action) {
		return db.ErrUnknownAction
	}
	if code != "GOODCODE" {
		return db.ErrInvalidConfirmationCode
	}
	f.maintenance = append(f.maintenance, action)
	return nil
}

func (f *fakeStore) CreateConfirmationCode(_ context.Context, code string, _ int64) error {
	f.codes = append(f.codes, code)
	return nil
}

func (f *fakeStore) UpsertSetting(_ context.Context, key string, value json.RawMessage) error {
	f.settings[key] = value
	return nil
}

func (f *fakeStore) ListOrders(context.Context, models.OrderFilter) ([]models.Order, error) {
	return f.orders, nil
}

func (f *fakeStore) CreateNotification(_ context.Context, n *models.Notification) error {
	f.notes = append(f.notes, *n)
	return nil
}

func (f *fakeStore) CreatePromocode(_ context.Context, p *models.Promocode) error {
	if f.promocodes == nil {
		f.promocodes = map[string]models.Promocode{}
	}
	if _, ok := f.promocodes[p.Code]; ok {
		return db.ErrPromocodeExists
	}
	p.ID = int64(len(f.promocodes) + 1)
	f.promocodes[p.Code] = *p
	return nil
}

func (f *fakeStore) ListAdmins(_ context.Context, activeOnly bool) ([]models.Admin, error) {
	var out []models.Admin
	for _, a := range f.admins {
		if !activeOnly || a.IsActive {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeStore) Ping(context.Context) error { return nil }

func (f *fakeStore) CountRows(_ context.Context, table string) (int64, error) {
	if table == "admins" {
		return int64(len(f.admins)), nil
	}
	return 0, nil
}

func (f *fakeStore) GetProductByID(_ context.Context, id int64) (models.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return models.Product{}, db.ErrNotFound
	}
	return p, nil
}

func (f *fakeStore) ListCustomers(_ context.Context, limit int) ([]models.Customer, error) {
	if limit < len(f.customers) {
		return f.customers[:limit], nil
	}
	return f.customers, nil
}

type fakeOrders struct {
	created   []orders.NewOrder
	createErr error
	updates   map[int64]int
}

func (f *fakeOrders) CreateOrder(_ context.Context, in orders.NewOrder) (models.Order, error) {
	if f.createErr != nil {
		return models.Order{}, f.createErr
	}
	f.created = append(f.created, in)
	total := in.Items.Total()
	return models.Order{ID: 77, TotalAmount: total, FinalAmount: total}, nil
}

func (f *fakeOrders) UpdateStatus(_ context.Context, id int64, statusID int) (bool, error) {
	if id == 404 {
		return false, db.ErrNotFound
	}
	f.updates[id] = statusID
	return true, nil
}

func (f *fakeOrders) DeleteOrder(context.Context, int64) error { return nil }

func (f *fakeOrders) ValidatePromocode(_ context.Context, code string, amount int64) (models.Promocode, int64, error) {
	if code != "SPRING10" {
		return models.Promocode{}, 0, pricing.NotFound()
	}
	return models.Promocode{ID: 7, DiscountType: constants.DISCOUNT_PERCENTAGE, DiscountValue: 10}, amount / 10, nil
}

type fakeNotifier struct {
	direct    []int64
	docs      []int64
	broadcast []string
	sendErr   error
}

func (f *fakeNotifier) Broadcast(_ context.Context, html string) error {
	f.broadcast = append(f.broadcast, html)
	return nil
}

func (f *fakeNotifier) SendTo(chatID int64, _, _ string) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.direct = append(f.direct, chatID)
	return nil
}

func (f *fakeNotifier) SendDocument(chatID int64, _ string, _ []byte, _ string) error {
	f.docs = append(f.docs, chatID)
	return nil
}

type fakeBot struct {
	updates int
}

func (f *fakeBot) HandleUpdate(tgbotapi.Update) { f.updates++ }

type testEnv struct {
	router   *chi.Mux
	store    *fakeStore
	orders   *fakeOrders
	notifier *fakeNotifier
	bot      *fakeBot
	cfg      *config.Config
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		router:   chi.NewRouter(),
		store:    newFakeStore(),
		orders:   &fakeOrders{updates: map[int64]int{}},
		notifier: &fakeNotifier{},
		bot:      &fakeBot{},
		cfg:      &config.Config{BotToken: "123:TEST", BotUsername: "artflora_bot"},
	}
	SetupRoutes(env.router, ApiDependencies{
		Config:   env.cfg,
		Store:    env.store,
		Gate:     auth.NewGate(env.store),
		Orders:   env.orders,
		Notifier: env.notifier,
		Bot:      env.bot,
	})
	return env
}

func (env *testEnv) do(t *testing.T, method, path string, caller int64, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if caller != 0 {
		req.Header.Set(HeaderTelegramID, strconv.FormatInt(caller, 10))
	}
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func validOrder() map[string]interface{} {
	return map[string]interface{}{
		"user":             map[string]interface{}{"id": userID, "first_name": "Анна", "username": "anna"},
		"phone":            "+7 (999) 123-45-67",
		"items":            []map[string]interface{}{{"name": "Розы", "quantity": 5, "price": 300, "total": 999999}},
		"delivery_option":  "delivery",
		"delivery_address": "ул. Ленина, 1",
		"time":             "08.03.2025 10:00",
	}
}

func TestCreateOrder(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/order", 0, validOrder())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, true, body["db_success"])
	assert.Equal(t, float64(77), body["order_id"])
	assert.Equal(t, constants.ORDER_SUCCESS_TEXT, body["message"])

	require.Len(t, env.orders.created, 1)
	in := env.orders.created[0]
	assert.Equal(t, "+79991234567", in.Phone)
	assert.Equal(t, int64(1500), in.Items[0].LineTotal, "client line total is ignored")
}

func TestCreateOrderValidation(t *testing.T) {
	env := newTestEnv(t)

	cases := []struct {
		name   string
		mutate func(map[string]interface{})
		want   string
	}{
		{"missing phone", func(o map[string]interface{}) { delete(o, "phone") }, "field 'phone' is required"},
		{"no items", func(o map[string]interface{}) { o["items"] = []interface{}{} }, "field 'items'"},
		{"delivery without address", func(o map[string]interface{}) { delete(o, "delivery_address") }, "field 'delivery_address' is required"},
		{"bad option", func(o map[string]interface{}) { o["delivery_option"] = "drone" }, "field 'delivery_option' must be one of"},
		{"zero quantity", func(o map[string]interface{}) {
			o["items"] = []map[string]interface{}{{"name": "Розы", "quantity": 0, "price": 300}}
		}, "field 'quantity'"},
		{"overflowing quantity", func(o map[string]interface{}) {
			o["items"] = []map[string]interface{}{
				{"name": "Розы", "quantity": int64(1) << 62, "price": 4},
				{"name": "Тюльпан", "quantity": 1, "price": 100},
			}
		}, "field 'quantity' must be at most 10000"},
		{"price above limit", func(o map[string]interface{}) {
			o["items"] = []map[string]interface{}{{"name": "Розы", "quantity": 1, "price": int64(1) << 40}}
		}, "field 'price' must be at most 10000000"},
		{"too many items", func(o map[string]interface{}) {
			items := make([]map[string]interface{}, 101)
			for i := range items {
				items[i] = map[string]interface{}{"name": "Розы", "quantity": 1, "price": 100}
			}
			o["items"] = items
		}, "field 'items' must be at most 100"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			order := validOrder()
			tc.mutate(order)
			rec := env.do(t, http.MethodPost, "/api/order", 0, order)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			body := decodeBody(t, rec)
			assert.Equal(t, false, body["success"])
			assert.Contains(t, body["error"], tc.want)
		})
	}

	rec := env.do(t, http.MethodPost, "/api/order", 0, "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, env.orders.created)

	order := validOrder()
	order["delivery_option"] = "pickup"
	delete(order, "delivery_address")
	rec = env.do(t, http.MethodPost, "/api/order", 0, order)
	assert.Equal(t, http.StatusOK, rec.Code, "pickup needs no address")
}

func TestCreateOrderFailures(t *testing.T) {
	env := newTestEnv(t)

	env.orders.createErr = &pricing.PromoError{Reason: pricing.ReasonLimit, Message: "Лимит использований промокода исчерпан"}
	rec := env.do(t, http.MethodPost, "/api/order", 0, validOrder())
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Лимит использований промокода исчерпан", decodeBody(t, rec)["error"])

	env.orders.createErr = errors.Join(orders.ErrPersist, errors.New("connection refused"))
	rec = env.do(t, http.MethodPost, "/api/order", 0, validOrder())
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, false, body["db_success"])
}

func TestUpdateOrderStatusGate(t *testing.T) {
	env := newTestEnv(t)
	payload := map[string]interface{}{"order_id": 5, "status_id": constants.STATUS_DELIVERED}

	rec := env.do(t, http.MethodPut, "/api/order", userID, payload)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = env.do(t, http.MethodPut, "/api/order", 0, payload)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, env.orders.updates)

	rec = env.do(t, http.MethodPut, "/api/order", managerID, payload)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, constants.STATUS_DELIVERED, env.orders.updates[5])
	assert.Equal(t, true, decodeBody(t, rec)["notified"])

	rec = env.do(t, http.MethodPut, "/api/order", adminID, map[string]interface{}{"order_id": 404, "status_id": 2})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodPut, "/api/order", adminID, map[string]interface{}{"order_id": 6, "status_id": 0})
	require.Equal(t, http.StatusOK, rec.Code, "unknown status ids are stored as given")
	assert.Equal(t, 0, env.orders.updates[6])

	rec = env.do(t, http.MethodPut, "/api/order", adminID, map[string]interface{}{"order_id": 7})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NotContains(t, env.orders.updates, int64(7))

	env.store.adminErr = errors.New("db down")
	rec = env.do(t, http.MethodPut, "/api/order", adminID, payload)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestInactiveAdminDenied(t *testing.T) {
	env := newTestEnv(t)
	a := env.store.admins[adminID]
	a.IsActive = false
	env.store.admins[adminID] = a

	rec := env.do(t, http.MethodGet, "/api/admin/orders", adminID, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/admin", adminID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decodeBody(t, rec)["is_admin"])
}

func TestAdminStatus(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/admin", ownerID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["is_admin"])
	assert.Equal(t, constants.ROLE_OWNER, body["role"])
	assert.Equal(t, "Вера", body["first_name"])

	env.store.adminErr = errors.New("db down")
	rec = env.do(t, http.MethodGet, "/api/admin", ownerID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decodeBody(t, rec)["is_admin"])
}

func TestDangerousActionRequiresOwner(t *testing.T) {
	env := newTestEnv(t)
	payload := map[string]interface{}{"action": constants.ACTION_RESET_SHOP, "confirmation_code": "GOODCODE"}

	for _, id := range []int64{0, userID, managerID, adminID} {
		rec := env.do(t, http.MethodPost, "/api/dangerous", id, payload)
		assert.Equal(t, http.StatusForbidden, rec.Code, "caller %d", id)
	}
	assert.Empty(t, env.store.maintenance, "no mutation before the owner check")

	rec := env.do(t, http.MethodPost, "/api/dangerous", ownerID,
		map[string]interface{}{"action": constants.ACTION_RESET_SHOP, "confirmation_code": "WRONG"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid confirmation code", decodeBody(t, rec)["error"])

	rec = env.do(t, http.MethodPost, "/api/dangerous", ownerID,
		map[string]interface{}{"action": "drop_database", "confirmation_code": "GOODCODE"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, env.store.maintenance)

	rec = env.do(t, http.MethodPost, "/api/dangerous", ownerID, payload)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, constants.DangerousActionMessages[constants.ACTION_RESET_SHOP], decodeBody(t, rec)["message"])
	assert.Equal(t, []string{constants.ACTION_RESET_SHOP}, env.store.maintenance)
}

func TestIssueConfirmationCode(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/dangerous/code", adminID, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/dangerous/code", ownerID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, env.store.codes, 1)
	assert.Equal(t, []int64{ownerID}, env.notifier.direct)
	assert.NotContains(t, rec.Body.String(), env.store.codes[0])
}

func TestPromocodes(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/promocodes", 0,
		map[string]interface{}{"action": "validate", "code": "SPRING10", "order_amount": 2500})
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["valid"])
	assert.Equal(t, float64(250), body["discount_amount"])
	assert.Equal(t, float64(7), body["promocode_id"])

	rec = env.do(t, http.MethodPost, "/api/promocodes", 0,
		map[string]interface{}{"action": "validate", "code": "NOPE", "order_amount": 2500})
	require.Equal(t, http.StatusOK, rec.Code)
	body = decodeBody(t, rec)
	assert.Equal(t, false, body["valid"])
	assert.Equal(t, "Промокод не найден", body["error"])

	create := map[string]interface{}{"code": "NEW", "discount_type": "fixed", "discount_value": 100}
	rec = env.do(t, http.MethodPost, "/api/promocodes", adminID, create)
	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Только владельцы могут создавать промокоды", decodeBody(t, rec)["error"])

	rec = env.do(t, http.MethodGet, "/api/promocodes", adminID, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCreatePromocodeByOwner(t *testing.T) {
	env := newTestEnv(t)

	create := map[string]interface{}{
		"code": "Spring10", "discount_type": "percentage", "discount_value": 10,
		"max_uses": 5, "valid_until": "2030-03-08",
	}
	rec := env.do(t, http.MethodPost, "/api/promocodes", ownerID, create)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	promo := decodeBody(t, rec)["promocode"].(map[string]interface{})
	assert.Equal(t, "Spring10", promo["code"], "code keeps its case")
	assert.Equal(t, float64(1), promo["created_by"])
	assert.Equal(t, true, promo["is_active"])
	require.Contains(t, env.store.promocodes, "Spring10")
	assert.Equal(t, int64(5), env.store.promocodes["Spring10"].MaxUses.Int64)

	rec = env.do(t, http.MethodPost, "/api/promocodes", ownerID, create)
	assert.Equal(t, http.StatusConflict, rec.Code)

	cases := []struct {
		name string
		body map[string]interface{}
		want string
	}{
		{"bad date", map[string]interface{}{"code": "D1", "discount_type": "fixed", "discount_value": 100, "valid_until": "08.03.2030"},
			"field 'valid_until' is not a valid date"},
		{"percentage above 100", map[string]interface{}{"code": "P150", "discount_type": "percentage", "discount_value": 150},
			"field 'discount_value' must be at most 100"},
		{"zero value", map[string]interface{}{"code": "Z", "discount_type": "fixed", "discount_value": 0},
			"field 'discount_value' must be greater than 0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/api/promocodes", ownerID, tc.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, decodeBody(t, rec)["error"], tc.want)
		})
	}
	assert.Len(t, env.store.promocodes, 1)

	rec = env.do(t, http.MethodPost, "/api/promocodes", ownerID,
		map[string]interface{}{"code": "BIGFIXED", "discount_type": "fixed", "discount_value": 150})
	assert.Equal(t, http.StatusOK, rec.Code, "fixed discounts above 100 are allowed")
}

func TestUpdateThemes(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPut, "/api/themes", managerID, map[string]interface{}{"pattern": "dots"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodPut, "/api/themes", adminID, map[string]interface{}{"pattern": "stripes"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPut, "/api/themes", adminID, map[string]interface{}{"pattern": "flowers"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"active":"flowers","patterns":["dots","lines","flowers","none"]}`,
		string(env.store.settings[constants.SETTING_HEADER_PATTERNS]))

	rec = env.do(t, http.MethodPut, "/api/themes", ownerID, map[string]interface{}{"effect": "snow"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"value":"snow"}`, string(env.store.settings[constants.SETTING_ACTIVE_EFFECT]))

	rec = env.do(t, http.MethodPut, "/api/themes", ownerID, map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSendNotification(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/notifications", adminID,
		map[string]interface{}{"user_id": userID, "message": "Букет готов"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decodeBody(t, rec)["success"])
	require.Len(t, env.store.notes, 1)
	assert.Equal(t, "info", env.store.notes[0].Type)

	env.notifier.sendErr = errors.New("blocked by user")
	rec = env.do(t, http.MethodPost, "/api/notifications", adminID,
		map[string]interface{}{"user_id": userID, "message": "Букет готов"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decodeBody(t, rec)["success"])
	assert.Len(t, env.store.notes, 1)
}

func TestExportOrdersSendsDocument(t *testing.T) {
	env := newTestEnv(t)
	env.store.orders = []models.Order{{ID: 1, Items: models.OrderItems{{Name: "Розы", Quantity: 1, UnitPrice: 100, LineTotal: 100}}}}

	rec := env.do(t, http.MethodGet, "/api/admin/orders/export?from=2025-03-01&to=2025-03-08&send=true", adminID, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, []int64{adminID}, env.notifier.docs)

	rec = env.do(t, http.MethodGet, "/api/admin/orders/export", adminID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), ".xlsx")

	rec = env.do(t, http.MethodGet, "/api/admin/orders/export?from=08.03.2025", adminID, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetProduct(t *testing.T) {
	env := newTestEnv(t)
	env.store.products = map[int64]models.Product{
		1: {ID: 1, Name: "Пионы", Price: 450, IsAvailable: true},
		2: {ID: 2, Name: "Лилии", Price: 300},
	}

	rec := env.do(t, http.MethodGet, "/api/products/1", 0, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	data := decodeBody(t, rec)["data"].(map[string]interface{})
	assert.Equal(t, "Пионы", data["name"])

	for _, path := range []string{"/api/products/2", "/api/products/3"} {
		rec = env.do(t, http.MethodGet, path, 0, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
	}
	rec = env.do(t, http.MethodGet, "/api/products/abc", 0, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListCustomers(t *testing.T) {
	env := newTestEnv(t)
	env.store.customers = []models.Customer{{TelegramID: userID, FirstName: "Анна", OrdersCount: 2}, {TelegramID: 500}}

	rec := env.do(t, http.MethodGet, "/api/admin/customers", userID, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/admin/customers?limit=1", adminID, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	data := decodeBody(t, rec)["data"].([]interface{})
	require.Len(t, data, 1)
	assert.Equal(t, "Анна", data[0].(map[string]interface{})["first_name"])

	rec = env.do(t, http.MethodGet, "/api/admin/customers?limit=0", adminID, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBotWebhookAlwaysOK(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/bot", 0, `{"update_id":1,"message":{"message_id":1,"chat":{"id":5},"text":"/start"}}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, env.bot.updates)

	rec = env.do(t, http.MethodPost, "/api/bot", 0, "garbage")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
	assert.Equal(t, 1, env.bot.updates)
}

func TestBotWebhookSecret(t *testing.T) {
	env := newTestEnv(t)
	env.cfg.WebhookSecret = "s3cret"
	update := `{"update_id":1,"message":{"message_id":1,"chat":{"id":5},"text":"/start"}}`

	post := func(secret string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/bot", bytes.NewBufferString(update))
		if secret != "" {
			req.Header.Set("X-Telegram-Bot-Api-Secret-Token", secret)
		}
		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusUnauthorized, post("").Code)
	assert.Equal(t, http.StatusUnauthorized, post("wrong").Code)
	assert.Equal(t, 0, env.bot.updates)

	rec := post("s3cret")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, env.bot.updates)
}

func TestHealthCountsActiveAdmins(t *testing.T) {
	env := newTestEnv(t)
	env.store.admins[500] = models.Admin{ID: 4, TelegramID: 500, Role: constants.ROLE_ADMIN, IsActive: false}

	rec := env.do(t, http.MethodGet, "/api/health", 0, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	stats := decodeBody(t, rec)["statistics"].(map[string]interface{})
	assert.Equal(t, float64(3), stats["active_admins"])
	assert.Empty(t, env.notifier.broadcast, "anonymous health check is not broadcast")
}

func TestShopQRCode(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/shop/qr", 0, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")))

	env.cfg.BotUsername = ""
	rec = env.do(t, http.MethodGet, "/api/shop/qr", 0, nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestInitDataIdentity(t *testing.T) {
	const token = "123:TEST"
	user := `{"id":100,"first_name":"Вера","username":"vera"}`
	values := url.Values{}
	values.Set("auth_date", "1700000000")
	values.Set("query_id", "AAE")
	values.Set("user", user)
	values.Set("hash", signInitData("auth_date=1700000000\nquery_id=AAE\nuser="+user, token))

	ok, data, err := validateInitData(values.Encode(), token)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, ownerID, data.ID)

	ok, _, err = validateInitData(values.Encode(), "other:TOKEN")
	require.NoError(t, err)
	assert.False(t, ok)

	env := newTestEnv(t)
	env.cfg.VerifyInitData = true
	router := chi.NewRouter()
	SetupRoutes(router, ApiDependencies{
		Config: env.cfg, Store: env.store, Gate: auth.NewGate(env.store),
		Orders: env.orders, Notifier: env.notifier, Bot: env.bot,
	})

	req := httptest.NewRequest(http.MethodGet, "/api/admin", nil)
	req.Header.Set(HeaderTelegramAuth, values.Encode())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decodeBody(t, rec)["is_admin"])

	// заголовок Telegram-Id без подписи не принимается
	req = httptest.NewRequest(http.MethodGet, "/api/admin", nil)
	req.Header.Set(HeaderTelegramID, "100")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, false, decodeBody(t, rec)["is_admin"])

	values.Set("user", `{"id":200}`)
	req = httptest.NewRequest(http.MethodGet, "/api/admin", nil)
	req.Header.Set(HeaderTelegramAuth, values.Encode())
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
