package constants

// Статусы заказа (order_statuses.id)
const (
	STATUS_NEW        = 1
	STATUS_CONFIRMED  = 2
	STATUS_PREPARING  = 3
	STATUS_IN_TRANSIT = 4
	STATUS_DELIVERED  = 5
	STATUS_CANCELLED  = 6
)

// StatusNames - названия статусов для справочника и отчетов.
var StatusNames = map[int]string{
	STATUS_NEW:        "Новый",
	STATUS_CONFIRMED:  "Подтверждён",
	STATUS_PREPARING:  "Собирается",
	STATUS_IN_TRANSIT: "В пути",
	STATUS_DELIVERED:  "Доставлен",
	STATUS_CANCELLED:  "Отменён",
}

// StatusCustomerMessages - фиксированные тексты уведомлений покупателю по статусу.
var StatusCustomerMessages = map[int]string{
	STATUS_NEW:        "✅ Ваш заказ принят! Мы свяжемся с вами в ближайшее время.",
	STATUS_CONFIRMED:  "👍 Ваш заказ подтверждён и готовится к отправке.",
	STATUS_PREPARING:  "💐 Ваш заказ собирается флористом.",
	STATUS_IN_TRANSIT: "🚚 Ваш заказ в пути!",
	STATUS_DELIVERED:  "🎉 Ваш заказ доставлен! Спасибо, что выбрали АртФлору!",
	STATUS_CANCELLED:  "❌ Ваш заказ отменён. Если это ошибка, свяжитесь с нами.",
}

// Роли администраторов
const (
	ROLE_MANAGER = "manager"
	ROLE_ADMIN   = "admin"
	ROLE_OWNER   = "owner"
)

// Способы получения заказа
const (
	DELIVERY_PICKUP   = "pickup"
	DELIVERY_DELIVERY = "delivery"
)

// Типы скидки промокода
const (
	DISCOUNT_PERCENTAGE = "percentage"
	DISCOUNT_FIXED      = "fixed"
)

// Ключи shop_settings
const (
	SETTING_DELIVERY_PRICE    = "delivery_price"
	SETTING_FREE_DELIVERY_MIN = "free_delivery_min"
	SETTING_CONTACTS          = "contacts"
	SETTING_ACTIVE_THEME      = "active_theme"
	SETTING_HEADER_PATTERNS   = "header_patterns"
	SETTING_ACTIVE_EFFECT     = "active_effect"
)

// Значения по умолчанию для доставки, если настройки не заданы.
const (
	DEFAULT_DELIVERY_PRICE    int64 = 200
	DEFAULT_FREE_DELIVERY_MIN int64 = 3000
)

// Узоры шапки и эффекты витрины
var (
	HeaderPatterns = []string{"dots", "lines", "flowers", "none"}
	ShopEffects    = []string{"snow", "rain", "none"}
)

// Опасные действия владельца
const (
	ACTION_RESET_ORDERS      = "reset_orders"
	ACTION_RESET_STATS       = "reset_stats"
	ACTION_DELETE_PROMOCODES = "delete_promocodes"
	ACTION_DELETE_PRODUCTS   = "delete_products"
	ACTION_CLEAR_CUSTOMERS   = "clear_customers"
	ACTION_RESET_SHOP        = "reset_shop"
)

// DangerousActionMessages - ответ клиенту после выполнения действия.
var DangerousActionMessages = map[string]string{
	ACTION_RESET_ORDERS:      "Все заказы удалены",
	ACTION_RESET_STATS:       "Статистика сброшена",
	ACTION_DELETE_PROMOCODES: "Все промокоды удалены",
	ACTION_DELETE_PRODUCTS:   "Все товары удалены",
	ACTION_CLEAR_CUSTOMERS:   "База клиентов очищена",
	ACTION_RESET_SHOP:        "Магазин полностью сброшен",
}

// Тексты бота
const (
	BOT_WELCOME_TEXT     = "🌸 Добро пожаловать в АртФлору!\n\nНажмите кнопку ниже, чтобы открыть каталог цветов и оформить заказ."
	BOT_OPEN_SHOP_BUTTON = "🌸 Открыть магазин цветов"
	ORDER_SUCCESS_TEXT   = "Заказ успешно оформлен"
)
