package formatters

import (
	"fmt"
	"html"
	"sort"
	"strings"

	"artflora/internal/constants"
	"artflora/internal/models"
	"artflora/internal/utils"
)

const (
	separator = "─ ─ ─ ─ ─ ─ ─ ─ ─ ─ ─ ─ ─"
)

// FormatAdminOrderSummary - HTML-сообщение администраторам о новом заказе.
func FormatAdminOrderSummary(order models.Order) string {
	var b strings.Builder
	phone := utils.CleanPhone(order.Phone)

	b.WriteString(fmt.Sprintf("🎉 <b>НОВЫЙ ЗАКАЗ #%d!</b>\n\n", order.ID))

	b.WriteString("👤 <b>Информация о клиенте:</b>\n")
	b.WriteString(fmt.Sprintf("🆔 ID: <code>%d</code>\n", order.UserID))
	b.WriteString(fmt.Sprintf("📛 Имя: %s\n", html.EscapeString(order.UserName)))
	if order.UserUsername != "" {
		b.WriteString(fmt.Sprintf("👤 Юзернейм: @%s\n", html.EscapeString(order.UserUsername)))
	}
	b.WriteString(fmt.Sprintf("📞 Телефон: <code>%s</code>\n\n", html.EscapeString(phone)))

	b.WriteString("🛍️ <b>Состав заказа:</b>\n")
	for _, it := range order.Items {
		b.WriteString(fmt.Sprintf("• %s - %d шт. × %d ₽ = %d ₽\n",
			html.EscapeString(it.Name), it.Quantity, it.UnitPrice, it.LineTotal))
	}
	b.WriteString(separator + "\n")

	b.WriteString(fmt.Sprintf("🧾 Сумма товаров: %s\n", utils.FormatRubles(order.TotalAmount)))
	if order.DeliveryOption == constants.DELIVERY_DELIVERY {
		b.WriteString(fmt.Sprintf("🚚 Доставка: %s\n", utils.FormatRubles(order.DeliveryFee)))
		if order.DeliveryAddress.Valid {
			b.WriteString(fmt.Sprintf("📍 Адрес: %s\n", html.EscapeString(order.DeliveryAddress.String)))
		}
	} else {
		b.WriteString("🏪 Самовывоз\n")
	}
	if order.DiscountAmount != 0 {
		b.WriteString(fmt.Sprintf("🎁 Скидка по промокоду: -%s\n", utils.FormatRubles(order.DiscountAmount)))
	}
	b.WriteString(fmt.Sprintf("\n💵 <b>Итого к оплате:</b> %s\n\n", utils.FormatRubles(order.FinalAmount)))

	comment := "Нет комментария"
	if order.Comment.Valid && strings.TrimSpace(order.Comment.String) != "" {
		comment = order.Comment.String
	}
	b.WriteString(fmt.Sprintf("📋 <b>Комментарий:</b> %s\n\n", html.EscapeString(comment)))
	if order.OrderTime != "" {
		b.WriteString(fmt.Sprintf("🕐 <b>Время заказа:</b> %s\n\n", html.EscapeString(order.OrderTime)))
	}

	if order.UserUsername != "" {
		b.WriteString(fmt.Sprintf(`💬 <a href="https://t.me/%s">Написать покупателю</a>`, html.EscapeString(order.UserUsername)))
	} else {
		b.WriteString(fmt.Sprintf(`💬 <a href="tg://user?id=%d">Написать покупателю</a>`, order.UserID))
	}
	return b.String()
}

// FormatCustomerConfirmation - сообщение покупателю после оформления заказа.
func FormatCustomerConfirmation(order models.Order) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🌸 Спасибо за заказ в АртФлоре!\n\nНомер заказа: #%d\n", order.ID))
	for _, it := range order.Items {
		b.WriteString(fmt.Sprintf("• %s × %d\n", it.Name, it.Quantity))
	}
	b.WriteString(separator + "\n")
	if order.DiscountAmount != 0 {
		b.WriteString(fmt.Sprintf("Скидка: -%s\n", utils.FormatRubles(order.DiscountAmount)))
	}
	if order.DeliveryOption == constants.DELIVERY_DELIVERY {
		b.WriteString(fmt.Sprintf("Доставка: %s\n", utils.FormatRubles(order.DeliveryFee)))
	}
	b.WriteString(fmt.Sprintf("Итого: %s\n\n", utils.FormatRubles(order.FinalAmount)))
	b.WriteString(constants.StatusCustomerMessages[constants.STATUS_NEW])
	return b.String()
}

// FormatErrorReport - HTML-отчет об ошибке клиента для администраторов.
func FormatErrorReport(reportID, source, message, details string) string {
	var b strings.Builder
	b.WriteString("🚨 <b>Ошибка в системе</b>\n\n")
	b.WriteString(fmt.Sprintf("🆔 <code>%s</code>\n", html.EscapeString(reportID)))
	if source != "" {
		b.WriteString(fmt.Sprintf("📍 Источник: %s\n", html.EscapeString(source)))
	}
	b.WriteString(fmt.Sprintf("\n<code>%s</code>\n", html.EscapeString(message)))
	if details != "" {
		b.WriteString(fmt.Sprintf("\n%s", html.EscapeString(details)))
	}
	return b.String()
}

// FormatConfirmationCode - сообщение владельцу с кодом для опасного действия.
func FormatConfirmationCode(code string) string {
	return fmt.Sprintf("🔐 Код подтверждения опасного действия: <code>%s</code>\n\nКод одноразовый. Никому его не сообщайте.", code)
}

// FormatHealthReport - сводка проверки здоровья сервиса.
func FormatHealthReport(overall string, services map[string]string) string {
	emoji := map[string]string{"healthy": "✅", "warning": "⚠️", "error": "❌"}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s <b>Отчёт о состоянии системы</b>\n\n", emojiOr(emoji, overall)))
	b.WriteString(fmt.Sprintf("📊 <b>Общий статус:</b> %s\n\n", strings.ToUpper(html.EscapeString(overall))))

	names := make([]string, 0, len(services))
	for name := range services {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		status := services[name]
		b.WriteString(fmt.Sprintf("%s <b>%s</b>: %s\n", emojiOr(emoji, status), html.EscapeString(strings.ToUpper(name)), html.EscapeString(status)))
	}
	return b.String()
}

func emojiOr(m map[string]string, key string) string {
	if e, ok := m[key]; ok {
		return e
	}
	return "❓"
}
