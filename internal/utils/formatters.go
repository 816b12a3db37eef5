// Файл: internal/utils/formatters.go

package utils

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"artflora/internal/constants"
)

// FormatPhoneNumber форматирует номер телефона для отображения.
func FormatPhoneNumber(phone string) string {
	normalized, err := ValidatePhoneNumber(phone)
	if err != nil {
		return phone
	}
	return fmt.Sprintf("+7 (%s) %s-%s-%s", normalized[2:5], normalized[5:8], normalized[8:10], normalized[10:12])
}

// FormatRubles печатает сумму с разделителем разрядов: 12500 -> "12 500 ₽".
func FormatRubles(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	s := strconv.FormatInt(amount, 10)
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return sign + b.String() + " ₽"
}

// GetRoleDisplayName возвращает отображаемое имя роли на русском языке.
func GetRoleDisplayName(roleKey string) string {
	names := map[string]string{
		constants.ROLE_MANAGER: "🧑‍💼 Менеджер",
		constants.ROLE_ADMIN:   "🛠 Администратор",
		constants.ROLE_OWNER:   "👑 Владелец",
	}
	if name, ok := names[roleKey]; ok {
		return name
	}
	return roleKey
}

// GetStatusDisplayName возвращает название статуса заказа.
func GetStatusDisplayName(statusID int) string {
	if name, ok := constants.StatusNames[statusID]; ok {
		return name
	}
	return fmt.Sprintf("Статус %d", statusID)
}

// GenerateConfirmationCode - короткий код для опасных действий владельца.
func GenerateConfirmationCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

// CustomerDisplayName формирует имя покупателя для сообщений.
func CustomerDisplayName(name, username string) string {
	name = strings.TrimSpace(name)
	switch {
	case name != "" && username != "":
		return fmt.Sprintf("%s (@%s)", name, username)
	case name != "":
		return name
	case username != "":
		return "@" + username
	}
	return "Покупатель"
}
