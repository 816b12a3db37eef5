package utils

import (
	"fmt"
	"regexp"
	"strings"

	log "github.com/sirupsen/logrus"

	"artflora/internal/constants"
)

var (
	nonPhoneChars = regexp.MustCompile(`[^\d+]`)
	ruPhone       = regexp.MustCompile(`^\+7\d{10}$`)
)

// CleanPhone убирает из номера пробелы, скобки и дефисы, как их вводит покупатель.
func CleanPhone(phone string) string {
	return strings.NewReplacer(" ", "", "(", "", ")", "", "-", "").Replace(strings.TrimSpace(phone))
}

// ValidatePhoneNumber проверяет и нормализует номер телефона.
// Возвращает номер в формате +7XXXXXXXXXX или ошибку.
func ValidatePhoneNumber(phone string) (string, error) {
	digits := nonPhoneChars.ReplaceAllString(strings.TrimSpace(phone), "")
	switch {
	case strings.HasPrefix(digits, "+"):
		if ruPhone.MatchString(digits) {
			return digits, nil
		}
		return "", fmt.Errorf("номер должен быть в формате +7XXXXXXXXXX")
	case len(digits) == 11 && (digits[0] == '8' || digits[0] == '7'):
		return "+7" + digits[1:], nil
	case len(digits) == 10:
		return "+7" + digits, nil
	}
	return "", fmt.Errorf("неверный формат номера телефона")
}

// IsRoleOrHigher сравнивает роли администраторов: manager < admin < owner.
func IsRoleOrHigher(userRole string, requiredRole string) bool {
	roleHierarchy := map[string]int{
		constants.ROLE_MANAGER: 1,
		constants.ROLE_ADMIN:   2,
		constants.ROLE_OWNER:   3,
	}

	userLevel, okUser := roleHierarchy[userRole]
	requiredLevel, okRequired := roleHierarchy[requiredRole]

	if !okUser || !okRequired {
		log.Printf("IsRoleOrHigher: неизвестная роль при сравнении: userRole='%s', requiredRole='%s'", userRole, requiredRole)
		return false
	}
	return userLevel >= requiredLevel
}
