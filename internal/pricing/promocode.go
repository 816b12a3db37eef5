package pricing

import (
	"fmt"
	"time"

	"artflora/internal/constants"
	"artflora/internal/models"
)

// PromoReason - причина отказа в применении промокода.
type PromoReason string

const (
	ReasonNotFound  PromoReason = "not_found"
	ReasonExpired   PromoReason = "expired"
	ReasonLimit     PromoReason = "limit_reached"
	ReasonMinAmount PromoReason = "min_amount"
	ReasonBadType   PromoReason = "bad_type"
)

// PromoError - отказ в применении промокода. Message показывается покупателю.
type PromoError struct {
	Reason  PromoReason
	Message string
}

func (e *PromoError) Error() string {
	return e.Message
}

// NotFound - отказ для несуществующего или неактивного кода.
func NotFound() *PromoError {
	return &PromoError{Reason: ReasonNotFound, Message: "Промокод не найден"}
}

// ValidatePromocode проверяет промокод для суммы корзины и возвращает скидку.
// Проверки идут по порядку, первая неудачная завершает проверку:
// активность, срок действия, лимит использований, минимальная сумма.
func ValidatePromocode(p *models.Promocode, total int64, now time.Time) (int64, error) {
	if p == nil || !p.IsActive {
		return 0, NotFound()
	}
	if p.ValidUntil.Valid && p.ValidUntil.Time.Before(now) {
		return 0, &PromoError{Reason: ReasonExpired, Message: "Промокод просрочен"}
	}
	if p.MaxUses.Valid && p.UsedCount >= p.MaxUses.Int64 {
		return 0, &PromoError{Reason: ReasonLimit, Message: "Лимит использований промокода исчерпан"}
	}
	if total < p.MinOrderAmount {
		return 0, &PromoError{
			Reason:  ReasonMinAmount,
			Message: fmt.Sprintf("Минимальная сумма заказа для промокода: %d₽", p.MinOrderAmount),
		}
	}

	switch p.DiscountType {
	case constants.DISCOUNT_PERCENTAGE:
		return total * p.DiscountValue / 100, nil
	case constants.DISCOUNT_FIXED:
		// не ограничивается суммой корзины
		return p.DiscountValue, nil
	default:
		return 0, &PromoError{Reason: ReasonBadType, Message: fmt.Sprintf("Неизвестный тип скидки: %s", p.DiscountType)}
	}
}
