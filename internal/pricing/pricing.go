// Package pricing считает стоимость заказа: доставку, скидку по промокоду и итог.
// Функции пакета не обращаются к базе и не меняют used_count.
package pricing

import (
	"artflora/internal/constants"
	"artflora/internal/models"
	"time"
)

// DeliverySettings - параметры доставки из shop_settings.
type DeliverySettings struct {
	DeliveryPrice   int64
	FreeDeliveryMin int64
}

// DefaultDeliverySettings возвращает значения на случай отсутствующих настроек.
func DefaultDeliverySettings() DeliverySettings {
	return DeliverySettings{
		DeliveryPrice:   constants.DEFAULT_DELIVERY_PRICE,
		FreeDeliveryMin: constants.DEFAULT_FREE_DELIVERY_MIN,
	}
}

// SettingsFromMap собирает DeliverySettings из строк shop_settings.
// Отсутствующее или нечисловое значение заменяется значением по умолчанию.
func SettingsFromMap(settings map[string]models.ShopSetting) DeliverySettings {
	out := DefaultDeliverySettings()
	if s, ok := settings[constants.SETTING_DELIVERY_PRICE]; ok {
		if v, err := s.Int64(); err == nil {
			out.DeliveryPrice = v
		}
	}
	if s, ok := settings[constants.SETTING_FREE_DELIVERY_MIN]; ok {
		if v, err := s.Int64(); err == nil {
			out.FreeDeliveryMin = v
		}
	}
	return out
}

// DeliveryFee возвращает стоимость доставки для суммы корзины.
func DeliveryFee(total int64, option string, s DeliverySettings) int64 {
	if option == constants.DELIVERY_PICKUP {
		return 0
	}
	if total >= s.FreeDeliveryMin {
		return 0
	}
	return s.DeliveryPrice
}

// FinalAmount = сумма + доставка - скидка.
func FinalAmount(total, deliveryFee, discount int64) int64 {
	return total + deliveryFee - discount
}

// DeliveredProfit - прибыль, фиксируемая при переходе заказа в статус "доставлен".
// Стоимость доставки в прибыль не входит.
func DeliveredProfit(total, discount int64) int64 {
	return total - discount
}

// Quote - результат расчета заказа.
type Quote struct {
	TotalAmount    int64
	DeliveryFee    int64
	DiscountAmount int64
	FinalAmount    int64
	PromocodeID    models.NullInt64
}

// Calculate считает заказ целиком. promo == nil означает заказ без промокода.
// Ошибка валидации промокода возвращается как *PromoError.
func Calculate(total int64, option string, s DeliverySettings, promo *models.Promocode, now time.Time) (Quote, error) {
	q := Quote{
		TotalAmount: total,
		DeliveryFee: DeliveryFee(total, option, s),
	}
	if promo != nil {
		discount, err := ValidatePromocode(promo, total, now)
		if err != nil {
			return Quote{}, err
		}
		q.DiscountAmount = discount
		q.PromocodeID = models.NewNullInt64(promo.ID)
	}
	q.FinalAmount = FinalAmount(q.TotalAmount, q.DeliveryFee, q.DiscountAmount)
	return q, nil
}
