package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	log "github.com/sirupsen/logrus"

	"artflora/internal/constants"
	"artflora/internal/models"
	"artflora/internal/pricing"
)

type validatePromocodeRequest struct {
	Code        string `json:"code" validate:"required"`
	OrderAmount int64  `json:"order_amount" validate:"gte=0"`
}

type createPromocodeRequest struct {
	Code           string `json:"code" validate:"required,max=50"`
	DiscountType   string `json:"discount_type" validate:"required,oneof=percentage fixed"`
	DiscountValue  int64  `json:"discount_value" validate:"gt=0"`
	MinOrderAmount int64  `json:"min_order_amount" validate:"gte=0"`
	MaxUses        *int64 `json:"max_uses" validate:"omitempty,gt=0"`
	ValidFrom      string `json:"valid_from"`
	ValidUntil     string `json:"valid_until"`
}

// promocodeDiscountRule: процентная скидка не больше 100, иначе скидка превысит сумму корзины.
func promocodeDiscountRule(sl validator.StructLevel) {
	req := sl.Current().Interface().(createPromocodeRequest)
	if req.DiscountType == constants.DISCOUNT_PERCENTAGE && req.DiscountValue > maxPercentage {
		sl.ReportError(req.DiscountValue, "discount_value", "DiscountValue", "lte", strconv.Itoa(maxPercentage))
	}
}

var promoDateLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02T15:04", "2006-01-02"}

// parsePromoDate разбирает дату из формы. Пустая строка - NULL.
func parsePromoDate(field, raw string) (models.NullTime, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return models.NullTime{}, nil
	}
	for _, layout := range promoDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return models.NullTime{NullTime: sql.NullTime{Time: t, Valid: true}}, nil
		}
	}
	return models.NullTime{}, validationError("field '%s' is not a valid date", field)
}

// PromocodesPost: action=validate проверяет код для корзины (публично),
// остальные запросы создают промокод (только владелец).
func (s *server) PromocodesPost(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	var envelope struct {
		Action string `json:"action"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		writeServiceError(w, r, validationError("malformed JSON: %v", err))
		return
	}

	if envelope.Action == "validate" {
		s.validatePromocode(w, r, body)
		return
	}
	s.createPromocode(w, r, body)
}

func (s *server) validatePromocode(w http.ResponseWriter, r *http.Request, body []byte) {
	var req validatePromocodeRequest
	if err := decodeBytes(body, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	promo, discount, err := s.deps.Orders.ValidatePromocode(r.Context(), req.Code, req.OrderAmount)
	var perr *pricing.PromoError
	if errors.As(err, &perr) {
		writeJSON(w, http.StatusOK, map[string]interface{}{"valid": false, "error": perr.Message})
		return
	}
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"valid":           true,
		"discount_amount": discount,
		"promocode_id":    promo.ID,
		"discount_type":   promo.DiscountType,
		"discount_value":  promo.DiscountValue,
	})
}

func (s *server) createPromocode(w http.ResponseWriter, r *http.Request, body []byte) {
	st, ok := s.ownerOnly(w, r, "Только владельцы могут создавать промокоды")
	if !ok {
		return
	}

	var req createPromocodeRequest
	if err := decodeBytes(body, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	validFrom, err := parsePromoDate("valid_from", req.ValidFrom)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	validUntil, err := parsePromoDate("valid_until", req.ValidUntil)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	promo := models.Promocode{
		Code:           strings.TrimSpace(req.Code),
		DiscountType:   req.DiscountType,
		DiscountValue:  req.DiscountValue,
		MinOrderAmount: req.MinOrderAmount,
		ValidFrom:      validFrom,
		ValidUntil:     validUntil,
		IsActive:       true,
		CreatedBy:      models.NewNullInt64(st.Admin.ID),
	}
	if req.MaxUses != nil {
		promo.MaxUses = models.NewNullInt64(*req.MaxUses)
	}

	if err := s.deps.Store.CreatePromocode(r.Context(), &promo); err != nil {
		writeServiceError(w, r, err)
		return
	}
	log.WithFields(log.Fields{"code": promo.Code, "admin": adminDisplayName(st.Admin)}).Info("Создан промокод")
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "promocode": promo})
}

func (s *server) ListPromocodes(w http.ResponseWriter, r *http.Request) {
	list, err := s.deps.Store.ListPromocodes(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONSuccess(w, list)
}

// DeactivatePromocode выводит промокод из оборота. Строка остается для истории заказов.
func (s *server) DeactivatePromocode(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if err := s.deps.Store.DeactivatePromocode(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}
