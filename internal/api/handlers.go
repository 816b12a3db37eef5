package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	log "github.com/sirupsen/logrus"

	"artflora/internal/constants"
	"artflora/internal/db"
	"artflora/internal/models"
	"artflora/internal/orders"
	"artflora/internal/pricing"
	"artflora/internal/utils"
)

const (
	maxBodyBytes  = 1 << 20
	maxPercentage = 100
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// в сообщениях об ошибках - имена полей из JSON
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterStructValidation(promocodeDiscountRule, createPromocodeRequest{})
	return v
}

// errValidation - ошибка разбора или проверки тела запроса, ответ 400.
type errValidation struct {
	msg string
}

func (e *errValidation) Error() string { return e.msg }

func validationError(format string, args ...interface{}) error {
	return &errValidation{msg: fmt.Sprintf(format, args...)}
}

// decodeJSON читает тело запроса в dst и проверяет теги validate.
func decodeJSON(r *http.Request, dst interface{}) error {
	body, err := readBody(r)
	if err != nil {
		return err
	}
	return decodeBytes(body, dst)
}

func readBody(r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return nil, validationError("failed to read request body: %v", err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, validationError("request body is empty")
	}
	return body, nil
}

func decodeBytes(body []byte, dst interface{}) error {
	if err := json.Unmarshal(body, dst); err != nil {
		return validationError("malformed JSON: %v", err)
	}
	return validateStruct(dst)
}

func validateStruct(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return validationError("%v", err)
	}
	fe := verrs[0]
	return validationError("field '%s' %s", fe.Field(), describeTag(fe))
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_if", "required_without":
		return "is required"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte", "min":
		return "must be at least " + fe.Param()
	case "lte", "max":
		return "must be at most " + fe.Param()
	case "dive":
		return "contains invalid items"
	}
	return "is invalid"
}

// writeJSON отправляет произвольный JSON-ответ.
func writeJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("writeJSON: ошибка кодирования ответа: %v", err)
	}
}

// writeJSONError отправляет ошибку в формате {success:false, error}.
func writeJSONError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]interface{}{"success": false, "error": message})
}

// writeJSONSuccess отправляет {success:true, data}.
func writeJSONSuccess(w http.ResponseWriter, data interface{}) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "data": data})
}

// writeServiceError переводит ошибку слоя сервиса в HTTP-статус.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		verr  *errValidation
		promo *pricing.PromoError
	)
	switch {
	case errors.As(err, &verr):
		writeJSONError(w, http.StatusBadRequest, verr.msg)
	case errors.As(err, &promo):
		writeJSONError(w, http.StatusBadRequest, promo.Message)
	case errors.Is(err, models.ErrEmptyItems):
		writeJSONError(w, http.StatusBadRequest, "field 'items' is required")
	case errors.Is(err, db.ErrNotFound):
		writeJSONError(w, http.StatusNotFound, "Not found")
	case errors.Is(err, db.ErrAdminExists), errors.Is(err, db.ErrPromocodeExists):
		writeJSONError(w, http.StatusConflict, err.Error())
	case errors.Is(err, db.ErrInvalidConfirmationCode), errors.Is(err, db.ErrUnknownAction):
		writeJSONError(w, http.StatusBadRequest, err.Error())
	default:
		log.WithFields(log.Fields{"path": r.URL.Path}).Errorf("Ошибка обработки запроса: %v", err)
		writeJSONError(w, http.StatusInternalServerError, err.Error())
	}
}

// urlID читает числовой параметр {id} из пути.
func urlID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, validationError("invalid id '%s'", raw)
	}
	return id, nil
}

// --- Заказы ---

type orderUserRequest struct {
	ID        int64  `json:"id" validate:"required"`
	FirstName string `json:"first_name"`
	Username  string `json:"username"`
}

// orderItemRequest - позиция корзины. Поле total от клиента не используется.
// Пределы количества, цены и числа позиций держат сумму заказа в int64.
type orderItemRequest struct {
	Name     string `json:"name" validate:"required"`
	Quantity int64  `json:"quantity" validate:"gt=0,lte=10000"`
	Price    int64  `json:"price" validate:"gte=0,lte=10000000"`
}

type createOrderRequest struct {
	User            orderUserRequest   `json:"user"`
	Phone           string             `json:"phone" validate:"required"`
	Items           []orderItemRequest `json:"items" validate:"required,min=1,max=100,dive"`
	Comment         string             `json:"comment"`
	DeliveryOption  string             `json:"delivery_option" validate:"required,oneof=pickup delivery"`
	DeliveryAddress string             `json:"delivery_address" validate:"required_if=DeliveryOption delivery"`
	PromocodeID     int64              `json:"promocode_id" validate:"gte=0"`
	Promocode       string             `json:"promocode"`
	Time            string             `json:"time"`
}

func (req createOrderRequest) toNewOrder() orders.NewOrder {
	items := make(models.OrderItems, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, models.OrderItem{
			Name:      strings.TrimSpace(it.Name),
			Quantity:  it.Quantity,
			UnitPrice: it.Price,
			LineTotal: it.Price * it.Quantity,
		})
	}
	address := ""
	if req.DeliveryOption != constants.DELIVERY_PICKUP {
		address = strings.TrimSpace(req.DeliveryAddress)
	}
	return orders.NewOrder{
		UserID:          req.User.ID,
		UserName:        req.User.FirstName,
		UserUsername:    req.User.Username,
		Phone:           utils.CleanPhone(req.Phone),
		Items:           items,
		DeliveryOption:  req.DeliveryOption,
		DeliveryAddress: address,
		Comment:         strings.TrimSpace(req.Comment),
		OrderTime:       req.Time,
		PromocodeCode:   req.Promocode,
		PromocodeID:     req.PromocodeID,
	}
}

// updateOrderStatusRequest: status_id сохраняется как есть, неизвестные значения допустимы.
type updateOrderStatusRequest struct {
	OrderID  int64 `json:"order_id" validate:"required,gt=0"`
	StatusID *int  `json:"status_id" validate:"required"`
}

// CreateOrder оформляет заказ из Mini App.
func (s *server) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	order, err := s.deps.Orders.CreateOrder(r.Context(), req.toNewOrder())
	if errors.Is(err, orders.ErrPersist) {
		log.WithFields(log.Fields{"user_id": req.User.ID}).Errorf("CreateOrder: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"success": false, "db_success": false, "error": err.Error(),
		})
		return
	}
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":         true,
		"message":         constants.ORDER_SUCCESS_TEXT,
		"db_success":      true,
		"order_id":        order.ID,
		"total_amount":    order.TotalAmount,
		"delivery_fee":    order.DeliveryFee,
		"discount_amount": order.DiscountAmount,
		"final_amount":    order.FinalAmount,
	})
}

// UpdateOrderStatus меняет статус заказа и уведомляет покупателя.
func (s *server) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req updateOrderStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	statusID := *req.StatusID
	sent, err := s.deps.Orders.UpdateStatus(r.Context(), req.OrderID, statusID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	log.WithFields(log.Fields{
		"order_id": req.OrderID, "status_id": statusID, "admin": callerID(r.Context()),
	}).Info("Статус заказа изменен")

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "notified": sent})
}

// ListOrders - заказы для админ-панели, фильтры status_id и limit.
func (s *server) ListOrders(w http.ResponseWriter, r *http.Request) {
	filter := models.OrderFilter{Limit: 100}
	q := r.URL.Query()
	if v := q.Get("status_id"); v != "" {
		statusID, err := strconv.Atoi(v)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid status_id")
			return
		}
		filter.StatusID = statusID
	}
	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit <= 0 {
			writeJSONError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		filter.Limit = limit
	}

	list, err := s.deps.Store.ListOrders(r.Context(), filter)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONSuccess(w, list)
}

// DeleteOrder удаляет заказ.
func (s *server) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if err := s.deps.Orders.DeleteOrder(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}
