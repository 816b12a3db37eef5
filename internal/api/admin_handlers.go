package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"artflora/internal/models"
	"artflora/internal/reports"
	"artflora/internal/utils"
)

// AdminStatus сообщает Mini App, показывать ли админ-панель.
// Сбой проверки не превращается в ошибку: ответ is_admin=false.
func (s *server) AdminStatus(w http.ResponseWriter, r *http.Request) {
	id := callerID(r.Context())
	st, err := s.deps.Gate.Standing(r.Context(), id)
	if err != nil {
		log.WithFields(log.Fields{"telegram_id": id}).Errorf("AdminStatus: ошибка проверки: %v", err)
	}
	if err != nil || !st.IsAdmin() {
		writeJSON(w, http.StatusOK, map[string]interface{}{"is_admin": false, "is_active": false})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"is_admin":    true,
		"is_active":   st.Admin.IsActive,
		"role":        st.Admin.Role,
		"first_name":  st.Admin.FirstName,
		"username":    st.Admin.Username,
		"telegram_id": st.Admin.TelegramID,
	})
}

func (s *server) ListAdmins(w http.ResponseWriter, r *http.Request) {
	admins, err := s.deps.Store.ListAdmins(r.Context(), false)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONSuccess(w, admins)
}

type createAdminRequest struct {
	TelegramID int64  `json:"telegram_id" validate:"required,gt=0"`
	Role       string `json:"role" validate:"required,oneof=manager admin owner"`
	FirstName  string `json:"first_name"`
	Username   string `json:"username"`
	IsActive   *bool  `json:"is_active"`
}

// CreateAdmin добавляет администратора. Новый администратор активен, если не указано иное.
func (s *server) CreateAdmin(w http.ResponseWriter, r *http.Request) {
	var req createAdminRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	admin := models.Admin{
		TelegramID: req.TelegramID,
		Role:       req.Role,
		IsActive:   req.IsActive == nil || *req.IsActive,
		FirstName:  strings.TrimSpace(req.FirstName),
		Username:   strings.TrimPrefix(strings.TrimSpace(req.Username), "@"),
	}
	if err := s.deps.Store.CreateAdmin(r.Context(), &admin); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "admin": admin})
}

func (s *server) DeleteAdmin(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if err := s.deps.Store.DeleteAdmin(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// GetStats возвращает сводку для админ-панели.
func (s *server) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.deps.Store.GetStats(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONSuccess(w, stats)
}

// ListCustomers - карточки покупателей, последние заказавшие первыми.
func (s *server) ListCustomers(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeJSONError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}
	customers, err := s.deps.Store.ListCustomers(r.Context(), limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONSuccess(w, customers)
}

func (s *server) ListStatuses(w http.ResponseWriter, r *http.Request) {
	statuses, err := s.deps.Store.GetOrderStatuses(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONSuccess(w, statuses)
}

const exportDateLayout = "2006-01-02"

// parseExportRange читает from/to (включительно). По умолчанию - текущий день.
func parseExportRange(r *http.Request, now time.Time) (time.Time, time.Time, error) {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	from, to := day, day

	q := r.URL.Query()
	if v := q.Get("from"); v != "" {
		t, err := time.ParseInLocation(exportDateLayout, v, now.Location())
		if err != nil {
			return from, to, validationError("invalid from date '%s', expected YYYY-MM-DD", v)
		}
		from = t
		if q.Get("to") == "" {
			to = t
		}
	}
	if v := q.Get("to"); v != "" {
		t, err := time.ParseInLocation(exportDateLayout, v, now.Location())
		if err != nil {
			return from, to, validationError("invalid to date '%s', expected YYYY-MM-DD", v)
		}
		to = t
	}
	if to.Before(from) {
		return from, to, validationError("'to' is before 'from'")
	}
	return from, to.AddDate(0, 0, 1), nil
}

// ExportOrders строит Excel-отчет по заказам за период.
// С send=true файл отправляется в чат вызывающего, иначе отдается в ответе.
func (s *server) ExportOrders(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	from, to, err := parseExportRange(r, now)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	list, err := s.deps.Store.ListOrders(r.Context(), models.OrderFilter{From: from, To: to})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	data, err := reports.OrdersWorkbook(list)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	fileName := reports.ReportFileName(now)

	if r.URL.Query().Get("send") == "true" {
		chatID := callerID(r.Context())
		caption := fmt.Sprintf("Отчет по заказам за %s - %s", from.Format("02.01.2006"), to.AddDate(0, 0, -1).Format("02.01.2006"))
		if err := s.deps.Notifier.SendDocument(chatID, fileName, data, caption); err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "orders": len(list), "file": fileName})
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, fileName))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		log.Printf("ExportOrders: ошибка записи файла: %v", err)
	}
}

// adminDisplayName - подпись администратора в логах и уведомлениях.
func adminDisplayName(a models.Admin) string {
	return fmt.Sprintf("%s (%s)", utils.CustomerDisplayName(a.FirstName, a.Username), utils.GetRoleDisplayName(a.Role))
}
