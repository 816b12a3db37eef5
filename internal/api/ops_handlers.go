package api

import (
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net/http"
	"runtime"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/OvyFlash/telegram-bot-api"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"artflora/internal/db"
	"artflora/internal/formatters"
	"artflora/internal/models"
	"artflora/internal/utils"
)

// --- Ручные уведомления ---

type sendNotificationRequest struct {
	UserID  int64  `json:"user_id" validate:"required,gt=0"`
	Message string `json:"message" validate:"required,max=4096"`
	Type    string `json:"type"`
}

// SendNotification отправляет покупателю сообщение от администратора и записывает его.
// Неудачная отправка - success=false без записи.
func (s *server) SendNotification(w http.ResponseWriter, r *http.Request) {
	var req sendNotificationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	if req.Type == "" {
		req.Type = "info"
	}

	if err := s.deps.Notifier.SendTo(req.UserID, req.Message, tgbotapi.ModeMarkdown); err != nil {
		log.WithFields(log.Fields{"user_id": req.UserID}).Printf("SendNotification: сообщение не доставлено: %v", err)
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": false})
		return
	}

	n := models.Notification{
		UserID:  req.UserID,
		Type:    req.Type,
		Title:   "Уведомление",
		Message: req.Message,
		IsSent:  true,
	}
	if err := s.deps.Store.CreateNotification(r.Context(), &n); err != nil {
		log.Printf("SendNotification: уведомление отправлено, но не записано: %v", err)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// --- Проверка здоровья ---

const (
	statusHealthy = "healthy"
	statusWarning = "warning"
	statusError   = "error"
)

type serviceCheck struct {
	Status  string                 `json:"status"`
	Details map[string]interface{} `json:"details"`
}

func newCheck() serviceCheck {
	return serviceCheck{Status: statusHealthy, Details: map[string]interface{}{}}
}

type healthReport struct {
	Timestamp     string                  `json:"timestamp"`
	OverallStatus string                  `json:"overall_status"`
	Services      map[string]serviceCheck `json:"services"`
	Errors        []string                `json:"errors"`
	Statistics    map[string]interface{}  `json:"statistics"`
}

func (s *server) checkEnvironment() serviceCheck {
	c := newCheck()
	cfg := s.deps.Config
	required := map[string]bool{"BOT_TOKEN": cfg.BotToken != "", "DATABASE_URL": cfg.DatabaseURL != ""}
	optional := map[string]bool{"BOT_USERNAME": cfg.BotUsername != "", "WEBAPP_URL": cfg.WebAppURL != ""}
	for name, set := range required {
		c.Details[name] = set
		if !set {
			c.Status = statusError
		}
	}
	for name, set := range optional {
		c.Details[name] = set
		if !set && c.Status == statusHealthy {
			c.Status = statusWarning
		}
	}
	return c
}

func (s *server) checkDatabase(r *http.Request) serviceCheck {
	c := newCheck()
	start := time.Now()
	if err := s.deps.Store.Ping(r.Context()); err != nil {
		c.Status = statusError
		c.Details["error"] = err.Error()
		return c
	}
	c.Details["latency_ms"] = time.Since(start).Milliseconds()
	return c
}

func (s *server) checkTelegram() serviceCheck {
	c := newCheck()
	if s.deps.Pinger == nil {
		c.Status = statusWarning
		c.Details["error"] = "bot client is not configured"
		return c
	}
	username, err := s.deps.Pinger.Ping()
	if err != nil {
		c.Status = statusError
		c.Details["error"] = err.Error()
		return c
	}
	c.Details["bot_username"] = username
	return c
}

func (s *server) checkTables(r *http.Request) (serviceCheck, map[string]int64) {
	c := newCheck()
	counts := make(map[string]int64, len(db.KnownTables))
	for _, table := range db.KnownTables {
		n, err := s.deps.Store.CountRows(r.Context(), table)
		if err != nil {
			c.Status = statusError
			c.Details[table] = err.Error()
			continue
		}
		counts[table] = n
		c.Details[table] = n
	}
	return c, counts
}

// Health проверяет окружение, базу, Bot API и таблицы. Отчет, запрошенный администратором,
// рассылается всем администраторам.
func (s *server) Health(w http.ResponseWriter, r *http.Request) {
	report := healthReport{
		Timestamp:  time.Now().Format(time.RFC3339),
		Services:   map[string]serviceCheck{},
		Errors:     []string{},
		Statistics: map[string]interface{}{},
	}

	report.Services["environment"] = s.checkEnvironment()
	report.Services["database"] = s.checkDatabase(r)
	report.Services["telegram_api"] = s.checkTelegram()
	tables, counts := s.checkTables(r)
	report.Services["database_tables"] = tables

	report.Statistics["total_products"] = counts["products"]
	report.Statistics["total_orders"] = counts["orders"]
	if admins, err := s.deps.Store.ListAdmins(r.Context(), true); err != nil {
		log.Printf("Health: не удалось получить активных администраторов: %v", err)
	} else {
		report.Statistics["active_admins"] = len(admins)
	}
	report.Statistics["server_time"] = time.Now().Format("2006-01-02 15:04:05")
	report.Statistics["go_version"] = runtime.Version()

	report.OverallStatus = statusHealthy
	var failed []string
	statuses := make(map[string]string, len(report.Services))
	for name, check := range report.Services {
		statuses[name] = check.Status
		switch check.Status {
		case statusError:
			failed = append(failed, name)
		case statusWarning:
			if report.OverallStatus == statusHealthy {
				report.OverallStatus = statusWarning
			}
		}
	}
	if len(failed) > 0 {
		report.OverallStatus = statusError
		report.Errors = append(report.Errors, "Critical services failed: "+strings.Join(failed, ", "))
	}

	if id := callerID(r.Context()); id != 0 {
		if ok, err := s.deps.Gate.IsAdmin(r.Context(), id); err == nil && ok {
			if err := s.deps.Notifier.Broadcast(r.Context(), formatters.FormatHealthReport(report.OverallStatus, statuses)); err != nil {
				log.Printf("Health: отчет администраторам не отправлен: %v", err)
			}
		}
	}

	writeJSON(w, http.StatusOK, report)
}

type errorReportRequest struct {
	Module         string `json:"module"`
	Error          string `json:"error" validate:"required"`
	UserID         string `json:"user_id"`
	AdditionalInfo string `json:"additional_info"`
	Timestamp      string `json:"timestamp"`
}

// UnmarshalJSON принимает user_id и числом, и строкой.
func (e *errorReportRequest) UnmarshalJSON(b []byte) error {
	type plain errorReportRequest
	var aux struct {
		plain
		UserID json.RawMessage `json:"user_id"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*e = errorReportRequest(aux.plain)
	if id := strings.Trim(string(aux.UserID), `"`); id != "null" {
		e.UserID = id
	}
	return nil
}

// ReportError пересылает администраторам ошибку, пойманную клиентом.
func (s *server) ReportError(w http.ResponseWriter, r *http.Request) {
	var req errorReportRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	if req.Module == "" {
		req.Module = "unknown"
	}
	if req.Timestamp == "" {
		req.Timestamp = time.Now().Format(time.RFC3339)
	}

	reportID := uuid.NewString()
	details := fmt.Sprintf("Время: %s\nПользователь: %s", req.Timestamp, req.UserID)
	if req.AdditionalInfo != "" {
		details += "\n" + req.AdditionalInfo
	}

	log.WithFields(log.Fields{"report_id": reportID, "module": req.Module}).Errorf("Ошибка клиента: %s", req.Error)
	if err := s.deps.Notifier.Broadcast(r.Context(), formatters.FormatErrorReport(reportID, req.Module, req.Error, details)); err != nil {
		log.Printf("ReportError: отчет администраторам не отправлен: %v", err)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "Error logged", "report_id": reportID})
}

// ShopQRCode отдает PNG с QR-кодом ссылки на бота.
func (s *server) ShopQRCode(w http.ResponseWriter, r *http.Request) {
	size := 256
	if v := r.URL.Query().Get("size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 64 || n > 1024 {
			writeJSONError(w, http.StatusBadRequest, "size must be between 64 and 1024")
			return
		}
		size = n
	}

	png, err := utils.GenerateShopQRCode(s.deps.Config.BotUsername, size)
	if err != nil {
		writeJSONError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(png); err != nil {
		log.Printf("ShopQRCode: ошибка записи ответа: %v", err)
	}
}

// --- Вебхук бота ---

const headerWebhookSecret = "X-Telegram-Bot-Api-Secret-Token"

// BotWebhook принимает обновления Telegram. Ответ на любое обновление 200, иначе Telegram повторяет доставку.
// Если задан WEBHOOK_SECRET, запрос без верного секрета отклоняется с 401 и не обрабатывается.
func (s *server) BotWebhook(w http.ResponseWriter, r *http.Request) {
	if secret := s.deps.Config.WebhookSecret; secret != "" {
		got := r.Header.Get(headerWebhookSecret)
		if subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
			log.WithFields(log.Fields{"remote": r.RemoteAddr}).Warn("BotWebhook: неверный секрет вебхука")
			writeJSONError(w, http.StatusUnauthorized, "invalid webhook secret")
			return
		}
	}

	var update tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		log.Printf("BotWebhook: не удалось разобрать обновление: %v", err)
	} else if s.deps.Bot != nil {
		s.deps.Bot.HandleUpdate(update)
	}
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (s *server) BotStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("Bot is running!"))
}
