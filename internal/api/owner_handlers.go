package api

import (
	"net/http"

	tgbotapi "github.com/OvyFlash/telegram-bot-api"
	log "github.com/sirupsen/logrus"

	"artflora/internal/constants"
	"artflora/internal/formatters"
	"artflora/internal/utils"
)

type dangerousActionRequest struct {
	Action           string `json:"action" validate:"required,oneof=reset_orders reset_stats delete_promocodes delete_products clear_customers reset_shop"`
	ConfirmationCode string `json:"confirmation_code" validate:"required"`
}

// DangerousAction выполняет массовое удаление или сброс после проверки кода подтверждения.
// До этого обработчика запрос доходит только от владельца.
func (s *server) DangerousAction(w http.ResponseWriter, r *http.Request) {
	var req dangerousActionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	st := standingFrom(r.Context())

	if err := s.deps.Store.RunMaintenance(r.Context(), req.Action, req.ConfirmationCode); err != nil {
		log.WithFields(log.Fields{"action": req.Action, "admin": adminDisplayName(st.Admin)}).
			Warnf("Опасное действие не выполнено: %v", err)
		writeServiceError(w, r, err)
		return
	}

	log.WithFields(log.Fields{"action": req.Action, "admin": adminDisplayName(st.Admin)}).Warn("Выполнено опасное действие")
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": constants.DangerousActionMessages[req.Action],
	})
}

// IssueConfirmationCode создает одноразовый код и отправляет его в личный чат владельца.
// Сам код в ответе не возвращается.
func (s *server) IssueConfirmationCode(w http.ResponseWriter, r *http.Request) {
	st := standingFrom(r.Context())
	code := utils.GenerateConfirmationCode()

	if err := s.deps.Store.CreateConfirmationCode(r.Context(), code, st.Admin.ID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	if err := s.deps.Notifier.SendTo(st.Admin.TelegramID, formatters.FormatConfirmationCode(code), tgbotapi.ModeHTML); err != nil {
		writeServiceError(w, r, err)
		return
	}

	log.WithFields(log.Fields{"admin": adminDisplayName(st.Admin)}).Info("Выдан код подтверждения")
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Код подтверждения отправлен вам в Telegram",
	})
}
