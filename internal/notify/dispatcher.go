// Package notify рассылает сообщения о заказах администраторам и покупателям.
// Доставка best-effort: одна попытка на получателя, без повторов.
package notify

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/OvyFlash/telegram-bot-api"
	log "github.com/sirupsen/logrus"

	"artflora/internal/constants"
	"artflora/internal/formatters"
	"artflora/internal/models"
)

// Messenger - исходящие сообщения. Таймаут каждого вызова задается реализацией.
type Messenger interface {
	SendMessage(chatID int64, text, parseMode string) error
	SendDocument(chatID int64, fileName string, data []byte, caption string) error
}

// AdminLister возвращает chat_id активных администраторов.
type AdminLister interface {
	ListActiveAdminChatIDs(ctx context.Context) ([]int64, error)
}

var (
	// ErrNoRecipients - некому отправлять.
	ErrNoRecipients = errors.New("нет получателей для уведомления")
	// ErrAllSendsFailed - ни одна отправка не удалась.
	ErrAllSendsFailed = errors.New("не удалось отправить уведомление ни одному получателю")
)

type Dispatcher struct {
	messenger Messenger
	admins    AdminLister
	extraIDs  []int64
}

// NewDispatcher создает рассыльщик. extraAdminChatIDs получают уведомления о заказах
// вместе с активными администраторами из базы.
func NewDispatcher(m Messenger, admins AdminLister, extraAdminChatIDs []int64) *Dispatcher {
	return &Dispatcher{messenger: m, admins: admins, extraIDs: extraAdminChatIDs}
}

// adminRecipients - активные администраторы и дополнительные чаты без повторов.
func (d *Dispatcher) adminRecipients(ctx context.Context) ([]int64, error) {
	ids, err := d.admins.ListActiveAdminChatIDs(ctx)
	if err != nil && len(d.extraIDs) == 0 {
		return nil, fmt.Errorf("получение списка администраторов: %w", err)
	}
	if err != nil {
		log.Printf("adminRecipients: ошибка чтения администраторов, используются только ADMIN_CHAT_ID: %v", err)
	}

	seen := make(map[int64]bool, len(ids)+len(d.extraIDs))
	var out []int64
	for _, id := range append(ids, d.extraIDs...) {
		if id == 0 || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out, nil
}

// fanOut отправляет одно сообщение каждому получателю по очереди.
// Возвращает число успешных отправок.
func (d *Dispatcher) fanOut(recipients []int64, text string) int {
	sent := 0
	for _, chatID := range recipients {
		if err := d.messenger.SendMessage(chatID, text, tgbotapi.ModeHTML); err != nil {
			log.WithFields(log.Fields{"chat_id": chatID}).Printf("Уведомление администратору не доставлено: %v", err)
			continue
		}
		sent++
	}
	return sent
}

// NotifyAdmins отправляет сводку заказа всем активным администраторам.
// Успех, если хотя бы одна отправка прошла.
func (d *Dispatcher) NotifyAdmins(ctx context.Context, order models.Order) error {
	return d.Broadcast(ctx, formatters.FormatAdminOrderSummary(order))
}

// Broadcast отправляет HTML-сообщение всем администраторам.
func (d *Dispatcher) Broadcast(ctx context.Context, html string) error {
	recipients, err := d.adminRecipients(ctx)
	if err != nil {
		return err
	}
	if len(recipients) == 0 {
		return ErrNoRecipients
	}
	sent := d.fanOut(recipients, html)
	log.Printf("Рассылка администраторам: доставлено %d из %d", sent, len(recipients))
	if sent == 0 {
		return ErrAllSendsFailed
	}
	return nil
}

// NotifyCustomer отправляет одно сообщение покупателю заказа.
func (d *Dispatcher) NotifyCustomer(_ context.Context, order models.Order, text string) error {
	if order.UserID == 0 {
		return ErrNoRecipients
	}
	return d.messenger.SendMessage(order.UserID, text, "")
}

// NotifyStatusChange отправляет покупателю фиксированный текст для статуса.
// Для неизвестного статуса ничего не отправляется: sent=false, err=nil.
func (d *Dispatcher) NotifyStatusChange(ctx context.Context, order models.Order, statusID int) (bool, error) {
	text, ok := constants.StatusCustomerMessages[statusID]
	if !ok {
		log.Printf("NotifyStatusChange: для статуса %d нет текста, заказ #%d", statusID, order.ID)
		return false, nil
	}
	if err := d.NotifyCustomer(ctx, order, text); err != nil {
		return false, err
	}
	return true, nil
}

// SendTo отправляет произвольное сообщение одному чату.
func (d *Dispatcher) SendTo(chatID int64, text, parseMode string) error {
	return d.messenger.SendMessage(chatID, text, parseMode)
}

// SendDocument отправляет файл одному чату.
func (d *Dispatcher) SendDocument(chatID int64, fileName string, data []byte, caption string) error {
	return d.messenger.SendDocument(chatID, fileName, data, caption)
}
