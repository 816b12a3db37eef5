package telegram_api

import (
	"fmt"
	"net/http"
	"time"

	tgbotapi "github.com/OvyFlash/telegram-bot-api"
	log "github.com/sirupsen/logrus"
)

// BotClient - обертка над Telegram Bot API.
// Каждый вызов API ограничен таймаутом HTTP-клиента, повторов нет.
type BotClient struct {
	api   *tgbotapi.BotAPI
	Debug bool
}

// NewBotClient авторизует бота. timeout ограничивает каждый запрос к Bot API.
func NewBotClient(token string, debug bool, timeout time.Duration) (*BotClient, error) {
	if token == "" {
		return nil, fmt.Errorf("токен Telegram API не предоставлен")
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	api, err := tgbotapi.NewBotAPIWithClient(token, tgbotapi.APIEndpoint, &http.Client{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("ошибка инициализации Telegram Bot API: %w", err)
	}
	api.Debug = debug

	log.Printf("Авторизован как аккаунт %s", api.Self.UserName)
	return &BotClient{api: api, Debug: debug}, nil
}

// Username возвращает имя бота, полученное при авторизации.
func (bc *BotClient) Username() string {
	if bc == nil || bc.api == nil {
		return ""
	}
	return bc.api.Self.UserName
}

// StartPolling отключает вебхук и возвращает канал обновлений long polling.
func (bc *BotClient) StartPolling(timeoutSeconds int) (tgbotapi.UpdatesChannel, error) {
	if bc == nil || bc.api == nil {
		return nil, fmt.Errorf("BotClient или его API не инициализирован")
	}

	_, err := bc.api.Request(tgbotapi.DeleteWebhookConfig{DropPendingUpdates: false})
	if err != nil {
		log.Printf("Предупреждение или ошибка при отключении вебхука: %v. Это может быть нормально, если вебхук не был установлен.", err)
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = timeoutSeconds
	return bc.api.GetUpdatesChan(u), nil
}

// StopPolling останавливает получение обновлений.
func (bc *BotClient) StopPolling() {
	if bc != nil && bc.api != nil {
		bc.api.StopReceivingUpdates()
	}
}

// Send отправляет сообщение через BotClient.
func (bc *BotClient) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if bc == nil || bc.api == nil {
		return tgbotapi.Message{}, fmt.Errorf("BotClient или его API не инициализирован")
	}
	if bc.Debug {
		switch msg := c.(type) {
		case tgbotapi.MessageConfig:
			log.Debugf("Отправка сообщения: Text='%.50s...'", msg.Text)
		case tgbotapi.DocumentConfig:
			log.Debugf("Отправка документа: Caption='%.50s...'", msg.Caption)
		default:
			log.Debugf("Отправка/запрос типа %T", c)
		}
	}
	return bc.api.Send(c)
}

// Ping проверяет токен вызовом getMe.
func (bc *BotClient) Ping() (string, error) {
	if bc == nil || bc.api == nil {
		return "", fmt.Errorf("BotClient или его API не инициализирован")
	}
	me, err := bc.api.GetMe()
	if err != nil {
		return "", fmt.Errorf("getMe: %w", err)
	}
	return me.UserName, nil
}
