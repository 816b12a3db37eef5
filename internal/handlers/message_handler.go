package handlers

import (
	"context"
	"strings"

	tgbotapi "github.com/OvyFlash/telegram-bot-api"
	log "github.com/sirupsen/logrus"

	"artflora/internal/constants"
)

// HandleUpdate обрабатывает одно обновление. Ошибки только логируются:
// вебхук всегда отвечает Telegram 200.
func (bh *BotHandler) HandleUpdate(update tgbotapi.Update) {
	if update.Message == nil {
		return
	}
	bh.HandleMessage(update.Message)
}

// HandleMessage отвечает на /start кнопкой открытия магазина. Остальные сообщения игнорируются.
func (bh *BotHandler) HandleMessage(message *tgbotapi.Message) {
	if message.Chat.ID == 0 {
		return
	}
	chatID := message.Chat.ID
	text := strings.TrimSpace(message.Text)

	if !strings.HasPrefix(text, "/start") {
		log.Debugf("HandleMessage: сообщение от chatID %d проигнорировано", chatID)
		return
	}

	log.Printf("HandleMessage: Обработка команды /start для chatID %d", chatID)

	webAppURL := bh.Deps.Config.WebAppURL
	var err error
	if webAppURL == "" {
		err = bh.Deps.Bot.SendMessage(chatID, constants.BOT_WELCOME_TEXT, "")
	} else {
		err = bh.Deps.Bot.SendWebAppButton(chatID, constants.BOT_WELCOME_TEXT, constants.BOT_OPEN_SHOP_BUTTON, webAppURL)
	}
	if err != nil {
		log.Printf("HandleMessage: /start: ошибка отправки приветствия chatID %d: %v", chatID, err)
	}
}

// RunPolling обрабатывает обновления из long polling до закрытия канала или отмены ctx.
func (bh *BotHandler) RunPolling(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	log.Println("Бот запущен в режиме long polling")
	for {
		select {
		case <-ctx.Done():
			log.Println("Long polling остановлен")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			bh.HandleUpdate(update)
		}
	}
}
