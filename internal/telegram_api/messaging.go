package telegram_api

import (
	"fmt"

	tgbotapi "github.com/OvyFlash/telegram-bot-api"
	log "github.com/sirupsen/logrus"
)

// SendMessage отправляет текст в чат. parseMode - "", tgbotapi.ModeHTML и т.п.
func (bc *BotClient) SendMessage(chatID int64, text, parseMode string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = parseMode
	if _, err := bc.Send(msg); err != nil {
		log.WithFields(log.Fields{"chat_id": chatID}).Printf("SendMessage: ошибка отправки: %v", err)
		return fmt.Errorf("отправка сообщения в чат %d: %w", chatID, err)
	}
	return nil
}

// SendDocument отправляет файл из памяти.
func (bc *BotClient) SendDocument(chatID int64, fileName string, data []byte, caption string) error {
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: fileName, Bytes: data})
	doc.Caption = caption
	if _, err := bc.Send(doc); err != nil {
		log.WithFields(log.Fields{"chat_id": chatID, "file": fileName}).Printf("SendDocument: ошибка отправки: %v", err)
		return fmt.Errorf("отправка файла %s в чат %d: %w", fileName, chatID, err)
	}
	return nil
}

// SendWebAppButton отправляет сообщение с кнопкой, открывающей Mini App.
func (bc *BotClient) SendWebAppButton(chatID int64, text, buttonText, webAppURL string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonWebApp(buttonText, tgbotapi.WebAppInfo{URL: webAppURL}),
		),
	)
	if _, err := bc.Send(msg); err != nil {
		return fmt.Errorf("отправка кнопки магазина в чат %d: %w", chatID, err)
	}
	return nil
}
