package handlers

import (
	"artflora/internal/config"
)

// BotSender - исходящие вызовы Bot API, нужные обработчику команд.
type BotSender interface {
	SendMessage(chatID int64, text, parseMode string) error
	SendWebAppButton(chatID int64, text, buttonText, webAppURL string) error
}

// HandlerDependencies содержит зависимости обработчиков бота.
type HandlerDependencies struct {
	Config *config.Config
	Bot    BotSender
}

// BotHandler обрабатывает входящие обновления бота.
// Бот только открывает Mini App, заказы оформляются через HTTP API.
type BotHandler struct {
	Deps HandlerDependencies
}

// NewBotHandler создает новый экземпляр BotHandler.
func NewBotHandler(deps HandlerDependencies) *BotHandler {
	if deps.Config == nil || deps.Bot == nil {
		panic("Не все зависимости для BotHandler были предоставлены.")
	}
	return &BotHandler{Deps: deps}
}
