package telegram

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/trainflow/strategy-engine/internal/config"
	"github.com/trainflow/strategy-engine/internal/logger"
	"github.com/trainflow/strategy-engine/internal/toast"
)

// Notifier mirrors strategy notification events to a Telegram chat. When
// disabled or misconfigured it degrades to a no-op.
type Notifier struct {
	bot     *tgbotapi.BotAPI
	chatID  int64
	enabled bool
	logger  *logger.Logger
}

func NewNotifier(cfg *config.Config, log *logger.Logger) *Notifier {
	if !cfg.Telegram.Enabled {
		return &Notifier{enabled: false, logger: log}
	}

	bot, err := tgbotapi.NewBotAPI(cfg.Telegram.BotToken)
	if err != nil {
		log.Error("failed to create telegram bot", "error", err)
		return &Notifier{enabled: false, logger: log}
	}

	log.Info("telegram bot connected", "username", bot.Self.UserName)

	return &Notifier{
		bot:     bot,
		chatID:  cfg.Telegram.ChatID,
		enabled: true,
		logger:  log,
	}
}

var levelEmoji = map[toast.Level]string{
	toast.LevelSuccess: "✅",
	toast.LevelError:   "❌",
	toast.LevelWarning: "⚠️",
	toast.LevelInfo:    "ℹ️",
}

// NotifyEvent forwards one extracted notification.
func (n *Notifier) NotifyEvent(ev toast.Notification) {
	emoji, ok := levelEmoji[ev.Level]
	if !ok {
		emoji = "ℹ️"
	}
	n.send(fmt.Sprintf("%s *%s*\n%s", emoji, ev.Title, ev.Message))
}

// NotifyStatus sends a plain service status line.
func (n *Notifier) NotifyStatus(message string) {
	n.send(message)
}

func (n *Notifier) send(text string) {
	if !n.enabled {
		return
	}

	msg := tgbotapi.NewMessage(n.chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown

	if _, err := n.bot.Send(msg); err != nil {
		n.logger.Error("send telegram message", "error", err)
	}
}
