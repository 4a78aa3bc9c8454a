package reporter

import (
	"fmt"

	"go-jobmatcher/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramReporter pushes a short summary to a chat when a scraping session
// reaches a terminal state.
type TelegramReporter struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

func NewTelegramReporter(token string, chatID int64) (*TelegramReporter, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram bot: %w", err)
	}
	return &TelegramReporter{bot: bot, chatID: chatID}, nil
}

func (t *TelegramReporter) RunFinished(status models.SessionStatus, searchQuery string, jobsFound, jobsAdded int, errMsg string) error {
	var text string
	switch status {
	case models.StatusCompleted:
		text = fmt.Sprintf("✅ Scraping %q finished: %d offers matched, %d new offers saved.", searchQuery, jobsFound, jobsAdded)
	case models.StatusFailed:
		text = fmt.Sprintf("❌ Scraping %q failed: %s", searchQuery, errMsg)
	default:
		text = fmt.Sprintf("ℹ️ Scraping %q ended in state %s.", searchQuery, status)
	}

	msg := tgbotapi.NewMessage(t.chatID, text)
	_, err := t.bot.Send(msg)
	return err
}
