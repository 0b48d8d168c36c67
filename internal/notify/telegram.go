// Package notify delivers due-review reminders to students over Telegram.
package notify

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramNotifier sends reminder messages through the Telegram Bot API
type TelegramNotifier struct {
	api *tgbotapi.BotAPI
}

// NewTelegramNotifier creates a notifier from a bot token
func NewTelegramNotifier(token string) (*TelegramNotifier, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot API: %w", err)
	}
	return &TelegramNotifier{api: api}, nil
}

// SendReminders tells a student how many items are waiting for review
func (n *TelegramNotifier) SendReminders(chatID int64, count int) error {
	wordForm := "items are"
	if count == 1 {
		wordForm = "item is"
	}
	msg := tgbotapi.NewMessage(chatID,
		fmt.Sprintf("%d review %s due. Open the app to keep your streak going!", count, wordForm))
	if _, err := n.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send reminder to chat %d: %w", chatID, err)
	}
	return nil
}
