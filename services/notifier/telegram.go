package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"rdelorme/pricewatcher/pkg/errors"
)

const telegramAPIBase = "https://api.telegram.org"

// TelegramNotifier sends alerts through the Telegram bot sendMessage
// endpoint, one chat per notifier.
type TelegramNotifier struct {
	apiBase string
	token   string
	chatID  string
	client  *http.Client
}

// NewTelegramNotifier creates a Telegram notifier for the given bot token
// and destination chat.
func NewTelegramNotifier(token, chatID string) *TelegramNotifier {
	return &TelegramNotifier{
		apiBase: telegramAPIBase,
		token:   token,
		chatID:  chatID,
		client: &http.Client{
			Timeout: 20 * time.Second,
		},
	}
}

type sendMessagePayload struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

// Notify posts the message to the chat in Markdown
func (t *TelegramNotifier) Notify(ctx context.Context, text string) error {
	payload, err := json.Marshal(sendMessagePayload{
		ChatID:    t.chatID,
		Text:      text,
		ParseMode: "Markdown",
	})
	if err != nil {
		return errors.NewNotification("failed to encode telegram payload", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", t.apiBase, t.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return errors.NewNotification("failed to create telegram request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return errors.NewNotification("failed to send telegram message", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.NewNotification(fmt.Sprintf("telegram returned status %d", resp.StatusCode), nil)
	}
	return nil
}

// Close closes the notifier
func (t *TelegramNotifier) Close() error {
	t.client.CloseIdleConnections()
	return nil
}
