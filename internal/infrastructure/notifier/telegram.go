package notifier

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// TelegramNotifier posts operational notifications to a chat. Failures
// are logged and never block the caller.
type TelegramNotifier struct {
	client   *http.Client
	botToken string
	chatID   string
}

func NewTelegramNotifier(botToken, chatID string) *TelegramNotifier {
	return &TelegramNotifier{
		client:   &http.Client{Timeout: 5 * time.Second},
		botToken: botToken,
		chatID:   chatID,
	}
}

func (n *TelegramNotifier) Notify(text string) {
	if n.botToken == "" || n.chatID == "" {
		return
	}

	go func() {
		endpoint := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", n.botToken)
		resp, err := n.client.PostForm(endpoint, url.Values{
			"chat_id": {n.chatID},
			"text":    {text},
		})
		if err != nil {
			slog.Warn("telegram notification failed", "error", err.Error())
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			slog.Warn("telegram returned non-2xx", "status", resp.StatusCode)
		}
	}()
}
