package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/mgjeanpierre85-cpu/ml-forex/internal/config"
)

// Notifier delivers a formatted message to the configured channel.
// Delivery failure is reported, never raised: ok=false plus a detail string.
type Notifier interface {
	Send(ctx context.Context, text string) (bool, string)
}

type telegramSendMessageRequest struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

type Telegram struct {
	cfg  config.TelegramConfig
	http *http.Client

	// baseURL is overridable in tests; production always talks to the
	// Telegram Bot API.
	baseURL string
}

func NewTelegram(cfg config.TelegramConfig) *Telegram {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Telegram{
		cfg:     cfg,
		http:    &http.Client{Timeout: timeout},
		baseURL: "https://api.telegram.org",
	}
}

func (t *Telegram) Send(ctx context.Context, text string) (bool, string) {
	if t == nil || t.cfg.BotToken == "" || t.cfg.ChatID == "" {
		return false, "missing bot_token/chat_id"
	}
	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", t.baseURL, url.PathEscape(t.cfg.BotToken))
	b, err := json.Marshal(telegramSendMessageRequest{
		ChatID:                t.cfg.ChatID,
		Text:                  text,
		ParseMode:             "HTML",
		DisableWebPagePreview: true,
	})
	if err != nil {
		return false, err.Error()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(b))
	if err != nil {
		return false, err.Error()
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := t.http.Do(req)
	if err != nil {
		return false, err.Error()
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return false, fmt.Sprintf("telegram http %d", resp.StatusCode)
	}
	return true, ""
}
