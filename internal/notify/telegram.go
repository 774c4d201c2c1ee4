// Package notify sends operator notifications through the Telegram bot
// API. Each application ID maps to its own bot token and channel, supplied
// by configuration; adding an application never requires a code change.
package notify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	json "github.com/goccy/go-json"

	"github.com/vendhub/vendhub-core/internal/infrastructure/config"
	"github.com/vendhub/vendhub-core/internal/infrastructure/logging"
)

const defaultBaseURL = "https://api.telegram.org"

// Channel IDs are configured without the supergroup marker; Telegram's API
// wants it prepended.
const channelIDPrefix = "-100"

var (
	// ErrUnknownApplication is returned when no Telegram credentials are
	// configured for the given application ID.
	ErrUnknownApplication = errors.New("notify: no telegram channel for application")

	// ErrSendFailed is returned when the Telegram API rejects the message
	// or cannot be reached.
	ErrSendFailed = errors.New("notify: telegram send failed")
)

// Telegram sends messages to per-application Telegram channels.
type Telegram struct {
	apps       map[string]config.TelegramApp
	baseURL    string
	httpClient *http.Client
	logger     *logging.Logger
}

func NewTelegram(cfg config.TelegramConfig, logger *logging.Logger) *Telegram {
	if logger == nil {
		logger = logging.Default()
	}
	return &Telegram{
		apps:       cfg.Applications,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger.With("component", "notify"),
	}
}

// SendText posts an HTML-formatted text message to the application's
// channel.
func (t *Telegram) SendText(ctx context.Context, applicationID, text string) error {
	app, ok := t.apps[applicationID]
	if !ok || app.BotToken == "" || app.ChannelID == "" {
		return fmt.Errorf("%w: %s", ErrUnknownApplication, applicationID)
	}

	body, err := json.Marshal(map[string]any{
		"chat_id":    channelIDPrefix + app.ChannelID,
		"text":       text,
		"parse_mode": "html",
	})
	if err != nil {
		return fmt.Errorf("%w: encode message: %v", ErrSendFailed, err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", t.baseURL, app.BotToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSendFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSendFailed, err)
	}
	defer resp.Body.Close()

	var result struct {
		OK          bool   `json:"ok"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrSendFailed, err)
	}
	if !result.OK {
		return fmt.Errorf("%w: %s", ErrSendFailed, result.Description)
	}

	t.logger.Debug("telegram message sent", "application_id", applicationID)
	return nil
}
