package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"cryptoSignalBot/internal/ports"
)

const (
	defaultBaseURL = "https://api.telegram.org"
	defaultTimeout = 10 * time.Second
)

// Config holds configuration for the Telegram notifier.
type Config struct {
	BotToken string
	ChatID   string
	BaseURL  string        // Optional override; used by tests
	Timeout  time.Duration // Per request timeout
	Logger   ports.Logger
}

// Notifier sends messages through the Telegram Bot API sendMessage method.
type Notifier struct {
	client *resty.Client
	token  string
	chatID string
	logger ports.Logger
}

type sendMessageRequest struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	ErrorCode   int    `json:"error_code"`
	Description string `json:"description"`
}

// New creates a Telegram notifier.
func New(cfg Config) (*Notifier, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for Telegram notifier")
	}
	if cfg.BotToken == "" || cfg.ChatID == "" {
		return nil, fmt.Errorf("telegram bot token and chat id are required: %w", ports.ErrConfigurationError)
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")

	return &Notifier{client: client, token: cfg.BotToken, chatID: cfg.ChatID, logger: cfg.Logger}, nil
}

// Send delivers text to the configured chat using HTML parse mode.
func (n *Notifier) Send(ctx context.Context, text string) error {
	var result apiResponse
	resp, err := n.client.R().
		SetContext(ctx).
		SetBody(sendMessageRequest{
			ChatID:                n.chatID,
			Text:                  text,
			ParseMode:             "HTML",
			DisableWebPagePreview: true,
		}).
		SetResult(&result).
		SetError(&result).
		Post("/bot" + n.token + "/sendMessage")
	if err != nil {
		return fmt.Errorf("telegram sendMessage: %w: %w", ports.ErrDispatchFailed, n.redact(err))
	}
	if resp.IsError() || !result.OK {
		return fmt.Errorf("telegram sendMessage: %w: status %d: %s", ports.ErrDispatchFailed, resp.StatusCode(), n.scrub(result.Description))
	}
	n.logger.Debug(ctx, "Telegram message sent", map[string]interface{}{"chatID": n.chatID, "length": len(text)})
	return nil
}

// redact drops the request URL, which embeds the bot token, from transport errors.
func (n *Notifier) redact(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		err = urlErr.Err
	}
	if n.token != "" && strings.Contains(err.Error(), n.token) {
		return redactedError{msg: n.scrub(err.Error()), cause: err}
	}
	return err
}

func (n *Notifier) scrub(s string) string {
	if n.token == "" {
		return s
	}
	return strings.ReplaceAll(s, n.token, "<redacted>")
}

// redactedError keeps the cause reachable for errors.Is while hiding its text.
type redactedError struct {
	msg   string
	cause error
}

func (e redactedError) Error() string { return e.msg }
func (e redactedError) Unwrap() error { return e.cause }

// LogNotifier is used when no Telegram credentials are configured; it only logs messages.
type LogNotifier struct {
	logger ports.Logger
}

// NewLogNotifier creates a log-only notifier.
func NewLogNotifier(logger ports.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Send logs text and always succeeds.
func (n *LogNotifier) Send(ctx context.Context, text string) error {
	n.logger.Info(ctx, "Notification (log only)", map[string]interface{}{"text": text})
	return nil
}
