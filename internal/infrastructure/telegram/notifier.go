package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-resty/resty/v2"

	"github.com/mfluker/aod-dashboard/internal/config"
	"github.com/mfluker/aod-dashboard/internal/ports"
)

// maxMessageLen is the Bot API limit for one sendMessage text.
const maxMessageLen = 4096

// Notifier sends run digests to a Telegram chat via bot API.
type Notifier struct {
	botToken string
	chatID   string
	client   *resty.Client
}

var _ ports.Notifier = (*Notifier)(nil)

type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// NewNotifier registers bot token and chat identifier.
func NewNotifier(cfg config.TelegramConfig) *Notifier {
	base := cfg.APIBaseURL
	if base == "" {
		base = "https://api.telegram.org"
	}
	return &Notifier{
		botToken: cfg.BotToken,
		chatID:   cfg.ChatID,
		client: resty.New().
			SetBaseURL(strings.TrimRight(base, "/")).
			SetTimeout(5 * time.Second),
	}
}

// PublishDigest posts a plain-text message to Telegram.
func (n *Notifier) PublishDigest(ctx context.Context, digest string) error {
	if n.botToken == "" || n.chatID == "" {
		return fmt.Errorf("telegram notifier misconfigured")
	}
	if len(digest) > maxMessageLen {
		cut := maxMessageLen - 3
		for cut > 0 && !utf8.RuneStart(digest[cut]) {
			cut--
		}
		digest = digest[:cut] + "..."
	}

	var result apiResponse
	resp, err := n.client.R().
		SetContext(ctx).
		SetPathParam("token", n.botToken).
		SetFormData(map[string]string{
			"chat_id": n.chatID,
			"text":    digest,
		}).
		SetResult(&result).
		SetError(&result).
		Post("/bot{token}/sendMessage")
	if err != nil {
		return fmt.Errorf("do request: %w", n.transportError(err))
	}
	if resp.IsError() || !result.OK {
		if result.Description != "" {
			return fmt.Errorf("telegram error: %s: %s", resp.Status(), result.Description)
		}
		return fmt.Errorf("telegram error: %s", resp.Status())
	}
	return nil
}

// transportError drops the request URL from err, since it carries the bot token.
func (n *Notifier) transportError(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		err = fmt.Errorf("%s sendMessage: %w", uerr.Op, uerr.Err)
	}
	if n.botToken != "" && strings.Contains(err.Error(), n.botToken) {
		return errors.New(strings.ReplaceAll(err.Error(), n.botToken, "<redacted>"))
	}
	return err
}
