package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"sync"
	"time"
)

// DefaultCooldown is how long an alert of one kind is suppressed after it
// was sent.
const DefaultCooldown = 5 * time.Minute

// Notifier sends operator alerts to a Telegram chat via the Bot API.
type Notifier struct {
	botToken    string
	chatID      string
	environment string
	httpClient  *http.Client
	enabled     bool
	baseURL     string // overridable for testing; defaults to Telegram API

	cooldown time.Duration
	now      func() time.Time
	mu       sync.Mutex
	lastSent map[string]time.Time
}

// NewNotifier creates a Notifier. Notifications are enabled only when both
// botToken and chatID are non-empty. environment labels every alert.
func NewNotifier(botToken, chatID, environment string) *Notifier {
	return &Notifier{
		botToken:    botToken,
		chatID:      chatID,
		environment: environment,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		enabled:     botToken != "" && chatID != "",
		cooldown:    DefaultCooldown,
		now:         time.Now,
		lastSent:    map[string]time.Time{},
	}
}

// Enabled reports whether the notifier is active.
func (n *Notifier) Enabled() bool { return n.enabled }

// Send posts a message to the configured Telegram chat.
func (n *Notifier) Send(ctx context.Context, msg string) error {
	if !n.enabled {
		return nil
	}

	endpoint := n.baseURL
	if endpoint == "" {
		endpoint = fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", n.botToken)
	}
	vals := url.Values{
		"chat_id":    {n.chatID},
		"text":       {msg},
		"parse_mode": {"HTML"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return fmt.Errorf("notify: build request: %w", err)
	}
	req.URL.RawQuery = vals.Encode()

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("notify: send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var body struct {
			Description string `json:"description"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&body)
		return fmt.Errorf("notify: telegram %d: %s", resp.StatusCode, body.Description)
	}
	return nil
}

// allow reports whether an alert of kind may go out now and records it.
func (n *Notifier) allow(kind string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	now := n.now()
	if last, ok := n.lastSent[kind]; ok && now.Sub(last) < n.cooldown {
		return false
	}
	n.lastSent[kind] = now
	return true
}

func (n *Notifier) sendThrottled(ctx context.Context, kind, msg string) error {
	if !n.enabled || !n.allow(kind) {
		return nil
	}
	if n.environment != "" {
		msg += "\nEnvironment: <code>" + html.EscapeString(n.environment) + "</code>"
	}
	return n.Send(ctx, msg)
}

// NotifyDirectoryUnavailable reports that the grant spreadsheet stayed
// unavailable after all retries.
func (n *Notifier) NotifyDirectoryUnavailable(ctx context.Context, reason string) error {
	msg := fmt.Sprintf("<b>Grant Directory Unavailable</b>\nReason: %s", html.EscapeString(reason))
	return n.sendThrottled(ctx, "directory", msg)
}

// NotifyKYCFailure reports a rejected verification session request.
func (n *Notifier) NotifyKYCFailure(ctx context.Context, alias, reason string) error {
	msg := fmt.Sprintf("<b>KYC Session Failed</b>\nAlias: <code>%s</code>\nReason: %s", html.EscapeString(alias), html.EscapeString(reason))
	return n.sendThrottled(ctx, "kyc:"+alias, msg)
}

// NotifyStartup announces a server start.
func (n *Notifier) NotifyStartup(ctx context.Context, variant, addr string) error {
	msg := fmt.Sprintf("<b>Claim Service Started</b>\nVariant: %s\nListening: <code>%s</code>", html.EscapeString(variant), html.EscapeString(addr))
	return n.sendThrottled(ctx, "startup", msg)
}

// NotifyDailyReport sends a rendered daily report.
func (n *Notifier) NotifyDailyReport(ctx context.Context, report string) error {
	return n.sendThrottled(ctx, "daily", report)
}
