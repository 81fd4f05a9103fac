// Package kyc starts identity verification sessions with Synaps.
package kyc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/gitcoinco/grant-claims/internal/apperr"
)

const defaultBaseURL = "https://api.synaps.io"

var tracer = otel.Tracer("github.com/gitcoinco/grant-claims/internal/kyc")

// Keys maps a whitelabel alias to its Synaps API key.
type Keys map[string]string

// ParseKeys reads the "ALIAS:key,ALIAS:key" list. Malformed entries are
// skipped.
func ParseKeys(raw string) Keys {
	keys := Keys{}
	for _, entry := range strings.Split(raw, ",") {
		alias, key, ok := strings.Cut(strings.TrimSpace(entry), ":")
		alias = strings.ToUpper(strings.TrimSpace(alias))
		key = strings.TrimSpace(key)
		if !ok || alias == "" || key == "" {
			continue
		}
		keys[alias] = key
	}
	return keys
}

// Lookup returns the key configured for alias.
func (k Keys) Lookup(alias string) (string, bool) {
	key, ok := k[strings.ToUpper(strings.TrimSpace(alias))]
	return key, ok
}

// Aliases lists the aliases that have a key, for startup logging.
func (k Keys) Aliases() []string {
	out := make([]string, 0, len(k))
	for alias := range k {
		out = append(out, alias)
	}
	return out
}

// Alerter is told when the verification provider rejects a session request.
type Alerter interface {
	NotifyKYCFailure(ctx context.Context, alias, reason string) error
}

type Config struct {
	Keys    Keys
	BaseURL string
	Timeout time.Duration
}

type Client struct {
	keys       Keys
	baseURL    string
	httpClient *http.Client
	alerter    Alerter
}

func New(cfg Config, alerter Alerter) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	keys := cfg.Keys
	if keys == nil {
		keys = Keys{}
	}
	return &Client{
		keys:       keys,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		alerter:    alerter,
	}
}

type initRequest struct {
	Alias string `json:"alias"`
}

type initResponse struct {
	SessionID string `json:"session_id"`
}

// InitSession opens a verification session for alias and returns its id.
func (c *Client) InitSession(ctx context.Context, alias string) (string, error) {
	ctx, span := tracer.Start(ctx, "kyc.InitSession")
	defer span.End()
	span.SetAttributes(attribute.String("kyc.alias", alias))

	sessionID, err := c.initSession(ctx, alias)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if c.alerter != nil && apperr.HasCode(err, apperr.CodeUpstream) {
			if aerr := c.alerter.NotifyKYCFailure(ctx, alias, err.Error()); aerr != nil {
				log.Printf("kyc: alert: %v", aerr)
			}
		}
		return "", err
	}
	return sessionID, nil
}

func (c *Client) initSession(ctx context.Context, alias string) (string, error) {
	if strings.TrimSpace(alias) == "" {
		return "", apperr.New(apperr.CodeValidation, "alias is required")
	}
	apiKey, ok := c.keys.Lookup(alias)
	if !ok {
		return "", apperr.New(apperr.CodeNotFound, fmt.Sprintf("no verification key configured for %q", alias))
	}

	body, err := json.Marshal(initRequest{Alias: alias})
	if err != nil {
		return "", fmt.Errorf("kyc: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v4/session/init", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("kyc: build request: %w", err)
	}
	req.Header.Set("Api-Key", apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", apperr.Wrap(apperr.CodeUpstream, "kyc: session init request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", apperr.New(apperr.CodeUpstream, fmt.Sprintf("kyc: session init status %d", resp.StatusCode))
	}
	var out initResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", apperr.Wrap(apperr.CodeUpstream, "kyc: malformed session init response", err)
	}
	if strings.TrimSpace(out.SessionID) == "" {
		return "", apperr.New(apperr.CodeUpstream, "kyc: session init returned no session id")
	}
	return out.SessionID, nil
}
