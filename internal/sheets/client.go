// Package sheets reads grant metadata from the Google Sheets v4 REST API.
package sheets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/gitcoinco/grant-claims/internal/apperr"
)

const defaultBaseURL = "https://sheets.googleapis.com"

var tracer = otel.Tracer("github.com/gitcoinco/grant-claims/internal/sheets")

// RetryPolicy bounds how often a 503 from the API is retried. Delays grow
// exponentially from InitialDelay: 1s, 2s, 4s... with the defaults.
type RetryPolicy struct {
	MaxAttempts  int
	InitialDelay time.Duration
	Multiplier   float64
}

// DefaultRetryPolicy is three attempts with 1s then 2s between them.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, InitialDelay: time.Second, Multiplier: 2}
}

func (p RetryPolicy) backOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.InitialDelay
	b.Multiplier = p.Multiplier
	b.RandomizationFactor = 0
	b.MaxInterval = time.Minute
	b.Reset()
	return b
}

type Config struct {
	APIKey  string
	SheetID string
	BaseURL string
	Timeout time.Duration
	Retry   RetryPolicy
}

// Client fetches sheet metadata and value ranges.
type Client struct {
	apiKey     string
	sheetID    string
	baseURL    string
	httpClient *http.Client
	retry      RetryPolicy
	onRetry    func(err error, delay time.Duration)
}

func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	retry := cfg.Retry
	if retry.MaxAttempts <= 0 {
		retry = DefaultRetryPolicy()
	}
	return &Client{
		apiKey:     strings.TrimSpace(cfg.APIKey),
		sheetID:    strings.TrimSpace(cfg.SheetID),
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		retry:      retry,
		onRetry: func(err error, delay time.Duration) {
			log.Printf("sheets: upstream unavailable, retrying in %s: %v", delay, err)
		},
	}
}

// statusError is a non-2xx answer from the API.
type statusError struct {
	status  int
	message string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("sheets: status %d: %s", e.status, e.message)
}

type spreadsheetMeta struct {
	Sheets []struct {
		Properties struct {
			Title string `json:"title"`
		} `json:"properties"`
	} `json:"sheets"`
}

type valueRange struct {
	Values [][]string `json:"values"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) checkCredentials() error {
	if c.apiKey == "" {
		return apperr.New(apperr.CodeConfig, "API key is not set")
	}
	if c.sheetID == "" {
		return apperr.New(apperr.CodeConfig, "Sheet ID is not set")
	}
	return nil
}

// FirstSheetTitle resolves the display name of the spreadsheet's first tab.
func (c *Client) FirstSheetTitle(ctx context.Context) (string, error) {
	if err := c.checkCredentials(); err != nil {
		return "", err
	}
	endpoint := fmt.Sprintf("%s/v4/spreadsheets/%s?fields=sheets.properties", c.baseURL, url.PathEscape(c.sheetID))

	var meta spreadsheetMeta
	if err := c.getJSON(ctx, "sheets.metadata", endpoint, "Failed to fetch sheet names", &meta); err != nil {
		return "", err
	}
	if len(meta.Sheets) == 0 || strings.TrimSpace(meta.Sheets[0].Properties.Title) == "" {
		return "", apperr.New(apperr.CodeConfig, "Sheet title is not set")
	}
	return meta.Sheets[0].Properties.Title, nil
}

// Values returns every populated row of the named sheet.
func (c *Client) Values(ctx context.Context, title string) ([][]string, error) {
	if err := c.checkCredentials(); err != nil {
		return nil, err
	}
	endpoint := fmt.Sprintf("%s/v4/spreadsheets/%s/values/%s", c.baseURL, url.PathEscape(c.sheetID), url.PathEscape(title))

	var vr valueRange
	if err := c.getJSON(ctx, "sheets.values", endpoint, "Failed to fetch sheet values", &vr); err != nil {
		return nil, err
	}
	return vr.Values, nil
}

// FetchFirstSheet looks up the first sheet's title, then reads its values.
func (c *Client) FetchFirstSheet(ctx context.Context) ([][]string, error) {
	title, err := c.FirstSheetTitle(ctx)
	if err != nil {
		return nil, err
	}
	return c.Values(ctx, title)
}

func (c *Client) getJSON(ctx context.Context, spanName, endpoint, fallbackMsg string, out any) error {
	ctx, span := tracer.Start(ctx, spanName)
	defer span.End()

	attempts := 0
	op := func() (struct{}, error) {
		attempts++
		err := c.getOnce(ctx, endpoint, out)
		if err == nil {
			return struct{}{}, nil
		}
		var se *statusError
		if errors.As(err, &se) && se.status == http.StatusServiceUnavailable {
			return struct{}{}, err
		}
		return struct{}{}, backoff.Permanent(err)
	}

	_, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(c.retry.backOff()),
		backoff.WithMaxTries(uint(c.retry.MaxAttempts)),
		backoff.WithNotify(c.onRetry),
	)
	span.SetAttributes(attribute.Int("sheets.attempts", attempts))
	if err == nil {
		return nil
	}

	err = classify(err, fallbackMsg)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

func classify(err error, fallbackMsg string) error {
	var se *statusError
	if errors.As(err, &se) {
		msg := se.message
		if msg == "" {
			msg = fallbackMsg
		}
		if se.status == http.StatusServiceUnavailable {
			return &apperr.Error{Code: apperr.CodeUnavailable, Status: http.StatusServiceUnavailable, Message: msg, Cause: err}
		}
		return &apperr.Error{Code: apperr.CodeUpstream, Status: se.status, Message: msg, Cause: err}
	}
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return err
	}
	return apperr.Wrap(apperr.CodeUnavailable, fallbackMsg, err)
}

func (c *Client) getOnce(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("sheets: build request: %w", err)
	}
	req.Header.Set("X-goog-api-key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sheets: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var body apiError
		_ = json.NewDecoder(resp.Body).Decode(&body)
		return &statusError{status: resp.StatusCode, message: body.Error.Message}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperr.WithStatus(apperr.CodeUpstream, http.StatusInternalServerError, "malformed response from spreadsheet API")
	}
	return nil
}
