package config

import (
	"fmt"
	"strings"

	"github.com/gitcoinco/grant-claims/internal/features"
)

const minSessionSecretLen = 32

// Validate checks the settings the service cannot start without.
func (c Config) Validate() error {
	if _, err := features.ParseVariant(c.Whitelabel); err != nil {
		return fmt.Errorf("whitelabel: %w", err)
	}
	if strings.TrimSpace(c.WalletConnectProjectID) == "" {
		return fmt.Errorf("wallet_connect_project_id is required (WALLET_CONNECT_PROJECT_ID)")
	}
	if strings.TrimSpace(c.API.Addr) == "" {
		return fmt.Errorf("api.addr is required")
	}
	if c.API.RequestTimeout < 0 {
		return fmt.Errorf("api.request_timeout must be >= 0, got %v", c.API.RequestTimeout)
	}

	if c.Sheets.Retry.MaxAttempts <= 0 {
		return fmt.Errorf("sheets.retry.max_attempts must be > 0, got %d", c.Sheets.Retry.MaxAttempts)
	}
	if c.Sheets.Retry.InitialDelay < 0 {
		return fmt.Errorf("sheets.retry.initial_delay must be >= 0, got %v", c.Sheets.Retry.InitialDelay)
	}
	if c.Sheets.Retry.Multiplier < 1 {
		return fmt.Errorf("sheets.retry.multiplier must be >= 1, got %f", c.Sheets.Retry.Multiplier)
	}

	if c.Session.Secret != "" && len(c.Session.Secret) < minSessionSecretLen {
		return fmt.Errorf("session.secret must be at least %d bytes", minSessionSecretLen)
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("session.ttl must be > 0, got %v", c.Session.TTL)
	}

	if c.Telegram.Enabled && (c.Telegram.BotToken == "" || c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.enabled requires bot_token and chat_id")
	}

	if c.Storage.Port < 0 || c.Storage.Port > 65535 {
		return fmt.Errorf("storage.port must be within [0,65535], got %d", c.Storage.Port)
	}

	return nil
}
