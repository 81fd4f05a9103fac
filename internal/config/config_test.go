package config

import (
	"os"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Default()
	if cfg.Whitelabel != "OPTIMISM" {
		t.Fatalf("expected whitelabel=OPTIMISM by default, got %q", cfg.Whitelabel)
	}
	if cfg.Sheets.Retry.MaxAttempts != 3 {
		t.Fatalf("expected 3 retry attempts by default, got %d", cfg.Sheets.Retry.MaxAttempts)
	}
	if cfg.Sheets.Retry.InitialDelay != time.Second {
		t.Fatalf("expected 1s initial retry delay, got %v", cfg.Sheets.Retry.InitialDelay)
	}
	if cfg.Sheets.Retry.Multiplier != 2 {
		t.Fatalf("expected retry multiplier 2, got %f", cfg.Sheets.Retry.Multiplier)
	}
	if cfg.Sheets.BaseURL == "" || cfg.KYC.BaseURL == "" {
		t.Fatal("expected upstream base URLs by default")
	}
	if cfg.Session.TTL <= 0 {
		t.Fatal("expected positive session ttl by default")
	}
	if cfg.API.Addr != ":8080" {
		t.Fatalf("expected api addr :8080, got %q", cfg.API.Addr)
	}
}

func TestLoadFromYAML(t *testing.T) {
	yaml := `
whitelabel: ZK_SYNC
wallet_connect_project_id: wc-123
api:
  addr: ":9090"
sheets:
  sheet_id: sheet-abc
  retry:
    max_attempts: 5
    initial_delay: 250ms
    multiplier: 3
kyc:
  api_keys: "ZK_SYNC:key-1,BASE:key-2"
storage:
  endpoint: storage.internal
  port: 9000
  bucket_name: images
session:
  ttl: 2h
`
	f, err := os.CreateTemp("", "config-*.yaml")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(f.Name())
	if _, err := f.Write([]byte(yaml)); err != nil {
		t.Fatal(err)
	}
	f.Close()

	cfg, err := LoadFile(f.Name())
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Whitelabel != "ZK_SYNC" {
		t.Fatalf("expected whitelabel ZK_SYNC, got %q", cfg.Whitelabel)
	}
	if cfg.WalletConnectProjectID != "wc-123" {
		t.Fatalf("expected project id wc-123, got %q", cfg.WalletConnectProjectID)
	}
	if cfg.API.Addr != ":9090" {
		t.Fatalf("expected addr :9090, got %q", cfg.API.Addr)
	}
	if cfg.Sheets.SheetID != "sheet-abc" {
		t.Fatalf("expected sheet id sheet-abc, got %q", cfg.Sheets.SheetID)
	}
	if cfg.Sheets.Retry.MaxAttempts != 5 {
		t.Fatalf("expected 5 attempts, got %d", cfg.Sheets.Retry.MaxAttempts)
	}
	if cfg.Sheets.Retry.InitialDelay != 250*time.Millisecond {
		t.Fatalf("expected 250ms delay, got %v", cfg.Sheets.Retry.InitialDelay)
	}
	if cfg.Sheets.Retry.Multiplier != 3 {
		t.Fatalf("expected multiplier 3, got %f", cfg.Sheets.Retry.Multiplier)
	}
	if cfg.KYC.APIKeys != "ZK_SYNC:key-1,BASE:key-2" {
		t.Fatalf("unexpected kyc api keys %q", cfg.KYC.APIKeys)
	}
	if cfg.Storage.Port != 9000 || cfg.Storage.BucketName != "images" {
		t.Fatalf("unexpected storage config %+v", cfg.Storage)
	}
	if cfg.Session.TTL != 2*time.Hour {
		t.Fatalf("expected session ttl 2h, got %v", cfg.Session.TTL)
	}
	// untouched sections keep their defaults
	if cfg.Sheets.BaseURL != "https://sheets.googleapis.com" {
		t.Fatalf("expected default sheets base url, got %q", cfg.Sheets.BaseURL)
	}
}

func TestLoadFileInvalidPath(t *testing.T) {
	_, err := LoadFile("/nonexistent/path/config.yaml")
	if err == nil {
		t.Fatal("expected error for invalid path")
	}
}

func TestLoadFileInvalidYAML(t *testing.T) {
	f, err := os.CreateTemp("", "bad-config-*.yaml")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(f.Name())
	if _, err := f.Write([]byte("{{invalid yaml")); err != nil {
		t.Fatal(err)
	}
	f.Close()

	_, err = LoadFile(f.Name())
	if err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}

func TestApplyEnvAllVars(t *testing.T) {
	t.Setenv("WHITELABEL_ENV", "SUNNY")
	t.Setenv("WALLET_CONNECT_PROJECT_ID", "wc-env")
	t.Setenv("GOOGLE_SHEETS_API_KEY", "sheets-key")
	t.Setenv("GOOGLE_SHEETS_ID", "sheet-env")
	t.Setenv("SYNAPS_API_KEY_PER_WHITELABEL", "SUNNY:kyc-key")
	t.Setenv("S3_STORAGE_ENDPOINT", "s3.example.org")
	t.Setenv("S3_STORAGE_PORT", "9443")
	t.Setenv("S3_STORAGE_BUCKET_NAME", "grants")
	t.Setenv("RAILWAY_ENVIRONMENT_NAME", "staging")
	t.Setenv("CLAIM_SESSION_TTL", "30m")
	t.Setenv("GOOGLE_SHEETS_RETRY_ATTEMPTS", "4")

	cfg := Default()
	if err := cfg.ApplyEnv(); err != nil {
		t.Fatalf("ApplyEnv: %v", err)
	}

	if cfg.Whitelabel != "SUNNY" {
		t.Fatalf("expected whitelabel SUNNY, got %q", cfg.Whitelabel)
	}
	if cfg.WalletConnectProjectID != "wc-env" {
		t.Fatalf("expected project id wc-env, got %q", cfg.WalletConnectProjectID)
	}
	if cfg.Sheets.APIKey != "sheets-key" || cfg.Sheets.SheetID != "sheet-env" {
		t.Fatalf("unexpected sheets config %+v", cfg.Sheets)
	}
	if cfg.KYC.APIKeys != "SUNNY:kyc-key" {
		t.Fatalf("unexpected kyc keys %q", cfg.KYC.APIKeys)
	}
	if cfg.Storage.Endpoint != "s3.example.org" || cfg.Storage.Port != 9443 || cfg.Storage.BucketName != "grants" {
		t.Fatalf("unexpected storage config %+v", cfg.Storage)
	}
	if cfg.Environment != "staging" {
		t.Fatalf("expected environment staging, got %q", cfg.Environment)
	}
	if cfg.Session.TTL != 30*time.Minute {
		t.Fatalf("expected session ttl 30m, got %v", cfg.Session.TTL)
	}
	if cfg.Sheets.Retry.MaxAttempts != 4 {
		t.Fatalf("expected 4 retry attempts, got %d", cfg.Sheets.Retry.MaxAttempts)
	}
}

func TestApplyEnvKeepsUnsetValues(t *testing.T) {
	cfg := Default()
	cfg.Sheets.SheetID = "from-file"
	if err := cfg.ApplyEnv(); err != nil {
		t.Fatalf("ApplyEnv: %v", err)
	}
	if os.Getenv("GOOGLE_SHEETS_ID") == "" && cfg.Sheets.SheetID != "from-file" {
		t.Fatalf("expected file value to survive, got %q", cfg.Sheets.SheetID)
	}
}

func TestApplyEnvInvalidDuration(t *testing.T) {
	t.Setenv("CLAIM_SESSION_TTL", "not-a-duration")
	cfg := Default()
	if err := cfg.ApplyEnv(); err == nil {
		t.Fatal("expected error for malformed duration")
	}
}

func TestStoragePublicBaseURL(t *testing.T) {
	cases := []struct {
		in   StorageConfig
		want string
	}{
		{StorageConfig{}, ""},
		{StorageConfig{Endpoint: "bucket.example.org"}, ""},
		{StorageConfig{Endpoint: "bucket.example.org", BucketName: "images"}, "https://bucket.example.org/images"},
		{StorageConfig{Endpoint: "http://minio.local/", Port: 9000, BucketName: "grant images"}, "http://minio.local:9000/grant%20images"},
		{StorageConfig{Endpoint: "s3.example.org", Port: 443, BucketName: "b", AccessKey: "ak", SecretKey: "sk"}, "https://s3.example.org/b"},
	}
	for _, tc := range cases {
		if got := tc.in.PublicBaseURL(); got != tc.want {
			t.Errorf("PublicBaseURL(%+v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
