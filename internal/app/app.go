package app

import (
	"context"
	"crypto/rand"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gitcoinco/grant-claims/internal/claims"
	"github.com/gitcoinco/grant-claims/internal/config"
	"github.com/gitcoinco/grant-claims/internal/features"
	"github.com/gitcoinco/grant-claims/internal/grants"
	"github.com/gitcoinco/grant-claims/internal/kyc"
	"github.com/gitcoinco/grant-claims/internal/notify"
	"github.com/gitcoinco/grant-claims/internal/session"
	"github.com/gitcoinco/grant-claims/internal/sheets"
	"github.com/gitcoinco/grant-claims/internal/telegramtmpl"
)

// Directory lists the grant rows.
type Directory interface {
	List(ctx context.Context) ([]grants.Row, error)
}

// SessionInitializer opens identity verification sessions.
type SessionInitializer interface {
	InitSession(ctx context.Context, alias string) (string, error)
}

// Notifier defines the alerts the service raises.
type Notifier interface {
	grants.Alerter
	kyc.Alerter
	NotifyStartup(ctx context.Context, variant, addr string) error
	NotifyDailyReport(ctx context.Context, report string) error
}

type App struct {
	cfg      config.Config
	features features.Features

	directory Directory
	kyc       SessionInitializer
	claims    claims.Provider
	sessions  *session.Manager
	notifier  Notifier
	stats     *statsCollector
	now       func() time.Time

	mu        sync.RWMutex
	running   bool
	startedAt time.Time
}

// New wires the upstream clients for the resolved variant.
func New(cfg config.Config, feats features.Features) (*App, error) {
	var botToken, chatID string
	if cfg.Telegram.Enabled {
		botToken, chatID = cfg.Telegram.BotToken, cfg.Telegram.ChatID
	}
	notifier := notify.NewNotifier(botToken, chatID, cfg.Environment)

	sheetClient := sheets.New(sheets.Config{
		APIKey:  cfg.Sheets.APIKey,
		SheetID: cfg.Sheets.SheetID,
		BaseURL: cfg.Sheets.BaseURL,
		Timeout: cfg.Sheets.Timeout,
		Retry: sheets.RetryPolicy{
			MaxAttempts:  cfg.Sheets.Retry.MaxAttempts,
			InitialDelay: cfg.Sheets.Retry.InitialDelay,
			Multiplier:   cfg.Sheets.Retry.Multiplier,
		},
	})

	keys := kyc.ParseKeys(cfg.KYC.APIKeys)
	if len(keys) == 0 {
		log.Printf("kyc: no verification keys configured")
	} else {
		log.Printf("kyc: verification keys for %v", keys.Aliases())
	}
	kycClient := kyc.New(kyc.Config{
		Keys:    keys,
		BaseURL: cfg.KYC.BaseURL,
		Timeout: cfg.KYC.Timeout,
	}, notifier)

	secret := []byte(cfg.Session.Secret)
	if len(secret) == 0 {
		secret = make([]byte, session.MinSecretLen)
		if _, err := rand.Read(secret); err != nil {
			return nil, fmt.Errorf("app: session secret: %w", err)
		}
		log.Printf("session: CLAIM_SESSION_SECRET not set, tokens will not survive a restart")
	}
	sessions, err := session.NewManager(session.Config{
		Secret:        secret,
		TTL:           cfg.Session.TTL,
		MaxMessageAge: cfg.Session.MaxMessageAge,
	})
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}

	return NewWith(cfg, feats, grants.NewDirectory(sheetClient, notifier), kycClient, claims.NewMockProvider(nil), sessions, notifier), nil
}

// NewWith assembles an App from already built components.
func NewWith(cfg config.Config, feats features.Features, directory Directory, kycClient SessionInitializer, provider claims.Provider, sessions *session.Manager, notifier Notifier) *App {
	return &App{
		cfg:       cfg,
		features:  feats,
		directory: directory,
		kyc:       kycClient,
		claims:    provider,
		sessions:  sessions,
		notifier:  notifier,
		stats:     newStatsCollector(time.Now()),
		now:       time.Now,
		startedAt: time.Now(),
	}
}

// Run warms the directory once and blocks until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	a.mu.Lock()
	a.running = true
	a.mu.Unlock()
	defer func() {
		a.mu.Lock()
		a.running = false
		a.mu.Unlock()
	}()

	log.Printf("serving %s (%s)", a.features.AppName, a.features.Variant)
	if a.notifier != nil {
		if err := a.notifier.NotifyStartup(ctx, string(a.features.Variant), a.cfg.API.Addr); err != nil {
			log.Printf("notify startup: %v", err)
		}
	}

	rows, err := a.Grants(ctx, "")
	if err != nil {
		log.Printf("grant directory warm-up failed: %v", err)
	} else {
		log.Printf("grant directory has %d grants", len(rows))
	}

	<-ctx.Done()
	return nil
}

// reportFinishedDay sends the daily report for the previous UTC day. The
// first operation seen after midnight triggers it; later calls that day are
// no-ops.
func (a *App) reportFinishedDay(ctx context.Context) {
	prev, ok := a.stats.takePrevious(a.now())
	if !ok {
		return
	}
	data := telegramtmpl.BuildDailyData(telegramtmpl.DailyData{
		Variant:            string(a.features.Variant),
		Day:                prev.Day,
		DirectoryFetches:   prev.DirectoryFetches,
		DirectoryFailures:  prev.DirectoryFailures,
		LastDirectoryError: prev.LastDirectoryError,
		GrantCount:         prev.LastDirectoryRows,
		ClaimLookups:       prev.ClaimLookups,
		EligibleClaims:     prev.EligibleClaims,
		KYCAttempts:        prev.KYCSessions + prev.KYCFailures,
		KYCFailures:        prev.KYCFailures,
		SignInAttempts:     prev.SignIns + prev.SignInFailures,
		SignInFailures:     prev.SignInFailures,
	})
	log.Printf("daily report %s: claim_lookups=%d kyc_attempts=%d sign_in_attempts=%d warnings=%d",
		data.Day, data.ClaimLookups, data.KYCAttempts, data.SignInAttempts, len(data.Warnings))
	if a.notifier == nil {
		return
	}
	if err := a.notifier.NotifyDailyReport(context.WithoutCancel(ctx), telegramtmpl.RenderDailyHTML(data)); err != nil {
		log.Printf("notify daily report: %v", err)
	}
}

func (a *App) Shutdown(_ context.Context) {
	log.Println("shutting down...")
	s := a.Stats()
	log.Printf("session complete: directory_fetches=%d claim_lookups=%d kyc_sessions=%d sign_ins=%d",
		s.DirectoryFetchesTotal, s.ClaimLookups, s.KYCSessions, s.SignIns)
}

// IsRunning reports whether Run is active.
func (a *App) IsRunning() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.running
}

func (a *App) StartedAt() time.Time { return a.startedAt }

func (a *App) Features() features.Features { return a.features }

func (a *App) Environment() string { return a.cfg.Environment }

// ImageBaseURL is the public storage location of project images.
func (a *App) ImageBaseURL() string { return a.cfg.Storage.PublicBaseURL() }

func (a *App) WalletConnectProjectID() string { return a.cfg.WalletConnectProjectID }

func (a *App) Stats() Stats { return a.stats.snapshot(a.now()) }

// Grants returns the directory, filtered by title when search is set.
func (a *App) Grants(ctx context.Context, search string) ([]grants.Row, error) {
	a.reportFinishedDay(ctx)
	rows, err := a.directory.List(ctx)
	a.stats.recordDirectory(a.now(), len(rows), err)
	if err != nil {
		return nil, err
	}
	return grants.Search(rows, search), nil
}

func (a *App) Claim(ctx context.Context, uuid, address string) (claims.Claim, error) {
	a.reportFinishedDay(ctx)
	c, err := a.claims.Lookup(ctx, uuid, address)
	if err != nil {
		return claims.Claim{}, err
	}
	a.stats.recordClaimLookup(a.now(), c.CanClaim)
	return c, nil
}

func (a *App) InitKYCSession(ctx context.Context, alias string) (string, error) {
	a.reportFinishedDay(ctx)
	id, err := a.kyc.InitSession(ctx, alias)
	a.stats.recordKYCSession(a.now(), err)
	if err != nil {
		log.Printf("kyc: init session for %q: %v", alias, err)
		return "", err
	}
	return id, nil
}

func (a *App) SignIn(address, message, signature string) (session.Session, error) {
	s, err := a.sessions.SignIn(address, message, signature)
	a.stats.recordSignIn(a.now(), err)
	return s, err
}

func (a *App) VerifySession(token string) (string, error) {
	return a.sessions.Verify(token)
}
