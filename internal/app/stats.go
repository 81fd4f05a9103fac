package app

import (
	"sync"
	"time"

	"github.com/gitcoinco/grant-claims/internal/apperr"
)

// statsCollector counts operations per UTC day for the health endpoint.
type statsCollector struct {
	mu sync.Mutex

	dayStartUTC time.Time
	lastUpdated time.Time

	directoryFetchesDaily     int
	directoryFailuresDaily    int
	directoryFailuresByCode   map[apperr.Code]int
	lastDirectoryError        string
	lastDirectoryRows         int
	claimLookupsDaily         int
	eligibleClaimsDaily       int
	kycSessionsDaily          int
	kycFailuresDaily          int
	signInsDaily              int
	signInFailuresDaily       int
	directoryFetchesTotal     int
	lastDirectorySuccessAtUTC time.Time

	// previous holds the counters of the last finished day until it is
	// reported.
	previous *Stats
}

// Stats is a point-in-time copy of the counters.
type Stats struct {
	Day                     string         `json:"day"`
	DirectoryFetches        int            `json:"directory_fetches"`
	DirectoryFailures       int            `json:"directory_failures"`
	DirectoryFailuresByCode map[string]int `json:"directory_failures_by_code"`
	LastDirectoryError      string         `json:"last_directory_error,omitempty"`
	LastDirectoryRows       int            `json:"last_directory_rows"`
	LastDirectorySuccess    *time.Time     `json:"last_directory_success,omitempty"`
	ClaimLookups            int            `json:"claim_lookups"`
	EligibleClaims          int            `json:"eligible_claims"`
	// KYCSessions and SignIns count successes only.
	KYCSessions             int            `json:"kyc_sessions"`
	KYCFailures             int            `json:"kyc_failures"`
	SignIns                 int            `json:"sign_ins"`
	SignInFailures          int            `json:"sign_in_failures"`
	DirectoryFetchesTotal   int            `json:"directory_fetches_total"`
	UpdatedAt               time.Time      `json:"updated_at"`
}

func newStatsCollector(now time.Time) *statsCollector {
	return &statsCollector{
		dayStartUTC:             startOfUTCDay(now),
		lastUpdated:             now.UTC(),
		directoryFailuresByCode: make(map[apperr.Code]int),
	}
}

func startOfUTCDay(t time.Time) time.Time {
	utc := t.UTC()
	return time.Date(utc.Year(), utc.Month(), utc.Day(), 0, 0, 0, 0, time.UTC)
}

func (c *statsCollector) ensureDayLocked(now time.Time) {
	day := startOfUTCDay(now)
	if day.Equal(c.dayStartUTC) {
		return
	}
	finished := c.snapshotLocked()
	c.previous = &finished
	c.dayStartUTC = day
	c.directoryFetchesDaily = 0
	c.directoryFailuresDaily = 0
	c.directoryFailuresByCode = make(map[apperr.Code]int)
	c.claimLookupsDaily = 0
	c.eligibleClaimsDaily = 0
	c.kycSessionsDaily = 0
	c.kycFailuresDaily = 0
	c.signInsDaily = 0
	c.signInFailuresDaily = 0
}

func (c *statsCollector) touchLocked(now time.Time) {
	c.ensureDayLocked(now)
	c.lastUpdated = now.UTC()
}

func errorCode(err error) apperr.Code {
	for _, code := range []apperr.Code{apperr.CodeConfig, apperr.CodeUnavailable, apperr.CodeUpstream, apperr.CodeValidation} {
		if apperr.HasCode(err, code) {
			return code
		}
	}
	return "unknown"
}

func (c *statsCollector) recordDirectory(now time.Time, rows int, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.touchLocked(now)
	c.directoryFetchesDaily++
	c.directoryFetchesTotal++
	if err != nil {
		c.directoryFailuresDaily++
		c.directoryFailuresByCode[errorCode(err)]++
		c.lastDirectoryError = err.Error()
		return
	}
	c.lastDirectoryRows = rows
	c.lastDirectoryError = ""
	c.lastDirectorySuccessAtUTC = now.UTC()
}

func (c *statsCollector) recordClaimLookup(now time.Time, eligible bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.touchLocked(now)
	c.claimLookupsDaily++
	if eligible {
		c.eligibleClaimsDaily++
	}
}

func (c *statsCollector) recordKYCSession(now time.Time, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.touchLocked(now)
	if err != nil {
		c.kycFailuresDaily++
		return
	}
	c.kycSessionsDaily++
}

func (c *statsCollector) recordSignIn(now time.Time, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.touchLocked(now)
	if err != nil {
		c.signInFailuresDaily++
		return
	}
	c.signInsDaily++
}

func (c *statsCollector) snapshot(now time.Time) Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ensureDayLocked(now)
	return c.snapshotLocked()
}

// takePrevious returns the last finished day once, rolling the counters
// over first when now is past midnight.
func (c *statsCollector) takePrevious(now time.Time) (Stats, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ensureDayLocked(now)
	if c.previous == nil {
		return Stats{}, false
	}
	s := *c.previous
	c.previous = nil
	return s, true
}

func (c *statsCollector) snapshotLocked() Stats {
	byCode := make(map[string]int, len(c.directoryFailuresByCode))
	for code, n := range c.directoryFailuresByCode {
		byCode[string(code)] = n
	}
	s := Stats{
		Day:                     c.dayStartUTC.Format(time.DateOnly),
		DirectoryFetches:        c.directoryFetchesDaily,
		DirectoryFailures:       c.directoryFailuresDaily,
		DirectoryFailuresByCode: byCode,
		LastDirectoryError:      c.lastDirectoryError,
		LastDirectoryRows:       c.lastDirectoryRows,
		ClaimLookups:            c.claimLookupsDaily,
		EligibleClaims:          c.eligibleClaimsDaily,
		KYCSessions:             c.kycSessionsDaily,
		KYCFailures:             c.kycFailuresDaily,
		SignIns:                 c.signInsDaily,
		SignInFailures:          c.signInFailuresDaily,
		DirectoryFetchesTotal:   c.directoryFetchesTotal,
		UpdatedAt:               c.lastUpdated,
	}
	if !c.lastDirectorySuccessAtUTC.IsZero() {
		at := c.lastDirectorySuccessAtUTC
		s.LastDirectorySuccess = &at
	}
	return s
}
