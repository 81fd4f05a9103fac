// Package telegramtmpl renders operator reports for Telegram's HTML parse
// mode.
package telegramtmpl

import (
	"fmt"
	"html"
	"strings"
)

const maxWarnings = 3

// DailyData describes one UTC day of claim service activity.
type DailyData struct {
	Variant string
	Day     string

	DirectoryFetches   int
	DirectoryFailures  int
	LastDirectoryError string
	GrantCount         int

	ClaimLookups   int
	EligibleClaims int
	// Attempts include the failed ones.
	KYCAttempts    int
	KYCFailures    int
	SignInAttempts int
	SignInFailures int

	Warnings []string
}

// BuildDailyData normalizes the day's counters into a renderable payload and
// attaches at most three warnings.
func BuildDailyData(d DailyData) DailyData {
	d.Variant = strings.ToUpper(strings.TrimSpace(d.Variant))
	d.Day = strings.TrimSpace(d.Day)
	d.LastDirectoryError = strings.TrimSpace(d.LastDirectoryError)
	d.Warnings = BuildWarnings(d)
	if len(d.Warnings) > maxWarnings {
		d.Warnings = d.Warnings[:maxWarnings]
	}
	return d
}

// RenderDailyHTML renders the daily report. All free text is escaped.
func RenderDailyHTML(d DailyData) string {
	var b strings.Builder
	b.WriteString("<b>Daily Claims Report</b>\n")
	fmt.Fprintf(&b, "Day: %s\nVariant: %s\n", html.EscapeString(d.Day), html.EscapeString(d.Variant))
	fmt.Fprintf(&b, "Grants listed: %d\n", d.GrantCount)
	fmt.Fprintf(&b, "Directory fetches: %d (%d failed)\n", d.DirectoryFetches, d.DirectoryFailures)
	fmt.Fprintf(&b, "Claim lookups: %d (%d eligible)\n", d.ClaimLookups, d.EligibleClaims)
	fmt.Fprintf(&b, "KYC sessions: %d attempted (%d failed)\n", d.KYCAttempts, d.KYCFailures)
	fmt.Fprintf(&b, "Sign-ins: %d attempted (%d rejected)\n", d.SignInAttempts, d.SignInFailures)
	if len(d.Warnings) > 0 {
		b.WriteString("\n<b>Warnings</b>\n")
		for _, w := range d.Warnings {
			b.WriteString("- " + html.EscapeString(w) + "\n")
		}
	}
	return strings.TrimSpace(b.String())
}
