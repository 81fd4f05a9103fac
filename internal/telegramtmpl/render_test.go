package telegramtmpl

import (
	"strings"
	"testing"
)

func TestRenderDailyHTML(t *testing.T) {
	data := BuildDailyData(DailyData{
		Variant:          " base ",
		Day:              "2026-04-01",
		DirectoryFetches: 5,
		GrantCount:       42,
		ClaimLookups:     9,
		EligibleClaims:   4,
		KYCAttempts:      3,
		SignInAttempts:   6,
		SignInFailures:   1,
	})
	msg := RenderDailyHTML(data)

	for _, want := range []string{
		"<b>Daily Claims Report</b>",
		"Day: 2026-04-01",
		"Variant: BASE",
		"Grants listed: 42",
		"Claim lookups: 9 (4 eligible)",
		"Sign-ins: 6 attempted (1 rejected)",
	} {
		if !strings.Contains(msg, want) {
			t.Fatalf("expected %q in %q", want, msg)
		}
	}
	if strings.Contains(msg, "Warnings") {
		t.Fatalf("expected no warnings section, got %q", msg)
	}
}

func TestRenderDailyHTMLEscapesAndCapsWarnings(t *testing.T) {
	data := BuildDailyData(DailyData{
		Day:                "2026-04-01",
		DirectoryFetches:   2,
		DirectoryFailures:  2,
		LastDirectoryError: "status 503 <html>",
		KYCAttempts:        1,
		KYCFailures:        1,
		SignInAttempts:     1,
		SignInFailures:     1,
	})
	if len(data.Warnings) != maxWarnings {
		t.Fatalf("expected warnings capped at %d, got %d", maxWarnings, len(data.Warnings))
	}
	msg := RenderDailyHTML(data)
	if !strings.Contains(msg, "&lt;html&gt;") {
		t.Fatalf("expected escaped error text, got %q", msg)
	}
	if strings.Contains(msg, "Grant directory is empty") {
		t.Fatalf("fourth warning should be dropped, got %q", msg)
	}
}
