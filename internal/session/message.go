// Package session implements wallet sign-in: a personal_sign message is
// verified against the claimed address and exchanged for a short-lived
// bearer token.
package session

import (
	"bufio"
	"fmt"
	"strings"
	"time"
)

const issuedAtPrefix = "Issued At: "

// Message returns the text a wallet signs to open a session.
func Message(domain, address string, issuedAt time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s wants you to sign in with your Ethereum account:\n", domain)
	b.WriteString(address)
	b.WriteString("\n\nSign in to check and claim your grants.\n\n")
	b.WriteString(issuedAtPrefix)
	b.WriteString(issuedAt.UTC().Format(time.RFC3339))
	return b.String()
}

func issuedAt(message string) (time.Time, error) {
	sc := bufio.NewScanner(strings.NewReader(message))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if raw, ok := strings.CutPrefix(line, issuedAtPrefix); ok {
			t, err := time.Parse(time.RFC3339, strings.TrimSpace(raw))
			if err != nil {
				return time.Time{}, fmt.Errorf("session: parse issued at: %w", err)
			}
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("session: message has no %q line", strings.TrimSpace(issuedAtPrefix))
}
