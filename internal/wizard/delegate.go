package wizard

import (
	"regexp"

	"github.com/gitcoinco/grant-claims/internal/apperr"
	"github.com/gitcoinco/grant-claims/internal/features"
)

var addressPattern = regexp.MustCompile(`^0x[a-fA-F0-9]{40}$`)

// ValidAddress reports whether s is 0x followed by 40 hex digits.
func ValidAddress(s string) bool {
	return addressPattern.MatchString(s)
}

func validateDelegate(f features.Features, address string) error {
	if address == "" && !f.DelegationRequired {
		return nil
	}
	if !ValidAddress(address) {
		return apperr.New(apperr.CodeValidation, "Invalid Ethereum address")
	}
	return nil
}
