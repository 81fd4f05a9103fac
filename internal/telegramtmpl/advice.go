package telegramtmpl

import "fmt"

// failureRateWarn is the share of failed KYC or sign-in attempts above which
// the day is flagged.
const failureRateWarn = 0.25

// BuildWarnings derives operator warnings from a day's counters, most
// severe first.
func BuildWarnings(d DailyData) []string {
	warnings := make([]string, 0, 4)
	if d.DirectoryFailures > 0 {
		w := fmt.Sprintf("Grant directory failed %d of %d fetches.", d.DirectoryFailures, d.DirectoryFetches)
		if d.LastDirectoryError != "" {
			w += " Last error: " + d.LastDirectoryError
		}
		warnings = append(warnings, w)
	}
	if rate(d.KYCFailures, d.KYCAttempts) > failureRateWarn {
		warnings = append(warnings, fmt.Sprintf("KYC session failures are high: %d of %d.", d.KYCFailures, d.KYCAttempts))
	}
	if rate(d.SignInFailures, d.SignInAttempts) > failureRateWarn {
		warnings = append(warnings, fmt.Sprintf("Sign-in rejections are high: %d of %d.", d.SignInFailures, d.SignInAttempts))
	}
	if d.DirectoryFetches > 0 && d.GrantCount == 0 {
		warnings = append(warnings, "Grant directory is empty.")
	}
	return warnings
}

func rate(failed, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(failed) / float64(total)
}
