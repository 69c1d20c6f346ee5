package validate

import (
	"regexp"
	"strings"
)

var (
	reEmail  = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	reExpiry = regexp.MustCompile(`^(0[1-9]|1[0-2])/[0-9]{2}$`)
	reCVV    = regexp.MustCompile(`^[0-9]{3,4}$`)
	reDigits = regexp.MustCompile(`[^0-9]`)
	reID     = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
)

func Email(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > 60 {
		return "", false
	}
	return s, reEmail.MatchString(s)
}

// Name validates a displayable name with a reasonable max length.
func Name(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > 40 {
		return "", false
	}
	return s, true
}

// Phone strips non-digits and requires exactly 10 digits.
func Phone(s string) (string, bool) {
	d := reDigits.ReplaceAllString(s, "")
	return d, len(d) == 10
}

// CardNumber strips spaces and requires exactly 16 digits.
func CardNumber(s string) (string, bool) {
	d := strings.ReplaceAll(strings.TrimSpace(s), " ", "")
	if len(d) != 16 {
		return d, false
	}
	for _, r := range d {
		if r < '0' || r > '9' {
			return d, false
		}
	}
	return d, true
}

// Expiry requires the MM/YY shape; it does not check the date against today.
func Expiry(s string) bool {
	return reExpiry.MatchString(strings.TrimSpace(s))
}

func CVV(s string) bool {
	return reCVV.MatchString(strings.TrimSpace(s))
}

// ID validates a simple resource identifier (service/booking ids).
func ID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reID.MatchString(s)
}

// Rating clamps nothing: anything outside 1..5 is rejected.
func Rating(n int) bool {
	return n >= 1 && n <= 5
}

// Password enforces a simple length window for sign-in/up forms.
func Password(s string) bool {
	return len(s) >= 6 && len(s) <= 64
}
