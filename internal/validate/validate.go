// Package validate holds the pure normalization and validation rules
// applied to user-supplied account fields.
package validate

import (
	"regexp"
	"strings"
	"time"
	"unicode"
)

var (
	alphaPattern   = regexp.MustCompile(`^[A-Za-z]+$`)
	alnumPattern   = regexp.MustCompile(`^[A-Za-z0-9]+$`)
	numericPattern = regexp.MustCompile(`^[0-9]+$`)
	emailPattern   = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
)

var phonePrefixes = []string{"01", "+2", "002"}

const birthDateLayout = "2006-01-02"

// FormatName trims and canonicalizes a name-like field to leading
// upper case, the rest lower.
func FormatName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// NormalizeEmail lower-cases and trims an email address.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// NormalizePhone strips all spaces from a phone number.
func NormalizePhone(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), " ", "")
}

// Name accepts alphabetic-only name fields.
func Name(s string) bool {
	return alphaPattern.MatchString(s)
}

func Email(s string) bool {
	return emailPattern.MatchString(s)
}

// Phone accepts numbers of length 11, 13 or 14 starting with a local
// or international Egyptian prefix.
func Phone(s string) bool {
	if len(s) != 11 && len(s) != 13 && len(s) != 14 {
		return false
	}
	for _, prefix := range phonePrefixes {
		if strings.HasPrefix(s, prefix) {
			return true
		}
	}
	return false
}

// Password accepts alphanumeric passwords of at least 8 characters.
func Password(s string) bool {
	return len(s) >= 8 && alnumPattern.MatchString(s)
}

func Gender(s string) bool {
	return s == "Male" || s == "Female"
}

// Numeric accepts digit-only fields such as license numbers.
func Numeric(s string) bool {
	return numericPattern.MatchString(s)
}

// BirthDate parses a YYYY-MM-DD date and rejects dates after now.
func BirthDate(s string, now time.Time) (time.Time, bool) {
	parsed, err := time.Parse(birthDateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, false
	}
	if parsed.After(now) {
		return time.Time{}, false
	}
	return parsed, true
}
