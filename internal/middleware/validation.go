package middleware

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Common validation patterns.
var (
	// IG epics look like "IX.D.DAX.IFMM.IP" or "CS.D.EURUSD.MINI.IP".
	epicRegex = regexp.MustCompile(`^[A-Za-z0-9._-]{1,64}$`)
	// Deal ids are opaque vendor identifiers such as "DIAAAAABCDEF123".
	dealIDRegex = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
)

// ValidateEpic validates a market epic.
func ValidateEpic(epic string) bool {
	return epicRegex.MatchString(epic)
}

// ValidateDealID validates a vendor deal id.
func ValidateDealID(id string) bool {
	return dealIDRegex.MatchString(id)
}

// ValidateRequired checks if a string is non-empty.
func ValidateRequired(value string) bool {
	return strings.TrimSpace(value) != ""
}

// ValidatePositive checks if a decimal is present and positive.
func ValidatePositive(value *decimal.Decimal) bool {
	return value != nil && value.IsPositive()
}

// SanitizeString trims whitespace and removes control characters.
func SanitizeString(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Map(func(r rune) rune {
		if r < 32 && r != '\n' && r != '\r' && r != '\t' {
			return -1
		}
		return r
	}, s)
	return s
}
