package controllers

import (
	"regexp"
	"strings"
)

var (
	cardNumberPattern = regexp.MustCompile(`^\d{16}$`)
	cvvPattern        = regexp.MustCompile(`^\d{3,4}$`)
)

// NormalizeCardNumber strips whitespace so "4242 4242 4242 4242" and the
// compact form validate the same way.
func NormalizeCardNumber(raw string) string {
	return strings.ReplaceAll(strings.TrimSpace(raw), " ", "")
}

// ValidCardNumber reports whether the normalized card number is 16 digits.
func ValidCardNumber(normalized string) bool {
	return cardNumberPattern.MatchString(normalized)
}

// ValidCVV reports whether the cvv is 3 or 4 digits.
func ValidCVV(cvv string) bool {
	return cvvPattern.MatchString(cvv)
}
