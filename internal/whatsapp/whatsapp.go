// Package whatsapp builds contact deep links from stored phone numbers.
package whatsapp

import (
	"net/url"
	"strings"
)

// defaultCountryCode is prefixed onto local numbers (leading 0).
const defaultCountryCode = "234"

// NormalizeNumber reduces a phone number to digits only, converting a
// local leading zero to the default country code. Returns "" when no
// digits remain.
func NormalizeNumber(raw string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(raw) {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if digits == "" {
		return ""
	}
	if strings.HasPrefix(digits, "0") {
		digits = defaultCountryCode + digits[1:]
	}
	return digits
}

// ChatLink returns a wa.me deep link for the number, optionally prefilled
// with a message. Returns "" for numbers with no digits.
func ChatLink(number, message string) string {
	digits := NormalizeNumber(number)
	if digits == "" {
		return ""
	}
	link := "https://wa.me/" + digits
	if message != "" {
		link += "?text=" + url.QueryEscape(message)
	}
	return link
}

// DialLink returns a tel: link for the number, or "" when empty.
func DialLink(number string) string {
	digits := NormalizeNumber(number)
	if digits == "" {
		return ""
	}
	return "tel:+" + digits
}
