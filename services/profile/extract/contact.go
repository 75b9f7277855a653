package extract

import (
	"fmt"
	"regexp"
	"strings"

	"agentsite-backend/lib/textutil"
)

var emailRegex = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)

// addresses that are never a person's own inbox
var emailDenylist = []string{"noreply", "info@", "support@", "example.com"}

// extractEmails collects every RFC-shaped address, deduplicates
// case-insensitively preserving discovery order, and filters the denylist.
// The first surviving entry is the primary.
func extractEmails(document string) ([]string, []string) {
	var diags []string
	seen := map[string]bool{}
	var emails []string

	for _, match := range emailRegex.FindAllString(document, -1) {
		lower := strings.ToLower(match)
		if seen[lower] {
			continue
		}
		seen[lower] = true

		denied := false
		for _, deny := range emailDenylist {
			if strings.Contains(lower, deny) {
				denied = true
				break
			}
		}
		if denied {
			diags = append(diags, fmt.Sprintf("email: rejected %s", match))
			continue
		}
		emails = append(emails, match)
	}
	return emails, diags
}

var phoneRegex = regexp.MustCompile(`(?:\+?1[\s.\-]?)?\(?\d{3}\)?[\s.\-]?\d{3}[\s.\-]?\d{4}`)

// formatPhone renders ten digits as (XXX) XXX-XXXX, dropping a leading 1
// from eleven-digit numbers. Returns "" for anything else.
func formatPhone(raw string) string {
	digits := textutil.OnlyDigits(raw)
	if len(digits) == 11 && digits[0] == '1' {
		digits = digits[1:]
	}
	if len(digits) != 10 {
		return ""
	}
	return fmt.Sprintf("(%s) %s-%s", digits[0:3], digits[3:6], digits[6:10])
}

// extractPhones returns every North-American-shaped number found in the
// document, formatted and deduplicated by formatted value, discovery order
// preserved.
func extractPhones(document string) []string {
	seen := map[string]bool{}
	var phones []string
	for _, match := range phoneRegex.FindAllString(document, -1) {
		formatted := formatPhone(match)
		if formatted == "" || seen[formatted] {
			continue
		}
		seen[formatted] = true
		phones = append(phones, formatted)
	}
	return phones
}

// assignPhoneRoles designates the first discovered phone as mobile and the
// second as office. This is a positional heuristic carried over from the
// previous behavior, NOT a semantic classification; a label-proximity
// classifier can replace this function without touching the rest of the
// pipeline.
func assignPhoneRoles(phones []string) (mobile, office string) {
	if len(phones) > 0 {
		mobile = phones[0]
	}
	if len(phones) > 1 {
		office = phones[1]
	}
	return mobile, office
}
