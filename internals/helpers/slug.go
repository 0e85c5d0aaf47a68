package helper

import (
	"crypto/rand"
	"fmt"
	"strings"
	"unicode"
)

// GenerateSlug normalizes a string into a URL-safe slug:
// lower-case, non-alnum runs collapsed to a single "-", trimmed at both ends.
func GenerateSlug(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	lastDash := false
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastDash = false
		} else if !lastDash {
			b.WriteRune('-')
			lastDash = true
		}
	}
	return strings.Trim(b.String(), "-")
}

// GroupSlug builds the public fundraiser URL slug, e.g.
// "sachin-uppal-fundraiser-4821".
func GroupSlug(initiatorName string, groupID int) string {
	base := GenerateSlug(initiatorName)
	if base == "" {
		base = "group"
	}
	return fmt.Sprintf("%s-fundraiser-%d", base, groupID)
}

// GenerateReferralCode builds a short shareable code from the donor name,
// e.g. "sachin-uppal-x3k7".
func GenerateReferralCode(name string) string {
	slug := GenerateSlug(name)
	if len(slug) > 20 {
		slug = strings.Trim(slug[:20], "-")
	}
	if slug == "" {
		slug = "donor"
	}
	return slug + "-" + randToken(4)
}

const tokenAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

func randToken(n int) string {
	buf := make([]byte, n)
	_, _ = rand.Read(buf)
	for i, b := range buf {
		buf[i] = tokenAlphabet[int(b)%len(tokenAlphabet)]
	}
	return string(buf)
}
