package schema

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"golang.org/x/net/idna"
	"golang.org/x/text/unicode/norm"
)

const (
	maxEmailLength = 254
	maxLocalLength = 64
	maxLabelLength = 63
)

// NormalizeEmail checks that s is a bare RFC 5322 addr-spec and returns its canonical form:
// the local part NFC-normalized with its case kept, the domain IDNA-mapped and lowercased.
// Applying it to its own output returns the same string.
func NormalizeEmail(s string) (string, error) {
	if s == "" {
		return "", errors.New("an email address cannot be empty")
	}

	addr, err := mail.ParseAddress(s)
	if err != nil {
		return "", errors.New("the email address is not valid")
	}
	if addr.Name != "" || addr.Address != s {
		return "", errors.New("the email address must not include a display name or brackets")
	}

	at := strings.LastIndexByte(s, '@')
	local, domain := s[:at], s[at+1:]
	if local == "" {
		return "", errors.New("there must be something before the @-sign")
	}
	if len(local) > maxLocalLength {
		return "", fmt.Errorf("the part before the @-sign is too long (max %d characters)", maxLocalLength)
	}

	ascii, err := idna.Lookup.ToASCII(domain)
	if err != nil {
		return "", errors.New("the part after the @-sign is not a valid domain name")
	}
	labels := strings.Split(ascii, ".")
	if len(labels) < 2 {
		return "", errors.New("the part after the @-sign should have a period")
	}
	for _, l := range labels {
		if l == "" {
			return "", errors.New("the part after the @-sign contains an empty label")
		}
		if len(l) > maxLabelLength {
			return "", fmt.Errorf("a domain label is too long (max %d characters)", maxLabelLength)
		}
	}
	if isDigits(labels[len(labels)-1]) {
		return "", errors.New("the part after the @-sign is not within a valid top-level domain")
	}

	unicodeDomain, err := idna.Lookup.ToUnicode(ascii)
	if err != nil {
		return "", errors.New("the part after the @-sign is not a valid domain name")
	}

	normalized := norm.NFC.String(local) + "@" + strings.ToLower(unicodeDomain)
	if len(normalized) > maxEmailLength {
		return "", fmt.Errorf("the email address is too long (max %d characters)", maxEmailLength)
	}
	return normalized, nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
