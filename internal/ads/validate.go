// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ads

import (
	"fmt"
	"regexp"
)

const (
	// minAPIKeyLength guards against obviously truncated keys.
	minAPIKeyLength = 10

	// minBibcodeLength is the shortest well-formed bibcode.
	minBibcodeLength = 10
)

// bibcodePattern matches the ADS bibcode shape: a four-digit year
// followed by journal, volume, page, and author fields.
var bibcodePattern = regexp.MustCompile(`^\d{4}[A-Za-z0-9.&]+$`)

// ValidateAPIKey rejects empty or obviously truncated API keys.
func ValidateAPIKey(key string) error {
	if key == "" {
		return fmt.Errorf("%w: API key is empty", ErrInvalidRequest)
	}
	if len(key) < minAPIKeyLength {
		return fmt.Errorf("%w: API key appears too short (min %d characters)", ErrInvalidRequest, minAPIKeyLength)
	}
	return nil
}

// ValidateBibcode checks the ADS bibcode format (e.g. "2021ApJ...919..136K").
func ValidateBibcode(bibcode string) error {
	if len(bibcode) < minBibcodeLength {
		return fmt.Errorf("%w: bibcode %q is too short (min %d characters)", ErrInvalidRequest, bibcode, minBibcodeLength)
	}
	if !bibcodePattern.MatchString(bibcode) {
		return fmt.Errorf("%w: malformed bibcode %q", ErrInvalidRequest, bibcode)
	}
	return nil
}
