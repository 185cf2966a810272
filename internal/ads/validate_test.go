// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ads

import (
	"errors"
	"fmt"
	"testing"
)

// --- ValidateAPIKey ---

func TestValidateAPIKey(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		wantErr bool
	}{
		{"valid key", "AbCdEfGhIjKlMnOpQrStUvWxYz0123456789abcd", false},
		{"minimum length", "0123456789", false},
		{"empty", "", true},
		{"too short", "abc123", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAPIKey(tt.key)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidRequest) {
					t.Errorf("ValidateAPIKey(%q) = %v, want ErrInvalidRequest", tt.key, err)
				}
				return
			}
			if err != nil {
				t.Errorf("ValidateAPIKey(%q) = %v, want nil", tt.key, err)
			}
		})
	}
}

// --- ValidateBibcode ---

func TestValidateBibcode(t *testing.T) {
	tests := []struct {
		name    string
		bibcode string
		wantErr bool
	}{
		{"journal article", "2021ApJ...919..136K", false},
		{"journal with ampersand", "2019A&A...625A.136A", false},
		{"preprint", "2017arXiv170603762V", false},
		{"empty", "", true},
		{"too short", "2021ApJ", true},
		{"no leading year", "ApJ...2021..136K", true},
		{"illegal characters", "2021 ApJ 919 136K", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBibcode(tt.bibcode)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidRequest) {
					t.Errorf("ValidateBibcode(%q) = %v, want ErrInvalidRequest", tt.bibcode, err)
				}
				return
			}
			if err != nil {
				t.Errorf("ValidateBibcode(%q) = %v, want nil", tt.bibcode, err)
			}
		})
	}
}

// --- StatusError ---

func TestStatusError(t *testing.T) {
	rateErr := &StatusError{StatusCode: 429, Message: "Rate limit exceeded"}
	if !rateErr.RateLimited() {
		t.Error("429 should report RateLimited")
	}
	if rateErr.AuthFailed() {
		t.Error("429 should not report AuthFailed")
	}
	if got := rateErr.Error(); got != "ADS API returned HTTP 429: Rate limit exceeded" {
		t.Errorf("Error() = %q", got)
	}

	authErr := &StatusError{StatusCode: 401}
	if !authErr.AuthFailed() {
		t.Error("401 should report AuthFailed")
	}
	if got := authErr.Error(); got != "ADS API returned HTTP 401" {
		t.Errorf("Error() = %q", got)
	}

	// errors.As should find a StatusError through wrapping.
	wrapped := fmt.Errorf("fetching page: %w", rateErr)
	var se *StatusError
	if !errors.As(wrapped, &se) {
		t.Fatal("errors.As should find StatusError in wrapped chain")
	}
	if se.StatusCode != 429 {
		t.Errorf("StatusCode = %d, want 429", se.StatusCode)
	}
}
