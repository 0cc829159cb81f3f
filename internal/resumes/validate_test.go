package resumes

import (
	"strings"
	"testing"
)

func TestValidateResumeTextMissing(t *testing.T) {
	for _, raw := range []string{"", "   ", "\n\t "} {
		_, err := ValidateResumeText(raw)
		ve, ok := AsValidationError(err)
		if !ok {
			t.Fatalf("expected validation error for %q, got %v", raw, err)
		}
		if ve.Kind != ValidationMissing {
			t.Fatalf("expected missing kind for %q, got %s", raw, ve.Kind)
		}
	}
}

func TestValidateResumeTextBoundaries(t *testing.T) {
	cases := []struct {
		name   string
		length int
		kind   ValidationKind
	}{
		{"one below min", 49, ValidationTooShort},
		{"at min", 50, ""},
		{"at max", 5000, ""},
		{"one above max", 5001, ValidationTooLong},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			text, err := ValidateResumeText(strings.Repeat("가", tc.length))
			if tc.kind == "" {
				if err != nil {
					t.Fatalf("expected length %d to pass, got %v", tc.length, err)
				}
				if len([]rune(text)) != tc.length {
					t.Fatalf("expected text unchanged, got %d runes", len([]rune(text)))
				}
				return
			}
			ve, ok := AsValidationError(err)
			if !ok {
				t.Fatalf("expected validation error, got %v", err)
			}
			if ve.Kind != tc.kind {
				t.Fatalf("expected kind %s, got %s", tc.kind, ve.Kind)
			}
		})
	}
}

func TestValidateResumeTextCountsRunesNotBytes(t *testing.T) {
	// 50 Hangul runes are 150 bytes; rune counting must accept this.
	if _, err := ValidateResumeText(strings.Repeat("한", 50)); err != nil {
		t.Fatalf("expected 50 hangul runes to pass, got %v", err)
	}
}

func TestValidateResumeTextTrimsBeforeCounting(t *testing.T) {
	padded := "  " + strings.Repeat("a", 49) + "  "
	_, err := ValidateResumeText(padded)
	ve, ok := AsValidationError(err)
	if !ok || ve.Kind != ValidationTooShort {
		t.Fatalf("expected too_short after trimming, got %v", err)
	}
}
