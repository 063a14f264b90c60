package errors

import (
	"strings"
	"testing"
)

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "VINP", false},
		{"hierarchical", "ota1/inp", false},
		{"brackets", "bus[3]", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 300), true},
		{"space", "in p", true},
		{"tab", "in\tp", true},
		{"control char", "in\x01p", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName("pin", tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidInput) {
				t.Errorf("ValidateName(%q) returned wrong error code: %v", tt.input, err)
			}
		})
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "designs/ota.json", false},
		{"valid absolute", "/tmp/ota.sym", false},
		{"valid with dots", "v1.2.3/design.json", false},
		{"dotted filename", "a..b.json", false},

		{"empty", "", true},
		{"too long", string(make([]byte, 600)), true},
		{"path traversal", "../../../etc/passwd", true},
		{"path traversal middle", "foo/../bar", true},
		{"null byte", "foo\x00bar", true},
		{"control char", "foo\x01bar", true},
		{"newline", "foo\nbar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidPath) {
				t.Errorf("ValidatePath(%q) returned wrong error code: %v", tt.input, err)
			}
		})
	}
}

func TestValidatePolicyName(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"total-resource", false},
		{"pb", false},
		{"bnb", false},
		{"Total", true},
		{"-lead", true},
		{"trail-", true},
		{"", true},
	}

	for _, tt := range tests {
		err := ValidatePolicyName("objective", tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidatePolicyName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
	}
}

func TestErrorCodesAreUnique(t *testing.T) {
	codes := []Code{
		ErrCodeInvalidInput,
		ErrCodeInvalidConfig,
		ErrCodeUnresolvedPin,
		ErrCodeInvalidPath,
		ErrCodeNotFound,
		ErrCodeFileNotFound,
		ErrCodeGraphInconsistent,
		ErrCodeSolver,
		ErrCodeTimeout,
		ErrCodeNotInitialized,
		ErrCodeInternal,
		ErrCodeUnsupported,
	}

	seen := make(map[Code]bool)
	for _, code := range codes {
		if seen[code] {
			t.Errorf("Duplicate error code: %s", code)
		}
		seen[code] = true
	}
}
