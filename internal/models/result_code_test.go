package models

import "testing"

// TestParseResultCode tests parsing of the DOR code attribute
func TestParseResultCode(t *testing.T) {
	tests := []struct {
		input   string
		want    ResultCode
		wantErr bool
	}{
		{"0", CodeAddressFound, false},
		{"5", CodeZip5FoundNoAddressOrZip4, false},
		{" 6 ", CodeNoAddressNoZip, false},
		{"9", CodeInternalError, false},
		{"8", 0, true},
		{"10", 0, true},
		{"-1", 0, true},
		{"", 0, true},
		{"found", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseResultCode(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error for %q, got code %d", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

// TestResultCode_IsError tests which codes carry unusable rates
func TestResultCode_IsError(t *testing.T) {
	for code := range resultCodeNames {
		want := code == CodeNoAddressNoZip || code == CodeInvalidLatLong || code == CodeInternalError
		if code.IsError() != want {
			t.Errorf("code %d: expected IsError=%v", code, want)
		}
		if code.Retryable() != (code == CodeInternalError) {
			t.Errorf("code %d: unexpected Retryable=%v", code, code.Retryable())
		}
	}
}

// TestResultCode_String tests human readable names
func TestResultCode_String(t *testing.T) {
	if got := CodeAddressFound.String(); got != "address found" {
		t.Errorf("expected 'address found', got '%s'", got)
	}
	if got := ResultCode(8).String(); got != "unknown code 8" {
		t.Errorf("expected 'unknown code 8', got '%s'", got)
	}
}
