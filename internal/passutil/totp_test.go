package passutil

import (
	"testing"

	"ziplock.sh/internal/zerrors"
)

// S7: RFC 6238 §5.2 SHA-1 test vector (ASCII secret "12345678901234567890",
// base32-encoded below; the RFC's 8-digit 94287082 truncated to 6 digits).
func TestGenerateTOTPRFC6238Vector(t *testing.T) {
	code, err := GenerateTOTP("GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ", 59)
	if err != nil {
		t.Fatalf("GenerateTOTP: %v", err)
	}
	if code != "287082" {
		t.Fatalf("expected 287082, got %s", code)
	}
}

func TestGenerateTOTPRejectsInvalidSecret(t *testing.T) {
	_, err := GenerateTOTP("not-base32!!", 59)
	if zerrors.GetCode(err) != zerrors.CodeValidationError {
		t.Fatalf("expected CodeValidationError, got %v", err)
	}
}

func TestGenerateTOTPRejectsEmptySecret(t *testing.T) {
	_, err := GenerateTOTP("", 59)
	if zerrors.GetCode(err) != zerrors.CodeValidationError {
		t.Fatalf("expected CodeValidationError, got %v", err)
	}
}

func TestGenerateTOTPChangesWithTimeStep(t *testing.T) {
	a, _ := GenerateTOTP("JBSWY3DPEHPK3PXP", 59)
	b, _ := GenerateTOTP("JBSWY3DPEHPK3PXP", 30*1000)
	if a == b {
		t.Fatal("expected codes from different time steps to differ")
	}
}
