package passutil

import (
	"strings"
	"testing"

	"ziplock.sh/internal/zerrors"
)

func TestGenerateRespectsLength(t *testing.T) {
	pw, err := Generate(GenerateOptions{Length: 20, Upper: true, Lower: true, Digit: true})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(pw) != 20 {
		t.Fatalf("expected length 20, got %d", len(pw))
	}
}

func TestGenerateGuaranteesEachEnabledClass(t *testing.T) {
	for i := 0; i < 50; i++ {
		pw, err := Generate(GenerateOptions{Length: 8, Upper: true, Lower: true, Digit: true, Symbol: true})
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		if !strings.ContainsAny(pw, upperClass) || !strings.ContainsAny(pw, lowerClass) ||
			!strings.ContainsAny(pw, digitClass) || !strings.ContainsAny(pw, symbolClass) {
			t.Fatalf("password %q missing a required class", pw)
		}
	}
}

func TestGenerateRejectsNoClassEnabled(t *testing.T) {
	_, err := Generate(GenerateOptions{Length: 10})
	if zerrors.GetCode(err) != zerrors.CodeInvalidParameter {
		t.Fatalf("expected CodeInvalidParameter, got %v", err)
	}
}

func TestGenerateRejectsOutOfRangeLength(t *testing.T) {
	if _, err := Generate(GenerateOptions{Length: 0, Lower: true}); zerrors.GetCode(err) != zerrors.CodeInvalidParameter {
		t.Fatalf("expected CodeInvalidParameter for length 0, got %v", err)
	}
	if _, err := Generate(GenerateOptions{Length: 257, Lower: true}); zerrors.GetCode(err) != zerrors.CodeInvalidParameter {
		t.Fatalf("expected CodeInvalidParameter for length 257, got %v", err)
	}
}
