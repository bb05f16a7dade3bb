package passutil

import (
	"math"
	"strings"
)

// Strength is a bucketed password strength rating (spec.md §4.8).
type Strength string

const (
	VeryWeak   Strength = "VeryWeak"
	Weak       Strength = "Weak"
	Fair       Strength = "Fair"
	Good       Strength = "Good"
	Strong     Strength = "Strong"
	VeryStrong Strength = "VeryStrong"
)

// Score returns an integer 0..100 derived from length, class diversity,
// and an entropy estimate, plus the bucketed Strength it falls into.
func Score(password string) (int, Strength) {
	if password == "" {
		return 0, VeryWeak
	}

	classes := 0
	if strings.ContainsAny(password, upperClass) {
		classes++
	}
	if strings.ContainsAny(password, lowerClass) {
		classes++
	}
	if strings.ContainsAny(password, digitClass) {
		classes++
	}
	if strings.ContainsAny(password, symbolClass) {
		classes++
	}
	if classes == 0 {
		// Characters outside the four known classes still count as a
		// distinct class for entropy purposes (e.g. non-ASCII runes).
		classes = 1
	}

	poolSize := classPoolSize(password)
	entropyBits := float64(len([]rune(password))) * math.Log2(float64(poolSize))

	lengthScore := clamp(int(float64(len([]rune(password)))*4), 0, 40)
	classScore := clamp(classes*10, 0, 40)
	entropyScore := clamp(int(entropyBits/4), 0, 20)

	total := clamp(lengthScore+classScore+entropyScore, 0, 100)
	return total, bucket(total)
}

func classPoolSize(password string) int {
	size := 0
	if strings.ContainsAny(password, upperClass) {
		size += len(upperClass)
	}
	if strings.ContainsAny(password, lowerClass) {
		size += len(lowerClass)
	}
	if strings.ContainsAny(password, digitClass) {
		size += len(digitClass)
	}
	if strings.ContainsAny(password, symbolClass) {
		size += len(symbolClass)
	}
	if size == 0 {
		size = 26
	}
	return size
}

func bucket(score int) Strength {
	switch {
	case score < 20:
		return VeryWeak
	case score < 40:
		return Weak
	case score < 60:
		return Fair
	case score < 75:
		return Good
	case score < 90:
		return Strong
	default:
		return VeryStrong
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
