// Package cpf validates Brazilian CPF numbers (11-digit national ids with
// two weighted check digits).
package cpf

import "strings"

// Normalize strips formatting from a CPF and validates it. It returns the
// bare 11 digits and whether the input is a valid CPF.
func Normalize(raw string) (string, bool) {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if !Valid(digits) {
		return "", false
	}
	return digits, true
}

// Valid reports whether the given string is exactly 11 digits with correct
// check digits. CPFs with all digits identical pass the checksum but are
// reserved, so they are rejected up front.
func Valid(digits string) bool {
	if len(digits) != 11 {
		return false
	}
	allSame := true
	for i := 0; i < 11; i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return false
		}
		if digits[i] != digits[0] {
			allSame = false
		}
	}
	if allSame {
		return false
	}

	if checkDigit(digits, 9) != int(digits[9]-'0') {
		return false
	}
	return checkDigit(digits, 10) == int(digits[10]-'0')
}

// checkDigit computes the check digit over the first n digits, with weights
// descending from n+1 down to 2.
func checkDigit(digits string, n int) int {
	sum := 0
	for i := 0; i < n; i++ {
		sum += int(digits[i]-'0') * (n + 1 - i)
	}
	d := 11 - sum%11
	if d >= 10 {
		return 0
	}
	return d
}
