package txn

import (
	"errors"
	"strconv"
	"strings"
)

var (
	// ErrInvalidAmount is returned for input that holds no usable positive amount.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrInvalidFee is returned for input that holds no usable non-negative fee.
	ErrInvalidFee = errors.New("invalid fee")
)

// MaxAmount is the largest amount or fee accepted. Sums of two such values
// stay exact in int64 and in float64 number columns.
const MaxAmount int64 = 1_000_000_000_000_000

// ParseAmount strips every non-digit and parses the rest as a positive integer.
// "5,000" is 5000 and "15000 lunch" is 15000.
func ParseAmount(text string) (int64, error) {
	n, ok := digits(text)
	if !ok || n <= 0 {
		return 0, ErrInvalidAmount
	}
	return n, nil
}

// ParseFee parses an admin or tax fee; zero means no fee.
func ParseFee(text string) (int64, error) {
	n, ok := digits(text)
	if !ok || n < 0 {
		return 0, ErrInvalidFee
	}
	return n, nil
}

// digits implements the shared numeric policy. A leading minus sign marks the
// input as negative and therefore invalid.
func digits(text string) (int64, bool) {
	trimmed := strings.TrimSpace(text)
	if strings.HasPrefix(trimmed, "-") {
		return 0, false
	}
	var b strings.Builder
	for _, r := range trimmed {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return 0, false
	}
	n, err := strconv.ParseInt(b.String(), 10, 64)
	if err != nil || n > MaxAmount {
		return 0, false
	}
	return n, true
}
