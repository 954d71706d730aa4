package ordernum

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// Prefixes for the human-facing document numbers.
const (
	CheckoutPrefix = "CHK"
	OrderPrefix    = "ORD"
)

// Generate builds a document number of the form PREFIX-<unix ms>-<3 digits>.
// The random suffix keeps concurrent generations within the same millisecond
// from colliding; callers still retry on unique violations.
func Generate(prefix string, now time.Time) (string, error) {
	if prefix == "" {
		return "", fmt.Errorf("prefix is required")
	}
	suffix, err := rand.Int(rand.Reader, big.NewInt(1000))
	if err != nil {
		return "", fmt.Errorf("generate suffix: %w", err)
	}
	return fmt.Sprintf("%s-%d-%03d", prefix, now.UnixMilli(), suffix.Int64()), nil
}

// CheckoutNumber returns a new checkout session number.
func CheckoutNumber(now time.Time) (string, error) {
	return Generate(CheckoutPrefix, now)
}

// OrderNumber returns a new order number.
func OrderNumber(now time.Time) (string, error) {
	return Generate(OrderPrefix, now)
}
