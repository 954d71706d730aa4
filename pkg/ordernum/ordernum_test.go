package ordernum

import (
	"regexp"
	"testing"
	"time"
)

var numberPattern = regexp.MustCompile(`^(CHK|ORD)-\d{13,}-\d{3}$`)

func TestGenerateFormat(t *testing.T) {
	t.Parallel()

	now := time.Now()

	chk, err := CheckoutNumber(now)
	if err != nil {
		t.Fatalf("checkout number: %v", err)
	}
	if !numberPattern.MatchString(chk) {
		t.Fatalf("unexpected checkout number format %q", chk)
	}

	ord, err := OrderNumber(now)
	if err != nil {
		t.Fatalf("order number: %v", err)
	}
	if !numberPattern.MatchString(ord) {
		t.Fatalf("unexpected order number format %q", ord)
	}
}

func TestGenerateRequiresPrefix(t *testing.T) {
	t.Parallel()

	if _, err := Generate("", time.Now()); err == nil {
		t.Fatal("expected missing prefix to error")
	}
}
