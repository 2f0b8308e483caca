package subscription

import (
	"strconv"
	"testing"
	"time"
)

func TestNewExternalAccountIDWidth(t *testing.T) {
	now := time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 100; i++ {
		id := newExternalAccountID(now)
		if id <= 0 {
			t.Fatalf("expected positive id, got %d", id)
		}
		if got := len(strconv.FormatInt(id, 10)); got > externalAccountIDDigits {
			t.Fatalf("id %d has %d digits, want at most %d", id, got, externalAccountIDDigits)
		}
	}
}

func TestNewExternalAccountIDVariesWithClock(t *testing.T) {
	a := newExternalAccountID(time.UnixMilli(1700000000000))
	b := newExternalAccountID(time.UnixMilli(1700000123456))
	if a == b {
		t.Fatalf("ids for different timestamps should almost never collide, got %d twice", a)
	}
}
