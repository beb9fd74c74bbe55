package kalshi

import (
	"testing"
	"time"
)

func TestEventTickerAllMonths(t *testing.T) {
	want := map[time.Month]string{
		time.January:   "KXHIGHNY-26JAN05",
		time.February:  "KXHIGHNY-26FEB05",
		time.March:     "KXHIGHNY-26MAR05",
		time.April:     "KXHIGHNY-26APR05",
		time.May:       "KXHIGHNY-26MAY05",
		time.June:      "KXHIGHNY-26JUN05",
		time.July:      "KXHIGHNY-26JUL05",
		time.August:    "KXHIGHNY-26AUG05",
		time.September: "KXHIGHNY-26SEP05",
		time.October:   "KXHIGHNY-26OCT05",
		time.November:  "KXHIGHNY-26NOV05",
		time.December:  "KXHIGHNY-26DEC05",
	}
	for month, expected := range want {
		date := time.Date(2026, month, 5, 0, 0, 0, 0, time.UTC)
		if got := EventTicker("KXHIGHNY", date); got != expected {
			t.Fatalf("%s: got %s, want %s", month, got, expected)
		}
	}
}

func TestEventTickerZeroPadsDay(t *testing.T) {
	date := time.Date(2026, time.April, 5, 0, 0, 0, 0, time.UTC)
	if got := EventTicker("KXHIGHNY", date); got != "KXHIGHNY-26APR05" {
		t.Fatalf("got %s", got)
	}
	date = time.Date(2026, time.April, 15, 0, 0, 0, 0, time.UTC)
	if got := EventTicker("KXHIGHNY", date); got != "KXHIGHNY-26APR15" {
		t.Fatalf("got %s", got)
	}
}

func fl(v float64) *float64 { return &v }

func TestParseBucketFromStrikes(t *testing.T) {
	b, ok := ParseBucket(fl(41), fl(42), "")
	if !ok || *b.Low != 41 || *b.High != 42 {
		t.Fatalf("got %+v ok=%v", b, ok)
	}

	b, ok = ParseBucket(nil, fl(40), "ignored subtitle")
	if !ok || b.Low != nil || *b.High != 40 {
		t.Fatalf("cap-only strike: got %+v ok=%v", b, ok)
	}

	b, ok = ParseBucket(fl(50), nil, "")
	if !ok || *b.Low != 50 || b.High != nil {
		t.Fatalf("floor-only strike: got %+v ok=%v", b, ok)
	}

	if _, ok = ParseBucket(fl(42), fl(41), ""); ok {
		t.Fatal("inverted strikes must fail")
	}
}

func TestParseBucketFromSubtitle(t *testing.T) {
	tests := []struct {
		subtitle  string
		low, high *float64
	}{
		{"40° or below", nil, fl(40)},
		{"≤40", nil, fl(40)},
		{"41° to 42°", fl(41), fl(42)},
		{"41-42", fl(41), fl(42)},
		{"43° or above", fl(43), nil},
		{"≥43", fl(43), nil},
	}
	for _, tt := range tests {
		b, ok := ParseBucket(nil, nil, tt.subtitle)
		if !ok {
			t.Fatalf("%q: parse failed", tt.subtitle)
		}
		if !boundEq(b.Low, tt.low) || !boundEq(b.High, tt.high) {
			t.Fatalf("%q: got %+v", tt.subtitle, b)
		}
	}
}

func TestParseBucketUnreadable(t *testing.T) {
	for _, subtitle := range []string{"", "sunny", "soon"} {
		if _, ok := ParseBucket(nil, nil, subtitle); ok {
			t.Fatalf("%q: expected failure", subtitle)
		}
	}
}

func boundEq(a, b *float64) bool {
	if (a == nil) != (b == nil) {
		return false
	}
	return a == nil || *a == *b
}
