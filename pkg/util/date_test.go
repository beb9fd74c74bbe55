package util

import (
	"testing"
	"time"
)

func TestDayKeyUsesOwnLocation(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	// 23:30 in New York is already the next day in UTC.
	late := time.Date(2026, 4, 5, 23, 30, 0, 0, ny)
	if got := DayKey(late); got != "2026-04-05" {
		t.Fatalf("got %q, want 2026-04-05", got)
	}
}

func TestParseDayRoundTrip(t *testing.T) {
	d, ok := ParseDay("2026-04-05")
	if !ok {
		t.Fatal("parse failed")
	}
	if DayKey(d) != "2026-04-05" {
		t.Fatalf("round trip got %q", DayKey(d))
	}
	if _, ok := ParseDay(""); ok {
		t.Fatal("empty key must not parse")
	}
	if _, ok := ParseDay("04/05/2026"); ok {
		t.Fatal("wrong layout must not parse")
	}
}

func TestSameDayAcrossZones(t *testing.T) {
	ny, _ := time.LoadLocation("America/New_York")
	a := time.Date(2026, 4, 5, 22, 0, 0, 0, ny)
	b := time.Date(2026, 4, 6, 1, 0, 0, 0, time.UTC) // 21:00 on the 5th in NY
	if !SameDay(a, b) {
		t.Fatal("expected same calendar day in a's location")
	}
	c := time.Date(2026, 4, 6, 12, 0, 0, 0, time.UTC)
	if SameDay(a, c) {
		t.Fatal("different days must not match")
	}
}

func TestBeforeDay(t *testing.T) {
	if !BeforeDay("2026-04-05", "2026-04-06") {
		t.Fatal("earlier day must sort before")
	}
	if BeforeDay("2026-04-06", "2026-04-06") {
		t.Fatal("equal days are not before")
	}
	if BeforeDay("garbage", "2026-04-06") {
		t.Fatal("unparseable key compares as not-before")
	}
}
