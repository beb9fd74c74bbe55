package ratelimit

import (
	"testing"
	"time"
)

func TestBurstUpToCapacity(t *testing.T) {
	l := New()
	for i := 0; i < 3; i++ {
		if !l.Allow("k", 3, 1) {
			t.Fatalf("request %d denied within capacity", i)
		}
	}
	if l.Allow("k", 3, 1) {
		t.Fatal("request over capacity must be denied")
	}
}

func TestRefill(t *testing.T) {
	l := New()
	// Drain the bucket.
	for l.Allow("k", 2, 100) {
	}
	time.Sleep(20 * time.Millisecond)
	if !l.Allow("k", 2, 100) {
		t.Fatal("token not refilled")
	}
}

func TestKeysAreIndependent(t *testing.T) {
	l := New()
	if !l.Allow("a", 1, 1) {
		t.Fatal("first key denied")
	}
	if l.Allow("a", 1, 1) {
		t.Fatal("drained key allowed")
	}
	if !l.Allow("b", 1, 1) {
		t.Fatal("fresh key denied")
	}
}
