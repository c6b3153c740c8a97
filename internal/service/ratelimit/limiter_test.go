package ratelimit

import "testing"

func TestAllowConsumesTokens(t *testing.T) {
	l := New()
	for i := 0; i < 3; i++ {
		if !l.Allow("a", 3, 0) {
			t.Fatalf("request %d: expected allow", i)
		}
	}
	if l.Allow("a", 3, 0) {
		t.Fatal("expected deny once bucket is drained")
	}
}

func TestAllowKeysAreIndependent(t *testing.T) {
	l := New()
	if !l.Allow("a", 1, 0) {
		t.Fatal("first key should be allowed")
	}
	if l.Allow("a", 1, 0) {
		t.Fatal("first key should be drained")
	}
	if !l.Allow("b", 1, 0) {
		t.Fatal("second key has its own bucket")
	}
}
