package cache

import (
	"testing"
	"time"
)

func TestTTLCacheSetGet(t *testing.T) {
	c := NewTTLCache()
	c.Set("k", 42, 0)
	v, ok := c.Get("k")
	if !ok || v.(int) != 42 {
		t.Fatalf("got %v %v, want 42 true", v, ok)
	}
	if _, ok := c.Get("missing"); ok {
		t.Fatal("missing key should not be found")
	}
}

func TestTTLCacheExpiry(t *testing.T) {
	c := NewTTLCache()
	c.Set("k", "v", time.Nanosecond)
	time.Sleep(5 * time.Millisecond)
	if _, ok := c.Get("k"); ok {
		t.Fatal("entry should have expired")
	}
}

func TestTTLCacheBytes(t *testing.T) {
	c := NewTTLCache()
	if err := c.SetBytes("k", []byte("payload"), time.Minute); err != nil {
		t.Fatalf("SetBytes: %v", err)
	}
	b, ok, err := c.GetBytes("k")
	if err != nil || !ok || string(b) != "payload" {
		t.Fatalf("got %q %v %v", b, ok, err)
	}
	// non-byte values are treated as a miss
	c.Set("n", 7, time.Minute)
	if _, ok, _ := c.GetBytes("n"); ok {
		t.Fatal("non-byte entry should be a miss")
	}
}

func TestTTLCacheInvalidatePrefix(t *testing.T) {
	c := NewTTLCache()
	c.Set("cycles:crypto:BTC", 1, 0)
	c.Set("cycles:index:SPX500", 2, 0)
	c.Set("risk:crypto:BTC", 3, 0)
	if err := c.InvalidatePrefix("cycles"); err != nil {
		t.Fatalf("InvalidatePrefix: %v", err)
	}
	if _, ok := c.Get("cycles:crypto:BTC"); ok {
		t.Fatal("cycles entries should be gone")
	}
	if _, ok := c.Get("risk:crypto:BTC"); !ok {
		t.Fatal("risk entry should survive")
	}
}
