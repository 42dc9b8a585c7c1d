package worker

import (
	"context"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

func TestLimiter_New(t *testing.T) {
	limiter := NewLimiter(10, 5)
	if limiter.defaultBurst != 5 {
		t.Errorf("expected burst 5, got %d", limiter.defaultBurst)
	}

	l2 := NewLimiter(10, -1)
	if l2.defaultBurst != 5 {
		t.Errorf("expected default burst 5 for negative input, got %d", l2.defaultBurst)
	}

	l3 := NewLimiter(0, 1)
	if l3.defaultRate != rate.Inf {
		t.Errorf("expected unlimited rate for zero rps, got %v", l3.defaultRate)
	}
}

func TestLimiter_Wait(t *testing.T) {
	limiter := NewLimiter(100, 1)
	ctx := context.Background()

	if err := limiter.Wait(ctx, "http://www.althingi.is/altext/raeda/"); err != nil {
		t.Errorf("wait failed: %v", err)
	}
	if err := limiter.Wait(ctx, "http://example.com"); err != nil {
		t.Errorf("wait failed: %v", err)
	}
}

func TestLimiter_PerHost(t *testing.T) {
	// 1 rps, burst 1
	limiter := NewLimiter(1, 1)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if err := limiter.Wait(ctx, "http://example.com/a"); err != nil {
		t.Fatalf("first wait failed: %v", err)
	}
	// token of example.com is used up
	if err := limiter.Wait(ctx, "http://example.com/b"); err == nil {
		t.Error("expected second wait on the same host to exceed the deadline")
	}

	if err := limiter.Wait(context.Background(), "http://other.com"); err != nil {
		t.Errorf("expected other host to pass: %v", err)
	}
}

func TestLimiter_ApplyCrawlDelay(t *testing.T) {
	limiter := NewLimiter(10, 10)

	if err := limiter.ApplyCrawlDelay("http://slow.com/x", 10*time.Second); err != nil {
		t.Fatalf("ApplyCrawlDelay failed: %v", err)
	}
	if got := limiter.getLimiter("slow.com").Limit(); got != rate.Every(10*time.Second) {
		t.Errorf("expected crawl delay limit, got %v", got)
	}
	if got := limiter.getLimiter("slow.com").Burst(); got != 1 {
		t.Errorf("expected burst 1, got %d", got)
	}

	// a looser delay never relaxes the limit
	if err := limiter.ApplyCrawlDelay("http://slow.com/x", 10*time.Millisecond); err != nil {
		t.Fatalf("ApplyCrawlDelay failed: %v", err)
	}
	if got := limiter.getLimiter("slow.com").Limit(); got != rate.Every(10*time.Second) {
		t.Errorf("expected limit unchanged, got %v", got)
	}

	if err := limiter.ApplyCrawlDelay("http://fast.com", 0); err != nil {
		t.Fatalf("ApplyCrawlDelay failed: %v", err)
	}
	if got := limiter.getLimiter("fast.com").Limit(); got != 10 {
		t.Errorf("expected default limit, got %v", got)
	}
}

func TestExtractHost(t *testing.T) {
	host, err := extractHost("http://example.com:8080/foo")
	if err != nil {
		t.Fatalf("extractHost failed: %v", err)
	}
	if host != "example.com:8080" {
		t.Errorf("expected example.com:8080, got %s", host)
	}

	_, err = extractHost("::invalid")
	if err == nil {
		t.Errorf("expected error for invalid URL")
	}
}
