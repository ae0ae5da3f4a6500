package utils

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestURLSetNoDuplicates(t *testing.T) {
	s := NewURLSet()

	if !s.Add("https://www.zonaprop.com.ar/propiedades/a-1.html") {
		t.Error("first Add should return true")
	}
	if s.Add("https://www.zonaprop.com.ar/propiedades/a-1.html") {
		t.Error("second Add of same URL should return false")
	}
	if !s.Contains("https://www.zonaprop.com.ar/propiedades/a-1.html") {
		t.Error("Contains should report an added URL")
	}
	if s.Size() != 1 {
		t.Errorf("size: got %d, want 1", s.Size())
	}
}

func TestURLSetConcurrency(t *testing.T) {
	defer goleak.VerifyNone(t)

	s := NewURLSet()
	var added int64

	pool := NewWorkerPool(10, 0)
	for i := 0; i < 100; i++ {
		url := "https://www.zonaprop.com.ar/propiedades/same.html"
		pool.Submit(context.Background(), func() {
			if s.Add(url) {
				atomic.AddInt64(&added, 1)
			}
		})
	}
	pool.Wait()

	if added != 1 {
		t.Errorf("expected exactly 1 successful add, got %d", added)
	}
}

func TestWorkerPoolRateLimit(t *testing.T) {
	defer goleak.VerifyNone(t)

	rateLimitMs := 100
	pool := NewWorkerPool(1, rateLimitMs)

	var mu sync.Mutex
	var timestamps []time.Time

	for i := 0; i < 3; i++ {
		pool.Submit(context.Background(), func() {
			mu.Lock()
			timestamps = append(timestamps, time.Now())
			mu.Unlock()
		})
	}
	pool.Wait()

	min := time.Duration(rateLimitMs) * time.Millisecond
	for i := 1; i < len(timestamps); i++ {
		gap := timestamps[i].Sub(timestamps[i-1])
		if gap < min {
			t.Errorf("gap between job %d and %d: %v < minimum %v", i-1, i, gap, min)
		}
	}
}

func TestWorkerPoolSubmitAfterCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	pool := NewWorkerPool(1, 0)
	block := make(chan struct{})
	pool.Submit(context.Background(), func() { <-block })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ran := false
	if pool.Submit(ctx, func() { ran = true }) {
		t.Error("Submit should refuse work once the context is cancelled")
	}
	close(block)
	pool.Wait()

	if ran {
		t.Error("refused job must not run")
	}
}

func TestFold(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Balcón", "balcon"},
		{"ANTIGÜEDAD", "antiguedad"},
		{"Av. Córdoba 1200", "av. cordoba 1200"},
		{"baño", "bano"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := Fold(tt.in); got != tt.want {
			t.Errorf("Fold(%q) = %q; want %q", tt.in, got, tt.want)
		}
	}
}

func TestContainsAny(t *testing.T) {
	if !ContainsAny("Hermoso BALCÓN al frente", "balcon", "patio") {
		t.Error("expected accent-insensitive match")
	}
	if ContainsAny("interno sin vista", "balcon", "patio") {
		t.Error("unexpected match")
	}
	if ContainsAny("anything", "") {
		t.Error("empty needle must never match")
	}
}
