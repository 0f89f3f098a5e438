package util

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestWaitForMetricPolls(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if hits.Add(1) < 3 {
			fmt.Fprintln(w, "evdash_producer_up 0")
			return
		}
		fmt.Fprintln(w, "evdash_producer_up 1")
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), MetricTimeout)
	defer cancel()
	if err := WaitForMetric(ctx, srv.URL, "evdash_producer_up 1"); err != nil {
		t.Fatalf("wait: %v", err)
	}
	if hits.Load() < 3 {
		t.Fatalf("expected polling, got %d requests", hits.Load())
	}
}

func TestWaitForMetricTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintln(w, "other 1")
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	if err := WaitForMetric(ctx, srv.URL, "evdash_speed_kmh"); err == nil {
		t.Fatal("expected timeout error")
	}
}

func TestStartRedisEndpoint(t *testing.T) {
	addr := RequireRedis(t)
	if addr == "" {
		t.Fatal("empty redis address")
	}
}
