package server

import (
	"net/http"
	"testing"
	"time"
)

func TestGracefulServerShutdownRunsHooks(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	gs := NewGracefulServer(":0", handler, nil)

	order := make([]int, 0, 2)
	gs.OnShutdown(func() { order = append(order, 1) })
	gs.OnShutdown(func() { order = append(order, 2) })

	go func() {
		_ = gs.Start()
	}()
	time.Sleep(100 * time.Millisecond)

	if gs.IsShuttingDown() {
		t.Fatal("server should not be shutting down yet")
	}
	if err := gs.Shutdown(time.Second); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if !gs.IsShuttingDown() {
		t.Error("IsShuttingDown should report true after shutdown")
	}
	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Errorf("hooks ran out of order: %v", order)
	}
}

func TestGracefulServerShutdownIsIdempotent(t *testing.T) {
	gs := NewGracefulServer(":0", http.NotFoundHandler(), nil)

	calls := 0
	gs.OnShutdown(func() { calls++ })

	if err := gs.Shutdown(time.Second); err != nil {
		t.Fatalf("first Shutdown: %v", err)
	}
	if err := gs.Shutdown(time.Second); err != nil {
		t.Fatalf("second Shutdown: %v", err)
	}
	if calls != 1 {
		t.Errorf("hooks ran %d times, want once", calls)
	}
}
