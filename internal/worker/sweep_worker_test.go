package worker

import (
	"testing"
	"time"

	"github.com/spec-kit/supportiq/internal/service"
)

func TestSweepWorkerDisabledWithoutPositiveInterval(t *testing.T) {
	for _, interval := range []time.Duration{0, -time.Second} {
		w := NewSweepWorker(&service.PromotionService{}, interval, nil)
		w.Start()
		w.Stop()
	}
}

func TestSweepWorkerStartStop(t *testing.T) {
	w := NewSweepWorker(&service.PromotionService{}, time.Hour, nil)
	w.Start()

	done := make(chan struct{})
	go func() {
		w.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop did not return")
	}
}
