package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestTickerLoop_RunOnStartAndTicks(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var ticks int32

	done := make(chan error, 1)

	go func() {
		done <- TickerLoop(ctx, TickerConfig{
			Name:       "test",
			Interval:   5 * time.Millisecond,
			RunOnStart: true,
			OnTick: func(context.Context) {
				atomic.AddInt32(&ticks, 1)
			},
		})
	}()

	deadline := time.After(2 * time.Second)

	for atomic.LoadInt32(&ticks) < 3 {
		select {
		case <-deadline:
			t.Fatal("ticker never fired enough")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	cancel()

	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestTickerLoop_OnStop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	stopped := make(chan struct{})

	done := make(chan error, 1)

	go func() {
		done <- TickerLoop(ctx, TickerConfig{
			Name:     "test",
			Interval: time.Hour,
			OnStop:   func() { close(stopped) },
		})
	}()

	cancel()
	<-done

	select {
	case <-stopped:
	default:
		t.Error("OnStop not called")
	}
}

func TestWait_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := Wait(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestWait_Elapses(t *testing.T) {
	if err := Wait(context.Background(), time.Millisecond); err != nil {
		t.Errorf("err = %v, want nil", err)
	}
}
