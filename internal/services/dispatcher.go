package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ahmetcoskunkizilkaya/advocate-bot/internal/dto"
	"github.com/getsentry/sentry-go"
)

var (
	ErrQueueFull         = errors.New("dispatcher queue is full")
	ErrDispatcherStopped = errors.New("dispatcher is stopped")
)

// TurnHandler runs one turn. *Conversation implements it.
type TurnHandler interface {
	Handle(ctx context.Context, ev dto.MessagingEvent) *TurnResult
}

// Dispatcher runs turns on a single worker goroutine, in arrival order, after
// the webhook has already been acknowledged.
type Dispatcher struct {
	handler TurnHandler
	queue   chan dto.MessagingEvent
	timeout time.Duration
	done    chan struct{}

	mu      sync.Mutex
	stopped bool
	started bool
}

func NewDispatcher(handler TurnHandler, size int, timeout time.Duration) *Dispatcher {
	if size <= 0 {
		size = 256
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Dispatcher{
		handler: handler,
		queue:   make(chan dto.MessagingEvent, size),
		timeout: timeout,
		done:    make(chan struct{}),
	}
}

func (d *Dispatcher) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started || d.stopped {
		return
	}
	d.started = true
	go d.loop()
}

// Enqueue never blocks; a full queue drops the event.
func (d *Dispatcher) Enqueue(ev dto.MessagingEvent) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return ErrDispatcherStopped
	}
	select {
	case d.queue <- ev:
		return nil
	default:
		return ErrQueueFull
	}
}

func (d *Dispatcher) Len() int {
	return len(d.queue)
}

// Stop rejects new events and waits for queued turns to finish or ctx to end.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return nil
	}
	d.stopped = true
	close(d.queue)
	started := d.started
	d.mu.Unlock()

	if !started {
		return nil
	}
	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("dispatcher drain: %w", ctx.Err())
	}
}

func (d *Dispatcher) loop() {
	defer close(d.done)
	for ev := range d.queue {
		d.run(ev)
	}
}

func (d *Dispatcher) run(ev dto.MessagingEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			sentry.CurrentHub().Recover(r)
			slog.Error("turn panicked", "sender_id", ev.Sender.ID, "error", fmt.Sprint(r))
		}
	}()

	start := time.Now()
	res := d.handler.Handle(ctx, ev)
	if res == nil {
		return
	}
	LogTurn(res, time.Since(start))
}

// LogTurn writes one record per failure plus a debug summary.
func LogTurn(res *TurnResult, elapsed time.Duration) {
	for _, f := range res.Failures {
		slog.Error("turn step failed",
			"sender_id", res.SenderID,
			"event", res.Kind.String(),
			"op", f.Op,
			"error", f.Err.Error(),
		)
	}
	slog.Debug("turn finished",
		"sender_id", res.SenderID,
		"event", res.Kind.String(),
		"sends", res.Sends,
		"writes", res.Writes,
		"failures", len(res.Failures),
		"latency_ms", float64(elapsed.Microseconds())/1000,
	)
}
