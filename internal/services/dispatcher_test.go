package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/advocate-bot/internal/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type recordingHandler struct {
	mu      sync.Mutex
	seen    []string
	block   chan struct{}
	panicOn string
}

func (h *recordingHandler) Handle(_ context.Context, ev dto.MessagingEvent) *TurnResult {
	if h.block != nil {
		<-h.block
	}
	if ev.Sender.ID == h.panicOn {
		panic("boom")
	}
	h.mu.Lock()
	h.seen = append(h.seen, ev.Sender.ID)
	h.mu.Unlock()
	return &TurnResult{SenderID: ev.Sender.ID}
}

func (h *recordingHandler) ids() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.seen...)
}

func event(id string) dto.MessagingEvent {
	return dto.MessagingEvent{Sender: dto.Party{ID: id}}
}

func TestDispatcherRunsInOrder(t *testing.T) {
	defer goleak.VerifyNone(t)

	h := &recordingHandler{}
	d := NewDispatcher(h, 16, time.Second)
	d.Start()

	for _, id := range []string{"a", "b", "c", "d"} {
		require.NoError(t, d.Enqueue(event(id)))
	}
	require.NoError(t, d.Stop(context.Background()))

	assert.Equal(t, []string{"a", "b", "c", "d"}, h.ids())
	assert.ErrorIs(t, d.Enqueue(event("late")), ErrDispatcherStopped)
	assert.NoError(t, d.Stop(context.Background()))
}

func TestDispatcherQueueFull(t *testing.T) {
	defer goleak.VerifyNone(t)

	h := &recordingHandler{block: make(chan struct{})}
	d := NewDispatcher(h, 1, time.Second)

	require.NoError(t, d.Enqueue(event("a")))
	assert.ErrorIs(t, d.Enqueue(event("b")), ErrQueueFull)
	assert.Equal(t, 1, d.Len())

	d.Start()
	close(h.block)
	require.NoError(t, d.Stop(context.Background()))
	assert.Equal(t, []string{"a"}, h.ids())
}

func TestDispatcherSurvivesPanic(t *testing.T) {
	defer goleak.VerifyNone(t)

	h := &recordingHandler{panicOn: "bad"}
	d := NewDispatcher(h, 4, time.Second)
	d.Start()

	require.NoError(t, d.Enqueue(event("bad")))
	require.NoError(t, d.Enqueue(event("good")))
	require.NoError(t, d.Stop(context.Background()))

	assert.Equal(t, []string{"good"}, h.ids())
}

func TestDispatcherStopTimesOut(t *testing.T) {
	h := &recordingHandler{block: make(chan struct{})}
	d := NewDispatcher(h, 4, time.Second)
	d.Start()
	require.NoError(t, d.Enqueue(event("a")))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, d.Stop(ctx), context.DeadlineExceeded)

	close(h.block)
	<-d.done
}

func TestStopWithoutStart(t *testing.T) {
	d := NewDispatcher(&recordingHandler{}, 0, 0)
	assert.NoError(t, d.Stop(context.Background()))
	d.Start()
	assert.ErrorIs(t, d.Enqueue(event("a")), ErrDispatcherStopped)
}
