package handler

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeroclasses/zero-backend/internal/model"
	"github.com/zeroclasses/zero-backend/internal/service"
)

type recordingSink struct {
	mu       sync.Mutex
	failFrom int
	writes   []interface{}
	closed   []string
}

func (s *recordingSink) WriteTyped(v interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failFrom > 0 && len(s.writes)+1 >= s.failFrom {
		return errors.New("broken pipe")
	}
	s.writes = append(s.writes, v)
	return nil
}

func (s *recordingSink) CloseNormal(reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = append(s.closed, reason)
}

func runForward(t *testing.T, sink *recordingSink, events <-chan service.AttemptEvent) {
	t.Helper()
	h := NewWSHandler(nil, zerolog.Nop(), nil)
	done := make(chan struct{})
	go func() {
		h.forward(sink, events)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("forward did not return")
	}
}

func TestWSHandler_ForwardClosesAfterTerminalEvent(t *testing.T) {
	id := uuid.New()
	events := make(chan service.AttemptEvent, 2)
	events <- service.AttemptEvent{Type: service.EventTick, AttemptID: id, Remaining: 3}
	events <- service.AttemptEvent{Type: service.EventSubmitted, AttemptID: id, Result: &model.QuizResult{ID: uuid.New()}}
	close(events)

	sink := &recordingSink{}
	runForward(t, sink, events)

	assert.Len(t, sink.writes, 2)
	assert.Equal(t, []string{"attempt finished"}, sink.closed)
}

func TestWSHandler_ForwardClosesOnWriteError(t *testing.T) {
	id := uuid.New()
	// Left open: a dead client must not wait for the attempt to end.
	events := make(chan service.AttemptEvent, 3)
	for i := 3; i > 0; i-- {
		events <- service.AttemptEvent{Type: service.EventTick, AttemptID: id, Remaining: i}
	}

	sink := &recordingSink{failFrom: 2}
	runForward(t, sink, events)

	require.Len(t, sink.closed, 1)
	assert.Equal(t, "write failed", sink.closed[0])
	assert.Len(t, sink.writes, 1)
}
