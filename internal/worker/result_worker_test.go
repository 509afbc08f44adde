package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeroclasses/zero-backend/internal/model"
)

type memSource struct {
	mu    sync.Mutex
	items []model.QuizResult
	back  []model.QuizResult
}

func (s *memSource) Pop(ctx context.Context, timeout time.Duration) (model.QuizResult, bool, error) {
	s.mu.Lock()
	if len(s.items) > 0 {
		res := s.items[0]
		s.items = s.items[1:]
		s.mu.Unlock()
		return res, true, nil
	}
	s.mu.Unlock()

	select {
	case <-ctx.Done():
		return model.QuizResult{}, false, ctx.Err()
	case <-time.After(time.Millisecond):
		return model.QuizResult{}, false, nil
	}
}

func (s *memSource) Enqueue(_ context.Context, res model.QuizResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.back = append(s.back, res)
	return nil
}

type memStore struct {
	mu        sync.Mutex
	batchErr  error
	failIDs   map[uuid.UUID]bool
	failErr   error
	saved     []model.QuizResult
	batchRuns int
}

func (s *memStore) CreateBatch(_ context.Context, batch []model.QuizResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batchRuns++
	if s.batchErr != nil {
		return s.batchErr
	}
	s.saved = append(s.saved, batch...)
	return nil
}

func (s *memStore) Create(_ context.Context, res model.QuizResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failIDs[res.ID] {
		if s.failErr != nil {
			return s.failErr
		}
		return errors.New("connection reset")
	}
	s.saved = append(s.saved, res)
	return nil
}

func (s *memStore) savedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.saved)
}

func newResult() model.QuizResult {
	return model.QuizResult{ID: uuid.New(), QuizID: uuid.New(), StudentID: uuid.New(), Score: 1, Total: 3}
}

func TestResultWorker_FlushesOnShutdown(t *testing.T) {
	src := &memSource{items: []model.QuizResult{newResult(), newResult(), newResult()}}
	store := &memStore{}
	w := NewResultWorker(store, src, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		src.mu.Lock()
		defer src.mu.Unlock()
		return len(src.items) == 0
	}, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("worker did not stop")
	}
	assert.Equal(t, 3, store.savedCount())
}

func TestResultWorker_FallbackRequeuesFailedRows(t *testing.T) {
	good, bad := newResult(), newResult()
	src := &memSource{}
	store := &memStore{
		batchErr: errors.New("batch rejected"),
		failIDs:  map[uuid.UUID]bool{bad.ID: true},
	}
	w := NewResultWorker(store, src, zerolog.Nop())

	w.flushSafe(context.Background(), []model.QuizResult{good, bad})

	require.Len(t, store.saved, 1)
	assert.Equal(t, good.ID, store.saved[0].ID)
	require.Len(t, src.back, 1)
	assert.Equal(t, bad.ID, src.back[0].ID)
}

func TestResultWorker_FallbackDropsRejectedRows(t *testing.T) {
	good, orphan := newResult(), newResult()
	src := &memSource{}
	store := &memStore{
		batchErr: &pgconn.PgError{Code: "23503", ConstraintName: "quiz_results_quiz_id_fkey"},
		failIDs:  map[uuid.UUID]bool{orphan.ID: true},
		failErr:  &pgconn.PgError{Code: "23503", ConstraintName: "quiz_results_quiz_id_fkey"},
	}
	w := NewResultWorker(store, src, zerolog.Nop())

	w.flushSafe(context.Background(), []model.QuizResult{good, orphan})

	require.Len(t, store.saved, 1)
	assert.Equal(t, good.ID, store.saved[0].ID)
	assert.Empty(t, src.back)
}

func TestResultWorker_EmptyFlushIsNoop(t *testing.T) {
	store := &memStore{}
	w := NewResultWorker(store, &memSource{}, zerolog.Nop())

	w.flushSafe(context.Background(), nil)
	assert.Zero(t, store.batchRuns)
}
