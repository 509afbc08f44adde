package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/zeroclasses/zero-backend/internal/model"
	"github.com/zeroclasses/zero-backend/internal/repository"
)

const (
	ResultBatchSize    = 50
	ResultBatchTimeout = 2 * time.Second
	ResultPollTimeout  = 1 * time.Second
)

// ResultStore is the durable home of quiz results.
type ResultStore interface {
	CreateBatch(ctx context.Context, batch []model.QuizResult) error
	Create(ctx context.Context, res model.QuizResult) error
}

// ResultSource feeds the worker and takes back results it could not write.
type ResultSource interface {
	Pop(ctx context.Context, timeout time.Duration) (model.QuizResult, bool, error)
	Enqueue(ctx context.Context, res model.QuizResult) error
}

// ResultWorker drains queued quiz results into the database in batches.
type ResultWorker struct {
	store  ResultStore
	source ResultSource
	log    zerolog.Logger
}

func NewResultWorker(store ResultStore, source ResultSource, log zerolog.Logger) *ResultWorker {
	return &ResultWorker{
		store:  store,
		source: source,
		log:    log.With().Str("component", "result_worker").Logger(),
	}
}

// ----------------------------------------------------------------
// Worker loop with batching
// ----------------------------------------------------------------

// Start runs until ctx is cancelled, then flushes what it holds.
func (w *ResultWorker) Start(ctx context.Context) {
	w.log.Info().Msg("ResultWorker started")

	batch := make([]model.QuizResult, 0, ResultBatchSize)
	lastFlush := time.Now()

	for {
		if len(batch) > 0 &&
			(len(batch) >= ResultBatchSize || time.Since(lastFlush) >= ResultBatchTimeout) {

			w.flushSafe(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Int("pending", len(batch)).Msg("Shutdown requested. Flushing remaining batch...")
			w.flushSafe(context.Background(), batch)
			return

		default:
			res, ok, err := w.source.Pop(ctx, ResultPollTimeout)
			if err != nil {
				if ctx.Err() == nil {
					w.log.Error().Err(err).Msg("Queue pop failed")
				}
				continue
			}
			if !ok {
				continue
			}
			batch = append(batch, res)
		}
	}
}

// ----------------------------------------------------------------
// Batch insert with per-row fallback
// ----------------------------------------------------------------

func (w *ResultWorker) flushSafe(ctx context.Context, batch []model.QuizResult) {
	if len(batch) == 0 {
		return
	}

	err := w.store.CreateBatch(ctx, batch)
	if err == nil {
		w.log.Debug().Int("count", len(batch)).Msg("Results persisted")
		return
	}
	w.log.Warn().Err(err).Int("count", len(batch)).Msg("Bulk result insert failed, using fallback")

	for _, res := range batch {
		if err := w.store.Create(ctx, res); err != nil {
			if repository.IsIntegrityViolation(err) {
				w.log.Error().Err(err).Str("result_id", res.ID.String()).Msg("Result rejected by database, dropping")
				continue
			}
			w.log.Error().Err(err).Str("result_id", res.ID.String()).Msg("Single insert failed, requeueing")
			if err := w.source.Enqueue(ctx, res); err != nil {
				w.log.Error().Err(err).Str("result_id", res.ID.String()).Msg("Requeue failed, result lost")
			}
		}
	}
}
