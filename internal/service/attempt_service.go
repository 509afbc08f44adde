package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/zeroclasses/zero-backend/internal/assessment"
	"github.com/zeroclasses/zero-backend/internal/model"
	"github.com/zeroclasses/zero-backend/internal/repository"
)

// Attempt errors.
var (
	ErrAttemptNotFound   = errors.New("attempt not found")
	ErrAttemptInProgress = errors.New("attempt still in progress")
	ErrResultNotSaved    = errors.New("result could not be saved")
)

const (
	subscriberBuffer = 8
	persistTimeout   = 5 * time.Second

	minJanitorInterval = 10 * time.Millisecond
)

// QuizLoader fetches the full quiz, answer key included.
type QuizLoader interface {
	GetForAttempt(ctx context.Context, id uuid.UUID) (*model.Quiz, error)
}

// EnrollmentChecker tells whether a student may take a course's quizzes.
type EnrollmentChecker interface {
	IsEnrolled(ctx context.Context, courseID, studentID uuid.UUID) (bool, error)
}

// ResultRecorder stores a finished result. Create must be idempotent on the
// result ID.
type ResultRecorder interface {
	Create(ctx context.Context, res model.QuizResult) error
}

// ResultEnqueuer hands a result to the background writer.
type ResultEnqueuer interface {
	Enqueue(ctx context.Context, res model.QuizResult) error
}

// AttemptEventType names the events streamed to attempt subscribers.
type AttemptEventType string

const (
	EventTick      AttemptEventType = "tick"
	EventSubmitted AttemptEventType = "submitted"
	EventAbandoned AttemptEventType = "abandoned"
)

// AttemptEvent is pushed to subscribers of an attempt.
type AttemptEvent struct {
	Type      AttemptEventType  `json:"type"`
	AttemptID uuid.UUID         `json:"attempt_id"`
	Remaining int               `json:"remaining_seconds"`
	Result    *model.QuizResult `json:"result,omitempty"`
}

// AttemptView is the client-facing state of an attempt.
type AttemptView struct {
	ID        uuid.UUID `json:"id"`
	StartedAt time.Time `json:"started_at"`
	assessment.View
	ResultSaved    bool                  `json:"result_saved"`
	ResultRejected bool                  `json:"result_rejected,omitempty"`
	Quiz           *model.QuizForStudent `json:"quiz,omitempty"`
}

// Attempt is one live quiz session with its timer and subscribers.
type Attempt struct {
	ID uuid.UUID

	mu          sync.Mutex
	session     *assessment.Session
	startedAt   time.Time
	finishedAt  time.Time
	saved       bool
	rejected    bool
	stop        context.CancelFunc
	subscribers map[int]chan AttemptEvent
	nextSub     int
	closed      bool
}

func (a *Attempt) viewLocked() AttemptView {
	return AttemptView{
		ID:             a.ID,
		StartedAt:      a.startedAt,
		View:           a.session.Snapshot(),
		ResultSaved:    a.saved,
		ResultRejected: a.rejected,
	}
}

// publishLocked fans ev out to subscribers. Ticks are dropped for slow
// readers; terminal events evict a queued tick to make room and then close
// every channel.
func (a *Attempt) publishLocked(ev AttemptEvent, terminal bool) {
	if a.closed {
		return
	}
	for id, ch := range a.subscribers {
		select {
		case ch <- ev:
		default:
			if terminal {
				select {
				case <-ch:
				default:
				}
				select {
				case ch <- ev:
				default:
				}
			}
		}
		if terminal {
			close(ch)
			delete(a.subscribers, id)
		}
	}
	if terminal {
		a.closed = true
	}
}

type attemptOwner struct {
	studentID uuid.UUID
	quizID    uuid.UUID
}

// AttemptConfig tunes the attempt runtime.
type AttemptConfig struct {
	TickInterval time.Duration
	Retention    time.Duration
}

// AttemptService owns every running quiz attempt. Each attempt gets one
// ticker goroutine that drives its countdown; HTTP, WebSocket and the ticker
// share the attempt through its mutex.
type AttemptService struct {
	quizzes     QuizLoader
	enrollments EnrollmentChecker
	recorder    ResultRecorder
	queue       ResultEnqueuer
	cfg         AttemptConfig
	now         func() time.Time
	log         zerolog.Logger

	mu       sync.Mutex
	attempts map[uuid.UUID]*Attempt
	byOwner  map[attemptOwner]uuid.UUID

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewAttemptService creates the runtime and starts its janitor.
func NewAttemptService(
	cfg AttemptConfig,
	quizzes QuizLoader,
	enrollments EnrollmentChecker,
	recorder ResultRecorder,
	queue ResultEnqueuer,
	log zerolog.Logger,
) *AttemptService {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = time.Second
	}
	if cfg.Retention <= 0 {
		cfg.Retention = 30 * time.Minute
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &AttemptService{
		quizzes:     quizzes,
		enrollments: enrollments,
		recorder:    recorder,
		queue:       queue,
		cfg:         cfg,
		now:         time.Now,
		log:         log.With().Str("component", "attempt_service").Logger(),
		attempts:    make(map[uuid.UUID]*Attempt),
		byOwner:     make(map[attemptOwner]uuid.UUID),
		ctx:         ctx,
		cancel:      cancel,
	}
	s.wg.Add(1)
	go s.janitor()
	return s
}

// Start begins an attempt at quizID for a student. If the student already has
// an attempt in progress for that quiz it is returned instead, with created
// set to false.
func (s *AttemptService) Start(ctx context.Context, actor Actor, quizID uuid.UUID) (*AttemptView, bool, error) {
	if !actor.IsStudent() {
		return nil, false, ErrStudentsOnly
	}
	owner := attemptOwner{studentID: actor.ID, quizID: quizID}

	if view, ok := s.existing(owner); ok {
		return view, false, nil
	}

	quiz, err := s.quizzes.GetForAttempt(ctx, quizID)
	if err != nil {
		return nil, false, err
	}
	enrolled, err := s.enrollments.IsEnrolled(ctx, quiz.CourseID, actor.ID)
	if err != nil {
		return nil, false, fmt.Errorf("check enrollment: %w", err)
	}
	if !enrolled {
		return nil, false, ErrNotEnrolled
	}

	session, err := assessment.Start(*quiz, actor.ID)
	if err != nil {
		return nil, false, err
	}

	s.mu.Lock()
	if view, ok := s.existingLocked(owner); ok {
		s.mu.Unlock()
		return view, false, nil
	}
	timerCtx, stop := context.WithCancel(s.ctx)
	a := &Attempt{
		ID:          uuid.New(),
		session:     session,
		startedAt:   s.now().UTC(),
		stop:        stop,
		subscribers: make(map[int]chan AttemptEvent),
	}
	s.attempts[a.ID] = a
	s.byOwner[owner] = a.ID
	s.wg.Add(1)
	go s.runTimer(timerCtx, a)
	s.mu.Unlock()

	s.log.Info().
		Str("attempt_id", a.ID.String()).
		Str("quiz_id", quizID.String()).
		Str("student_id", actor.ID.String()).
		Int("remaining", session.Remaining()).
		Msg("Attempt started")

	a.mu.Lock()
	view := a.viewLocked()
	a.mu.Unlock()
	student := quiz.ForStudent()
	view.Quiz = &student
	return &view, true, nil
}

func (s *AttemptService) existing(owner attemptOwner) (*AttemptView, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.existingLocked(owner)
}

// existingLocked returns the owner's in-progress attempt. Requires s.mu.
func (s *AttemptService) existingLocked(owner attemptOwner) (*AttemptView, bool) {
	id, ok := s.byOwner[owner]
	if !ok {
		return nil, false
	}
	a := s.attempts[id]
	if a == nil {
		delete(s.byOwner, owner)
		return nil, false
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.session.Status() != assessment.StatusInProgress {
		return nil, false
	}
	view := a.viewLocked()
	quiz := a.session.Quiz()
	student := quiz.ForStudent()
	view.Quiz = &student
	return &view, true
}

// runTimer ticks the session once per interval until it submits itself or
// the attempt is stopped.
func (s *AttemptService) runTimer(ctx context.Context, a *Attempt) {
	defer s.wg.Done()
	ticker := time.NewTicker(s.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		a.mu.Lock()
		if a.session.Status() != assessment.StatusInProgress {
			a.mu.Unlock()
			return
		}
		if !a.session.Tick(s.now()) {
			a.publishLocked(AttemptEvent{
				Type:      EventTick,
				AttemptID: a.ID,
				Remaining: a.session.Remaining(),
			}, false)
			a.mu.Unlock()
			continue
		}
		res, _ := a.session.Result()
		a.finishedAt = s.now()
		a.stop()
		a.publishLocked(AttemptEvent{Type: EventSubmitted, AttemptID: a.ID, Result: &res}, true)
		a.mu.Unlock()

		s.log.Info().
			Str("attempt_id", a.ID.String()).
			Int("score", res.Score).
			Int("total", res.Total).
			Msg("Attempt auto-submitted")

		s.persistAsync(a, res)
		return
	}
}

// persistAsync writes an auto-submitted result. Nobody is waiting on it, so a
// failed write goes to the background queue. A result the database rejects
// outright is dropped.
func (s *AttemptService) persistAsync(a *Attempt, res model.QuizResult) {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	err := s.recorder.Create(ctx, res)
	if err == nil {
		s.markSaved(a)
		return
	}
	if s.rejectIfInvalid(a, res, err) {
		return
	}
	s.log.Warn().Err(err).Str("result_id", res.ID.String()).Msg("Direct result write failed, queueing")

	if s.queue == nil {
		return
	}
	if err := s.queue.Enqueue(ctx, res); err != nil {
		s.log.Error().Err(err).Str("result_id", res.ID.String()).Msg("Failed to queue result, janitor will retry")
		return
	}
	s.markSaved(a)
}

func (s *AttemptService) markSaved(a *Attempt) {
	a.mu.Lock()
	a.saved = true
	a.mu.Unlock()
}

// rejectIfInvalid marks the attempt's result as unstorable when err is an
// integrity violation. Such a result is never queued or retried.
func (s *AttemptService) rejectIfInvalid(a *Attempt, res model.QuizResult, err error) bool {
	if !repository.IsIntegrityViolation(err) {
		return false
	}
	s.log.Error().Err(err).
		Str("attempt_id", a.ID.String()).
		Str("result_id", res.ID.String()).
		Msg("Result rejected by database, dropping")
	a.mu.Lock()
	a.rejected = true
	a.mu.Unlock()
	return true
}

// lookup returns the attempt if it belongs to actor.
func (s *AttemptService) lookup(actor Actor, id uuid.UUID) (*Attempt, error) {
	s.mu.Lock()
	a, ok := s.attempts[id]
	s.mu.Unlock()
	if !ok {
		return nil, ErrAttemptNotFound
	}
	a.mu.Lock()
	owner := a.session.StudentID()
	a.mu.Unlock()
	if owner != actor.ID {
		return nil, ErrAttemptNotFound
	}
	return a, nil
}

// Get returns the current state of an attempt with its questions.
func (s *AttemptService) Get(actor Actor, id uuid.UUID) (*AttemptView, error) {
	a, err := s.lookup(actor, id)
	if err != nil {
		return nil, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	view := a.viewLocked()
	quiz := a.session.Quiz()
	student := quiz.ForStudent()
	view.Quiz = &student
	return &view, nil
}

func (s *AttemptService) mutate(actor Actor, id uuid.UUID, fn func(*assessment.Session) error) (*AttemptView, error) {
	a, err := s.lookup(actor, id)
	if err != nil {
		return nil, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := fn(a.session); err != nil {
		return nil, err
	}
	view := a.viewLocked()
	return &view, nil
}

// Answer records the chosen option for a question.
func (s *AttemptService) Answer(actor Actor, id uuid.UUID, question, option int) (*AttemptView, error) {
	return s.mutate(actor, id, func(sess *assessment.Session) error {
		return sess.SelectAnswer(question, option)
	})
}

// ToggleFlag flips the review mark on a question.
func (s *AttemptService) ToggleFlag(actor Actor, id uuid.UUID, question int) (*AttemptView, error) {
	return s.mutate(actor, id, func(sess *assessment.Session) error {
		_, err := sess.ToggleFlag(question)
		return err
	})
}

// Navigate moves to an index or one step next/prev. Targets are clamped.
func (s *AttemptService) Navigate(actor Actor, id uuid.UUID, req model.NavigateRequest) (*AttemptView, error) {
	return s.mutate(actor, id, func(sess *assessment.Session) error {
		switch {
		case req.Index != nil:
			sess.Navigate(*req.Index)
		case req.Step == "next":
			sess.Next()
		case req.Step == "prev":
			sess.Prev()
		}
		return nil
	})
}

// Submit ends the attempt and stores its result. When the write fails the
// returned view still carries the result and the error is ErrResultNotSaved;
// SaveResult retries without retaking the quiz.
func (s *AttemptService) Submit(ctx context.Context, actor Actor, id uuid.UUID) (*AttemptView, error) {
	a, err := s.lookup(actor, id)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	wasRunning := a.session.Status() == assessment.StatusInProgress
	res, err := a.session.Submit(s.now())
	if err != nil {
		a.mu.Unlock()
		return nil, err
	}
	if wasRunning {
		a.finishedAt = s.now()
		a.stop()
		a.publishLocked(AttemptEvent{Type: EventSubmitted, AttemptID: a.ID, Result: &res}, true)
	}
	pending := !a.saved && !a.rejected
	a.mu.Unlock()

	if wasRunning {
		s.log.Info().
			Str("attempt_id", a.ID.String()).
			Int("score", res.Score).
			Int("total", res.Total).
			Msg("Attempt submitted")
	}

	if pending {
		if err := s.recorder.Create(ctx, res); err != nil {
			if !s.rejectIfInvalid(a, res, err) {
				s.log.Error().Err(err).Str("attempt_id", a.ID.String()).Msg("Failed to save result")
			}
			return s.view(a), ErrResultNotSaved
		}
		s.markSaved(a)
	}
	return s.view(a), nil
}

// SaveResult retries persisting a submitted attempt's result.
func (s *AttemptService) SaveResult(ctx context.Context, actor Actor, id uuid.UUID) (*AttemptView, error) {
	a, err := s.lookup(actor, id)
	if err != nil {
		return nil, err
	}
	a.mu.Lock()
	res, ok := a.session.Result()
	saved, rejected := a.saved, a.rejected
	a.mu.Unlock()
	if !ok {
		return nil, ErrAttemptInProgress
	}
	if rejected {
		return s.view(a), ErrResultNotSaved
	}
	if !saved {
		if err := s.recorder.Create(ctx, res); err != nil {
			if !s.rejectIfInvalid(a, res, err) {
				s.log.Error().Err(err).Str("attempt_id", a.ID.String()).Msg("Retry save failed")
			}
			return s.view(a), ErrResultNotSaved
		}
		s.markSaved(a)
	}
	return s.view(a), nil
}

func (s *AttemptService) view(a *Attempt) *AttemptView {
	a.mu.Lock()
	defer a.mu.Unlock()
	v := a.viewLocked()
	return &v
}

// Review lists each question with the chosen and correct options once the
// attempt is submitted.
func (s *AttemptService) Review(actor Actor, id uuid.UUID) ([]assessment.ReviewItem, error) {
	a, err := s.lookup(actor, id)
	if err != nil {
		return nil, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	items, err := a.session.Review()
	if errors.Is(err, assessment.ErrNotSubmitted) {
		return nil, ErrAttemptInProgress
	}
	return items, err
}

// Abandon discards an attempt and stops its timer. No result is recorded for
// an attempt abandoned before submission.
func (s *AttemptService) Abandon(actor Actor, id uuid.UUID) error {
	a, err := s.lookup(actor, id)
	if err != nil {
		return err
	}

	a.mu.Lock()
	a.stop()
	remaining := a.session.Remaining()
	quizID := a.session.QuizID()
	unsaved := a.session.Status() == assessment.StatusSubmitted && !a.saved && !a.rejected
	a.publishLocked(AttemptEvent{Type: EventAbandoned, AttemptID: a.ID, Remaining: remaining}, true)
	a.mu.Unlock()

	if unsaved {
		// A submitted result survives its attempt; the janitor is not going
		// to see it again once it leaves the map.
		if res, ok := s.resultOf(a); ok && s.queue != nil {
			if err := s.queue.Enqueue(s.ctx, res); err != nil {
				s.log.Error().Err(err).Str("result_id", res.ID.String()).Msg("Failed to queue result of abandoned attempt")
			}
		}
	}

	s.remove(a.ID, attemptOwner{studentID: actor.ID, quizID: quizID})
	s.log.Info().Str("attempt_id", a.ID.String()).Msg("Attempt abandoned")
	return nil
}

func (s *AttemptService) resultOf(a *Attempt) (model.QuizResult, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.session.Result()
}

func (s *AttemptService) remove(id uuid.UUID, owner attemptOwner) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.attempts, id)
	if s.byOwner[owner] == id {
		delete(s.byOwner, owner)
	}
}

// Subscribe streams tick and terminal events for an attempt. The channel is
// closed after the terminal event; cancel releases it early.
func (s *AttemptService) Subscribe(actor Actor, id uuid.UUID) (<-chan AttemptEvent, func(), error) {
	a, err := s.lookup(actor, id)
	if err != nil {
		return nil, nil, err
	}

	ch := make(chan AttemptEvent, subscriberBuffer)
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		// Already finished: deliver the outcome and close immediately.
		ev := AttemptEvent{Type: EventSubmitted, AttemptID: a.ID, Remaining: a.session.Remaining()}
		if res, ok := a.session.Result(); ok {
			ev.Result = &res
		} else {
			ev.Type = EventAbandoned
		}
		ch <- ev
		close(ch)
		return ch, func() {}, nil
	}

	subID := a.nextSub
	a.nextSub++
	a.subscribers[subID] = ch

	cancel := func() {
		a.mu.Lock()
		defer a.mu.Unlock()
		if c, ok := a.subscribers[subID]; ok {
			delete(a.subscribers, subID)
			close(c)
		}
	}
	return ch, cancel, nil
}

// ActiveCount reports how many attempts are in memory.
func (s *AttemptService) ActiveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.attempts)
}

// janitor retries unsaved results and evicts finished attempts once they are
// older than the retention window.
func (s *AttemptService) janitor() {
	defer s.wg.Done()
	ticker := time.NewTicker(janitorInterval(s.cfg.Retention))
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

// janitorInterval sweeps four times per retention window, between
// minJanitorInterval and a minute.
func janitorInterval(retention time.Duration) time.Duration {
	interval := retention / 4
	if interval < minJanitorInterval {
		interval = minJanitorInterval
	}
	if interval > time.Minute {
		interval = time.Minute
	}
	return interval
}

func (s *AttemptService) sweep() {
	s.mu.Lock()
	snapshot := make([]*Attempt, 0, len(s.attempts))
	for _, a := range s.attempts {
		snapshot = append(snapshot, a)
	}
	s.mu.Unlock()

	now := s.now()
	for _, a := range snapshot {
		a.mu.Lock()
		res, submitted := a.session.Result()
		pending := !a.saved && !a.rejected
		finishedAt := a.finishedAt
		owner := attemptOwner{studentID: a.session.StudentID(), quizID: a.session.QuizID()}
		a.mu.Unlock()

		if !submitted {
			continue
		}
		if pending {
			s.persistAsync(a, res)
			continue
		}
		if now.Sub(finishedAt) >= s.cfg.Retention {
			s.remove(a.ID, owner)
		}
	}
}

// Shutdown stops every attempt timer and the janitor. Submitted results that
// never reached the database are queued. Attempts still in progress are lost;
// their students have to start again.
func (s *AttemptService) Shutdown() {
	s.mu.Lock()
	inProgress := 0
	var unsaved []model.QuizResult
	for _, a := range s.attempts {
		a.mu.Lock()
		if a.session.Status() == assessment.StatusInProgress {
			inProgress++
		} else if res, ok := a.session.Result(); ok && !a.saved && !a.rejected && s.queue != nil {
			unsaved = append(unsaved, res)
		}
		a.mu.Unlock()
	}
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for _, res := range unsaved {
		if err := s.queue.Enqueue(ctx, res); err != nil {
			s.log.Error().Err(err).Str("result_id", res.ID.String()).Msg("Failed to queue result on shutdown")
		}
	}
	s.log.Info().Int("in_progress", inProgress).Int("queued", len(unsaved)).Msg("Attempt runtime stopped")
}
