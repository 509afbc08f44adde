// Package assessment implements the timed quiz session: a single student's pass
// through an ordered set of multiple-choice questions under a time budget.
//
// A Session is plain in-memory state with no clock or goroutine of its own.
// Callers own the one-second cadence and call Tick once per elapsed second.
package assessment

import (
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/zeroclasses/zero-backend/internal/model"
)

// Status enumerates session states.
type Status string

const (
	StatusNotStarted Status = "NOT_STARTED"
	StatusInProgress Status = "IN_PROGRESS"
	StatusSubmitted  Status = "SUBMITTED"
)

// Session errors.
var (
	ErrNoQuestions        = errors.New("quiz has no questions")
	ErrNotStarted         = errors.New("session not started")
	ErrSubmitted          = errors.New("session already submitted")
	ErrNotSubmitted       = errors.New("session not submitted yet")
	ErrQuestionOutOfRange = errors.New("question index out of range")
	ErrOptionOutOfRange   = errors.New("option index out of range")
)

// Session is one attempt at one quiz. The zero value is a session that has not
// been started; use Start to obtain a running one.
type Session struct {
	quiz      model.Quiz
	studentID uuid.UUID
	status    Status
	current   int
	answers   map[int]int
	flagged   map[int]struct{}
	visited   map[int]struct{}
	remaining int
	result    *model.QuizResult
}

// Start begins a session for studentID on quiz. The quiz is copied, so later
// edits to the caller's value do not leak into a running attempt.
func Start(quiz model.Quiz, studentID uuid.UUID) (*Session, error) {
	if len(quiz.Questions) == 0 {
		return nil, ErrNoQuestions
	}

	questions := make([]model.Question, len(quiz.Questions))
	for i, q := range quiz.Questions {
		q.Options = append([]string(nil), q.Options...)
		questions[i] = q
	}
	quiz.Questions = questions

	remaining := quiz.TimeLimit * 60
	if remaining < 0 {
		remaining = 0
	}

	return &Session{
		quiz:      quiz,
		studentID: studentID,
		status:    StatusInProgress,
		answers:   make(map[int]int),
		flagged:   make(map[int]struct{}),
		visited:   map[int]struct{}{0: {}},
		remaining: remaining,
	}, nil
}

// Status reports the current state.
func (s *Session) Status() Status {
	if s.status == "" {
		return StatusNotStarted
	}
	return s.status
}

// QuizID returns the quiz this session answers.
func (s *Session) QuizID() uuid.UUID { return s.quiz.ID }

// StudentID returns the owner of the session.
func (s *Session) StudentID() uuid.UUID { return s.studentID }

// Quiz returns the session's copy of the quiz.
func (s *Session) Quiz() model.Quiz { return s.quiz }

// QuestionCount returns the number of questions in the quiz.
func (s *Session) QuestionCount() int { return len(s.quiz.Questions) }

// Current returns the index of the question on screen.
func (s *Session) Current() int { return s.current }

// Remaining returns the seconds left in the time budget.
func (s *Session) Remaining() int { return s.remaining }

// SelectAnswer records option as the answer to question, replacing any
// earlier choice. Any question may be answered, not only the current one.
func (s *Session) SelectAnswer(question, option int) error {
	if err := s.checkMutable(); err != nil {
		return err
	}
	if question < 0 || question >= len(s.quiz.Questions) {
		return ErrQuestionOutOfRange
	}
	if option < 0 || option >= len(s.quiz.Questions[question].Options) {
		return ErrOptionOutOfRange
	}
	s.answers[question] = option
	return nil
}

// ToggleFlag marks question for review, or clears the mark if already set.
// It returns whether the question is flagged afterwards.
func (s *Session) ToggleFlag(question int) (bool, error) {
	if err := s.checkMutable(); err != nil {
		return false, err
	}
	if question < 0 || question >= len(s.quiz.Questions) {
		return false, ErrQuestionOutOfRange
	}
	if _, ok := s.flagged[question]; ok {
		delete(s.flagged, question)
		return false, nil
	}
	s.flagged[question] = struct{}{}
	return true, nil
}

// Navigate moves to target, clamped to the question range, and returns the
// resulting index. Navigation stays available after submission for review.
func (s *Session) Navigate(target int) int {
	n := len(s.quiz.Questions)
	if n == 0 {
		return 0
	}
	switch {
	case target < 0:
		target = 0
	case target > n-1:
		target = n - 1
	}
	s.current = target
	if s.visited != nil {
		s.visited[target] = struct{}{}
	}
	return s.current
}

// Next moves one question forward.
func (s *Session) Next() int { return s.Navigate(s.current + 1) }

// Prev moves one question back.
func (s *Session) Prev() int { return s.Navigate(s.current - 1) }

// HasNext reports whether Next would move.
func (s *Session) HasNext() bool { return s.current < len(s.quiz.Questions)-1 }

// HasPrev reports whether Prev would move.
func (s *Session) HasPrev() bool { return s.current > 0 }

// Tick consumes one second of the time budget. When the budget reaches zero the
// session submits itself and Tick returns true. Ticks after submission do nothing.
func (s *Session) Tick(at time.Time) bool {
	if s.status != StatusInProgress {
		return false
	}
	if s.remaining > 0 {
		s.remaining--
	}
	if s.remaining == 0 {
		s.finish(at, true)
		return true
	}
	return false
}

// Submit ends the session and returns its result. Calling it again returns the
// first result unchanged.
func (s *Session) Submit(at time.Time) (model.QuizResult, error) {
	switch s.Status() {
	case StatusNotStarted:
		return model.QuizResult{}, ErrNotStarted
	case StatusSubmitted:
		return *s.result, nil
	}
	s.finish(at, false)
	return *s.result, nil
}

// Result returns the terminal result, if the session has been submitted.
func (s *Session) Result() (model.QuizResult, bool) {
	if s.result == nil {
		return model.QuizResult{}, false
	}
	return *s.result, true
}

// Answers returns a copy of the recorded answers keyed by question index.
func (s *Session) Answers() map[int]int {
	out := make(map[int]int, len(s.answers))
	for q, opt := range s.answers {
		out[q] = opt
	}
	return out
}

// Flagged returns the flagged question indices in ascending order.
func (s *Session) Flagged() []int {
	out := make([]int, 0, len(s.flagged))
	for q := range s.flagged {
		out = append(out, q)
	}
	sort.Ints(out)
	return out
}

// IsFlagged reports whether question is marked for review.
func (s *Session) IsFlagged(question int) bool {
	_, ok := s.flagged[question]
	return ok
}

func (s *Session) checkMutable() error {
	switch s.Status() {
	case StatusNotStarted:
		return ErrNotStarted
	case StatusSubmitted:
		return ErrSubmitted
	}
	return nil
}

func (s *Session) finish(at time.Time, auto bool) {
	s.status = StatusSubmitted
	s.remaining = max(s.remaining, 0)
	s.result = &model.QuizResult{
		ID:            uuid.New(),
		QuizID:        s.quiz.ID,
		StudentID:     s.studentID,
		Score:         s.score(),
		Total:         len(s.quiz.Questions),
		SubmittedAt:   at.UTC(),
		AutoSubmitted: auto,
	}
}

// score counts matching answers. Unanswered questions never match.
func (s *Session) score() int {
	correct := 0
	for i, q := range s.quiz.Questions {
		if opt, ok := s.answers[i]; ok && opt == q.CorrectIndex {
			correct++
		}
	}
	return correct
}
