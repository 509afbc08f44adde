package assessment

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeroclasses/zero-backend/internal/model"
)

var submittedAt = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func newQuiz(correct ...int) model.Quiz {
	q := model.Quiz{
		ID:        uuid.New(),
		CourseID:  uuid.New(),
		Title:     "Fractions",
		TimeLimit: 15,
	}
	for i, c := range correct {
		q.Questions = append(q.Questions, model.Question{
			ID:           uuid.New(),
			Text:         "question " + string(rune('A'+i)),
			Options:      []string{"a", "b", "c", "d"},
			CorrectIndex: c,
			Explanation:  "because",
		})
	}
	return q
}

func mustStart(t *testing.T, quiz model.Quiz) *Session {
	t.Helper()
	s, err := Start(quiz, uuid.New())
	require.NoError(t, err)
	return s
}

func TestStart_InitialState(t *testing.T) {
	quiz := newQuiz(1, 0, 2)
	student := uuid.New()

	s, err := Start(quiz, student)
	require.NoError(t, err)

	assert.Equal(t, StatusInProgress, s.Status())
	assert.Equal(t, 0, s.Current())
	assert.Equal(t, 15*60, s.Remaining())
	assert.Empty(t, s.Answers())
	assert.Empty(t, s.Flagged())
	assert.Equal(t, student, s.StudentID())
	assert.Equal(t, quiz.ID, s.QuizID())

	_, ok := s.Result()
	assert.False(t, ok)
}

func TestStart_EmptyQuiz(t *testing.T) {
	_, err := Start(newQuiz(), uuid.New())
	assert.ErrorIs(t, err, ErrNoQuestions)
}

func TestStart_CopiesQuiz(t *testing.T) {
	quiz := newQuiz(1)
	s := mustStart(t, quiz)

	quiz.Questions[0].CorrectIndex = 3
	quiz.Questions[0].Options[1] = "changed"

	require.NoError(t, s.SelectAnswer(0, 1))
	res, err := s.Submit(submittedAt)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Score)
	assert.Equal(t, "b", s.Quiz().Questions[0].Options[1])
}

func TestZeroSession_NotStarted(t *testing.T) {
	var s Session
	assert.Equal(t, StatusNotStarted, s.Status())
	assert.ErrorIs(t, s.SelectAnswer(0, 0), ErrNotStarted)
	_, err := s.Submit(submittedAt)
	assert.ErrorIs(t, err, ErrNotStarted)
	assert.False(t, s.Tick(submittedAt))
}

func TestSubmit_AllCorrect(t *testing.T) {
	correct := []int{1, 0, 2, 3, 1}
	s := mustStart(t, newQuiz(correct...))
	for i, c := range correct {
		require.NoError(t, s.SelectAnswer(i, c))
	}

	res, err := s.Submit(submittedAt)
	require.NoError(t, err)

	assert.Equal(t, len(correct), res.Score)
	assert.Equal(t, len(correct), res.Total)
	assert.Equal(t, StatusSubmitted, s.Status())
	assert.False(t, res.AutoSubmitted)
	assert.Equal(t, submittedAt, res.SubmittedAt)
}

func TestSubmit_NoAnswersScoresZero(t *testing.T) {
	s := mustStart(t, newQuiz(0, 1, 2, 3))

	res, err := s.Submit(submittedAt)
	require.NoError(t, err)

	assert.Equal(t, 0, res.Score)
	assert.Equal(t, 4, res.Total)
}

func TestSubmit_PartialCredit(t *testing.T) {
	s := mustStart(t, newQuiz(1, 0, 2))
	require.NoError(t, s.SelectAnswer(0, 1))
	require.NoError(t, s.SelectAnswer(1, 1))

	res, err := s.Submit(submittedAt)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Score)
	assert.Equal(t, 3, res.Total)
}

func TestSubmit_Idempotent(t *testing.T) {
	s := mustStart(t, newQuiz(1, 0))
	require.NoError(t, s.SelectAnswer(0, 1))

	first, err := s.Submit(submittedAt)
	require.NoError(t, err)
	second, err := s.Submit(submittedAt.Add(time.Minute))
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, second.Score)
}

func TestSelectAnswer_Overwrite(t *testing.T) {
	s := mustStart(t, newQuiz(2))
	require.NoError(t, s.SelectAnswer(0, 2))
	require.NoError(t, s.SelectAnswer(0, 3))

	assert.Equal(t, map[int]int{0: 3}, s.Answers())

	res, err := s.Submit(submittedAt)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Score)
}

func TestSelectAnswer_AnyQuestionRegardlessOfCurrent(t *testing.T) {
	s := mustStart(t, newQuiz(0, 1, 2))
	require.NoError(t, s.SelectAnswer(2, 2))
	assert.Equal(t, 0, s.Current())

	res, err := s.Submit(submittedAt)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Score)
}

func TestSelectAnswer_Bounds(t *testing.T) {
	s := mustStart(t, newQuiz(0, 1))

	tests := []struct {
		name     string
		question int
		option   int
		wantErr  error
	}{
		{"negative question", -1, 0, ErrQuestionOutOfRange},
		{"question past end", 2, 0, ErrQuestionOutOfRange},
		{"negative option", 0, -1, ErrOptionOutOfRange},
		{"option past end", 1, 4, ErrOptionOutOfRange},
		{"valid", 1, 3, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.SelectAnswer(tt.question, tt.option)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestSelectAnswer_AfterSubmit(t *testing.T) {
	s := mustStart(t, newQuiz(0))
	_, err := s.Submit(submittedAt)
	require.NoError(t, err)

	assert.ErrorIs(t, s.SelectAnswer(0, 0), ErrSubmitted)
	res, _ := s.Result()
	assert.Equal(t, 0, res.Score)
}

func TestToggleFlag(t *testing.T) {
	s := mustStart(t, newQuiz(0, 1, 2))

	on, err := s.ToggleFlag(1)
	require.NoError(t, err)
	assert.True(t, on)
	assert.Equal(t, []int{1}, s.Flagged())

	on, err = s.ToggleFlag(1)
	require.NoError(t, err)
	assert.False(t, on)
	assert.Empty(t, s.Flagged())

	_, err = s.ToggleFlag(5)
	assert.ErrorIs(t, err, ErrQuestionOutOfRange)
}

func TestToggleFlag_DoesNotAffectScore(t *testing.T) {
	correct := []int{1, 0, 2, 3}
	answers := map[int]int{0: 1, 1: 2, 3: 3}

	// Every subset of the four questions gets flagged in turn.
	for mask := 0; mask < 1<<len(correct); mask++ {
		s := mustStart(t, newQuiz(correct...))
		for q, opt := range answers {
			require.NoError(t, s.SelectAnswer(q, opt))
		}
		for q := range correct {
			if mask&(1<<q) != 0 {
				_, err := s.ToggleFlag(q)
				require.NoError(t, err)
			}
		}

		res, err := s.Submit(submittedAt)
		require.NoError(t, err)
		assert.Equal(t, 2, res.Score, "mask %04b", mask)
	}
}

func TestNavigate_Clamps(t *testing.T) {
	s := mustStart(t, newQuiz(0, 1, 2, 3))

	tests := []struct {
		target int
		want   int
	}{
		{-5, 0},
		{-1, 0},
		{0, 0},
		{2, 2},
		{3, 3},
		{4, 3},
		{100, 3},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, s.Navigate(tt.target), "target %d", tt.target)
		assert.Equal(t, tt.want, s.Current())
	}
}

func TestNextPrev_Boundaries(t *testing.T) {
	s := mustStart(t, newQuiz(0, 1, 2))

	assert.False(t, s.HasPrev())
	assert.True(t, s.HasNext())
	assert.Equal(t, 0, s.Prev())

	assert.Equal(t, 1, s.Next())
	assert.Equal(t, 2, s.Next())
	assert.False(t, s.HasNext())
	assert.True(t, s.HasPrev())
	assert.Equal(t, 2, s.Next())

	assert.Equal(t, 1, s.Prev())
}

func TestTick_CountsDown(t *testing.T) {
	s := mustStart(t, newQuiz(0))
	start := s.Remaining()

	assert.False(t, s.Tick(submittedAt))
	assert.False(t, s.Tick(submittedAt))
	assert.Equal(t, start-2, s.Remaining())
	assert.Equal(t, StatusInProgress, s.Status())
}

func TestTick_AutoSubmitMatchesExplicitSubmit(t *testing.T) {
	correct := []int{1, 0, 2}

	timed := mustStart(t, newQuiz(correct...))
	timed.remaining = 3
	require.NoError(t, timed.SelectAnswer(0, 1))

	explicit := mustStart(t, timed.Quiz())
	require.NoError(t, explicit.SelectAnswer(0, 1))

	assert.False(t, timed.Tick(submittedAt))
	assert.False(t, timed.Tick(submittedAt))
	assert.True(t, timed.Tick(submittedAt))

	assert.Equal(t, StatusSubmitted, timed.Status())
	assert.Equal(t, 0, timed.Remaining())

	auto, ok := timed.Result()
	require.True(t, ok)
	manual, err := explicit.Submit(submittedAt)
	require.NoError(t, err)

	assert.True(t, auto.AutoSubmitted)
	assert.Equal(t, manual.Score, auto.Score)
	assert.Equal(t, manual.Total, auto.Total)
	assert.Equal(t, manual.QuizID, auto.QuizID)
	assert.Equal(t, manual.SubmittedAt, auto.SubmittedAt)
}

func TestTick_NoEffectAfterSubmit(t *testing.T) {
	s := mustStart(t, newQuiz(0))
	first, err := s.Submit(submittedAt)
	require.NoError(t, err)
	remaining := s.Remaining()

	assert.False(t, s.Tick(submittedAt.Add(time.Second)))
	assert.Equal(t, remaining, s.Remaining())

	res, _ := s.Result()
	assert.Equal(t, first, res)
}

func TestTick_ZeroTimeLimitSubmitsOnFirstTick(t *testing.T) {
	quiz := newQuiz(0)
	quiz.TimeLimit = 0
	s := mustStart(t, quiz)

	assert.True(t, s.Tick(submittedAt))
	assert.Equal(t, StatusSubmitted, s.Status())
}

func TestPalette(t *testing.T) {
	s := mustStart(t, newQuiz(0, 1, 2, 3, 0))
	require.NoError(t, s.SelectAnswer(1, 0))
	_, err := s.ToggleFlag(2)
	require.NoError(t, err)
	s.Navigate(3)

	assert.Equal(t, []PaletteState{
		PaletteVisited,
		PaletteAnswered,
		PaletteFlagged,
		PaletteCurrent,
		PaletteNotVisited,
	}, s.Palette())
}

func TestSnapshot(t *testing.T) {
	s := mustStart(t, newQuiz(0, 1))
	require.NoError(t, s.SelectAnswer(0, 0))

	v := s.Snapshot()
	assert.Equal(t, StatusInProgress, v.Status)
	assert.Equal(t, 2, v.QuestionCount)
	assert.Equal(t, map[int]int{0: 0}, v.Answers)
	assert.Nil(t, v.Result)

	_, err := s.Submit(submittedAt)
	require.NoError(t, err)
	v = s.Snapshot()
	require.NotNil(t, v.Result)
	assert.Equal(t, 1, v.Result.Score)
}

func TestReview(t *testing.T) {
	s := mustStart(t, newQuiz(1, 0, 2))
	_, err := s.Review()
	assert.ErrorIs(t, err, ErrNotSubmitted)

	require.NoError(t, s.SelectAnswer(0, 1))
	require.NoError(t, s.SelectAnswer(1, 1))
	_, err = s.Submit(submittedAt)
	require.NoError(t, err)

	items, err := s.Review()
	require.NoError(t, err)
	require.Len(t, items, 3)

	assert.True(t, items[0].Correct)
	assert.False(t, items[1].Correct)
	require.NotNil(t, items[1].Selected)
	assert.Equal(t, 1, *items[1].Selected)
	assert.True(t, items[2].Skipped)
	assert.Nil(t, items[2].Selected)
	assert.Equal(t, 2, items[2].CorrectIndex)
}
