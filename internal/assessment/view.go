package assessment

import (
	"github.com/google/uuid"
	"github.com/zeroclasses/zero-backend/internal/model"
)

// PaletteState is how a question is shown in the question palette.
type PaletteState string

const (
	PaletteCurrent    PaletteState = "CURRENT"
	PaletteFlagged    PaletteState = "FLAGGED"
	PaletteAnswered   PaletteState = "ANSWERED"
	PaletteVisited    PaletteState = "VISITED"
	PaletteNotVisited PaletteState = "NOT_VISITED"
)

// Palette returns one state per question. Current wins over flagged, flagged
// over answered, answered over visited.
func (s *Session) Palette() []PaletteState {
	out := make([]PaletteState, len(s.quiz.Questions))
	for i := range out {
		_, answered := s.answers[i]
		_, visited := s.visited[i]
		switch {
		case i == s.current:
			out[i] = PaletteCurrent
		case s.IsFlagged(i):
			out[i] = PaletteFlagged
		case answered:
			out[i] = PaletteAnswered
		case visited:
			out[i] = PaletteVisited
		default:
			out[i] = PaletteNotVisited
		}
	}
	return out
}

// View is a serializable snapshot of a session.
type View struct {
	QuizID        uuid.UUID         `json:"quiz_id"`
	Status        Status            `json:"status"`
	Current       int               `json:"current_index"`
	QuestionCount int               `json:"question_count"`
	Remaining     int               `json:"remaining_seconds"`
	Answers       map[int]int       `json:"answers"`
	Flagged       []int             `json:"flagged"`
	Palette       []PaletteState    `json:"palette"`
	HasNext       bool              `json:"has_next"`
	HasPrev       bool              `json:"has_prev"`
	Result        *model.QuizResult `json:"result,omitempty"`
}

// Snapshot captures the session for transport.
func (s *Session) Snapshot() View {
	v := View{
		QuizID:        s.quiz.ID,
		Status:        s.Status(),
		Current:       s.current,
		QuestionCount: len(s.quiz.Questions),
		Remaining:     s.remaining,
		Answers:       s.Answers(),
		Flagged:       s.Flagged(),
		Palette:       s.Palette(),
		HasNext:       s.HasNext(),
		HasPrev:       s.HasPrev(),
	}
	if r, ok := s.Result(); ok {
		v.Result = &r
	}
	return v
}

// ReviewItem explains the outcome of one question after submission.
type ReviewItem struct {
	Index        int       `json:"index"`
	QuestionID   uuid.UUID `json:"question_id"`
	Text         string    `json:"text"`
	Options      []string  `json:"options"`
	Selected     *int      `json:"selected,omitempty"`
	CorrectIndex int       `json:"correct_index"`
	Correct      bool      `json:"correct"`
	Skipped      bool      `json:"skipped"`
	Explanation  string    `json:"explanation,omitempty"`
}

// Review lists every question with the student's choice and the answer key.
// It is only available once the session is submitted.
func (s *Session) Review() ([]ReviewItem, error) {
	if s.Status() != StatusSubmitted {
		return nil, ErrNotSubmitted
	}
	items := make([]ReviewItem, len(s.quiz.Questions))
	for i, q := range s.quiz.Questions {
		item := ReviewItem{
			Index:        i,
			QuestionID:   q.ID,
			Text:         q.Text,
			Options:      q.Options,
			CorrectIndex: q.CorrectIndex,
			Explanation:  q.Explanation,
		}
		if opt, ok := s.answers[i]; ok {
			selected := opt
			item.Selected = &selected
			item.Correct = opt == q.CorrectIndex
		} else {
			item.Skipped = true
		}
		items[i] = item
	}
	return items, nil
}
