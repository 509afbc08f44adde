package model

import (
	"time"

	"github.com/google/uuid"
)

// QuestionOptionCount is the number of answer options every question carries.
const QuestionOptionCount = 4

// Question is a single multiple-choice question of a quiz.
type Question struct {
	ID           uuid.UUID `json:"id"`
	Text         string    `json:"text"`
	Options      []string  `json:"options"`
	CorrectIndex int       `json:"correct_index"`
	Explanation  string    `json:"explanation,omitempty"`
}

// Quiz is an ordered set of questions answered under a time limit.
type Quiz struct {
	ID           uuid.UUID  `json:"id"`
	CourseID     uuid.UUID  `json:"course_id"`
	Title        string     `json:"title"`
	TimeLimit    int        `json:"time_limit_minutes"`
	Questions    []Question `json:"questions"`
	CreatedBy    string     `json:"created_by,omitempty"`
	LastEditedBy string     `json:"last_edited_by,omitempty"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// QuizForStudent is a quiz without its answer key.
type QuizForStudent struct {
	ID        uuid.UUID            `json:"id"`
	CourseID  uuid.UUID            `json:"course_id"`
	Title     string               `json:"title"`
	TimeLimit int                  `json:"time_limit_minutes"`
	Questions []QuestionForStudent `json:"questions"`
}

// QuestionForStudent is a question stripped of the correct option and explanation.
type QuestionForStudent struct {
	ID      uuid.UUID `json:"id"`
	Text    string    `json:"text"`
	Options []string  `json:"options"`
}

// ForStudent strips the answer key from q.
func (q *Quiz) ForStudent() QuizForStudent {
	out := QuizForStudent{
		ID:        q.ID,
		CourseID:  q.CourseID,
		Title:     q.Title,
		TimeLimit: q.TimeLimit,
		Questions: make([]QuestionForStudent, len(q.Questions)),
	}
	for i, question := range q.Questions {
		out.Questions[i] = QuestionForStudent{
			ID:      question.ID,
			Text:    question.Text,
			Options: append([]string(nil), question.Options...),
		}
	}
	return out
}

// QuizSummary is the list view of a quiz.
type QuizSummary struct {
	ID            uuid.UUID `json:"id"`
	CourseID      uuid.UUID `json:"course_id"`
	Title         string    `json:"title"`
	TimeLimit     int       `json:"time_limit_minutes"`
	QuestionCount int       `json:"question_count"`
	CreatedBy     string    `json:"created_by,omitempty"`
	LastEditedBy  string    `json:"last_edited_by,omitempty"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// QuizResult is the immutable outcome of one attempt.
type QuizResult struct {
	ID            uuid.UUID `json:"id"`
	QuizID        uuid.UUID `json:"quiz_id"`
	StudentID     uuid.UUID `json:"student_id"`
	Score         int       `json:"score"`
	Total         int       `json:"total"`
	SubmittedAt   time.Time `json:"submitted_at"`
	AutoSubmitted bool      `json:"auto_submitted"`
}

// QuestionInput is one question of a quiz write request.
type QuestionInput struct {
	Text         string   `json:"text" binding:"required,min=1,max=2000"`
	Options      []string `json:"options" binding:"required,len=4,dive,required,max=500"`
	CorrectIndex int      `json:"correct_index" binding:"min=0"`
	Explanation  string   `json:"explanation" binding:"omitempty,max=2000"`
}

// SaveQuizRequest is the payload for creating or replacing a quiz.
type SaveQuizRequest struct {
	Title     string          `json:"title" binding:"required,min=3,max=255"`
	TimeLimit int             `json:"time_limit_minutes" binding:"required,min=1,max=480"`
	Questions []QuestionInput `json:"questions" binding:"required,min=1,dive"`
}

// AnswerRequest records the chosen option for one question of an attempt.
type AnswerRequest struct {
	Option *int `json:"option" binding:"required,min=0"`
}

// NavigateRequest moves the current question of an attempt.
type NavigateRequest struct {
	Index *int   `json:"index" binding:"required_without=Step"`
	Step  string `json:"step" binding:"omitempty,oneof=next prev"`
}
