package model

import (
	"time"

	"github.com/google/uuid"
)

// Assignment is coursework students answer by uploading a file.
type Assignment struct {
	ID           uuid.UUID  `json:"id"`
	CourseID     uuid.UUID  `json:"course_id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	DueDate      *time.Time `json:"due_date,omitempty"`
	CreatedBy    string     `json:"created_by,omitempty"`
	LastEditedBy string     `json:"last_edited_by,omitempty"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Submission is a student's answer to an assignment.
type Submission struct {
	ID              uuid.UUID `json:"id"`
	AssignmentID    uuid.UUID `json:"assignment_id"`
	StudentID       uuid.UUID `json:"student_id"`
	FileURL         string    `json:"file_url"`
	SubmittedAt     time.Time `json:"submitted_at"`
	Grade           *int      `json:"grade,omitempty"`
	Feedback        string    `json:"feedback,omitempty"`
	StudentReaction string    `json:"student_reaction,omitempty"`
}

// CreateAssignmentRequest is the payload for creating an assignment.
type CreateAssignmentRequest struct {
	Title       string     `json:"title" binding:"required,min=3,max=255"`
	Description string     `json:"description" binding:"required,max=5000"`
	DueDate     *time.Time `json:"due_date" binding:"omitempty"`
}

// SubmitAssignmentRequest is the payload for a student submission.
type SubmitAssignmentRequest struct {
	FileURL string `json:"file_url" binding:"required,max=1024"`
}

// GradeSubmissionRequest is the payload for grading a submission.
type GradeSubmissionRequest struct {
	Grade    *int   `json:"grade" binding:"required,min=0,max=100"`
	Feedback string `json:"feedback" binding:"omitempty,max=5000"`
}

// ReactionRequest is the student's reaction to a graded submission.
type ReactionRequest struct {
	Reaction string `json:"reaction" binding:"required,oneof=like dislike love"`
}
