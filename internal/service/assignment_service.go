package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/zeroclasses/zero-backend/internal/model"
	"github.com/zeroclasses/zero-backend/internal/repository"
)

// Assignment errors.
var (
	ErrAssignmentNotFound = errors.New("assignment not found")
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrNotGraded          = errors.New("submission not graded yet")
	ErrNotSubmissionOwner = errors.New("not your submission")
)

// AssignmentService handles coursework and student submissions.
type AssignmentService struct {
	repo    *repository.AssignmentRepository
	courses *CourseService
	log     zerolog.Logger
}

// NewAssignmentService creates a new AssignmentService.
func NewAssignmentService(repo *repository.AssignmentRepository, courses *CourseService, log zerolog.Logger) *AssignmentService {
	return &AssignmentService{
		repo:    repo,
		courses: courses,
		log:     log.With().Str("component", "assignment_service").Logger(),
	}
}

// Create adds an assignment to a course the actor manages.
func (s *AssignmentService) Create(ctx context.Context, actor Actor, courseID uuid.UUID, req model.CreateAssignmentRequest) (*model.Assignment, error) {
	if err := s.courses.CanManage(ctx, actor, courseID); err != nil {
		return nil, err
	}
	a := &model.Assignment{
		CourseID:    courseID,
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		CreatedBy:   actor.Name,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	s.log.Info().Str("assignment_id", a.ID.String()).Str("course_id", courseID.String()).Msg("Assignment created")
	return a, nil
}

// ListByCourse returns a course's assignments.
func (s *AssignmentService) ListByCourse(ctx context.Context, actor Actor, courseID uuid.UUID) ([]model.Assignment, error) {
	if err := s.courses.CanView(ctx, actor, courseID); err != nil {
		return nil, err
	}
	return s.repo.ListByCourse(ctx, courseID)
}

// Delete removes an assignment and its submissions.
func (s *AssignmentService) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	a, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.courses.CanManage(ctx, actor, a.CourseID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if repository.IsNotFound(err) {
			return ErrAssignmentNotFound
		}
		return err
	}
	return nil
}

// Submit stores the student's file for an assignment. A second submission
// replaces the first and clears its grade.
func (s *AssignmentService) Submit(ctx context.Context, actor Actor, id uuid.UUID, req model.SubmitAssignmentRequest) (*model.Submission, error) {
	if !actor.IsStudent() {
		return nil, ErrStudentsOnly
	}
	a, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.courses.CanView(ctx, actor, a.CourseID); err != nil {
		return nil, err
	}
	sub := &model.Submission{
		AssignmentID: id,
		StudentID:    actor.ID,
		FileURL:      req.FileURL,
	}
	if err := s.repo.UpsertSubmission(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// ListSubmissions returns every submission to course staff and only the
// caller's own to a student.
func (s *AssignmentService) ListSubmissions(ctx context.Context, actor Actor, id uuid.UUID) ([]model.Submission, error) {
	a, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.courses.CanView(ctx, actor, a.CourseID); err != nil {
		return nil, err
	}
	var only *uuid.UUID
	if actor.IsStudent() {
		only = &actor.ID
	}
	return s.repo.ListSubmissions(ctx, id, only)
}

// Grade records a grade and feedback. Only staff managing the course may grade.
func (s *AssignmentService) Grade(ctx context.Context, actor Actor, submissionID uuid.UUID, req model.GradeSubmissionRequest) (*model.Submission, error) {
	sub, err := s.getSubmission(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	a, err := s.get(ctx, sub.AssignmentID)
	if err != nil {
		return nil, err
	}
	if err := s.courses.CanManage(ctx, actor, a.CourseID); err != nil {
		return nil, err
	}
	graded, err := s.repo.Grade(ctx, submissionID, *req.Grade, req.Feedback)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrSubmissionNotFound
		}
		return nil, err
	}
	s.log.Info().Str("submission_id", submissionID.String()).Int("grade", *req.Grade).Msg("Submission graded")
	return graded, nil
}

// React stores the student's reaction to the feedback on their graded submission.
func (s *AssignmentService) React(ctx context.Context, actor Actor, submissionID uuid.UUID, req model.ReactionRequest) (*model.Submission, error) {
	sub, err := s.getSubmission(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	if sub.StudentID != actor.ID {
		return nil, ErrNotSubmissionOwner
	}
	if sub.Grade == nil {
		return nil, ErrNotGraded
	}
	return s.repo.SetReaction(ctx, submissionID, req.Reaction)
}

func (s *AssignmentService) get(ctx context.Context, id uuid.UUID) (*model.Assignment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrAssignmentNotFound
		}
		return nil, err
	}
	return a, nil
}

func (s *AssignmentService) getSubmission(ctx context.Context, id uuid.UUID) (*model.Submission, error) {
	sub, err := s.repo.GetSubmission(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrSubmissionNotFound
		}
		return nil, err
	}
	return sub, nil
}
