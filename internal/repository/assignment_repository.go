package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/zeroclasses/zero-backend/internal/model"
)

const submissionColumns = `id, assignment_id, student_id, file_url, submitted_at, grade, feedback, student_reaction`

// AssignmentRepository handles assignments and student submissions.
type AssignmentRepository struct {
	pool *pgxpool.Pool
}

// NewAssignmentRepository creates a new AssignmentRepository.
func NewAssignmentRepository(pool *pgxpool.Pool) *AssignmentRepository {
	return &AssignmentRepository{pool: pool}
}

// GetByID retrieves an assignment.
func (r *AssignmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Assignment, error) {
	a := &model.Assignment{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, course_id, title, description, due_date, created_by, last_edited_by, updated_at
		 FROM assignments WHERE id = $1`, id,
	).Scan(&a.ID, &a.CourseID, &a.Title, &a.Description, &a.DueDate, &a.CreatedBy, &a.LastEditedBy, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// ListByCourse returns the assignments of a course ordered by due date.
func (r *AssignmentRepository) ListByCourse(ctx context.Context, courseID uuid.UUID) ([]model.Assignment, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, course_id, title, description, due_date, created_by, last_edited_by, updated_at
		 FROM assignments WHERE course_id = $1
		 ORDER BY due_date NULLS LAST, created_at`, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	assignments := []model.Assignment{}
	for rows.Next() {
		var a model.Assignment
		if err := rows.Scan(&a.ID, &a.CourseID, &a.Title, &a.Description, &a.DueDate,
			&a.CreatedBy, &a.LastEditedBy, &a.UpdatedAt); err != nil {
			return nil, err
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

// Create inserts a new assignment.
func (r *AssignmentRepository) Create(ctx context.Context, a *model.Assignment) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO assignments (course_id, title, description, due_date, created_by, last_edited_by)
		 VALUES ($1, $2, $3, $4, $5, $5)
		 RETURNING id, last_edited_by, updated_at`,
		a.CourseID, a.Title, a.Description, a.DueDate, a.CreatedBy,
	).Scan(&a.ID, &a.LastEditedBy, &a.UpdatedAt)
}

// Delete removes an assignment and its submissions.
func (r *AssignmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM assignments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ─── Submissions ───────────────────────────────────────────────────────

func scanSubmission(row rowScanner) (*model.Submission, error) {
	s := &model.Submission{}
	err := row.Scan(&s.ID, &s.AssignmentID, &s.StudentID, &s.FileURL, &s.SubmittedAt,
		&s.Grade, &s.Feedback, &s.StudentReaction)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// UpsertSubmission stores a student's file for an assignment. Resubmitting
// replaces the file and clears any earlier grade.
func (r *AssignmentRepository) UpsertSubmission(ctx context.Context, s *model.Submission) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO submissions (assignment_id, student_id, file_url)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (assignment_id, student_id) DO UPDATE
		   SET file_url = EXCLUDED.file_url, submitted_at = NOW(),
		       grade = NULL, feedback = '', student_reaction = ''
		 RETURNING `+submissionColumns,
		s.AssignmentID, s.StudentID, s.FileURL,
	).Scan(&s.ID, &s.AssignmentID, &s.StudentID, &s.FileURL, &s.SubmittedAt,
		&s.Grade, &s.Feedback, &s.StudentReaction)
}

// GetSubmission retrieves a submission by ID.
func (r *AssignmentRepository) GetSubmission(ctx context.Context, id uuid.UUID) (*model.Submission, error) {
	return scanSubmission(r.pool.QueryRow(ctx,
		`SELECT `+submissionColumns+` FROM submissions WHERE id = $1`, id))
}

// ListSubmissions returns submissions for an assignment. A non-nil studentID
// restricts the list to that student.
func (r *AssignmentRepository) ListSubmissions(ctx context.Context, assignmentID uuid.UUID, studentID *uuid.UUID) ([]model.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE assignment_id = $1`
	args := []interface{}{assignmentID}
	if studentID != nil {
		query += ` AND student_id = $2`
		args = append(args, *studentID)
	}
	query += ` ORDER BY submitted_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	submissions := []model.Submission{}
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		submissions = append(submissions, *s)
	}
	return submissions, rows.Err()
}

// Grade records a grade and feedback on a submission.
func (r *AssignmentRepository) Grade(ctx context.Context, id uuid.UUID, grade int, feedback string) (*model.Submission, error) {
	return scanSubmission(r.pool.QueryRow(ctx,
		`UPDATE submissions SET grade = $1, feedback = $2 WHERE id = $3
		 RETURNING `+submissionColumns,
		grade, feedback, id))
}

// SetReaction stores the student's reaction to their feedback.
func (r *AssignmentRepository) SetReaction(ctx context.Context, id uuid.UUID, reaction string) (*model.Submission, error) {
	return scanSubmission(r.pool.QueryRow(ctx,
		`UPDATE submissions SET student_reaction = $1 WHERE id = $2
		 RETURNING `+submissionColumns,
		reaction, id))
}

// CountUngradedForInstructor returns submissions awaiting a grade across an
// instructor's courses.
func (r *AssignmentRepository) CountUngradedForInstructor(ctx context.Context, instructorID uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*)
		 FROM submissions s
		 JOIN assignments a ON a.id = s.assignment_id
		 JOIN courses c ON c.id = a.course_id
		 WHERE c.instructor_id = $1 AND s.grade IS NULL`, instructorID,
	).Scan(&n)
	return n, err
}
