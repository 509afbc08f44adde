package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/zeroclasses/zero-backend/internal/model"
)

// EnrollmentRepository handles student enrollment in courses.
type EnrollmentRepository struct {
	pool *pgxpool.Pool
}

// NewEnrollmentRepository creates a new EnrollmentRepository.
func NewEnrollmentRepository(pool *pgxpool.Pool) *EnrollmentRepository {
	return &EnrollmentRepository{pool: pool}
}

// Enroll adds a student to a course. Enrolling twice is a no-op; the return
// value reports whether a new enrollment was created.
func (r *EnrollmentRepository) Enroll(ctx context.Context, courseID, studentID uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`INSERT INTO enrollments (course_id, student_id) VALUES ($1, $2)
		 ON CONFLICT (course_id, student_id) DO NOTHING`,
		courseID, studentID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// IsEnrolled reports whether the student is enrolled in the course.
func (r *EnrollmentRepository) IsEnrolled(ctx context.Context, courseID, studentID uuid.UUID) (bool, error) {
	var ok bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM enrollments WHERE course_id = $1 AND student_id = $2)`,
		courseID, studentID,
	).Scan(&ok)
	return ok, err
}

// ListCourses returns the courses a student is enrolled in, most recent first.
func (r *EnrollmentRepository) ListCourses(ctx context.Context, studentID uuid.UUID) ([]model.Course, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT c.id, c.title, c.description, c.instructor_id, c.price, c.thumbnail_url, c.status,
		        c.created_by, c.last_edited_by, c.created_at, c.updated_at
		 FROM enrollments e
		 JOIN courses c ON c.id = e.course_id
		 WHERE e.student_id = $1
		 ORDER BY e.enrolled_at DESC`, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	courses := []model.Course{}
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		courses = append(courses, *c)
	}
	return courses, rows.Err()
}

// CountStudents returns how many students are enrolled in a course.
func (r *EnrollmentRepository) CountStudents(ctx context.Context, courseID uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM enrollments WHERE course_id = $1`, courseID).Scan(&n)
	return n, err
}
