package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/zeroclasses/zero-backend/internal/model"
)

// LiveClassWindow is how long after its start a class counts as live.
const LiveClassWindow = time.Hour

// DashboardRepository handles dashboard data access.
type DashboardRepository struct {
	pool *pgxpool.Pool
}

// NewDashboardRepository creates a new DashboardRepository.
func NewDashboardRepository(pool *pgxpool.Pool) *DashboardRepository {
	return &DashboardRepository{pool: pool}
}

// AdminSummary holds the platform-wide stat cards.
type AdminSummary struct {
	ActiveStudents   int `json:"active_students"`
	SignupsLast24h   int `json:"signups_last_24h"`
	PendingApprovals int `json:"pending_approvals"`
	LiveClassesNow   int `json:"live_classes_now"`
	QuizzesTaken24h  int `json:"quizzes_taken_last_24h"`
}

// GetAdminSummary retrieves the admin stat cards relative to now.
func (r *DashboardRepository) GetAdminSummary(ctx context.Context, now time.Time) (*AdminSummary, error) {
	s := &AdminSummary{}
	dayAgo := now.Add(-24 * time.Hour)
	err := r.pool.QueryRow(ctx,
		`SELECT
			(SELECT COUNT(*) FROM users WHERE role = $1),
			(SELECT COUNT(*) FROM users WHERE created_at >= $2),
			(SELECT COUNT(*) FROM courses WHERE status = $3),
			(SELECT COUNT(*) FROM class_schedules WHERE starts_at <= $4 AND starts_at > $5),
			(SELECT COUNT(*) FROM quiz_results WHERE submitted_at >= $2)`,
		model.RoleStudent, dayAgo, model.CourseStatusPending, now, now.Add(-LiveClassWindow),
	).Scan(&s.ActiveStudents, &s.SignupsLast24h, &s.PendingApprovals, &s.LiveClassesNow, &s.QuizzesTaken24h)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// UpcomingClass is a scheduled live class with its course title.
type UpcomingClass struct {
	ScheduleID  uuid.UUID `json:"schedule_id"`
	CourseID    uuid.UUID `json:"course_id"`
	CourseTitle string    `json:"course_title"`
	Topic       string    `json:"topic"`
	StartsAt    time.Time `json:"starts_at"`
	MeetingURL  string    `json:"meeting_url"`
}

// GetUpcomingClassesForStudent returns the next live classes across a student's enrollments.
func (r *DashboardRepository) GetUpcomingClassesForStudent(ctx context.Context, studentID uuid.UUID, now time.Time, limit int) ([]UpcomingClass, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT s.id, c.id, c.title, s.topic, s.starts_at, s.meeting_url
		 FROM class_schedules s
		 JOIN courses c ON c.id = s.course_id
		 JOIN enrollments e ON e.course_id = c.id
		 WHERE e.student_id = $1 AND s.starts_at > $2
		 ORDER BY s.starts_at ASC LIMIT $3`,
		studentID, now.Add(-LiveClassWindow), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	classes := []UpcomingClass{}
	for rows.Next() {
		var u UpcomingClass
		if err := rows.Scan(&u.ScheduleID, &u.CourseID, &u.CourseTitle, &u.Topic, &u.StartsAt, &u.MeetingURL); err != nil {
			return nil, err
		}
		classes = append(classes, u)
	}
	return classes, rows.Err()
}

// InstructorCourse is one of an instructor's courses with its enrollment count.
type InstructorCourse struct {
	ID       uuid.UUID          `json:"id"`
	Title    string             `json:"title"`
	Status   model.CourseStatus `json:"status"`
	Students int                `json:"students"`
}

// GetInstructorCourses lists an instructor's courses with student counts.
func (r *DashboardRepository) GetInstructorCourses(ctx context.Context, instructorID uuid.UUID) ([]InstructorCourse, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT c.id, c.title, c.status, COUNT(e.student_id)
		 FROM courses c
		 LEFT JOIN enrollments e ON e.course_id = c.id
		 WHERE c.instructor_id = $1
		 GROUP BY c.id
		 ORDER BY c.created_at DESC`, instructorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	courses := []InstructorCourse{}
	for rows.Next() {
		var ic InstructorCourse
		if err := rows.Scan(&ic.ID, &ic.Title, &ic.Status, &ic.Students); err != nil {
			return nil, err
		}
		courses = append(courses, ic)
	}
	return courses, rows.Err()
}
