package repository

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/zeroclasses/zero-backend/internal/model"
)

// ErrNotFound is returned by writes that target a row that does not exist.
var ErrNotFound = errors.New("record not found")

const courseColumns = `id, title, description, instructor_id, price, thumbnail_url, status,
	created_by, last_edited_by, created_at, updated_at`

// CourseFilter narrows ListPaginated. Zero values mean "any".
type CourseFilter struct {
	Status       model.CourseStatus
	InstructorID uuid.UUID
}

// CourseRepository handles courses and their embedded materials and schedules.
type CourseRepository struct {
	pool *pgxpool.Pool
}

// NewCourseRepository creates a new CourseRepository.
func NewCourseRepository(pool *pgxpool.Pool) *CourseRepository {
	return &CourseRepository{pool: pool}
}

func scanCourse(row rowScanner) (*model.Course, error) {
	c := &model.Course{}
	err := row.Scan(&c.ID, &c.Title, &c.Description, &c.InstructorID, &c.Price, &c.ThumbnailURL,
		&c.Status, &c.CreatedBy, &c.LastEditedBy, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// GetByID retrieves a course without its materials and schedules.
func (r *CourseRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Course, error) {
	return scanCourse(r.pool.QueryRow(ctx, `SELECT `+courseColumns+` FROM courses WHERE id = $1`, id))
}

// GetDetail retrieves a course with materials, schedules and attendance.
func (r *CourseRepository) GetDetail(ctx context.Context, id uuid.UUID) (*model.Course, error) {
	c, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.Materials, err = r.ListMaterials(ctx, id); err != nil {
		return nil, err
	}
	if c.Schedules, err = r.ListSchedules(ctx, id); err != nil {
		return nil, err
	}
	return c, nil
}

// ListPaginated retrieves courses matching f, newest first.
func (r *CourseRepository) ListPaginated(ctx context.Context, f CourseFilter, limit, offset int) ([]model.Course, int, error) {
	var conds []string
	var args []interface{}
	if f.Status != "" {
		args = append(args, f.Status)
		conds = append(conds, `status = $`+strconv.Itoa(len(args)))
	}
	if f.InstructorID != uuid.Nil {
		args = append(args, f.InstructorID)
		conds = append(conds, `instructor_id = $`+strconv.Itoa(len(args)))
	}
	where := ""
	if len(conds) > 0 {
		where = ` WHERE ` + strings.Join(conds, ` AND `)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM courses`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	argIdx := len(args) + 1
	query := `SELECT ` + courseColumns + ` FROM courses` + where +
		` ORDER BY created_at DESC LIMIT $` + strconv.Itoa(argIdx) + ` OFFSET $` + strconv.Itoa(argIdx+1)
	args = append(args, limit, offset)

	courses, err := r.queryCourses(ctx, query, args...)
	return courses, total, err
}

func (r *CourseRepository) queryCourses(ctx context.Context, query string, args ...interface{}) ([]model.Course, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var courses []model.Course
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		courses = append(courses, *c)
	}
	return courses, rows.Err()
}

// Create inserts a new course.
func (r *CourseRepository) Create(ctx context.Context, c *model.Course) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO courses (title, description, instructor_id, price, thumbnail_url, status, created_by, last_edited_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		 RETURNING id, last_edited_by, created_at, updated_at`,
		c.Title, c.Description, c.InstructorID, c.Price, c.ThumbnailURL, c.Status, c.CreatedBy,
	).Scan(&c.ID, &c.LastEditedBy, &c.CreatedAt, &c.UpdatedAt)
}

// Update writes the editable fields of c.
func (r *CourseRepository) Update(ctx context.Context, c *model.Course) error {
	return r.pool.QueryRow(ctx,
		`UPDATE courses SET title = $1, description = $2, price = $3, thumbnail_url = $4,
		        last_edited_by = $5, updated_at = NOW()
		 WHERE id = $6
		 RETURNING updated_at`,
		c.Title, c.Description, c.Price, c.ThumbnailURL, c.LastEditedBy, c.ID,
	).Scan(&c.UpdatedAt)
}

// UpdateStatus moves a course from one status to another. It returns false
// when the course is not currently in from.
func (r *CourseRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.CourseStatus, editor string) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE courses SET status = $1, last_edited_by = $2, updated_at = NOW()
		 WHERE id = $3 AND status = $4`,
		to, editor, id, from)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// Delete removes a course and everything attached to it.
func (r *CourseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CountByStatus returns the number of courses in status.
func (r *CourseRepository) CountByStatus(ctx context.Context, status model.CourseStatus) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM courses WHERE status = $1`, status).Scan(&n)
	return n, err
}

// ─── Materials ─────────────────────────────────────────────────────────

// ListMaterials returns the materials of a course in upload order.
func (r *CourseRepository) ListMaterials(ctx context.Context, courseID uuid.UUID) ([]model.CourseMaterial, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, course_id, title, type, url, uploaded_at
		 FROM course_materials WHERE course_id = $1 ORDER BY uploaded_at`, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	materials := []model.CourseMaterial{}
	for rows.Next() {
		var m model.CourseMaterial
		if err := rows.Scan(&m.ID, &m.CourseID, &m.Title, &m.Type, &m.URL, &m.UploadedAt); err != nil {
			return nil, err
		}
		materials = append(materials, m)
	}
	return materials, rows.Err()
}

// AddMaterial attaches a material to its course.
func (r *CourseRepository) AddMaterial(ctx context.Context, m *model.CourseMaterial) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO course_materials (course_id, title, type, url)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, uploaded_at`,
		m.CourseID, m.Title, m.Type, m.URL,
	).Scan(&m.ID, &m.UploadedAt)
}

// DeleteMaterial removes a material from a course.
func (r *CourseRepository) DeleteMaterial(ctx context.Context, courseID, materialID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM course_materials WHERE id = $1 AND course_id = $2`, materialID, courseID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ─── Schedules ─────────────────────────────────────────────────────────

// ListSchedules returns the live classes of a course with their attendance.
func (r *CourseRepository) ListSchedules(ctx context.Context, courseID uuid.UUID) ([]model.ClassSchedule, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT s.id, s.course_id, s.topic, s.agenda, s.starts_at, s.meeting_url, s.instructor_name,
		        a.student_id, a.joined_at
		 FROM class_schedules s
		 LEFT JOIN schedule_attendance a ON a.schedule_id = s.id
		 WHERE s.course_id = $1
		 ORDER BY s.starts_at, a.joined_at`, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	schedules := []model.ClassSchedule{}
	index := make(map[uuid.UUID]int)
	for rows.Next() {
		var s model.ClassSchedule
		var studentID *uuid.UUID
		var joinedAt *time.Time
		if err := rows.Scan(&s.ID, &s.CourseID, &s.Topic, &s.Agenda, &s.StartsAt, &s.MeetingURL,
			&s.InstructorName, &studentID, &joinedAt); err != nil {
			return nil, err
		}
		i, ok := index[s.ID]
		if !ok {
			i = len(schedules)
			index[s.ID] = i
			schedules = append(schedules, s)
		}
		if studentID != nil && joinedAt != nil {
			schedules[i].Attendance = append(schedules[i].Attendance, model.AttendanceRecord{
				StudentID: *studentID,
				JoinedAt:  *joinedAt,
			})
		}
	}
	return schedules, rows.Err()
}

// GetSchedule retrieves one live class of a course.
func (r *CourseRepository) GetSchedule(ctx context.Context, courseID, scheduleID uuid.UUID) (*model.ClassSchedule, error) {
	s := &model.ClassSchedule{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, course_id, topic, agenda, starts_at, meeting_url, instructor_name
		 FROM class_schedules WHERE id = $1 AND course_id = $2`, scheduleID, courseID,
	).Scan(&s.ID, &s.CourseID, &s.Topic, &s.Agenda, &s.StartsAt, &s.MeetingURL, &s.InstructorName)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// CreateSchedule inserts a live class.
func (r *CourseRepository) CreateSchedule(ctx context.Context, s *model.ClassSchedule) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO class_schedules (course_id, topic, agenda, starts_at, meeting_url, instructor_name)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`,
		s.CourseID, s.Topic, s.Agenda, s.StartsAt, s.MeetingURL, s.InstructorName,
	).Scan(&s.ID)
}

// UpdateSchedule replaces the fields of a live class.
func (r *CourseRepository) UpdateSchedule(ctx context.Context, s *model.ClassSchedule) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE class_schedules SET topic = $1, agenda = $2, starts_at = $3, meeting_url = $4, instructor_name = $5
		 WHERE id = $6 AND course_id = $7`,
		s.Topic, s.Agenda, s.StartsAt, s.MeetingURL, s.InstructorName, s.ID, s.CourseID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteSchedule removes a live class.
func (r *CourseRepository) DeleteSchedule(ctx context.Context, courseID, scheduleID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM class_schedules WHERE id = $1 AND course_id = $2`, scheduleID, courseID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// RecordAttendance marks a student as joined. Joining twice keeps the first
// timestamp; the returned record is always the stored one.
func (r *CourseRepository) RecordAttendance(ctx context.Context, scheduleID, studentID uuid.UUID) (*model.AttendanceRecord, error) {
	rec := &model.AttendanceRecord{StudentID: studentID}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO schedule_attendance (schedule_id, student_id)
		 VALUES ($1, $2)
		 ON CONFLICT (schedule_id, student_id) DO UPDATE SET joined_at = schedule_attendance.joined_at
		 RETURNING joined_at`,
		scheduleID, studentID,
	).Scan(&rec.JoinedAt)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// IsNotFound reports whether err means the row does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows) || errors.Is(err, ErrNotFound)
}
