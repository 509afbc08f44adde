package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/zeroclasses/zero-backend/internal/model"
	"github.com/zeroclasses/zero-backend/internal/repository"
	"github.com/zeroclasses/zero-backend/internal/response"
)

// Course errors.
var (
	ErrCourseNotFound     = errors.New("course not found")
	ErrMaterialNotFound   = errors.New("material not found")
	ErrScheduleNotFound   = errors.New("schedule not found")
	ErrNotCourseOwner     = errors.New("not the course instructor")
	ErrCourseNotPublished = errors.New("course not published")
	ErrInvalidTransition  = errors.New("invalid course status transition")
	ErrNotEnrolled        = errors.New("not enrolled in course")
	ErrStudentsOnly       = errors.New("only students can do this")
)

// CourseService handles the catalog, enrollment, materials and live classes.
type CourseService struct {
	repo        *repository.CourseRepository
	enrollments *repository.EnrollmentRepository
	log         zerolog.Logger
}

// NewCourseService creates a new CourseService.
func NewCourseService(repo *repository.CourseRepository, enrollments *repository.EnrollmentRepository, log zerolog.Logger) *CourseService {
	return &CourseService{
		repo:        repo,
		enrollments: enrollments,
		log:         log.With().Str("component", "course_service").Logger(),
	}
}

// List returns the courses visible to actor. Students only see published
// courses, instructors see their own, other staff see everything.
func (s *CourseService) List(ctx context.Context, actor Actor, status model.CourseStatus, page, perPage int) ([]model.Course, *response.Pagination, error) {
	page, perPage = normalizePage(page, perPage)

	f := repository.CourseFilter{Status: status}
	switch {
	case actor.IsStudent():
		f.Status = model.CourseStatusPublished
	case actor.Role == model.RoleInstructor:
		f.InstructorID = actor.ID
	}

	courses, total, err := s.repo.ListPaginated(ctx, f, perPage, (page-1)*perPage)
	if err != nil {
		return nil, nil, err
	}
	if courses == nil {
		courses = []model.Course{}
	}
	return courses, response.NewPagination(page, perPage, total), nil
}

// Get returns a course with its materials and schedules if actor may see it.
func (s *CourseService) Get(ctx context.Context, actor Actor, id uuid.UUID) (*model.Course, error) {
	course, err := s.repo.GetDetail(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	if actor.IsStudent() && course.Status != model.CourseStatusPublished {
		return nil, ErrCourseNotFound
	}
	if actor.Role == model.RoleInstructor && course.InstructorID != actor.ID {
		return nil, ErrNotCourseOwner
	}
	if actor.IsStudent() {
		// Attendance of other students stays private.
		for i := range course.Schedules {
			course.Schedules[i].Attendance = ownAttendance(course.Schedules[i].Attendance, actor.ID)
		}
	}
	return course, nil
}

func ownAttendance(records []model.AttendanceRecord, studentID uuid.UUID) []model.AttendanceRecord {
	for _, r := range records {
		if r.StudentID == studentID {
			return []model.AttendanceRecord{r}
		}
	}
	return nil
}

// Create adds a draft course taught by actor.
func (s *CourseService) Create(ctx context.Context, actor Actor, req model.CreateCourseRequest) (*model.Course, error) {
	course := &model.Course{
		Title:        req.Title,
		Description:  req.Description,
		InstructorID: actor.ID,
		Price:        req.Price,
		ThumbnailURL: req.ThumbnailURL,
		Status:       model.CourseStatusDraft,
		CreatedBy:    actor.Name,
		Materials:    []model.CourseMaterial{},
		Schedules:    []model.ClassSchedule{},
	}
	if err := s.repo.Create(ctx, course); err != nil {
		return nil, err
	}
	s.log.Info().Str("course_id", course.ID.String()).Str("by", actor.ID.String()).Msg("Course created")
	return course, nil
}

// Update applies the non-nil fields of req.
func (s *CourseService) Update(ctx context.Context, actor Actor, id uuid.UUID, req model.UpdateCourseRequest) (*model.Course, error) {
	course, err := s.authorize(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if req.Title != nil {
		course.Title = *req.Title
	}
	if req.Description != nil {
		course.Description = *req.Description
	}
	if req.Price != nil {
		course.Price = *req.Price
	}
	if req.ThumbnailURL != nil {
		course.ThumbnailURL = *req.ThumbnailURL
	}
	course.LastEditedBy = actor.Name
	if err := s.repo.Update(ctx, course); err != nil {
		return nil, err
	}
	return course, nil
}

// Delete removes a course with everything attached to it.
func (s *CourseService) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	if _, err := s.authorize(ctx, actor, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if repository.IsNotFound(err) {
			return ErrCourseNotFound
		}
		return err
	}
	s.log.Info().Str("course_id", id.String()).Str("by", actor.ID.String()).Msg("Course deleted")
	return nil
}

// SubmitForReview moves a draft course to pending.
func (s *CourseService) SubmitForReview(ctx context.Context, actor Actor, id uuid.UUID) error {
	if _, err := s.authorize(ctx, actor, id); err != nil {
		return err
	}
	return s.transition(ctx, actor, id, model.CourseStatusDraft, model.CourseStatusPending)
}

// Publish approves a pending course. Permission is checked by the router.
func (s *CourseService) Publish(ctx context.Context, actor Actor, id uuid.UUID) error {
	return s.transition(ctx, actor, id, model.CourseStatusPending, model.CourseStatusPublished)
}

func (s *CourseService) transition(ctx context.Context, actor Actor, id uuid.UUID, from, to model.CourseStatus) error {
	ok, err := s.repo.UpdateStatus(ctx, id, from, to, actor.Name)
	if err != nil {
		return err
	}
	if !ok {
		if _, err := s.repo.GetByID(ctx, id); repository.IsNotFound(err) {
			return ErrCourseNotFound
		}
		return ErrInvalidTransition
	}
	s.log.Info().Str("course_id", id.String()).Str("status", string(to)).Str("by", actor.ID.String()).Msg("Course status changed")
	return nil
}

// authorize loads a course and checks that actor may edit it: its instructor
// or anyone allowed to approve courses.
func (s *CourseService) authorize(ctx context.Context, actor Actor, id uuid.UUID) (*model.Course, error) {
	course, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	if course.InstructorID != actor.ID && !actor.Can(model.PermCoursesApprove) {
		return nil, ErrNotCourseOwner
	}
	return course, nil
}

// CanManage reports whether actor may edit the course. Used by the quiz and
// assignment services.
func (s *CourseService) CanManage(ctx context.Context, actor Actor, courseID uuid.UUID) error {
	_, err := s.authorize(ctx, actor, courseID)
	return err
}

// ─── Enrollment ────────────────────────────────────────────────────────

// Enroll adds a student to a published course. Enrolling twice succeeds.
func (s *CourseService) Enroll(ctx context.Context, actor Actor, courseID uuid.UUID) error {
	if !actor.IsStudent() {
		return ErrStudentsOnly
	}
	course, err := s.repo.GetByID(ctx, courseID)
	if err != nil {
		if repository.IsNotFound(err) {
			return ErrCourseNotFound
		}
		return err
	}
	if course.Status != model.CourseStatusPublished {
		return ErrCourseNotPublished
	}
	created, err := s.enrollments.Enroll(ctx, courseID, actor.ID)
	if err != nil {
		return err
	}
	if created {
		s.log.Info().Str("course_id", courseID.String()).Str("student_id", actor.ID.String()).Msg("Student enrolled")
	}
	return nil
}

// MyCourses lists the caller's enrolled courses.
func (s *CourseService) MyCourses(ctx context.Context, actor Actor) ([]model.Course, error) {
	return s.enrollments.ListCourses(ctx, actor.ID)
}

// IsEnrolled reports whether a student is enrolled in the course.
func (s *CourseService) IsEnrolled(ctx context.Context, courseID, studentID uuid.UUID) (bool, error) {
	return s.enrollments.IsEnrolled(ctx, courseID, studentID)
}

// CanView reports whether actor may read course content: staff who manage
// it, or an enrolled student.
func (s *CourseService) CanView(ctx context.Context, actor Actor, courseID uuid.UUID) error {
	if !actor.IsStudent() {
		return s.CanManage(ctx, actor, courseID)
	}
	ok, err := s.enrollments.IsEnrolled(ctx, courseID, actor.ID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotEnrolled
	}
	return nil
}

// ─── Materials ─────────────────────────────────────────────────────────

// AddMaterial attaches a document to a course.
func (s *CourseService) AddMaterial(ctx context.Context, actor Actor, courseID uuid.UUID, req model.AddMaterialRequest) (*model.CourseMaterial, error) {
	if _, err := s.authorize(ctx, actor, courseID); err != nil {
		return nil, err
	}
	m := &model.CourseMaterial{
		CourseID: courseID,
		Title:    req.Title,
		Type:     req.Type,
		URL:      req.URL,
	}
	if err := s.repo.AddMaterial(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// DeleteMaterial removes a document from a course.
func (s *CourseService) DeleteMaterial(ctx context.Context, actor Actor, courseID, materialID uuid.UUID) error {
	if _, err := s.authorize(ctx, actor, courseID); err != nil {
		return err
	}
	if err := s.repo.DeleteMaterial(ctx, courseID, materialID); err != nil {
		if repository.IsNotFound(err) {
			return ErrMaterialNotFound
		}
		return err
	}
	return nil
}

// ─── Schedules ─────────────────────────────────────────────────────────

// CreateSchedule adds a live class to a course.
func (s *CourseService) CreateSchedule(ctx context.Context, actor Actor, courseID uuid.UUID, req model.ScheduleRequest) (*model.ClassSchedule, error) {
	if _, err := s.authorize(ctx, actor, courseID); err != nil {
		return nil, err
	}
	sch := scheduleFromRequest(courseID, req)
	if err := s.repo.CreateSchedule(ctx, sch); err != nil {
		return nil, err
	}
	return sch, nil
}

// UpdateSchedule replaces a live class.
func (s *CourseService) UpdateSchedule(ctx context.Context, actor Actor, courseID, scheduleID uuid.UUID, req model.ScheduleRequest) (*model.ClassSchedule, error) {
	if _, err := s.authorize(ctx, actor, courseID); err != nil {
		return nil, err
	}
	sch := scheduleFromRequest(courseID, req)
	sch.ID = scheduleID
	if err := s.repo.UpdateSchedule(ctx, sch); err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrScheduleNotFound
		}
		return nil, err
	}
	return sch, nil
}

// DeleteSchedule removes a live class.
func (s *CourseService) DeleteSchedule(ctx context.Context, actor Actor, courseID, scheduleID uuid.UUID) error {
	if _, err := s.authorize(ctx, actor, courseID); err != nil {
		return err
	}
	if err := s.repo.DeleteSchedule(ctx, courseID, scheduleID); err != nil {
		if repository.IsNotFound(err) {
			return ErrScheduleNotFound
		}
		return err
	}
	return nil
}

// Attend records that an enrolled student joined a live class and returns
// the meeting link. Joining again keeps the first record.
func (s *CourseService) Attend(ctx context.Context, actor Actor, courseID, scheduleID uuid.UUID) (*model.ClassSchedule, *model.AttendanceRecord, error) {
	if !actor.IsStudent() {
		return nil, nil, ErrStudentsOnly
	}
	if err := s.CanView(ctx, actor, courseID); err != nil {
		return nil, nil, err
	}
	sch, err := s.repo.GetSchedule(ctx, courseID, scheduleID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, nil, ErrScheduleNotFound
		}
		return nil, nil, err
	}
	rec, err := s.repo.RecordAttendance(ctx, scheduleID, actor.ID)
	if err != nil {
		return nil, nil, err
	}
	return sch, rec, nil
}

func scheduleFromRequest(courseID uuid.UUID, req model.ScheduleRequest) *model.ClassSchedule {
	return &model.ClassSchedule{
		CourseID:       courseID,
		Topic:          req.Topic,
		Agenda:         req.Agenda,
		StartsAt:       req.StartsAt.UTC(),
		MeetingURL:     req.MeetingURL,
		InstructorName: req.InstructorName,
	}
}
