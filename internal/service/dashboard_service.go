package service

import (
	"context"
	"time"

	"github.com/zeroclasses/zero-backend/internal/model"
	"github.com/zeroclasses/zero-backend/internal/repository"
)

const (
	dashboardUpcomingLimit = 5
	dashboardResultsLimit  = 5
)

// StudentDashboard is served to students.
type StudentDashboard struct {
	Courses         []model.Course                   `json:"courses"`
	RecentResults   []repository.QuizResultWithTitle `json:"recent_results"`
	UpcomingClasses []repository.UpcomingClass       `json:"upcoming_classes"`
}

// InstructorDashboard is served to instructors.
type InstructorDashboard struct {
	Courses        []repository.InstructorCourse `json:"courses"`
	PendingToGrade int                           `json:"pending_to_grade"`
}

// Dashboard is the role-dispatched dashboard payload. Exactly one section is set.
type Dashboard struct {
	Kind       model.DashboardKind      `json:"kind"`
	Student    *StudentDashboard        `json:"student,omitempty"`
	Instructor *InstructorDashboard     `json:"instructor,omitempty"`
	Admin      *repository.AdminSummary `json:"admin,omitempty"`
}

// DashboardService assembles the home screen for each role.
type DashboardService struct {
	repo        *repository.DashboardRepository
	enrollments *repository.EnrollmentRepository
	results     *repository.QuizResultRepository
	assignments *repository.AssignmentRepository
	now         func() time.Time
}

// NewDashboardService creates a new DashboardService.
func NewDashboardService(
	repo *repository.DashboardRepository,
	enrollments *repository.EnrollmentRepository,
	results *repository.QuizResultRepository,
	assignments *repository.AssignmentRepository,
) *DashboardService {
	return &DashboardService{
		repo:        repo,
		enrollments: enrollments,
		results:     results,
		assignments: assignments,
		now:         time.Now,
	}
}

// Get returns the dashboard for actor's role.
func (s *DashboardService) Get(ctx context.Context, actor Actor) (*Dashboard, error) {
	kind := actor.Role.Dashboard()
	d := &Dashboard{Kind: kind}

	switch kind {
	case model.DashboardStudent:
		sd, err := s.student(ctx, actor)
		if err != nil {
			return nil, err
		}
		d.Student = sd
	case model.DashboardInstructor:
		courses, err := s.repo.GetInstructorCourses(ctx, actor.ID)
		if err != nil {
			return nil, err
		}
		pending, err := s.assignments.CountUngradedForInstructor(ctx, actor.ID)
		if err != nil {
			return nil, err
		}
		d.Instructor = &InstructorDashboard{Courses: courses, PendingToGrade: pending}
	default:
		summary, err := s.repo.GetAdminSummary(ctx, s.now().UTC())
		if err != nil {
			return nil, err
		}
		d.Kind = model.DashboardAdmin
		d.Admin = summary
	}
	return d, nil
}

func (s *DashboardService) student(ctx context.Context, actor Actor) (*StudentDashboard, error) {
	courses, err := s.enrollments.ListCourses(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	results, err := s.results.ListByStudent(ctx, actor.ID, dashboardResultsLimit)
	if err != nil {
		return nil, err
	}
	upcoming, err := s.repo.GetUpcomingClassesForStudent(ctx, actor.ID, s.now().UTC(), dashboardUpcomingLimit)
	if err != nil {
		return nil, err
	}
	return &StudentDashboard{Courses: courses, RecentResults: results, UpcomingClasses: upcoming}, nil
}
