package model

import (
	"time"

	"github.com/google/uuid"
)

// CourseStatus enumerates the publication states of a course.
type CourseStatus string

const (
	CourseStatusDraft     CourseStatus = "draft"
	CourseStatusPending   CourseStatus = "pending"
	CourseStatusPublished CourseStatus = "published"
)

// Course is a catalog entry owned by an instructor.
type Course struct {
	ID           uuid.UUID        `json:"id"`
	Title        string           `json:"title"`
	Description  string           `json:"description"`
	InstructorID uuid.UUID        `json:"instructor_id"`
	Price        float64          `json:"price"`
	ThumbnailURL string           `json:"thumbnail_url,omitempty"`
	Status       CourseStatus     `json:"status"`
	Materials    []CourseMaterial `json:"materials"`
	Schedules    []ClassSchedule  `json:"schedules"`
	CreatedBy    string           `json:"created_by,omitempty"`
	LastEditedBy string           `json:"last_edited_by,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// MaterialType enumerates supported course material formats.
type MaterialType string

const (
	MaterialPDF   MaterialType = "PDF"
	MaterialDOCX  MaterialType = "DOCX"
	MaterialPPT   MaterialType = "PPT"
	MaterialOther MaterialType = "OTHER"
)

// CourseMaterial is a downloadable document attached to a course.
type CourseMaterial struct {
	ID         uuid.UUID    `json:"id"`
	CourseID   uuid.UUID    `json:"course_id"`
	Title      string       `json:"title"`
	Type       MaterialType `json:"type"`
	URL        string       `json:"url"`
	UploadedAt time.Time    `json:"uploaded_at"`
}

// ClassSchedule is a live class session of a course.
type ClassSchedule struct {
	ID             uuid.UUID          `json:"id"`
	CourseID       uuid.UUID          `json:"course_id"`
	Topic          string             `json:"topic"`
	Agenda         string             `json:"agenda,omitempty"`
	StartsAt       time.Time          `json:"starts_at"`
	MeetingURL     string             `json:"meeting_url"`
	InstructorName string             `json:"instructor_name,omitempty"`
	Attendance     []AttendanceRecord `json:"attendance,omitempty"`
}

// AttendanceRecord marks a student joining a live class.
type AttendanceRecord struct {
	StudentID uuid.UUID `json:"student_id"`
	JoinedAt  time.Time `json:"joined_at"`
}

// CreateCourseRequest is the payload for creating a course.
type CreateCourseRequest struct {
	Title        string  `json:"title" binding:"required,min=3,max=255"`
	Description  string  `json:"description" binding:"required,max=5000"`
	Price        float64 `json:"price" binding:"min=0"`
	ThumbnailURL string  `json:"thumbnail_url" binding:"omitempty,max=1024"`
}

// UpdateCourseRequest is the payload for editing a course.
type UpdateCourseRequest struct {
	Title        *string  `json:"title" binding:"omitempty,min=3,max=255"`
	Description  *string  `json:"description" binding:"omitempty,max=5000"`
	Price        *float64 `json:"price" binding:"omitempty,min=0"`
	ThumbnailURL *string  `json:"thumbnail_url" binding:"omitempty,max=1024"`
}

// AddMaterialRequest is the payload for attaching a material to a course.
type AddMaterialRequest struct {
	Title string       `json:"title" binding:"required,max=255"`
	Type  MaterialType `json:"type" binding:"required,oneof=PDF DOCX PPT OTHER"`
	URL   string       `json:"url" binding:"required,max=1024"`
}

// ScheduleRequest is the payload for creating or replacing a live class.
type ScheduleRequest struct {
	Topic          string    `json:"topic" binding:"required,max=255"`
	Agenda         string    `json:"agenda" binding:"omitempty,max=5000"`
	StartsAt       time.Time `json:"starts_at" binding:"required"`
	MeetingURL     string    `json:"meeting_url" binding:"omitempty,url,max=1024"`
	InstructorName string    `json:"instructor_name" binding:"omitempty,max=120"`
}
