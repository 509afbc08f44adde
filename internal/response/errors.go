package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrSessionInvalidated ErrCode = "SESSION_INVALIDATED"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"
	ErrTokenExpired       ErrCode = "TOKEN_EXPIRED"
	ErrEmailTaken         ErrCode = "EMAIL_TAKEN"
	ErrInvalidAdminSecret ErrCode = "INVALID_ADMIN_SECRET"
	ErrOTPInvalid         ErrCode = "OTP_INVALID"
	ErrOTPRequired        ErrCode = "OTP_NOT_VERIFIED"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden         ErrCode = "FORBIDDEN"
	ErrPermissionDenied  ErrCode = "PERMISSION_DENIED"
	ErrStudentAccessOnly ErrCode = "STUDENT_ACCESS_ONLY"
	ErrStaffAccessOnly   ErrCode = "STAFF_ACCESS_ONLY"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound         ErrCode = "NOT_FOUND"
	ErrConflict         ErrCode = "CONFLICT"
	ErrDependencyExists ErrCode = "DEPENDENCY_EXISTS"
	ErrActionForbidden  ErrCode = "ACTION_FORBIDDEN"

	// ─── Courses ───────────────────────────────────────────────────────
	ErrNotCourseOwner     ErrCode = "NOT_COURSE_OWNER"
	ErrCourseNotPublished ErrCode = "COURSE_NOT_PUBLISHED"
	ErrInvalidTransition  ErrCode = "INVALID_STATUS_TRANSITION"
	ErrNotEnrolled        ErrCode = "NOT_ENROLLED"

	// ─── Quizzes ───────────────────────────────────────────────────────
	ErrNoQuestions      ErrCode = "NO_QUESTIONS"
	ErrAttemptSubmitted ErrCode = "ATTEMPT_SUBMITTED"
	ErrAttemptActive    ErrCode = "ATTEMPT_IN_PROGRESS"
	ErrResultNotSaved   ErrCode = "RESULT_NOT_SAVED"

	// ─── Media ─────────────────────────────────────────────────────────
	ErrFileRequired    ErrCode = "FILE_REQUIRED"
	ErrUnsupportedFile ErrCode = "UNSUPPORTED_FILE_TYPE"
	ErrFileTooLarge    ErrCode = "FILE_TOO_LARGE"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrInvalidCredentials:
		return "Invalid email or password."
	case ErrSessionInvalidated:
		return "Your session has ended. Please log in again."
	case ErrTokenRequired:
		return "Authentication token is required."
	case ErrTokenInvalid:
		return "Authentication token is invalid."
	case ErrTokenExpired:
		return "Authentication token has expired."
	case ErrEmailTaken:
		return "An account with this email already exists."
	case ErrInvalidAdminSecret:
		return "Admin secret is incorrect."
	case ErrOTPInvalid:
		return "The verification code is invalid or has expired."
	case ErrOTPRequired:
		return "Please verify your email before registering."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrForbidden:
		return "You do not have access to this resource."
	case ErrPermissionDenied:
		return "Permission denied."
	case ErrStudentAccessOnly:
		return "This resource is available to students only."
	case ErrStaffAccessOnly:
		return "This resource is available to instructors and administrators only."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid ID format."
	case ErrInvalidPayload:
		return "Invalid request payload."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Resource not found."
	case ErrConflict:
		return "Resource already exists."
	case ErrDependencyExists:
		return "This record is still referenced by other data."
	case ErrActionForbidden:
		return "This action is not allowed."

	// ─── Courses ───────────────────────────────────────────────────────
	case ErrNotCourseOwner:
		return "You are not the instructor of this course."
	case ErrCourseNotPublished:
		return "This course is not published yet."
	case ErrInvalidTransition:
		return "The course cannot move to that status from its current one."
	case ErrNotEnrolled:
		return "You are not enrolled in this course."

	// ─── Quizzes ───────────────────────────────────────────────────────
	case ErrNoQuestions:
		return "This quiz has no questions."
	case ErrAttemptSubmitted:
		return "This attempt has already been submitted."
	case ErrAttemptActive:
		return "This attempt is still in progress."
	case ErrResultNotSaved:
		return "Failed to save your result. Your score is kept, please retry saving."

	// ─── Media ─────────────────────────────────────────────────────────
	case ErrFileRequired:
		return "A file upload is required."
	case ErrUnsupportedFile:
		return "Unsupported file type."
	case ErrFileTooLarge:
		return "File exceeds the size limit."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "Internal server error."
	default:
		return "An unexpected error occurred."
	}
}
