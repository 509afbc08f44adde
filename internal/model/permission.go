package model

// Permission is a capability code carried in staff JWTs.
type Permission string

const (
	PermUsersView   Permission = "users:view"
	PermUsersEdit   Permission = "users:edit"
	PermUsersDelete Permission = "users:delete"

	PermCoursesCreate  Permission = "courses:create"
	PermCoursesPublish Permission = "courses:publish"
	PermCoursesApprove Permission = "courses:approve"

	PermFinanceView Permission = "finance:view"
	PermSupportView Permission = "support:view"

	PermSettingsView Permission = "settings:view"
	PermSettingsEdit Permission = "settings:edit"
	PermLogsView     Permission = "logs:view"
)
