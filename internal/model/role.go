package model

// Role is the closed set of account roles.
type Role string

const (
	RoleStudent    Role = "STUDENT"
	RoleInstructor Role = "INSTRUCTOR"
	RoleSuperAdmin Role = "SUPER_ADMIN"
	RoleAdmin      Role = "ADMIN"
	RoleContentMgr Role = "CONTENT_MGR"
	RoleFinance    Role = "FINANCE"
	RoleSupport    Role = "SUPPORT"
	RoleAnalytics  Role = "ANALYTICS"
)

// DashboardKind selects which dashboard a role is served.
type DashboardKind string

const (
	DashboardStudent    DashboardKind = "student"
	DashboardInstructor DashboardKind = "instructor"
	DashboardAdmin      DashboardKind = "admin"
)

type roleSpec struct {
	permissions []Permission
	dashboard   DashboardKind
}

var roleTable = map[Role]roleSpec{
	RoleSuperAdmin: {
		permissions: []Permission{
			PermUsersView, PermUsersEdit, PermUsersDelete,
			PermCoursesCreate, PermCoursesPublish, PermCoursesApprove,
			PermFinanceView, PermSupportView,
			PermSettingsView, PermSettingsEdit, PermLogsView,
		},
		dashboard: DashboardAdmin,
	},
	RoleAdmin: {
		permissions: []Permission{
			PermUsersView, PermUsersEdit,
			PermCoursesCreate, PermCoursesPublish, PermCoursesApprove,
			PermFinanceView, PermSupportView,
			PermSettingsView, PermLogsView,
		},
		dashboard: DashboardAdmin,
	},
	RoleContentMgr: {
		permissions: []Permission{PermUsersView, PermUsersEdit, PermCoursesCreate, PermCoursesPublish, PermCoursesApprove},
		dashboard:   DashboardAdmin,
	},
	RoleFinance: {
		permissions: []Permission{PermUsersView, PermFinanceView},
		dashboard:   DashboardAdmin,
	},
	RoleSupport: {
		permissions: []Permission{PermUsersView, PermSupportView},
		dashboard:   DashboardAdmin,
	},
	RoleAnalytics: {
		permissions: []Permission{PermUsersView, PermFinanceView},
		dashboard:   DashboardAdmin,
	},
	RoleInstructor: {
		permissions: []Permission{PermUsersView, PermCoursesCreate},
		dashboard:   DashboardInstructor,
	},
	RoleStudent: {
		dashboard: DashboardStudent,
	},
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	_, ok := roleTable[r]
	return ok
}

// Permissions returns the permission codes granted to r.
func (r Role) Permissions() []string {
	spec := roleTable[r]
	codes := make([]string, len(spec.permissions))
	for i, p := range spec.permissions {
		codes[i] = string(p)
	}
	return codes
}

// Can reports whether r holds permission p.
func (r Role) Can(p Permission) bool {
	for _, granted := range roleTable[r].permissions {
		if granted == p {
			return true
		}
	}
	return false
}

// Dashboard returns the dashboard kind for r. Unknown roles fall back to the student view.
func (r Role) Dashboard() DashboardKind {
	if spec, ok := roleTable[r]; ok {
		return spec.dashboard
	}
	return DashboardStudent
}

// IsStaff is true for every role that manages content rather than consuming it.
func (r Role) IsStaff() bool {
	return r.Valid() && r != RoleStudent
}

// SelfRegistrable lists the roles an anonymous visitor may sign up as.
var SelfRegistrable = []Role{RoleStudent, RoleInstructor, RoleAdmin}
