package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRole_Dashboard(t *testing.T) {
	tests := []struct {
		role Role
		want DashboardKind
	}{
		{RoleStudent, DashboardStudent},
		{RoleInstructor, DashboardInstructor},
		{RoleSuperAdmin, DashboardAdmin},
		{RoleAdmin, DashboardAdmin},
		{RoleContentMgr, DashboardAdmin},
		{RoleFinance, DashboardAdmin},
		{RoleSupport, DashboardAdmin},
		{RoleAnalytics, DashboardAdmin},
		{Role("GUEST"), DashboardStudent},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.role.Dashboard(), tt.role)
	}
}

func TestRole_Can(t *testing.T) {
	assert.True(t, RoleSuperAdmin.Can(PermSettingsEdit))
	assert.True(t, RoleSuperAdmin.Can(PermUsersDelete))
	assert.False(t, RoleAdmin.Can(PermUsersDelete))
	assert.False(t, RoleAdmin.Can(PermSettingsEdit))
	assert.True(t, RoleContentMgr.Can(PermCoursesApprove))
	assert.True(t, RoleInstructor.Can(PermCoursesCreate))
	assert.False(t, RoleInstructor.Can(PermCoursesApprove))
	assert.False(t, RoleStudent.Can(PermUsersView))
	assert.Empty(t, RoleStudent.Permissions())
}

func TestRole_PermissionsMatchCan(t *testing.T) {
	for role := range roleTable {
		for _, code := range role.Permissions() {
			assert.True(t, role.Can(Permission(code)), "%s %s", role, code)
		}
	}
}

func TestRole_IsStaff(t *testing.T) {
	assert.False(t, RoleStudent.IsStaff())
	assert.True(t, RoleInstructor.IsStaff())
	assert.True(t, RoleSupport.IsStaff())
	assert.False(t, Role("").IsStaff())
	assert.False(t, Role("").Valid())
}
