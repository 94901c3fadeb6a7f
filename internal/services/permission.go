package services

import (
	"github.com/songyu/bugtrack/internal/models"
)

// Actions gated by the permission table.
const (
	ActionViewBugs         = "view_bugs"
	ActionCreateBug        = "create_bug"
	ActionEditBug          = "edit_bug"
	ActionEditOwnBug       = "edit_own_bug"
	ActionDeleteBug        = "delete_bug"
	ActionManageDevelopers = "manage_developers"
	ActionManageUsers      = "manage_users"
	ActionViewStats        = "view_stats"
	ActionExportData       = "export_data"
)

// actionAll is the wildcard entry granting every action.
const actionAll = "all"

var rolePermissions = map[string][]string{
	models.RoleAdmin: {actionAll},
	models.RolePM: {
		ActionViewBugs, ActionCreateBug, ActionEditBug, ActionDeleteBug,
		ActionManageDevelopers, ActionViewStats, ActionExportData,
	},
	models.RoleDeveloper: {
		ActionViewBugs, ActionCreateBug, ActionEditOwnBug, ActionViewStats,
	},
	models.RoleTester: {
		ActionViewBugs, ActionCreateBug, ActionEditOwnBug, ActionViewStats,
	},
	models.RoleGuest: {
		ActionViewBugs, ActionViewStats,
	},
}

// HasPermission reports whether role may perform action. Unknown roles are
// denied. This is a pure table lookup; object-level ownership is the job of
// Authorize.
func HasPermission(role, action string) bool {
	for _, a := range rolePermissions[role] {
		if a == actionAll || a == action {
			return true
		}
	}
	return false
}

// Authorize is the single allow/deny decision for record-level operations.
// It grants the action outright when the role holds it, and additionally
// grants edit_bug to roles holding edit_own_bug when the requester is the
// record's submitter. Ownership is compared by display name, which is what
// bug records store as submitter.
func Authorize(role, action, recordOwner, requester string) bool {
	if HasPermission(role, action) {
		return true
	}
	if action == ActionEditBug && HasPermission(role, ActionEditOwnBug) {
		return recordOwner != "" && recordOwner == requester
	}
	return false
}
