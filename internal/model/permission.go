package model

// Permission represents a string code for a specific admin action.
type Permission string

const (
	// PermissionUsersRead allows viewing user lists.
	PermissionUsersRead Permission = "users:read"

	// PermissionUsersWrite allows deleting users.
	PermissionUsersWrite Permission = "users:write"

	// PermissionUsersResetSession allows forcing a user to log in again.
	PermissionUsersResetSession Permission = "users:reset_session"

	// PermissionQuizzesReadAll allows viewing every quiz, private ones included.
	PermissionQuizzesReadAll Permission = "quizzes:read_all"

	// PermissionQuizzesWriteAll allows deleting any quiz.
	PermissionQuizzesWriteAll Permission = "quizzes:write_all"

	// PermissionAttemptsExport allows downloading attempt spreadsheets.
	PermissionAttemptsExport Permission = "attempts:export"
)

// AllPermissions is a slice of all available permissions.
var AllPermissions = []Permission{
	PermissionUsersRead,
	PermissionUsersWrite,
	PermissionUsersResetSession,
	PermissionQuizzesReadAll,
	PermissionQuizzesWriteAll,
	PermissionAttemptsExport,
}

// PermissionsFor returns the permission codes granted to a role.
func PermissionsFor(role UserRole) []string {
	if role != RoleAdmin {
		return nil
	}
	codes := make([]string, len(AllPermissions))
	for i, p := range AllPermissions {
		codes[i] = string(p)
	}
	return codes
}
