package rbac

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

const (
	PermTaskView    = "task:view"
	PermTaskManage  = "task:manage"
	PermExamRun     = "exam:run"
	PermExamAnswer  = "exam:answer"
	PermExamViewOwn = "exam:view-own"
)

// Default policy. Admins may also take exams.
var RolePermissions = map[string][]string{
	RoleUser: {
		PermTaskView,
		PermExamRun,
		PermExamAnswer,
		PermExamViewOwn,
	},
	RoleAdmin: {
		"*",
	},
}

// ValidRole reports whether role appears in the default policy.
func ValidRole(role string) bool {
	_, ok := RolePermissions[role]
	return ok
}
