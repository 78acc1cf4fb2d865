package user

type Permission string

const (
	// Employees
	PermissionEmployeeView   Permission = "employee.view"
	PermissionEmployeeManage Permission = "employee.manage"
	PermissionEmployeeDelete Permission = "employee.delete"

	// Salary
	PermissionSalaryManage Permission = "salary.manage"

	// Attendance
	PermissionAttendanceViewAll Permission = "attendance.view_all"
	PermissionAttendanceMark    Permission = "attendance.mark"

	// Leave
	PermissionLeaveCreate  Permission = "leave.create"
	PermissionLeaveViewAll Permission = "leave.view_all"
	PermissionLeaveApprove Permission = "leave.approve"

	// Payroll
	PermissionPayrollViewAll Permission = "payroll.view_all"
	PermissionPayrollProcess Permission = "payroll.process"

	// Reports
	PermissionReportsView Permission = "reports.view"
)

// RolePermissions maps roles to their permissions
var RolePermissions = map[Role][]Permission{
	RoleAdmin: {
		PermissionEmployeeView,
		PermissionEmployeeManage,
		PermissionEmployeeDelete,
		PermissionSalaryManage,
		PermissionAttendanceViewAll,
		PermissionAttendanceMark,
		PermissionLeaveCreate,
		PermissionLeaveViewAll,
		PermissionLeaveApprove,
		PermissionPayrollViewAll,
		PermissionPayrollProcess,
		PermissionReportsView,
	},
	RoleHR: {
		PermissionEmployeeView,
		PermissionEmployeeManage,
		PermissionSalaryManage,
		PermissionAttendanceViewAll,
		PermissionAttendanceMark,
		PermissionLeaveCreate,
		PermissionLeaveViewAll,
		PermissionLeaveApprove,
		PermissionPayrollViewAll,
		PermissionPayrollProcess,
		PermissionReportsView,
	},
	RoleEmployee: {
		PermissionLeaveCreate,
	},
}

// HasPermission checks if a role has a specific permission
func HasPermission(role Role, permission Permission) bool {
	permissions, exists := RolePermissions[role]
	if !exists {
		return false
	}

	for _, p := range permissions {
		if p == permission {
			return true
		}
	}

	return false
}
