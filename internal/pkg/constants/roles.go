package constants

const (
	Admin    = "admin"
	Employer = "employer"
	Employee = "employee"
)

// ValidRoles is the set of account roles stored in Users.role.
var ValidRoles = []string{Admin, Employer, Employee}

// IsValidRole returns true if role is one of the allowed values.
func IsValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}

// CanSelfRegister reports whether accounts with this role may sign up without an admin.
func CanSelfRegister(role string) bool {
	return role == Employer || role == Employee
}
