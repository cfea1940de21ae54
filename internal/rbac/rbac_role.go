package rbac

import "strings"

// Role is the closed set of user roles.
type Role string

const (
	RoleEmployee Role = "Employee"
	RoleManager  Role = "Manager"
	RoleHR       Role = "HR"
)

var roles = []Role{RoleEmployee, RoleManager, RoleHR}

func (r Role) Valid() bool {
	for _, v := range roles {
		if r == v {
			return true
		}
	}
	return false
}

func (r Role) String() string { return string(r) }

// ParseRole accepts role names case-insensitively.
func ParseRole(s string) (Role, bool) {
	s = strings.TrimSpace(s)
	for _, v := range roles {
		if strings.EqualFold(s, string(v)) {
			return v, true
		}
	}
	return "", false
}
