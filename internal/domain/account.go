package domain

import (
	"strings"
	"time"
)

// Role is the closed set of account roles. Roles are immutable once set.
type Role string

const (
	RoleEmployee  Role = "EMPLOYEE"
	RoleITSupport Role = "IT_SUPPORT"
)

// ParseRole resolves a role name case-insensitively.
func ParseRole(value string) (Role, bool) {
	switch Role(strings.ToUpper(strings.TrimSpace(value))) {
	case RoleEmployee:
		return RoleEmployee, true
	case RoleITSupport:
		return RoleITSupport, true
	}
	return "", false
}

// Account is the domain model for employees and IT support agents.
type Account struct {
	ID           string
	Username     string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}
