package familykit

import (
	"fmt"
	"strings"
)

// ConditionMode selects how CheckRoleConditions combines its conditions.
type ConditionMode int

const (
	// ConditionAll requires every condition to hold.
	ConditionAll ConditionMode = iota
	// ConditionAny requires at least one condition to hold.
	ConditionAny
)

// RoleCondition is a named predicate over a role.
type RoleCondition struct {
	Name  string
	Check func(Role) bool
}

// RoleChecker answers role identity and membership questions.
// It holds no state; the zero value is ready to use.
//
// Every method returns a Verdict instead of an error so call sites can pick
// between error-style and boolean-style handling. All failures carry
// PERMISSION_DENIED and status 403.
type RoleChecker struct{}

// NewRoleChecker creates a RoleChecker.
func NewRoleChecker() RoleChecker {
	return RoleChecker{}
}

// IsParent succeeds when role is RoleParent.
func (RoleChecker) IsParent(role Role) Verdict {
	if role == RoleParent {
		return Allow()
	}
	return forbidden(CodePermissionDenied, "parent role is required for this operation")
}

// IsChild succeeds when role is RoleChild.
func (RoleChecker) IsChild(role Role) Verdict {
	if role == RoleChild {
		return Allow()
	}
	return forbidden(CodePermissionDenied, "child role is required for this operation")
}

// HasRole succeeds when role equals expected.
func (RoleChecker) HasRole(role, expected Role) Verdict {
	if role == expected {
		return Allow()
	}
	return forbidden(CodePermissionDenied, fmt.Sprintf("role %s is required", expected))
}

// HasAnyRole succeeds when role is one of expected.
//
// Example:
//
//	v := checker.HasAnyRole(actor.Role, []familykit.Role{familykit.RoleParent, familykit.RoleChild})
func (RoleChecker) HasAnyRole(role Role, expected []Role) Verdict {
	for _, r := range expected {
		if r == role {
			return Allow()
		}
	}

	names := make([]string, len(expected))
	for i, r := range expected {
		names[i] = string(r)
	}
	return forbidden(CodePermissionDenied,
		fmt.Sprintf("one of the following roles is required: %s", strings.Join(names, ", ")))
}

// CheckRoleConditions evaluates every condition against role and combines the
// results according to mode. An empty condition list always succeeds, in both
// modes.
func (RoleChecker) CheckRoleConditions(role Role, conditions []RoleCondition, mode ConditionMode) Verdict {
	if len(conditions) == 0 {
		return Allow()
	}

	passed := 0
	for _, cond := range conditions {
		if cond.Check != nil && cond.Check(role) {
			passed++
		}
	}

	switch mode {
	case ConditionAny:
		if passed > 0 {
			return Allow()
		}
		return forbidden(CodePermissionDenied, "none of the required role conditions are satisfied")
	default:
		if passed == len(conditions) {
			return Allow()
		}
		return forbidden(CodePermissionDenied, "not all role conditions are satisfied")
	}
}

// CustomRoleCheck wraps a caller supplied predicate.
func (RoleChecker) CustomRoleCheck(role Role, predicate func(Role) bool) Verdict {
	if predicate != nil && predicate(role) {
		return Allow()
	}
	return forbidden(CodePermissionDenied, "custom role check failed")
}
