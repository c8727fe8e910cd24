package familykit

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoleCheckerIsParentIsChild(t *testing.T) {
	rc := NewRoleChecker()

	assert.Equal(t, Allow(), rc.IsParent(RoleParent))
	assert.Equal(t, Allow(), rc.IsChild(RoleChild))

	v := rc.IsParent(RoleChild)
	assert.False(t, v.Success)
	assert.Equal(t, CodePermissionDenied, v.ErrorCode)
	assert.Equal(t, http.StatusForbidden, v.StatusCode)
	assert.Equal(t, "parent role is required for this operation", v.ErrorMessage)

	v = rc.IsChild(RoleParent)
	assert.False(t, v.Success)
	assert.Equal(t, "child role is required for this operation", v.ErrorMessage)
}

func TestRoleCheckerHasRole(t *testing.T) {
	rc := RoleChecker{}

	assert.True(t, rc.HasRole(RoleChild, RoleChild).Success)

	v := rc.HasRole(RoleChild, RoleParent)
	assert.False(t, v.Success)
	assert.Equal(t, "role Parent is required", v.ErrorMessage)
	assert.Equal(t, CodePermissionDenied, v.ErrorCode)
}

func TestRoleCheckerHasAnyRole(t *testing.T) {
	rc := RoleChecker{}

	tests := []struct {
		name     string
		role     Role
		expected []Role
		success  bool
	}{
		{"first matches", RoleParent, []Role{RoleParent, RoleChild}, true},
		{"second matches", RoleChild, []Role{RoleParent, RoleChild}, true},
		{"no match", RoleChild, []Role{RoleParent}, false},
		{"empty list", RoleParent, nil, false},
		{"unknown role", Role("Grandparent"), []Role{RoleParent, RoleChild}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := rc.HasAnyRole(tt.role, tt.expected)
			assert.Equal(t, tt.success, v.Success)
			if !tt.success {
				assert.Equal(t, http.StatusForbidden, v.StatusCode)
			}
		})
	}

	v := rc.HasAnyRole(RoleChild, []Role{RoleParent})
	assert.Equal(t, "one of the following roles is required: Parent", v.ErrorMessage)
}

func TestRoleCheckerCheckRoleConditions(t *testing.T) {
	rc := RoleChecker{}
	isParent := RoleCondition{Name: "parent", Check: func(r Role) bool { return r == RoleParent }}
	isChild := RoleCondition{Name: "child", Check: func(r Role) bool { return r == RoleChild }}
	always := RoleCondition{Name: "always", Check: func(Role) bool { return true }}

	t.Run("empty conditions succeed in both modes", func(t *testing.T) {
		assert.True(t, rc.CheckRoleConditions(RoleChild, nil, ConditionAll).Success)
		assert.True(t, rc.CheckRoleConditions(RoleChild, []RoleCondition{}, ConditionAny).Success)
	})

	t.Run("all mode", func(t *testing.T) {
		assert.True(t, rc.CheckRoleConditions(RoleParent, []RoleCondition{isParent, always}, ConditionAll).Success)

		v := rc.CheckRoleConditions(RoleParent, []RoleCondition{isParent, isChild}, ConditionAll)
		assert.False(t, v.Success)
		assert.Equal(t, "not all role conditions are satisfied", v.ErrorMessage)
	})

	t.Run("any mode", func(t *testing.T) {
		assert.True(t, rc.CheckRoleConditions(RoleChild, []RoleCondition{isParent, isChild}, ConditionAny).Success)

		v := rc.CheckRoleConditions(RoleChild, []RoleCondition{isParent}, ConditionAny)
		assert.False(t, v.Success)
		assert.Equal(t, "none of the required role conditions are satisfied", v.ErrorMessage)
	})

	t.Run("nil predicate counts as failed", func(t *testing.T) {
		v := rc.CheckRoleConditions(RoleParent, []RoleCondition{{Name: "broken"}}, ConditionAll)
		assert.False(t, v.Success)
	})
}

func TestRoleCheckerCustomRoleCheck(t *testing.T) {
	rc := RoleChecker{}

	assert.True(t, rc.CustomRoleCheck(RoleChild, func(r Role) bool { return r != RoleParent }).Success)

	v := rc.CustomRoleCheck(RoleParent, func(r Role) bool { return r != RoleParent })
	assert.False(t, v.Success)
	assert.Equal(t, "custom role check failed", v.ErrorMessage)

	assert.False(t, rc.CustomRoleCheck(RoleParent, nil).Success)
}
