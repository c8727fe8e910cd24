package familykit

// CustomCheck is an extra business rule evaluated after the role check.
// Returning false denies the operation.
type CustomCheck func(*CheckContext) bool

// PermissionPolicy is the rule set for one resource type.
//
// An operation missing from AllowedRoles is denied for every role. An
// operation missing from RequiresOwnership does not require ownership.
type PermissionPolicy struct {
	ResourceType      ResourceType
	AllowedRoles      map[Operation][]Role
	RequiresOwnership map[Operation]bool
	CustomChecks      map[Operation][]CustomCheck
}

// PolicyPatch is a partial policy for PolicyRegistry.UpdatePolicy.
// A nil field leaves the current value alone; a non-nil field replaces the
// whole map, including operations the patch does not mention.
type PolicyPatch struct {
	AllowedRoles      map[Operation][]Role
	RequiresOwnership map[Operation]bool
	CustomChecks      map[Operation][]CustomCheck
}

func (p PermissionPolicy) clone() PermissionPolicy {
	return PermissionPolicy{
		ResourceType:      p.ResourceType,
		AllowedRoles:      cloneRoles(p.AllowedRoles),
		RequiresOwnership: cloneOwnership(p.RequiresOwnership),
		CustomChecks:      cloneChecks(p.CustomChecks),
	}
}

func cloneRoles(m map[Operation][]Role) map[Operation][]Role {
	if m == nil {
		return nil
	}
	out := make(map[Operation][]Role, len(m))
	for op, roles := range m {
		out[op] = append([]Role(nil), roles...)
	}
	return out
}

func cloneOwnership(m map[Operation]bool) map[Operation]bool {
	if m == nil {
		return nil
	}
	out := make(map[Operation]bool, len(m))
	for op, v := range m {
		out[op] = v
	}
	return out
}

func cloneChecks(m map[Operation][]CustomCheck) map[Operation][]CustomCheck {
	if m == nil {
		return nil
	}
	out := make(map[Operation][]CustomCheck, len(m))
	for op, checks := range m {
		out[op] = append([]CustomCheck(nil), checks...)
	}
	return out
}

// WorkApprovedKey is the AdditionalData key carrying a work's approval state.
const WorkApprovedKey = "isApproved"

// RejectApprovedWork denies any operation on work that has been approved.
func RejectApprovedWork(c *CheckContext) bool {
	return !c.Flag(WorkApprovedKey)
}

// DefineDefaultPolicies declares the built-in policy table on r.
func DefineDefaultPolicies(r *PolicyRegistry) {
	r.Define(ResourceFamily).
		Allow(OperationCreate, RoleParent).
		Allow(OperationRead, RoleParent, RoleChild).
		Allow(OperationUpdate, RoleParent).
		Allow(OperationDelete, RoleParent).
		RequireOwnership(OperationUpdate, OperationDelete).
		Define(ResourceTask).
		Allow(OperationCreate, RoleParent).
		Allow(OperationRead, RoleParent, RoleChild).
		Allow(OperationUpdate, RoleParent).
		Allow(OperationDelete, RoleParent).
		RequireOwnership(OperationUpdate, OperationDelete).
		Define(ResourceTaskDetail).
		Allow(OperationCreate, RoleParent).
		Allow(OperationRead, RoleParent, RoleChild).
		Allow(OperationUpdate, RoleParent).
		Allow(OperationDelete, RoleParent).
		Define(ResourceWork).
		Allow(OperationCreate, RoleChild).
		Allow(OperationRead, RoleParent, RoleChild).
		Allow(OperationUpdate, RoleChild).
		Allow(OperationDelete, RoleChild).
		Allow(OperationApprove, RoleParent).
		RequireOwnership(OperationUpdate, OperationDelete).
		Check(OperationUpdate, RejectApprovedWork).
		Define(ResourcePayment).
		Allow(OperationCreate, RoleParent).
		Allow(OperationRead, RoleParent, RoleChild).
		Allow(OperationUpdate, RoleParent).
		Allow(OperationDelete, RoleParent).
		Define(ResourceProfile).
		Allow(OperationRead, RoleParent, RoleChild).
		Allow(OperationUpdate, RoleParent, RoleChild).
		RequireOwnership(OperationUpdate)
}
