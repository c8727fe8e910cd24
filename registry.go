package familykit

import (
	"fmt"
	"slices"
	"sync"
)

// PolicyRegistry holds the active permission policy of every resource type.
// There is exactly one policy per resource type; the last write wins.
//
// A resource type without a policy is denied for every operation and role.
type PolicyRegistry struct {
	mu       sync.RWMutex
	policies map[ResourceType]*PermissionPolicy
}

// PolicyBuilder declares a policy with a fluent API. Each call edits the
// policy currently registered for the resource type, so a builder keeps
// working after AddPolicy or UpdatePolicy replaced that policy.
type PolicyBuilder struct {
	registry     *PolicyRegistry
	resourceType ResourceType
}

// NewPolicyRegistry creates a registry seeded with the default policy table.
func NewPolicyRegistry() *PolicyRegistry {
	r := NewEmptyPolicyRegistry()
	DefineDefaultPolicies(r)
	return r
}

// NewEmptyPolicyRegistry creates a registry without any policy.
func NewEmptyPolicyRegistry() *PolicyRegistry {
	return &PolicyRegistry{
		policies: make(map[ResourceType]*PermissionPolicy),
	}
}

// Define starts declaring the policy of a resource type, replacing any policy
// already registered for it.
//
// Example:
//
//	registry.Define(familykit.ResourceWork).
//	    Allow(familykit.OperationUpdate, familykit.RoleChild).
//	    RequireOwnership(familykit.OperationUpdate).
//	    Check(familykit.OperationUpdate, familykit.RejectApprovedWork)
func (r *PolicyRegistry) Define(resourceType ResourceType) *PolicyBuilder {
	r.mu.Lock()
	defer r.mu.Unlock()

	policy := &PermissionPolicy{
		ResourceType:      resourceType,
		AllowedRoles:      make(map[Operation][]Role),
		RequiresOwnership: make(map[Operation]bool),
		CustomChecks:      make(map[Operation][]CustomCheck),
	}
	r.policies[resourceType] = policy
	return &PolicyBuilder{registry: r, resourceType: resourceType}
}

// GetPolicy returns a copy of the policy for a resource type.
func (r *PolicyRegistry) GetPolicy(resourceType ResourceType) (PermissionPolicy, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.policies[resourceType]
	if !ok {
		return PermissionPolicy{}, false
	}
	return p.clone(), true
}

func (r *PolicyRegistry) hasPolicy(resourceType ResourceType) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.policies[resourceType]
	return ok
}

// ResourceTypes returns the resource types that have a policy, sorted.
func (r *PolicyRegistry) ResourceTypes() []ResourceType {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]ResourceType, 0, len(r.policies))
	for rt := range r.policies {
		types = append(types, rt)
	}
	slices.Sort(types)
	return types
}

// IsOperationAllowedForRole reports whether role may attempt op on resourceType.
// It never defaults to allow: a missing policy or a missing operation entry
// both deny.
func (r *PolicyRegistry) IsOperationAllowedForRole(resourceType ResourceType, op Operation, role Role) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.policies[resourceType]
	if !ok || p.AllowedRoles == nil {
		return false
	}
	roles, ok := p.AllowedRoles[op]
	if !ok {
		return false
	}
	return slices.Contains(roles, role)
}

// RequiresOwnershipCheck reports whether op on resourceType requires the actor
// to own the resource.
func (r *PolicyRegistry) RequiresOwnershipCheck(resourceType ResourceType, op Operation) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.policies[resourceType]
	if !ok || p.RequiresOwnership == nil {
		return false
	}
	return p.RequiresOwnership[op]
}

// GetCustomChecks returns the custom checks for op on resourceType in
// evaluation order. The result is never nil.
func (r *PolicyRegistry) GetCustomChecks(resourceType ResourceType, op Operation) []CustomCheck {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.policies[resourceType]
	if !ok || p.CustomChecks == nil {
		return []CustomCheck{}
	}
	return append([]CustomCheck{}, p.CustomChecks[op]...)
}

// AddPolicy inserts or replaces the policy for policy.ResourceType.
func (r *PolicyRegistry) AddPolicy(policy PermissionPolicy) error {
	if policy.ResourceType == "" {
		return NewError(ErrInvalidPolicy, "resource type is required")
	}

	stored := policy.clone()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.policies[policy.ResourceType] = &stored
	return nil
}

// UpdatePolicy merges patch into the existing policy of resourceType.
//
// The merge is shallow: every non-nil map in patch replaces the corresponding
// map of the policy as a whole. Updating AllowedRoles with only an "update"
// entry therefore removes the roles of every other operation.
func (r *PolicyRegistry) UpdatePolicy(resourceType ResourceType, patch PolicyPatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.policies[resourceType]
	if !ok {
		return fmt.Errorf("%w: no policy for resource type %q", ErrPolicyNotFound, resourceType)
	}

	updated := existing.clone()
	if patch.AllowedRoles != nil {
		updated.AllowedRoles = cloneRoles(patch.AllowedRoles)
	}
	if patch.RequiresOwnership != nil {
		updated.RequiresOwnership = cloneOwnership(patch.RequiresOwnership)
	}
	if patch.CustomChecks != nil {
		updated.CustomChecks = cloneChecks(patch.CustomChecks)
	}
	r.policies[resourceType] = &updated
	return nil
}

// current returns the registered policy with every map allocated.
// The registry lock must be held.
func (b *PolicyBuilder) current() *PermissionPolicy {
	p, ok := b.registry.policies[b.resourceType]
	if !ok {
		p = &PermissionPolicy{ResourceType: b.resourceType}
		b.registry.policies[b.resourceType] = p
	}
	if p.AllowedRoles == nil {
		p.AllowedRoles = make(map[Operation][]Role)
	}
	if p.RequiresOwnership == nil {
		p.RequiresOwnership = make(map[Operation]bool)
	}
	if p.CustomChecks == nil {
		p.CustomChecks = make(map[Operation][]CustomCheck)
	}
	return p
}

// Allow grants op to roles.
func (b *PolicyBuilder) Allow(op Operation, roles ...Role) *PolicyBuilder {
	b.registry.mu.Lock()
	defer b.registry.mu.Unlock()

	p := b.current()
	p.AllowedRoles[op] = append(p.AllowedRoles[op], roles...)
	return b
}

// RequireOwnership marks ops as requiring resource ownership.
func (b *PolicyBuilder) RequireOwnership(ops ...Operation) *PolicyBuilder {
	b.registry.mu.Lock()
	defer b.registry.mu.Unlock()

	p := b.current()
	for _, op := range ops {
		p.RequiresOwnership[op] = true
	}
	return b
}

// Check appends custom checks for op. Checks run in the order they are added.
func (b *PolicyBuilder) Check(op Operation, checks ...CustomCheck) *PolicyBuilder {
	b.registry.mu.Lock()
	defer b.registry.mu.Unlock()

	p := b.current()
	p.CustomChecks[op] = append(p.CustomChecks[op], checks...)
	return b
}

// Define continues declaring policies on the registry (fluent API).
func (b *PolicyBuilder) Define(resourceType ResourceType) *PolicyBuilder {
	return b.registry.Define(resourceType)
}
