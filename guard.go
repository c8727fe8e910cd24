package familykit

import "context"

// NotOwnerMessage is the message of the error returned by
// Guard.RequireResourceOwnership when the actor does not own the resource.
const NotOwnerMessage = "you do not own this resource"

// Guard adapts checker verdicts to error-style and boolean-style call sites.
// Build one at application start and hand it to the HTTP layer.
//
// Every denial returned by Guard is an *Error wrapping ErrForbidden, whatever
// the underlying verdict code. Callers needing the code should call
// Checker().CheckPermission directly.
type Guard struct {
	checker *ResourcePermissionChecker
}

// NewGuard creates a Guard over checker.
func NewGuard(checker *ResourcePermissionChecker) *Guard {
	return &Guard{checker: checker}
}

// Initialize creates a checker over registry with opts and returns a Guard for it.
// A nil registry uses the default policy table.
func Initialize(registry *PolicyRegistry, opts ...CheckerOption) *Guard {
	if registry == nil {
		registry = NewPolicyRegistry()
	}
	return NewGuard(NewResourcePermissionChecker(registry, opts...))
}

// Checker returns the underlying checker.
func (g *Guard) Checker() *ResourcePermissionChecker {
	return g.checker
}

// RegisterRepository registers the ownership repository of a resource type.
func (g *Guard) RegisterRepository(resourceType ResourceType, repo ResourceRepository) {
	g.checker.RegisterRepository(resourceType, repo)
}

// RequirePermission returns nil when pctx is permitted and a Forbidden *Error
// carrying the verdict message otherwise.
//
// Example:
//
//	if err := guard.RequirePermission(ctx, actor.Context(familykit.ResourceTask, familykit.OperationUpdate, taskID)); err != nil {
//	    return err
//	}
func (g *Guard) RequirePermission(ctx context.Context, pctx CheckContext) error {
	v := g.checker.CheckPermission(ctx, pctx)
	if v.Success {
		return nil
	}

	msg := v.ErrorMessage
	if msg == "" {
		msg = DefaultForbiddenMessage
	}
	return NewError(ErrForbidden, msg).
		WithResource(pctx.ResourceType, pctx.ResourceID).
		WithOperation(pctx.Operation).
		WithUser(pctx.UserID)
}

// RequireResourceOwnership checks only that actorID owns the resource; roles
// and custom checks are not consulted. Lookup errors, including a missing
// repository registration, are returned as they are.
func (g *Guard) RequireResourceOwnership(ctx context.Context, actorID, resourceID string, resourceType ResourceType) error {
	owner, err := g.checker.IsResourceOwner(ctx, CheckContext{
		ResourceType: resourceType,
		UserID:       actorID,
		ResourceID:   resourceID,
	})
	if err != nil {
		return err
	}
	if !owner {
		return NewError(ErrForbidden, NotOwnerMessage).
			WithResource(resourceType, resourceID).
			WithUser(actorID)
	}
	return nil
}

// CanAccess reports whether role may attempt op on resourceType. It performs
// no ownership or custom check and no I/O, so it suits pre-flight gating
// (hiding a button) rather than authorization.
func (g *Guard) CanAccess(resourceType ResourceType, op Operation, role Role) bool {
	return g.checker.IsOperationAllowedForRole(resourceType, op, role)
}
