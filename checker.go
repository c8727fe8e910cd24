package familykit

import (
	"context"
	"fmt"
	"net/http"
	"reflect"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ResourcePermissionChecker evaluates a CheckContext against the policy
// registry and, for operations that require it, the resource owner.
//
// The evaluation order is fixed: role check, then custom checks, then the
// ownership check. The first failing step decides the verdict.
type ResourcePermissionChecker struct {
	registry *PolicyRegistry
	logger   zerolog.Logger
	metrics  *Metrics
	monitor  *decisionMonitor

	mu           sync.RWMutex
	repositories map[ResourceType]ResourceRepository
}

// CheckerOption configures a ResourcePermissionChecker.
type CheckerOption func(*ResourcePermissionChecker)

// WithLogger sets the logger used for denials and internal failures.
func WithLogger(logger zerolog.Logger) CheckerOption {
	return func(c *ResourcePermissionChecker) {
		c.logger = logger
	}
}

// WithMetrics exports every decision to m.
func WithMetrics(m *Metrics) CheckerOption {
	return func(c *ResourcePermissionChecker) {
		c.metrics = m
	}
}

// WithRepository registers the ownership repository of a resource type.
func WithRepository(resourceType ResourceType, repo ResourceRepository) CheckerOption {
	return func(c *ResourcePermissionChecker) {
		c.repositories[resourceType] = repo
	}
}

// NewResourcePermissionChecker creates a checker over registry.
//
// Example:
//
//	checker := familykit.NewResourcePermissionChecker(familykit.NewPolicyRegistry(),
//	    familykit.WithLogger(logger),
//	    familykit.WithRepository(familykit.ResourceTask, taskRepo),
//	)
func NewResourcePermissionChecker(registry *PolicyRegistry, opts ...CheckerOption) *ResourcePermissionChecker {
	c := &ResourcePermissionChecker{
		registry:     registry,
		logger:       zerolog.Nop(),
		monitor:      newDecisionMonitor(),
		repositories: make(map[ResourceType]ResourceRepository),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Registry returns the policy registry.
func (c *ResourcePermissionChecker) Registry() *PolicyRegistry {
	return c.registry
}

// RegisterRepository adds or replaces the ownership repository of a resource
// type. The repository is not validated here; a nil repository fails when an
// ownership check needs it.
func (c *ResourcePermissionChecker) RegisterRepository(resourceType ResourceType, repo ResourceRepository) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.repositories[resourceType] = repo
}

// CheckPermission decides whether pctx is permitted. It never returns an
// error: internal failures become a PERMISSION_CHECK_ERROR verdict with
// status 500.
//
// Ownership is only verified when both UserID and ResourceID are set. When
// either is missing the ownership step is skipped.
func (c *ResourcePermissionChecker) CheckPermission(ctx context.Context, pctx CheckContext) Verdict {
	start := time.Now()
	v := c.evaluate(ctx, pctx)
	elapsed := time.Since(start)

	c.monitor.record(elapsed, v)
	c.metrics.observe(c.resourceLabel(pctx.ResourceType), operationLabel(pctx.Operation), v, elapsed)

	if !v.Success && v.ErrorCode != CodePermissionCheckError {
		c.logger.Debug().
			Str("resource_type", string(pctx.ResourceType)).
			Str("operation", string(pctx.Operation)).
			Str("role", string(pctx.UserRole)).
			Str("user_id", pctx.UserID).
			Str("resource_id", pctx.ResourceID).
			Str("code", string(v.ErrorCode)).
			Msg("permission denied")
	}
	return v
}

func (c *ResourcePermissionChecker) resourceLabel(rt ResourceType) string {
	if !c.registry.hasPolicy(rt) {
		return unknownLabel
	}
	return string(rt)
}

func operationLabel(op Operation) string {
	if !ValidOperation(op) {
		return unknownLabel
	}
	return string(op)
}

func (c *ResourcePermissionChecker) evaluate(ctx context.Context, pctx CheckContext) (v Verdict) {
	defer func() {
		if r := recover(); r != nil {
			v = c.checkError(pctx, fmt.Errorf("panic during permission check: %v", r))
		}
	}()

	if !c.IsOperationAllowedForRole(pctx.ResourceType, pctx.Operation, pctx.UserRole) {
		return forbidden(CodePermissionDenied,
			fmt.Sprintf("permission denied: %s on %s", pctx.Operation, pctx.ResourceType))
	}

	for _, check := range c.registry.GetCustomChecks(pctx.ResourceType, pctx.Operation) {
		if !c.ExecuteCustomCheck(pctx, check) {
			return forbidden(CodeCustomCheckFailed,
				fmt.Sprintf("custom permission check failed: %s on %s", pctx.Operation, pctx.ResourceType))
		}
	}

	if c.RequiresOwnershipCheck(pctx.ResourceType, pctx.Operation) && pctx.UserID != "" && pctx.ResourceID != "" {
		owner, err := c.IsResourceOwner(ctx, pctx)
		if err != nil {
			return c.checkError(pctx, err)
		}
		if !owner {
			return forbidden(CodeResourceOwnershipRequired,
				fmt.Sprintf("ownership of %s %s is required to %s it", pctx.ResourceType, pctx.ResourceID, pctx.Operation))
		}
	}

	return Allow()
}

func (c *ResourcePermissionChecker) checkError(pctx CheckContext, err error) Verdict {
	c.logger.Error().
		Err(err).
		Str("resource_type", string(pctx.ResourceType)).
		Str("operation", string(pctx.Operation)).
		Str("user_id", pctx.UserID).
		Str("resource_id", pctx.ResourceID).
		Msg("permission check failed")

	return Deny(CodePermissionCheckError, "an error occurred while checking permissions", http.StatusInternalServerError)
}

// IsResourceOwner reports whether pctx.UserID owns pctx.ResourceID.
//
// A missing resource is not an error and yields false, as does an empty
// UserID. A resource type without a registered repository, or registered with
// a nil one, returns an error wrapping ErrRepositoryNotRegistered; repository
// errors are returned unchanged and a panicking lookup is returned as an error.
func (c *ResourcePermissionChecker) IsResourceOwner(ctx context.Context, pctx CheckContext) (bool, error) {
	c.mu.RLock()
	repo := c.repositories[pctx.ResourceType]
	c.mu.RUnlock()

	if isNilRepository(repo) {
		return false, NewError(ErrRepositoryNotRegistered,
			fmt.Sprintf("no repository registered for resource type %q", pctx.ResourceType)).
			WithResource(pctx.ResourceType, pctx.ResourceID)
	}
	if pctx.UserID == "" {
		return false, nil
	}

	record, err := findRecord(ctx, repo, pctx.ResourceID)
	if err != nil {
		return false, err
	}
	if record == nil {
		return false, nil
	}

	owner, ok := record.OwnerID(OwnerField(pctx.ResourceType))
	if !ok {
		return false, nil
	}
	return owner == pctx.UserID, nil
}

// isNilRepository also catches typed nils such as (*TableRepository)(nil)
// and RepositoryFunc(nil).
func isNilRepository(repo ResourceRepository) bool {
	if repo == nil {
		return true
	}
	v := reflect.ValueOf(repo)
	switch v.Kind() {
	case reflect.Pointer, reflect.Func, reflect.Map, reflect.Interface, reflect.Slice, reflect.Chan:
		return v.IsNil()
	}
	return false
}

func findRecord(ctx context.Context, repo ResourceRepository, id string) (record Record, err error) {
	defer func() {
		if r := recover(); r != nil {
			record, err = nil, fmt.Errorf("resource lookup panicked: %v", r)
		}
	}()
	return repo.FindByID(ctx, id)
}

// IsOperationAllowedForRole delegates to the policy registry.
func (c *ResourcePermissionChecker) IsOperationAllowedForRole(resourceType ResourceType, op Operation, role Role) bool {
	return c.registry.IsOperationAllowedForRole(resourceType, op, role)
}

// RequiresOwnershipCheck delegates to the policy registry.
func (c *ResourcePermissionChecker) RequiresOwnershipCheck(resourceType ResourceType, op Operation) bool {
	return c.registry.RequiresOwnershipCheck(resourceType, op)
}

// ExecuteCustomCheck runs a single custom check against pctx.
func (c *ResourcePermissionChecker) ExecuteCustomCheck(pctx CheckContext, check CustomCheck) bool {
	if check == nil {
		return false
	}
	return check(&pctx)
}

// DecisionMetrics returns the decision counters since creation or the last reset.
func (c *ResourcePermissionChecker) DecisionMetrics() DecisionMetrics {
	return c.monitor.snapshot()
}

// ResetDecisionMetrics clears the decision counters.
func (c *ResourcePermissionChecker) ResetDecisionMetrics() {
	c.monitor.reset()
}

// IsHealthy reports whether internal check failures stay under 5% of all checks.
func (c *ResourcePermissionChecker) IsHealthy() bool {
	m := c.monitor.snapshot()
	if m.TotalChecks < 10 {
		return true
	}
	return float64(m.FailedChecks)/float64(m.TotalChecks) <= 0.05
}
