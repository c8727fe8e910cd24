package familykit

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGuard(t *testing.T) *Guard {
	t.Helper()

	g := Initialize(nil)
	g.RegisterRepository(ResourceTask, newStaticRepository(
		Record{"id": "t1", FieldUserID: "parent-1"},
	))
	g.RegisterRepository(ResourceWork, newStaticRepository(
		Record{"id": "w1", FieldChildID: "child-1"},
	))
	return g
}

func TestGuardInitialize(t *testing.T) {
	g := Initialize(nil)
	require.NotNil(t, g.Checker())
	assert.Equal(t, NewPolicyRegistry().ResourceTypes(), g.Checker().Registry().ResourceTypes())

	r := NewEmptyPolicyRegistry()
	g = Initialize(r)
	assert.Same(t, r, g.Checker().Registry())

	c := NewResourcePermissionChecker(r)
	assert.Same(t, c, NewGuard(c).Checker())
}

func TestGuardRequirePermission(t *testing.T) {
	g := newTestGuard(t)
	ctx := context.Background()

	t.Run("allowed", func(t *testing.T) {
		err := g.RequirePermission(ctx, Actor{ID: "parent-1", Role: RoleParent}.Context(ResourceTask, OperationUpdate, "t1"))
		assert.NoError(t, err)
	})

	t.Run("every denial is forbidden", func(t *testing.T) {
		denials := []CheckContext{
			Actor{ID: "child-1", Role: RoleChild}.Context(ResourceTask, OperationCreate, ""),
			Actor{ID: "parent-2", Role: RoleParent}.Context(ResourceTask, OperationUpdate, "t1"),
			{
				ResourceType:   ResourceWork,
				Operation:      OperationUpdate,
				UserRole:       RoleChild,
				UserID:         "child-1",
				ResourceID:     "w1",
				AdditionalData: map[string]any{WorkApprovedKey: true},
			},
		}

		for _, pctx := range denials {
			err := g.RequirePermission(ctx, pctx)
			require.Error(t, err)
			assert.True(t, IsForbidden(err))

			var fkErr *Error
			require.True(t, errors.As(err, &fkErr))
			assert.Equal(t, pctx.ResourceType, fkErr.ResourceType)
			assert.Equal(t, pctx.Operation, fkErr.Operation)
			assert.Equal(t, pctx.UserID, fkErr.UserID)
			assert.NotEmpty(t, fkErr.Message)
		}
	})

	t.Run("carries the verdict message", func(t *testing.T) {
		err := g.RequirePermission(ctx, Actor{ID: "child-1", Role: RoleChild}.Context(ResourcePayment, OperationCreate, ""))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "permission denied: create on payment")
	})

	t.Run("internal failures are forbidden too", func(t *testing.T) {
		g := Initialize(nil)
		err := g.RequirePermission(ctx, Actor{ID: "parent-1", Role: RoleParent}.Context(ResourceFamily, OperationDelete, "f1"))
		require.Error(t, err)
		assert.True(t, IsForbidden(err))
		assert.False(t, IsRepositoryNotRegistered(err))
	})
}

func TestGuardRequireResourceOwnership(t *testing.T) {
	g := newTestGuard(t)
	ctx := context.Background()

	assert.NoError(t, g.RequireResourceOwnership(ctx, "parent-1", "t1", ResourceTask))

	// Role is not consulted: a child owning work passes even for resource types
	// where the child role could not update.
	assert.NoError(t, g.RequireResourceOwnership(ctx, "child-1", "w1", ResourceWork))

	err := g.RequireResourceOwnership(ctx, "parent-2", "t1", ResourceTask)
	require.Error(t, err)
	assert.True(t, IsForbidden(err))
	assert.Contains(t, err.Error(), NotOwnerMessage)

	err = g.RequireResourceOwnership(ctx, "parent-1", "missing", ResourceTask)
	assert.True(t, IsForbidden(err))

	err = g.RequireResourceOwnership(ctx, "parent-1", "p1", ResourcePayment)
	require.Error(t, err)
	assert.True(t, IsRepositoryNotRegistered(err))
	assert.False(t, IsForbidden(err))
}

func TestGuardCanAccess(t *testing.T) {
	g := Initialize(nil)

	assert.True(t, g.CanAccess(ResourceWork, OperationCreate, RoleChild))
	assert.False(t, g.CanAccess(ResourceWork, OperationCreate, RoleParent))
	// Role only: ownership-guarded operations are still reported accessible.
	assert.True(t, g.CanAccess(ResourceFamily, OperationDelete, RoleParent))
	assert.False(t, g.CanAccess("allowance", OperationRead, RoleParent))
}
