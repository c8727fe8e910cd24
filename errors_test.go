package familykit

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSentinelErrors tests that all sentinel errors are properly defined
func TestSentinelErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		msg  string
	}{
		{"ErrForbidden", ErrForbidden, "familykit: forbidden"},
		{"ErrUnauthenticated", ErrUnauthenticated, "familykit: unauthenticated"},
		{"ErrPermissionCheck", ErrPermissionCheck, "familykit: permission check error"},
		{"ErrRepositoryNotRegistered", ErrRepositoryNotRegistered, "familykit: repository not registered"},
		{"ErrPolicyNotFound", ErrPolicyNotFound, "familykit: policy not found"},
		{"ErrInvalidPolicy", ErrInvalidPolicy, "familykit: invalid policy"},
		{"ErrInvalidPermission", ErrInvalidPermission, "familykit: invalid permission"},
		{"ErrInvalidResource", ErrInvalidResource, "familykit: invalid resource"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.msg, tt.err.Error())
		})
	}
}

func TestError_Error(t *testing.T) {
	t.Run("With message", func(t *testing.T) {
		err := NewError(ErrForbidden, "you do not own this resource")
		assert.Equal(t, "familykit: forbidden: you do not own this resource", err.Error())
	})

	t.Run("Without message", func(t *testing.T) {
		err := &Error{Err: ErrForbidden}
		assert.Equal(t, "familykit: forbidden", err.Error())
	})
}

func TestError_IsAndUnwrap(t *testing.T) {
	err := NewError(ErrRepositoryNotRegistered, "no repository registered for resource type \"work\"")

	assert.True(t, errors.Is(err, ErrRepositoryNotRegistered))
	assert.False(t, errors.Is(err, ErrForbidden))
	assert.Equal(t, ErrRepositoryNotRegistered, errors.Unwrap(err))

	wrapped := fmt.Errorf("handler: %w", err)
	assert.True(t, IsRepositoryNotRegistered(wrapped))

	var fkErr *Error
	require.True(t, errors.As(wrapped, &fkErr))
	assert.Same(t, err, fkErr)
}

func TestError_Builders(t *testing.T) {
	err := NewError(ErrForbidden, "denied").
		WithResource(ResourceWork, "w1").
		WithOperation(OperationUpdate).
		WithUser("child-1").
		WithCode(CodeCustomCheckFailed)

	assert.Equal(t, ResourceWork, err.ResourceType)
	assert.Equal(t, "w1", err.ResourceID)
	assert.Equal(t, OperationUpdate, err.Operation)
	assert.Equal(t, "child-1", err.UserID)
	assert.Equal(t, CodeCustomCheckFailed, err.Code)
}

func TestVerdictError(t *testing.T) {
	assert.Nil(t, VerdictError(Allow()))

	tests := []struct {
		name     string
		verdict  Verdict
		sentinel error
		message  string
	}{
		{
			name:     "role denial",
			verdict:  forbidden(CodePermissionDenied, "permission denied: create on task"),
			sentinel: ErrForbidden,
			message:  "permission denied: create on task",
		},
		{
			name:     "custom check",
			verdict:  forbidden(CodeCustomCheckFailed, "custom permission check failed: update on work"),
			sentinel: ErrForbidden,
			message:  "custom permission check failed: update on work",
		},
		{
			name:     "ownership",
			verdict:  forbidden(CodeResourceOwnershipRequired, ""),
			sentinel: ErrForbidden,
			message:  DefaultForbiddenMessage,
		},
		{
			name:     "internal",
			verdict:  Deny(CodePermissionCheckError, "an error occurred while checking permissions", http.StatusInternalServerError),
			sentinel: ErrPermissionCheck,
			message:  "an error occurred while checking permissions",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := VerdictError(tt.verdict)
			require.NotNil(t, err)
			assert.ErrorIs(t, err, tt.sentinel)
			assert.Equal(t, tt.message, err.Message)
			assert.Equal(t, tt.verdict.ErrorCode, err.Code)
		})
	}
}

func TestErrorHelpers(t *testing.T) {
	assert.True(t, IsForbidden(NewError(ErrForbidden, "x")))
	assert.True(t, IsUnauthenticated(ErrUnauthenticated))
	assert.True(t, IsInvalidResource(NewError(ErrInvalidResource, "x")))
	assert.False(t, IsForbidden(errors.New("familykit: forbidden")))
	assert.False(t, IsUnauthenticated(nil))
}
