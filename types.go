package familykit

import "net/http"

// Role is the role of the acting user. There is no hierarchy between roles:
// a Parent does not implicitly hold any Child permission or vice versa.
type Role string

const (
	RoleParent Role = "Parent"
	RoleChild  Role = "Child"
)

// Operation is an action performed on a resource.
type Operation string

const (
	OperationCreate  Operation = "create"
	OperationRead    Operation = "read"
	OperationUpdate  Operation = "update"
	OperationDelete  Operation = "delete"
	OperationApprove Operation = "approve"
)

// ResourceType identifies a kind of resource covered by a permission policy.
type ResourceType string

const (
	ResourceFamily     ResourceType = "family"
	ResourceTask       ResourceType = "task"
	ResourceTaskDetail ResourceType = "taskDetail"
	ResourceWork       ResourceType = "work"
	ResourcePayment    ResourceType = "payment"
	ResourceProfile    ResourceType = "profile"
)

// ErrorCode is the machine-readable reason carried by a failed Verdict.
type ErrorCode string

const (
	CodePermissionDenied          ErrorCode = "PERMISSION_DENIED"
	CodeCustomCheckFailed         ErrorCode = "CUSTOM_PERMISSION_CHECK_FAILED"
	CodeResourceOwnershipRequired ErrorCode = "RESOURCE_OWNERSHIP_REQUIRED"
	CodePermissionCheckError      ErrorCode = "PERMISSION_CHECK_ERROR"
)

// Verdict is the result of a permission check.
// A successful verdict carries no code, message or status.
type Verdict struct {
	Success      bool      `json:"success"`
	ErrorCode    ErrorCode `json:"errorCode,omitempty"`
	ErrorMessage string    `json:"errorMessage,omitempty"`
	StatusCode   int       `json:"statusCode,omitempty"`
}

// Allow returns a successful verdict.
func Allow() Verdict {
	return Verdict{Success: true}
}

// Deny returns a failed verdict.
func Deny(code ErrorCode, message string, status int) Verdict {
	return Verdict{
		ErrorCode:    code,
		ErrorMessage: message,
		StatusCode:   status,
	}
}

func forbidden(code ErrorCode, message string) Verdict {
	return Deny(code, message, http.StatusForbidden)
}

// CheckContext describes a single permission question. Optional identifiers
// are empty strings when the caller does not know them.
type CheckContext struct {
	ResourceType    ResourceType
	Operation       Operation
	UserRole        Role
	UserID          string
	ResourceID      string
	ResourceOwnerID string

	// AdditionalData is free-form input for custom checks (e.g. "isApproved").
	AdditionalData map[string]any
}

// Flag reports whether AdditionalData[key] is the boolean true.
func (c *CheckContext) Flag(key string) bool {
	if c == nil || c.AdditionalData == nil {
		return false
	}
	v, ok := c.AdditionalData[key].(bool)
	return ok && v
}

// Actor is the authenticated user performing a request.
type Actor struct {
	ID   string
	Role Role
}

// Context builds a CheckContext for this actor.
func (a Actor) Context(resourceType ResourceType, op Operation, resourceID string) CheckContext {
	return CheckContext{
		ResourceType: resourceType,
		Operation:    op,
		UserRole:     a.Role,
		UserID:       a.ID,
		ResourceID:   resourceID,
	}
}
