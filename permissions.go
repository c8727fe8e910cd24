package familykit

import (
	"fmt"
	"slices"
	"strings"
)

var knownResourceTypes = []ResourceType{
	ResourceFamily,
	ResourceTask,
	ResourceTaskDetail,
	ResourceWork,
	ResourcePayment,
	ResourceProfile,
}

var knownOperations = []Operation{
	OperationCreate,
	OperationRead,
	OperationUpdate,
	OperationDelete,
	OperationApprove,
}

// KnownResourceTypes returns every built-in resource type.
func KnownResourceTypes() []ResourceType {
	return slices.Clone(knownResourceTypes)
}

// KnownOperations returns every operation.
func KnownOperations() []Operation {
	return slices.Clone(knownOperations)
}

// ValidResourceType reports whether rt is a built-in resource type.
func ValidResourceType(rt ResourceType) bool {
	return slices.Contains(knownResourceTypes, rt)
}

// ValidOperation reports whether op is a known operation.
func ValidOperation(op Operation) bool {
	return slices.Contains(knownOperations, op)
}

// Permission returns the dotted form of a resource operation, e.g. "work.update".
func Permission(resourceType ResourceType, op Operation) string {
	return string(resourceType) + "." + string(op)
}

// ParsePermission splits a dotted permission into its resource type and operation.
//
// Examples:
//
//	ParsePermission("task.create")       // ResourceTask, OperationCreate
//	ParsePermission("taskDetail.read")   // ResourceTaskDetail, OperationRead
//	ParsePermission("task")              // error: missing operation
//	ParsePermission("task.archive")      // error: unknown operation
func ParsePermission(permission string) (ResourceType, Operation, error) {
	if permission == "" {
		return "", "", NewError(ErrInvalidPermission, "permission cannot be empty")
	}

	parts := strings.Split(permission, ".")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", NewError(ErrInvalidPermission,
			fmt.Sprintf("permission %q must have the form resource.operation", permission))
	}

	rt := ResourceType(parts[0])
	op := Operation(parts[1])
	if !ValidResourceType(rt) {
		return "", "", NewError(ErrInvalidPermission, fmt.Sprintf("unknown resource type %q", parts[0]))
	}
	if !ValidOperation(op) {
		return "", "", NewError(ErrInvalidPermission, fmt.Sprintf("unknown operation %q", parts[1]))
	}
	return rt, op, nil
}

// MustParsePermission is like ParsePermission but panics on error.
// It is meant for route declarations.
func MustParsePermission(permission string) (ResourceType, Operation) {
	rt, op, err := ParsePermission(permission)
	if err != nil {
		panic(err)
	}
	return rt, op
}
