package familykit

import (
	"context"
	"fmt"
	"strconv"
)

// ResourceRepository looks up resources for ownership checks.
// FindByID returns (nil, nil) when the resource does not exist.
type ResourceRepository interface {
	FindByID(ctx context.Context, id string) (Record, error)
}

// RepositoryFunc is an adapter to use ordinary functions as ResourceRepository.
type RepositoryFunc func(ctx context.Context, id string) (Record, error)

// FindByID implements ResourceRepository.
func (f RepositoryFunc) FindByID(ctx context.Context, id string) (Record, error) {
	return f(ctx, id)
}

// Record is a resource as seen by the permission checker: column name to value.
type Record map[string]any

// Owner columns per resource type.
const (
	FieldOwnerID = "owner_id"
	FieldUserID  = "user_id"
	FieldChildID = "child_id"
)

var ownerFields = map[ResourceType]string{
	ResourceFamily:  FieldOwnerID,
	ResourceTask:    FieldUserID,
	ResourceWork:    FieldChildID,
	ResourceProfile: FieldUserID,
}

// OwnerField returns the record field naming the owner of a resource type.
// Resource types without a dedicated field use "user_id".
func OwnerField(resourceType ResourceType) string {
	if f, ok := ownerFields[resourceType]; ok {
		return f
	}
	return FieldUserID
}

// OwnerID returns the string form of field. Integers, strings, byte slices and
// fmt.Stringer values (uuid.UUID, for one) are supported, so "42" and int64(42)
// compare equal.
func (r Record) OwnerID(field string) (string, bool) {
	v, ok := r[field]
	if !ok || v == nil {
		return "", false
	}

	switch id := v.(type) {
	case string:
		return id, true
	case []byte:
		return string(id), true
	case int:
		return strconv.Itoa(id), true
	case int32:
		return strconv.FormatInt(int64(id), 10), true
	case int64:
		return strconv.FormatInt(id, 10), true
	case uint:
		return strconv.FormatUint(uint64(id), 10), true
	case uint32:
		return strconv.FormatUint(uint64(id), 10), true
	case uint64:
		return strconv.FormatUint(id, 10), true
	case *string:
		if id == nil {
			return "", false
		}
		return *id, true
	case fmt.Stringer:
		return id.String(), true
	default:
		return fmt.Sprint(v), true
	}
}
