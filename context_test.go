package familykit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContextActor(t *testing.T) {
	ctx := context.Background()

	_, ok := GetActor(ctx)
	assert.False(t, ok)

	actor := Actor{ID: "child-1", Role: RoleChild}
	got, ok := GetActor(WithActor(ctx, actor))
	assert.True(t, ok)
	assert.Equal(t, actor, got)
	assert.Equal(t, actor, MustGetActor(WithActor(ctx, actor)))

	_, ok = GetActor(WithActor(ctx, Actor{ID: "child-1"}))
	assert.False(t, ok, "an actor without a role is not usable")

	_, ok = GetActor(WithActor(ctx, Actor{Role: RoleParent}))
	assert.False(t, ok, "an actor without an ID is not usable")

	assert.Panics(t, func() { MustGetActor(ctx) })
}

func TestContextRequestID(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetRequestID(ctx))
	assert.Equal(t, "req-123", GetRequestID(WithRequestID(ctx, "req-123")))
}

func TestContextVerdict(t *testing.T) {
	ctx := context.Background()

	_, ok := GetVerdict(ctx)
	assert.False(t, ok)

	v, ok := GetVerdict(WithVerdict(ctx, Allow()))
	assert.True(t, ok)
	assert.True(t, v.Success)
}

func TestContextKeysDoNotCollide(t *testing.T) {
	ctx := context.WithValue(context.Background(), "familykit:actor", Actor{ID: "x", Role: RoleParent})
	_, ok := GetActor(ctx)
	assert.False(t, ok)
}
