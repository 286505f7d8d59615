package identity

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromContextEmpty(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)
}

func TestWithIdentityRoundTrip(t *testing.T) {
	id := Identity{
		Principal: "submitter@example.com",
		Claims:    map[string]string{"group": "analytics"},
	}

	ctx := WithIdentity(context.Background(), id)
	got, ok := FromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, id, got)
}

func TestRunAsInstallsIdentity(t *testing.T) {
	id := Identity{Principal: "dag-owner"}

	err := RunAs(context.Background(), id, func(ctx context.Context) error {
		got, ok := FromContext(ctx)
		require.True(t, ok)
		assert.Equal(t, "dag-owner", got.Principal)
		return nil
	})
	assert.NoError(t, err)
}

func TestRunAsPropagatesError(t *testing.T) {
	want := errors.New("boom")
	err := RunAs(context.Background(), Identity{}, func(ctx context.Context) error {
		return want
	})
	assert.ErrorIs(t, err, want)
}

func TestRunAsShadowsOuterIdentity(t *testing.T) {
	outer := WithIdentity(context.Background(), Identity{Principal: "service"})

	err := RunAs(outer, Identity{Principal: "submitter"}, func(ctx context.Context) error {
		got, _ := FromContext(ctx)
		assert.Equal(t, "submitter", got.Principal)
		return nil
	})
	assert.NoError(t, err)

	got, _ := FromContext(outer)
	assert.Equal(t, "service", got.Principal, "outer context must be untouched")
}

func TestIsZero(t *testing.T) {
	assert.True(t, Identity{}.IsZero())
	assert.False(t, Identity{Principal: "p"}.IsZero())
	assert.False(t, Identity{Claims: map[string]string{"k": "v"}}.IsZero())
}
