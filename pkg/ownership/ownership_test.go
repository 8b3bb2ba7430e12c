package ownership

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNoopRegistry_AlwaysSoleOwner(t *testing.T) {
	reg := NewNoop()
	ctx := context.Background()

	assert.NoError(t, reg.ClaimOwnership(ctx, "ABCD"))
	assert.Equal(t, True, reg.IsOwnedByMe(ctx, "ABCD"))
	assert.Equal(t, True, reg.ReleaseOwnership(ctx, "ABCD"))
	assert.Equal(t, "", reg.TestConnection(ctx))
}

func TestOwnerKey_UsesSpecPrefix(t *testing.T) {
	assert.Equal(t, "seedr:owners:ABCD1234", ownerKey("ABCD1234"))
}
