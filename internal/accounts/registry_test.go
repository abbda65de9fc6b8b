package accounts

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusbooks/student-ledger/internal/storage/memory"
)

func TestNewRegistryResolvesAllCodes(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	require.NoError(t, store.EnsureSchema(ctx))

	registry, err := NewRegistry(ctx, store)
	require.NoError(t, err)

	assert.NotZero(t, registry.AR())
	assert.NotZero(t, registry.Cash())
	assert.NotZero(t, registry.Revenue())
	assert.NotEqual(t, registry.AR(), registry.Cash())
	assert.NotEqual(t, registry.AR(), registry.Revenue())
}

func TestNewRegistryFailsFastOnMissingAccounts(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore() // no EnsureSchema: no accounts provisioned

	registry, err := NewRegistry(ctx, store)
	require.Nil(t, registry)

	var cerr *ConfigurationError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "AR", cerr.Code, "the first missing code is named")
}
