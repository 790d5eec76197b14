package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComplianceFlags(t *testing.T) {
	env := newTestEnv(t)

	assert.ErrorIs(t, env.users.SetKYC("", true), ErrInvalidAddress)

	kyc, err := env.users.IsKYCVerified("0xnew")
	require.NoError(t, err)
	assert.False(t, kyc)

	require.NoError(t, env.users.SetKYC("0xnew", true))
	kyc, err = env.users.IsKYCVerified("0xnew")
	require.NoError(t, err)
	assert.True(t, kyc)

	// the two flags are independent
	ident, err := env.users.IsIdentVerified("0xnew")
	require.NoError(t, err)
	assert.False(t, ident)

	require.NoError(t, env.users.SetIdent("0xnew", true))
	require.NoError(t, env.users.SetKYC("0xnew", false))
	kyc, err = env.users.IsKYCVerified("0xnew")
	require.NoError(t, err)
	assert.False(t, kyc)
	ident, err = env.users.IsIdentVerified("0xnew")
	require.NoError(t, err)
	assert.True(t, ident)
}

func TestBatchAllowlist(t *testing.T) {
	env := newTestEnv(t)
	collection := env.newCollection(t)

	err := env.users.BatchAllowlist(collection.ID, []string{"0xa", "0xb"}, []int64{5})
	assert.ErrorIs(t, err, ErrBatchShape)

	require.NoError(t, env.users.BatchAllowlist(collection.ID, []string{"0xa", "0xb"}, []int64{5, 2}))

	remaining, err := env.users.AllocationOf(collection.ID, "0xa")
	require.NoError(t, err)
	assert.Equal(t, int64(5), remaining)

	// re-running overwrites instead of accumulating
	require.NoError(t, env.users.BatchAllowlist(collection.ID, []string{"0xa"}, []int64{1}))
	remaining, err = env.users.AllocationOf(collection.ID, "0xa")
	require.NoError(t, err)
	assert.Equal(t, int64(1), remaining)

	remaining, err = env.users.AllocationOf(collection.ID, "0xunknown")
	require.NoError(t, err)
	assert.Equal(t, int64(0), remaining)
}
