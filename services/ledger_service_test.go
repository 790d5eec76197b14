package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestLedgerCreditAndBalance(t *testing.T) {
	env := newTestEnv(t)

	balance, err := env.ledger.BalanceOf("0xnobody")
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance)

	require.NoError(t, env.ledger.Credit("0xalice", 1_000_000))
	require.NoError(t, env.ledger.Credit("0xalice", 500_000))
	assert.Equal(t, int64(1_500_000), env.balance(t, "0xalice"))

	assert.ErrorIs(t, env.ledger.Credit("0xalice", 0), ErrAmountNegative)
	assert.ErrorIs(t, env.ledger.Credit("0xalice", -5), ErrAmountNegative)
}

func TestLedgerTransfer(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.ledger.Credit("0xalice", 1_000_000))

	require.NoError(t, env.ledger.Transfer("0xalice", "0xbob", 400_000))
	assert.Equal(t, int64(600_000), env.balance(t, "0xalice"))
	assert.Equal(t, int64(400_000), env.balance(t, "0xbob"))

	// overdraft leaves both sides untouched
	err := env.ledger.Transfer("0xalice", "0xbob", 600_001)
	assert.ErrorIs(t, err, ErrInsufficient)
	assert.Equal(t, int64(600_000), env.balance(t, "0xalice"))
	assert.Equal(t, int64(400_000), env.balance(t, "0xbob"))

	// unknown source
	assert.ErrorIs(t, env.ledger.Transfer("0xghost", "0xbob", 1), ErrInsufficient)
}

func TestLedgerAllowance(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.ledger.Credit("0xalice", 1_000_000))

	allowance, err := env.ledger.Allowance("0xalice", "0xspender")
	require.NoError(t, err)
	assert.Equal(t, int64(0), allowance)

	require.NoError(t, env.ledger.Approve("0xalice", "0xspender", 300_000))
	allowance, err = env.ledger.Allowance("0xalice", "0xspender")
	require.NoError(t, err)
	assert.Equal(t, int64(300_000), allowance)

	// a second approval overwrites, never accumulates
	require.NoError(t, env.ledger.Approve("0xalice", "0xspender", 100_000))
	allowance, err = env.ledger.Allowance("0xalice", "0xspender")
	require.NoError(t, err)
	assert.Equal(t, int64(100_000), allowance)
}

func TestLedgerTransferFrom(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.ledger.Credit("0xalice", 1_000_000))
	require.NoError(t, env.ledger.Approve("0xalice", "0xspender", 300_000))

	err := env.db.Transaction(func(tx *gorm.DB) error {
		return env.ledger.TransferFromTx(tx, "0xspender", "0xalice", "0xbob", 200_000)
	})
	require.NoError(t, err)
	assert.Equal(t, int64(800_000), env.balance(t, "0xalice"))
	assert.Equal(t, int64(200_000), env.balance(t, "0xbob"))

	// allowance was consumed
	allowance, err := env.ledger.Allowance("0xalice", "0xspender")
	require.NoError(t, err)
	assert.Equal(t, int64(100_000), allowance)

	// spending beyond the remaining allowance fails even with balance left
	err = env.db.Transaction(func(tx *gorm.DB) error {
		return env.ledger.TransferFromTx(tx, "0xspender", "0xalice", "0xbob", 100_001)
	})
	assert.ErrorIs(t, err, ErrAllowanceLow)
	assert.Equal(t, int64(800_000), env.balance(t, "0xalice"))

	// no approval at all
	err = env.db.Transaction(func(tx *gorm.DB) error {
		return env.ledger.TransferFromTx(tx, "0xother", "0xalice", "0xbob", 1)
	})
	assert.ErrorIs(t, err, ErrAllowanceLow)
}
