package services

import (
	"testing"

	"fan-claim-service/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestCreateCollectionValidation(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.tokens.CreateCollection("No Athlete", "", 100_000, 100_000, 100, 0, 0)
	assert.ErrorIs(t, err, ErrInvalidAddress)

	_, err = env.tokens.CreateCollection("Bad Share", "0xa", ShareDenominator1e7+1, 0, 100, 0, 0)
	assert.ErrorIs(t, err, ErrEarningsOutOfRange)

	_, err = env.tokens.CreateCollection("Bad Fee", "0xa", 100_000, 100_000, 100, 0, 10_001)
	assert.ErrorIs(t, err, ErrFeeOutOfRange)

	_, err = env.tokens.CreateCollection("Too Big", "0xa", 100_000, 100_000, models.TokenMaxSequence+1, 0, 0)
	assert.ErrorIs(t, err, ErrEarningsOutOfRange)

	collection, err := env.tokens.CreateCollection("Jane Doe Drop", "0xa", 100_000, 100_000, 100, 0, 9000)
	require.NoError(t, err)
	assert.Equal(t, "jane-doe-drop", collection.Slug)
	assert.False(t, collection.Mintable)
	assert.True(t, collection.Paused)
}

func TestMintAssignsSequentialIDs(t *testing.T) {
	env := newTestEnv(t)
	collection := env.newCollection(t)

	tokenIDs := env.mintFor(t, collection.ID, 3, "0xfan")
	base := int64(collection.ID) * models.TokenCollectionFactor
	assert.Equal(t, []int64{base, base + 1, base + 2}, tokenIDs)

	owner, err := env.tokens.OwnerOf(tokenIDs[0])
	require.NoError(t, err)
	assert.Equal(t, "0xfan", owner)

	minted, err := env.tokens.MintedCountOf(collection.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), minted)

	// next mint continues the sequence
	more := env.mintFor(t, collection.ID, 1, "0xfan")
	assert.Equal(t, []int64{base + 3}, more)
}

func TestMintGates(t *testing.T) {
	env := newTestEnv(t)
	collection := env.newCollection(t)

	// no KYC
	_, err := env.tokens.Mint(collection.ID, 1, "0xunverified")
	assert.ErrorIs(t, err, ErrNotKYCVerified)

	require.NoError(t, env.users.SetKYC("0xfan", true))

	// not mintable
	collection.Mintable = false
	require.NoError(t, env.db.Save(collection).Error)
	_, err = env.tokens.Mint(collection.ID, 1, "0xfan")
	assert.ErrorIs(t, err, ErrNotMintable)

	// capacity
	collection.Mintable = true
	require.NoError(t, env.db.Save(collection).Error)
	_, err = env.tokens.Mint(collection.ID, collection.MaxInvocations+1, "0xfan")
	assert.ErrorIs(t, err, ErrCollectionFull)

	// paused collections require an allowlist allocation
	collection.Paused = true
	require.NoError(t, env.db.Save(collection).Error)
	_, err = env.tokens.Mint(collection.ID, 1, "0xfan")
	assert.ErrorIs(t, err, ErrNoAllocation)

	require.NoError(t, env.users.BatchAllowlist(collection.ID, []string{"0xfan"}, []int64{2}))
	_, err = env.tokens.Mint(collection.ID, 1, "0xfan")
	require.NoError(t, err)

	remaining, err := env.users.AllocationOf(collection.ID, "0xfan")
	require.NoError(t, err)
	assert.Equal(t, int64(1), remaining)

	_, err = env.tokens.Mint(collection.ID, 2, "0xfan")
	assert.ErrorIs(t, err, ErrNoAllocation)
}

func TestMintPullsPaymentThroughLedger(t *testing.T) {
	env := newTestEnv(t)
	collection := env.newCollection(t)
	collection.PriceUnit = 1_000_000
	collection.PrimarySaleBPS = 9000
	require.NoError(t, env.db.Save(collection).Error)

	require.NoError(t, env.users.SetKYC("0xfan", true))

	// unfunded buyer
	_, err := env.tokens.Mint(collection.ID, 2, "0xfan")
	assert.ErrorIs(t, err, ErrAllowanceLow)

	require.NoError(t, env.ledger.Credit("0xfan", 2_000_000))
	require.NoError(t, env.ledger.Approve("0xfan", PlatformTreasuryAddress, 2_000_000))

	_, err = env.tokens.Mint(collection.ID, 2, "0xfan")
	require.NoError(t, err)

	// 90% to the athlete, the remainder to the treasury
	assert.Equal(t, int64(0), env.balance(t, "0xfan"))
	assert.Equal(t, int64(1_800_000), env.balance(t, collection.AthleteAddress))
	assert.Equal(t, int64(200_000), env.balance(t, PlatformTreasuryAddress))
}

func TestVersionUpgradeRetiresOldID(t *testing.T) {
	env := newTestEnv(t)
	collection := env.newCollection(t)
	tokenIDs := env.mintFor(t, collection.ID, 1, "0xfan")
	oldID := tokenIDs[0]

	var newID int64
	err := env.db.Transaction(func(tx *gorm.DB) error {
		token, err := env.tokens.ResolveTx(tx, oldID)
		if err != nil {
			return err
		}
		newID, err = env.tokens.UpgradeVersionTx(tx, token)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, oldID+models.TokenVersionFactor, newID)

	// the old public id no longer resolves
	_, err = env.tokens.OwnerOf(oldID)
	assert.ErrorIs(t, err, ErrInvalidToken)
	exists, err := env.tokens.Exists(oldID)
	require.NoError(t, err)
	assert.False(t, exists)

	owner, err := env.tokens.OwnerOf(newID)
	require.NoError(t, err)
	assert.Equal(t, "0xfan", owner)
}

func TestVersionUpgradeConsumesIdentityOnce(t *testing.T) {
	env := newTestEnv(t)
	collection := env.newCollection(t)
	tokenIDs := env.mintFor(t, collection.ID, 1, "0xfan")

	// two callers resolve the same identity before either consumes it
	first, err := env.tokens.ResolveTx(env.db, tokenIDs[0])
	require.NoError(t, err)
	second, err := env.tokens.ResolveTx(env.db, tokenIDs[0])
	require.NoError(t, err)

	var newID int64
	require.NoError(t, env.db.Transaction(func(tx *gorm.DB) error {
		var err error
		newID, err = env.tokens.UpgradeVersionTx(tx, first)
		return err
	}))
	assert.Equal(t, tokenIDs[0]+models.TokenVersionFactor, newID)

	// the second caller holds the already-consumed version and must fail
	err = env.db.Transaction(func(tx *gorm.DB) error {
		_, err := env.tokens.UpgradeVersionTx(tx, second)
		return err
	})
	assert.ErrorIs(t, err, ErrInvalidToken)

	// the identity advanced exactly once
	owner, err := env.tokens.OwnerOf(newID)
	require.NoError(t, err)
	assert.Equal(t, "0xfan", owner)
	exists, err := env.tokens.Exists(newID + models.TokenVersionFactor)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestTokenIDArithmetic(t *testing.T) {
	assert.Equal(t, int64(1_000_000), models.ComposeTokenID(1, 0, 0))
	assert.Equal(t, int64(1_010_000), models.ComposeTokenID(1, 1, 0))
	assert.Equal(t, int64(7_034_219), models.ComposeTokenID(7, 3, 4219))

	collectionID, version, sequence := models.DecomposeTokenID(7_034_219)
	assert.Equal(t, uint(7), collectionID)
	assert.Equal(t, int64(3), version)
	assert.Equal(t, int64(4219), sequence)
}
