package services

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"fan-claim-service/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testClock is an adjustable time source shared by every service in a test
// environment.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type testEnv struct {
	db          *gorm.DB
	clock       *testClock
	ledger      *LedgerService
	users       *UserService
	tokens      *TokenService
	dist        *DistributionService
	collections int
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.Collection{},
		&models.Token{},
		&models.User{},
		&models.AllowlistAllocation{},
		&models.LedgerAccount{},
		&models.LedgerAllowance{},
		&models.DistributionEvent{},
		&models.DistributionEventCollection{},
		&models.CollectionSnapshot{},
		&models.ClaimReceipt{},
		&models.SettlementReport{},
	))

	clock := &testClock{now: time.Unix(1_700_000_000, 0).UTC()}

	ledger := NewLedgerService(db)
	users := NewUserService(db)
	tokens := NewTokenService(db, users, ledger)
	tokens.now = clock.Now
	dist := NewDistributionService(db, tokens, users, ledger, nil)
	dist.now = clock.Now

	return &testEnv{db: db, clock: clock, ledger: ledger, users: users, tokens: tokens, dist: dist}
}

// newCollection creates an open (mintable, unpaused) zero-price collection
// with the standard 0.1% share fractions used across the suite.
func (env *testEnv) newCollection(t *testing.T) *models.Collection {
	t.Helper()
	return env.newCollectionWithShares(t, 100_000, 100_000)
}

func (env *testEnv) newCollectionWithShares(t *testing.T, tournamentShare1e7, otherShare1e7 int64) *models.Collection {
	t.Helper()
	env.collections++
	name := fmt.Sprintf("%s Athlete %d", t.Name(), env.collections)
	collection, err := env.tokens.CreateCollection(name, "0xathlete", tournamentShare1e7, otherShare1e7, 100, 0, 9000)
	require.NoError(t, err)
	collection.Mintable = true
	collection.Paused = false
	require.NoError(t, env.db.Save(collection).Error)
	return collection
}

// mintFor KYCs the address if needed and mints count tokens.
func (env *testEnv) mintFor(t *testing.T, collectionID uint, count int64, owner string) []int64 {
	t.Helper()
	require.NoError(t, env.users.SetKYC(owner, true))
	tokenIDs, err := env.tokens.Mint(collectionID, count, owner)
	require.NoError(t, err)
	return tokenIDs
}

// fundEvent credits and approves the athlete, then pays the computed total
// into engine custody.
func (env *testEnv) fundEvent(t *testing.T, event *models.DistributionEvent) *models.DistributionEvent {
	t.Helper()
	total := event.TotalDistributionAmount()
	require.NoError(t, env.ledger.Credit(event.AthleteAddress, total))
	require.NoError(t, env.ledger.Approve(event.AthleteAddress, EngineCustodyAddress, total))
	funded, err := env.dist.AddDistributionAmount(event.ID, event.AthleteAddress)
	require.NoError(t, err)
	return funded
}

func (env *testEnv) balance(t *testing.T, address string) int64 {
	t.Helper()
	balance, err := env.ledger.BalanceOf(address)
	require.NoError(t, err)
	return balance
}
