package services

import (
	"strings"
	"testing"
	"time"

	"fan-claim-service/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSettlementCSV(t *testing.T) {
	event := &models.DistributionEvent{
		ID:             7,
		AthleteAddress: "0xathlete",
		AmountPaidIn:   20_000_000_000,
		ClaimedAmount:  10_000_000_000,
	}
	report := &models.SettlementReport{SweptAmount: 10_000_000_000}
	receipts := []models.ClaimReceipt{{
		ClaimedAt:    time.Unix(1_700_000_000, 0).UTC(),
		Claimant:     "0xfan",
		OldTokenID:   1_000_000,
		NewTokenID:   1_010_000,
		ClaimAmount:  10_000_000_000,
		FeeAmount:    250_000_000,
		PayoutAmount: 9_750_000_000,
	}}

	data, err := buildSettlementCSV(event, report, receipts)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Equal(t, "event_id,7", lines[0])
	assert.Equal(t, "athlete_address,0xathlete", lines[1])
	assert.Equal(t, "swept_amount,10000000000", lines[4])
	assert.Contains(t, lines[len(lines)-1], "0xfan,1000000,1010000,10000000000,250000000,9750000000")
}

func TestCloseDistributionPublishesReport(t *testing.T) {
	env := newTestEnv(t)

	var uploadedKey string
	var uploadedData []byte
	env.dist.Reports = &ReportService{
		DB: env.db,
		Upload: func(data []byte, key, contentType string) (string, error) {
			uploadedKey = key
			uploadedData = data
			return "https://reports.example/" + key, nil
		},
	}

	collection := env.newCollection(t)
	tokenIDs := env.mintFor(t, collection.ID, 1, "0xfan")
	event := newEventFor(t, env, collection.ID)
	_, err := env.dist.TakeSnapshot(event.ID)
	require.NoError(t, err)
	event, err = env.dist.GetEvent(event.ID)
	require.NoError(t, err)
	env.fundEvent(t, event)
	env.clock.Advance(time.Minute)
	require.NoError(t, env.users.SetIdent("0xfan", true))
	_, err = env.dist.Claim(tokenIDs[0], event.ID, "0xfan")
	require.NoError(t, err)

	report, err := env.dist.CloseDistribution(event.ID)
	require.NoError(t, err)

	assert.Contains(t, uploadedKey, "settlements/")
	assert.Contains(t, string(uploadedData), "0xfan")
	assert.Equal(t, "https://reports.example/"+uploadedKey, report.ReportURL)

	// the URL was persisted on the report row
	var stored models.SettlementReport
	require.NoError(t, env.db.First(&stored, "event_id = ?", event.ID).Error)
	assert.Equal(t, report.ReportURL, stored.ReportURL)
}
