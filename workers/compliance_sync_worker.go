package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"time"

	"fan-claim-service/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ComplianceSyncClient mirrors KYC/IDENT state from the external compliance
// service into the local users table.
type ComplianceSyncClient struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
	DB         *gorm.DB
}

func NewComplianceSyncClient(db *gorm.DB) *ComplianceSyncClient {
	baseURL := os.Getenv("COMPLIANCE_SERVICE_URL")
	if baseURL == "" {
		log.Fatal("COMPLIANCE_SERVICE_URL environment variable is required")
	}
	token := os.Getenv("CLAIM_SERVICE_TOKEN")
	if token == "" {
		log.Fatal("CLAIM_SERVICE_TOKEN environment variable is required for compliance sync")
	}

	return &ComplianceSyncClient{
		BaseURL: baseURL,
		Token:   token,
		DB:      db,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// GetChangedRecords fetches compliance records changed since the given time.
func (c *ComplianceSyncClient) GetChangedRecords(ctx context.Context, since time.Time) ([]models.RemoteComplianceRecord, error) {
	since = since.UTC()

	u, err := url.Parse(fmt.Sprintf("%s/api/v1/public/compliance", c.BaseURL))
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}

	q := u.Query()
	q.Set("since", since.Format(time.RFC3339))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, "GET", u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("X-Service-Token", c.Token)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call compliance service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("compliance service returned status %d: %s", resp.StatusCode, string(body))
	}

	var response struct {
		Records []models.RemoteComplianceRecord `json:"records"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode compliance service response: %w", err)
	}

	return response.Records, nil
}

// PollCompliance keeps the local user mirror in step with the compliance
// service. On failure the same window is retried next tick.
func PollCompliance(ctx context.Context, client *ComplianceSyncClient, pollInterval time.Duration) {
	log.Println("Starting compliance polling (DB-backed)...")
	lastSyncTime := time.Now().UTC().Add(-24 * time.Hour)

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Compliance polling stopped.")
			return
		case <-ticker.C:
			logTime := time.Now().UTC()

			records, err := client.GetChangedRecords(ctx, lastSyncTime)
			if err != nil {
				log.Printf("❌ Error polling compliance records: %v", err)
				continue
			}

			if len(records) == 0 {
				continue
			}

			users := make([]models.User, 0, len(records))
			for _, r := range records {
				users = append(users, models.User{
					Address:       r.Address,
					KYCVerified:   r.KYCVerified,
					IdentVerified: r.IdentVerified,
				})
			}

			// Bulk upsert in one statement
			if err := client.DB.Clauses(
				clause.OnConflict{
					Columns: []clause.Column{{Name: "address"}},
					DoUpdates: clause.AssignmentColumns([]string{
						"kyc_verified",
						"ident_verified",
						"updated_at",
					}),
				},
			).Create(&users).Error; err != nil {
				log.Printf("❌ Failed to upsert %d compliance record(s): %v", len(users), err)
				// Do NOT update lastSyncTime on failure — retry same window next tick
				continue
			}

			lastSyncTime = logTime
			log.Printf("✅ Upserted %d compliance record(s) into users table.", len(users))
		}
	}
}
