package services

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"fan-claim-service/models"
	"fan-claim-service/utils"

	"gorm.io/gorm"
)

// ReportService turns a settled distribution event into a CSV settlement
// report and publishes it to object storage. Upload is swappable for tests.
type ReportService struct {
	DB     *gorm.DB
	Upload func(data []byte, key, contentType string) (string, error)
}

func NewReportService(db *gorm.DB) *ReportService {
	return &ReportService{DB: db, Upload: utils.UploadBytesToR2}
}

// PublishSettlementReport uploads the event's claim history and sweep
// figures, stores the URL on the report row and returns it.
func (s *ReportService) PublishSettlementReport(event *models.DistributionEvent, report *models.SettlementReport) (string, error) {
	var receipts []models.ClaimReceipt
	if err := s.DB.Order("claimed_at ASC").Find(&receipts, "event_id = ?", event.ID).Error; err != nil {
		return "", err
	}

	data, err := buildSettlementCSV(event, report, receipts)
	if err != nil {
		return "", err
	}
	key := fmt.Sprintf("settlements/event-%d-%s.csv", event.ID, report.ID)
	url, err := s.Upload(data, key, "text/csv")
	if err != nil {
		return "", err
	}

	if err := s.DB.Model(&models.SettlementReport{}).
		Where("id = ?", report.ID).
		Update("report_url", url).Error; err != nil {
		return "", err
	}
	return url, nil
}

func buildSettlementCSV(event *models.DistributionEvent, report *models.SettlementReport, receipts []models.ClaimReceipt) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)

	header := [][]string{
		{"event_id", strconv.FormatUint(uint64(event.ID), 10)},
		{"athlete_address", event.AthleteAddress},
		{"amount_paid_in", strconv.FormatInt(event.AmountPaidIn, 10)},
		{"claimed_amount", strconv.FormatInt(event.ClaimedAmount, 10)},
		{"swept_amount", strconv.FormatInt(report.SweptAmount, 10)},
		{},
		{"claimed_at", "claimant", "old_token_id", "new_token_id", "claim_amount", "fee_amount", "payout_amount"},
	}
	for _, row := range header {
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	for _, r := range receipts {
		row := []string{
			r.ClaimedAt.UTC().Format("2006-01-02T15:04:05Z"),
			r.Claimant,
			strconv.FormatInt(r.OldTokenID, 10),
			strconv.FormatInt(r.NewTokenID, 10),
			strconv.FormatInt(r.ClaimAmount, 10),
			strconv.FormatInt(r.FeeAmount, 10),
			strconv.FormatInt(r.PayoutAmount, 10),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
