package models

import (
	"time"
)

// DistributionEventStatus tracks the lifecycle of a payout round.
// Transitions only move forward: created -> snapshotted -> funded -> closed.
type DistributionEventStatus string

const (
	DistributionEventCreated     DistributionEventStatus = "created"
	DistributionEventSnapshotted DistributionEventStatus = "snapshotted"
	DistributionEventFunded      DistributionEventStatus = "funded"
	DistributionEventClosed      DistributionEventStatus = "closed"
)

// DistributionEvent is one payout round: an athlete's pooled tournament and
// other earnings, distributed to holders of tokens from the associated
// collections within a claim window. All monetary amounts are int64
// micro-units of the payment token.
type DistributionEvent struct {
	ID                           uint                    `gorm:"primaryKey" json:"id"`
	AthleteAddress               string                  `gorm:"size:128;not null" json:"athlete_address"`
	FantiumFeeAddress            string                  `gorm:"size:128;not null" json:"fantium_fee_address"`
	TotalTournamentEarnings      int64                   `gorm:"not null" json:"total_tournament_earnings"`
	TotalOtherEarnings           int64                   `gorm:"not null" json:"total_other_earnings"`
	TournamentDistributionAmount int64                   `gorm:"not null;default:0" json:"tournament_distribution_amount"`
	OtherDistributionAmount      int64                   `gorm:"not null;default:0" json:"other_distribution_amount"`
	AmountPaidIn                 int64                   `gorm:"not null;default:0" json:"amount_paid_in"`
	ClaimedAmount                int64                   `gorm:"not null;default:0" json:"claimed_amount"`
	StartTime                    int64                   `gorm:"not null" json:"start_time"` // unix seconds
	CloseTime                    int64                   `gorm:"not null" json:"close_time"` // unix seconds
	FantiumFeeBPS                int64                   `gorm:"not null" json:"fantium_fee_bps"`
	Status                       DistributionEventStatus `gorm:"not null;default:'created'" json:"status"`
	CreatedAt                    time.Time               `json:"created_at"`
	UpdatedAt                    time.Time               `json:"updated_at"`

	Collections []DistributionEventCollection `gorm:"foreignKey:EventID" json:"collections,omitempty"`
	Snapshots   []CollectionSnapshot          `gorm:"foreignKey:EventID" json:"snapshots,omitempty"`
}

// TotalDistributionAmount is the pooled amount owed once a snapshot fixed the
// per-token figures.
func (e *DistributionEvent) TotalDistributionAmount() int64 {
	return e.TournamentDistributionAmount + e.OtherDistributionAmount
}

// Closed reports whether the round has been settled and frozen.
func (e *DistributionEvent) Closed() bool {
	return e.Status == DistributionEventClosed
}

// FullyPaidIn reports whether the athlete has covered the computed total.
func (e *DistributionEvent) FullyPaidIn() bool {
	total := e.TotalDistributionAmount()
	return total > 0 && e.AmountPaidIn >= total
}

// DistributionEventCollection associates a collection with a payout round,
// preserving the order the collections were attached in.
type DistributionEventCollection struct {
	ID           uint `gorm:"primaryKey" json:"-"`
	EventID      uint `gorm:"not null;index:idx_event_collection,unique" json:"event_id"`
	CollectionID uint `gorm:"not null;index:idx_event_collection,unique" json:"collection_id"`
	Position     int  `gorm:"not null" json:"position"`
}

// CollectionSnapshot fixes, per (event, collection), how many tokens were
// eligible when the snapshot was taken and what each of them can claim.
// Re-snapshotting before funding overwrites the row.
type CollectionSnapshot struct {
	ID                   uint      `gorm:"primaryKey" json:"-"`
	EventID              uint      `gorm:"not null;index:idx_snapshot_event_collection,unique" json:"event_id"`
	CollectionID         uint      `gorm:"not null;index:idx_snapshot_event_collection,unique" json:"collection_id"`
	MintedTokens         int64     `gorm:"not null" json:"minted_tokens"`
	TokenTournamentClaim int64     `gorm:"not null" json:"token_tournament_claim"`
	TokenOtherClaim      int64     `gorm:"not null" json:"token_other_claim"`
	TakenAt              time.Time `gorm:"not null" json:"taken_at"`
}
