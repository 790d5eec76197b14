package models

import (
	"time"
)

// Collection groups the numbered fan tokens of a single athlete drop.
// Share fractions are expressed in parts-per-ten-million (1e7 = 100%).
type Collection struct {
	ID                         uint      `gorm:"primaryKey" json:"id"`
	Name                       string    `gorm:"not null" json:"name"`
	Slug                       string    `gorm:"uniqueIndex;not null" json:"slug"`
	AthleteAddress             string    `gorm:"size:128;not null;index" json:"athlete_address"`
	TournamentEarningsShare1e7 int64     `gorm:"not null" json:"tournament_earnings_share1e7"`
	OtherEarningsShare1e7      int64     `gorm:"not null" json:"other_earnings_share1e7"`
	MaxInvocations             int64     `gorm:"not null" json:"max_invocations"`
	PriceUnit                  int64     `gorm:"not null" json:"price_unit"` // micro-units per token
	PrimarySaleBPS             int64     `gorm:"not null" json:"primary_sale_bps"`
	MintedCount                int64     `gorm:"not null;default:0" json:"minted_count"`
	Mintable                   bool      `gorm:"not null;default:false" json:"mintable"`
	Paused                     bool      `gorm:"not null;default:true" json:"paused"`
	CreatedAt                  time.Time `json:"created_at"`
	UpdatedAt                  time.Time `json:"updated_at"`
}

// HasEarnings reports whether the collection carries any earning potential.
// Collections without it cannot be attached to a distribution event.
func (c *Collection) HasEarnings() bool {
	return c.TournamentEarningsShare1e7 > 0 || c.OtherEarningsShare1e7 > 0
}
