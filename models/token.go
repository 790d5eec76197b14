package models

import "time"

// Public token ids encode (collection, version, sequence) in a single number:
// collection*1_000_000 + version*10_000 + sequence. Claiming a payout bumps
// the version, which retires the old public id and issues a new one for the
// same owner and sequence.
const (
	TokenCollectionFactor = 1_000_000
	TokenVersionFactor    = 10_000
	TokenMaxSequence      = 10_000
	TokenMaxVersion       = 100
)

// Token is one numbered collectible. The row is the stable record; the
// public-facing numeric id is derived from (collection, version, sequence).
// IssuedAt is the moment the current identity (version) came into existence:
// mint time for version 0, claim time for every later version.
type Token struct {
	ID             string    `gorm:"primaryKey;type:uuid" json:"id"`
	CollectionID   uint      `gorm:"not null;index:idx_token_identity,unique" json:"collection_id"`
	SequenceNumber int64     `gorm:"not null;index:idx_token_identity,unique" json:"sequence_number"`
	Version        int64     `gorm:"not null;default:0" json:"version"`
	OwnerAddress   string    `gorm:"size:128;not null;index" json:"owner_address"`
	IssuedAt       time.Time `gorm:"not null" json:"issued_at"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TokenID returns the public numeric id of the token's current identity.
func (t *Token) TokenID() int64 {
	return ComposeTokenID(t.CollectionID, t.Version, t.SequenceNumber)
}

// ComposeTokenID builds the public numeric id from its parts.
func ComposeTokenID(collectionID uint, version, sequence int64) int64 {
	return int64(collectionID)*TokenCollectionFactor + version*TokenVersionFactor + sequence
}

// DecomposeTokenID splits a public numeric id into collection, version and
// sequence.
func DecomposeTokenID(tokenID int64) (collectionID uint, version, sequence int64) {
	collectionID = uint(tokenID / TokenCollectionFactor)
	rest := tokenID % TokenCollectionFactor
	version = rest / TokenVersionFactor
	sequence = rest % TokenVersionFactor
	return
}
