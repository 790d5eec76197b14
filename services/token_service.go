package services

import (
	"errors"
	"log"
	"time"

	"fan-claim-service/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// PlatformTreasuryAddress receives the platform's share of primary sales.
const PlatformTreasuryAddress = "platform:treasury"

// TokenService is the token eligibility registry: collections, numbered
// tokens, ownership lookups and the post-claim version upgrade. It also
// carries the satellite minting flow.
type TokenService struct {
	DB     *gorm.DB
	Users  *UserService
	Ledger *LedgerService

	now func() time.Time
}

func NewTokenService(db *gorm.DB, users *UserService, ledger *LedgerService) *TokenService {
	return &TokenService{DB: db, Users: users, Ledger: ledger, now: time.Now}
}

// CreateCollection registers a new athlete drop.
func (s *TokenService) CreateCollection(name, athleteAddress string, tournamentShare1e7, otherShare1e7, maxInvocations, priceUnit, primarySaleBPS int64) (*models.Collection, error) {
	if athleteAddress == "" {
		return nil, ErrInvalidAddress
	}
	if tournamentShare1e7 < 0 || tournamentShare1e7 > ShareDenominator1e7 ||
		otherShare1e7 < 0 || otherShare1e7 > ShareDenominator1e7 {
		return nil, ErrEarningsOutOfRange
	}
	if primarySaleBPS < 0 || primarySaleBPS > BPSDenominator {
		return nil, ErrFeeOutOfRange
	}
	if maxInvocations <= 0 || maxInvocations > models.TokenMaxSequence {
		return nil, ErrEarningsOutOfRange
	}
	collection := &models.Collection{
		Name:                       name,
		Slug:                       slug.Make(name),
		AthleteAddress:             athleteAddress,
		TournamentEarningsShare1e7: tournamentShare1e7,
		OtherEarningsShare1e7:      otherShare1e7,
		MaxInvocations:             maxInvocations,
		PriceUnit:                  priceUnit,
		PrimarySaleBPS:             primarySaleBPS,
	}
	if err := s.DB.Create(collection).Error; err != nil {
		return nil, err
	}
	return collection, nil
}

// GetCollection looks a collection up by id.
func (s *TokenService) GetCollection(id uint) (*models.Collection, error) {
	var collection models.Collection
	if err := s.DB.First(&collection, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCollection
		}
		return nil, err
	}
	return &collection, nil
}

// MintedCountOf returns how many tokens the collection has issued so far.
func (s *TokenService) MintedCountOf(collectionID uint) (int64, error) {
	collection, err := s.GetCollection(collectionID)
	if err != nil {
		return 0, err
	}
	return collection.MintedCount, nil
}

// tokenByPublicID resolves a public numeric id to its row. The row must
// match collection, sequence AND version: a version-bumped token makes its
// old public id permanently invalid.
func (s *TokenService) tokenByPublicID(tx *gorm.DB, tokenID int64) (*models.Token, error) {
	collectionID, version, sequence := models.DecomposeTokenID(tokenID)
	var token models.Token
	err := tx.First(&token, "collection_id = ? AND sequence_number = ?", collectionID, sequence).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, err
	}
	if token.Version != version {
		return nil, ErrInvalidToken
	}
	return &token, nil
}

// Exists reports whether a public token id currently resolves to a token.
func (s *TokenService) Exists(tokenID int64) (bool, error) {
	_, err := s.tokenByPublicID(s.DB, tokenID)
	if errors.Is(err, ErrInvalidToken) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// OwnerOf returns the owner of a public token id, or ErrInvalidToken.
func (s *TokenService) OwnerOf(tokenID int64) (string, error) {
	token, err := s.tokenByPublicID(s.DB, tokenID)
	if err != nil {
		return "", err
	}
	return token.OwnerAddress, nil
}

// ResolveTx is tokenByPublicID inside an existing transaction, exposed for
// the claim processor.
func (s *TokenService) ResolveTx(tx *gorm.DB, tokenID int64) (*models.Token, error) {
	return s.tokenByPublicID(tx, tokenID)
}

// UpgradeVersionTx consumes the token's current identity and issues the next
// version to the same owner. Returns the new public id. The update is guarded
// on the version the caller resolved: an identity can only be consumed once,
// so a concurrent claim that already bumped the version fails here instead of
// paying out twice.
func (s *TokenService) UpgradeVersionTx(tx *gorm.DB, token *models.Token) (int64, error) {
	if token.Version+1 >= models.TokenMaxVersion {
		return 0, ErrVersionExceeded
	}
	issuedAt := s.now()
	res := tx.Model(&models.Token{}).
		Where("id = ? AND version = ?", token.ID, token.Version).
		Updates(map[string]interface{}{
			"version":   token.Version + 1,
			"issued_at": issuedAt,
		})
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, ErrInvalidToken
	}
	token.Version++
	token.IssuedAt = issuedAt
	return token.TokenID(), nil
}

// Mint issues count sequential tokens from a collection to the caller.
// KYC-gated; paused collections additionally require allowlist allocation.
// The sale price is pulled through the ledger and split between the athlete
// and the platform treasury.
func (s *TokenService) Mint(collectionID uint, count int64, caller string) ([]int64, error) {
	if count <= 0 {
		return nil, ErrAmountNegative
	}
	kyc, err := s.Users.IsKYCVerified(caller)
	if err != nil {
		return nil, err
	}
	if !kyc {
		return nil, ErrNotKYCVerified
	}

	var minted []int64
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		var collection models.Collection
		if err := tx.First(&collection, "id = ?", collectionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInvalidCollection
			}
			return err
		}
		if !collection.Mintable {
			return ErrNotMintable
		}
		if collection.MintedCount+count > collection.MaxInvocations {
			return ErrCollectionFull
		}
		if collection.Paused {
			if err := s.Users.ConsumeAllocationTx(tx, collectionID, caller, count); err != nil {
				return err
			}
		}

		cost := collection.PriceUnit * count
		if cost > 0 {
			// PrimarySaleBPS is the athlete's cut of the primary sale.
			athleteCut, platformCut := SplitFee(cost, collection.PrimarySaleBPS)
			if athleteCut > 0 {
				if err := s.Ledger.TransferFromTx(tx, PlatformTreasuryAddress, caller, collection.AthleteAddress, athleteCut); err != nil {
					return err
				}
			}
			if platformCut > 0 {
				if err := s.Ledger.TransferFromTx(tx, PlatformTreasuryAddress, caller, PlatformTreasuryAddress, platformCut); err != nil {
					return err
				}
			}
		}

		issuedAt := s.now()
		for i := int64(0); i < count; i++ {
			token := models.Token{
				ID:             uuid.NewString(),
				CollectionID:   collectionID,
				SequenceNumber: collection.MintedCount + i,
				Version:        0,
				OwnerAddress:   caller,
				IssuedAt:       issuedAt,
			}
			if err := tx.Create(&token).Error; err != nil {
				return err
			}
			minted = append(minted, token.TokenID())
		}
		collection.MintedCount += count
		return tx.Save(&collection).Error
	})
	if err != nil {
		return nil, err
	}
	return minted, nil
}

// --- HTTP handlers ---

// CreateCollectionEndpoint registers a collection (platform manager only).
func (s *TokenService) CreateCollectionEndpoint(c *fiber.Ctx) error {
	var req struct {
		Name                       string `json:"name" validate:"required"`
		AthleteAddress             string `json:"athlete_address" validate:"required"`
		TournamentEarningsShare1e7 int64  `json:"tournament_earnings_share1e7"`
		OtherEarningsShare1e7      int64  `json:"other_earnings_share1e7"`
		MaxInvocations             int64  `json:"max_invocations" validate:"required,gt=0"`
		PriceUnit                  int64  `json:"price_unit" validate:"gte=0"`
		PrimarySaleBPS             int64  `json:"primary_sale_bps" validate:"gte=0,lte=10000"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	collection, err := s.CreateCollection(req.Name, req.AthleteAddress,
		req.TournamentEarningsShare1e7, req.OtherEarningsShare1e7,
		req.MaxInvocations, req.PriceUnit, req.PrimarySaleBPS)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(collection)
}

// GetCollectionEndpoint returns one collection.
func (s *TokenService) GetCollectionEndpoint(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid collection ID"})
	}
	collection, err := s.GetCollection(uint(id))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(collection)
}

// ListCollectionsEndpoint returns all collections.
func (s *TokenService) ListCollectionsEndpoint(c *fiber.Ctx) error {
	var collections []models.Collection
	if err := s.DB.Order("id ASC").Find(&collections).Error; err != nil {
		log.Printf("DB error fetching collections: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch collections"})
	}
	return c.JSON(collections)
}

// UpdateCollectionEndpoint mutates sale/share settings and the mintable and
// paused toggles.
func (s *TokenService) UpdateCollectionEndpoint(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid collection ID"})
	}
	collection, err := s.GetCollection(uint(id))
	if err != nil {
		return respondServiceError(c, err)
	}

	var req struct {
		TournamentEarningsShare1e7 *int64 `json:"tournament_earnings_share1e7"`
		OtherEarningsShare1e7      *int64 `json:"other_earnings_share1e7"`
		MaxInvocations             *int64 `json:"max_invocations"`
		PriceUnit                  *int64 `json:"price_unit"`
		Mintable                   *bool  `json:"mintable"`
		Paused                     *bool  `json:"paused"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.TournamentEarningsShare1e7 != nil {
		if *req.TournamentEarningsShare1e7 < 0 || *req.TournamentEarningsShare1e7 > ShareDenominator1e7 {
			return respondServiceError(c, ErrEarningsOutOfRange)
		}
		collection.TournamentEarningsShare1e7 = *req.TournamentEarningsShare1e7
	}
	if req.OtherEarningsShare1e7 != nil {
		if *req.OtherEarningsShare1e7 < 0 || *req.OtherEarningsShare1e7 > ShareDenominator1e7 {
			return respondServiceError(c, ErrEarningsOutOfRange)
		}
		collection.OtherEarningsShare1e7 = *req.OtherEarningsShare1e7
	}
	if req.MaxInvocations != nil {
		if *req.MaxInvocations < collection.MintedCount || *req.MaxInvocations > models.TokenMaxSequence {
			return respondServiceError(c, ErrEarningsOutOfRange)
		}
		collection.MaxInvocations = *req.MaxInvocations
	}
	if req.PriceUnit != nil {
		collection.PriceUnit = *req.PriceUnit
	}
	if req.Mintable != nil {
		collection.Mintable = *req.Mintable
	}
	if req.Paused != nil {
		collection.Paused = *req.Paused
	}
	if err := s.DB.Save(collection).Error; err != nil {
		log.Printf("DB error updating collection %d: %v", id, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to update collection"})
	}
	return c.JSON(collection)
}

// MintEndpoint mints tokens from a collection to the caller.
func (s *TokenService) MintEndpoint(c *fiber.Ctx) error {
	caller := c.Locals("user_address").(string)
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid collection ID"})
	}
	var req struct {
		Count int64 `json:"count" validate:"required,gt=0"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	minted, err := s.Mint(uint(id), req.Count, caller)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"token_ids": minted})
}

// GetTokenEndpoint resolves a public token id to its owner and identity.
func (s *TokenService) GetTokenEndpoint(c *fiber.Ctx) error {
	tokenID, err := c.ParamsInt("token_id")
	if err != nil || tokenID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid token ID"})
	}
	token, err := s.tokenByPublicID(s.DB, int64(tokenID))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"token_id":      token.TokenID(),
		"collection_id": token.CollectionID,
		"sequence":      token.SequenceNumber,
		"version":       token.Version,
		"owner":         token.OwnerAddress,
	})
}
