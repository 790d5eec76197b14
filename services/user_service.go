package services

import (
	"errors"
	"log"

	"fan-claim-service/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserService is the compliance registry: KYC and IDENT membership plus the
// allow-list allocation ledger consumed by paused-collection minting.
type UserService struct {
	DB *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{DB: db}
}

// IsKYCVerified reports whether the address passed the coarse identity check.
func (s *UserService) IsKYCVerified(address string) (bool, error) {
	var user models.User
	if err := s.DB.First(&user, "address = ?", address).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return user.KYCVerified, nil
}

// IsIdentVerified reports whether the address passed the strict identity
// check that gates claiming.
func (s *UserService) IsIdentVerified(address string) (bool, error) {
	var user models.User
	if err := s.DB.First(&user, "address = ?", address).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return user.IdentVerified, nil
}

// SetKYC upserts the KYC flag for an address.
func (s *UserService) SetKYC(address string, verified bool) error {
	return s.upsertFlag(address, "kyc_verified", verified)
}

// SetIdent upserts the IDENT flag for an address.
func (s *UserService) SetIdent(address string, verified bool) error {
	return s.upsertFlag(address, "ident_verified", verified)
}

func (s *UserService) upsertFlag(address, column string, verified bool) error {
	if address == "" {
		return ErrInvalidAddress
	}
	user := models.User{Address: address}
	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&user).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).Where("address = ?", address).
			Update(column, verified).Error
	})
}

// BatchAllowlist sets allowlist allocations for many addresses at once.
// Slices must be the same length; existing allocations are overwritten.
func (s *UserService) BatchAllowlist(collectionID uint, addresses []string, allocations []int64) error {
	if len(addresses) != len(allocations) {
		return ErrBatchShape
	}
	return s.DB.Transaction(func(tx *gorm.DB) error {
		for i, address := range addresses {
			row := models.AllowlistAllocation{
				CollectionID: collectionID,
				Address:      address,
				Remaining:    allocations[i],
			}
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "collection_id"}, {Name: "address"}},
				DoUpdates: clause.AssignmentColumns([]string{"remaining"}),
			}).Create(&row).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// AllocationOf returns the address's remaining allowlist allocation.
func (s *UserService) AllocationOf(collectionID uint, address string) (int64, error) {
	var row models.AllowlistAllocation
	err := s.DB.First(&row, "collection_id = ? AND address = ?", collectionID, address).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return row.Remaining, nil
}

// ConsumeAllocationTx spends count units of an address's allocation inside a
// transaction, failing when not enough remains.
func (s *UserService) ConsumeAllocationTx(tx *gorm.DB, collectionID uint, address string, count int64) error {
	var row models.AllowlistAllocation
	err := tx.First(&row, "collection_id = ? AND address = ?", collectionID, address).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNoAllocation
	}
	if err != nil {
		return err
	}
	if row.Remaining < count {
		return ErrNoAllocation
	}
	row.Remaining -= count
	return tx.Save(&row).Error
}

// --- HTTP handlers ---

type complianceRequest struct {
	Address string `json:"address" validate:"required"`
}

// AddToKYC marks an address as KYC verified.
func (s *UserService) AddToKYC(c *fiber.Ctx) error {
	return s.setFlagEndpoint(c, s.SetKYC, true)
}

// RemoveFromKYC clears the KYC flag.
func (s *UserService) RemoveFromKYC(c *fiber.Ctx) error {
	return s.setFlagEndpoint(c, s.SetKYC, false)
}

// AddToIdent marks an address as IDENT verified.
func (s *UserService) AddToIdent(c *fiber.Ctx) error {
	return s.setFlagEndpoint(c, s.SetIdent, true)
}

// RemoveFromIdent clears the IDENT flag.
func (s *UserService) RemoveFromIdent(c *fiber.Ctx) error {
	return s.setFlagEndpoint(c, s.SetIdent, false)
}

func (s *UserService) setFlagEndpoint(c *fiber.Ctx, set func(string, bool) error, verified bool) error {
	var req complianceRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := set(req.Address, verified); err != nil {
		log.Printf("DB error updating compliance flag for %s: %v", req.Address, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to update compliance state"})
	}
	return c.JSON(fiber.Map{"address": req.Address, "updated": true})
}

// CheckAddress returns the compliance state of an address.
func (s *UserService) CheckAddress(c *fiber.Ctx) error {
	address := c.Params("address")
	kyc, err := s.IsKYCVerified(address)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}
	ident, err := s.IsIdentVerified(address)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}
	return c.JSON(fiber.Map{"address": address, "kyc_verified": kyc, "ident_verified": ident})
}

// BatchAllowlistEndpoint sets allowlist allocations for a collection.
func (s *UserService) BatchAllowlistEndpoint(c *fiber.Ctx) error {
	var req struct {
		CollectionID uint     `json:"collection_id" validate:"required"`
		Addresses    []string `json:"addresses" validate:"required,min=1"`
		Allocations  []int64  `json:"allocations" validate:"required,min=1"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := s.BatchAllowlist(req.CollectionID, req.Addresses, req.Allocations); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "allowlist updated", "count": len(req.Addresses)})
}
