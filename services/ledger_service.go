package services

import (
	"errors"
	"log"

	"fan-claim-service/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// LedgerService implements the value-transfer medium: a fungible payment
// token ledger with transfer and allowance semantics. The claiming engine
// moves all funds through it.
type LedgerService struct {
	DB *gorm.DB
}

func NewLedgerService(db *gorm.DB) *LedgerService {
	return &LedgerService{DB: db}
}

// BalanceOf returns the current balance for an address. Unknown addresses
// hold zero.
func (s *LedgerService) BalanceOf(address string) (int64, error) {
	var account models.LedgerAccount
	if err := s.DB.First(&account, "address = ?", address).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return account.Balance, nil
}

// Credit adds funds to an address, creating the account if needed. Used by
// the ops faucet and by settlement sweeps.
func (s *LedgerService) Credit(address string, amount int64) error {
	if amount <= 0 {
		return ErrAmountNegative
	}
	return s.DB.Transaction(func(tx *gorm.DB) error {
		return s.CreditTx(tx, address, amount)
	})
}

// CreditTx is Credit inside an existing transaction.
func (s *LedgerService) CreditTx(tx *gorm.DB, address string, amount int64) error {
	var account models.LedgerAccount
	err := tx.First(&account, "address = ?", address).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		account = models.LedgerAccount{Address: address, Balance: amount}
		return tx.Create(&account).Error
	}
	if err != nil {
		return err
	}
	account.Balance += amount
	return tx.Save(&account).Error
}

// TransferTx moves funds between two accounts inside an existing
// transaction. Fails without side effects when the source cannot cover the
// amount.
func (s *LedgerService) TransferTx(tx *gorm.DB, from, to string, amount int64) error {
	if amount <= 0 {
		return ErrAmountNegative
	}
	var source models.LedgerAccount
	if err := tx.First(&source, "address = ?", from).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInsufficient
		}
		return err
	}
	if source.Balance < amount {
		return ErrInsufficient
	}
	source.Balance -= amount
	if err := tx.Save(&source).Error; err != nil {
		return err
	}
	return s.CreditTx(tx, to, amount)
}

// Transfer is TransferTx in its own transaction.
func (s *LedgerService) Transfer(from, to string, amount int64) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		return s.TransferTx(tx, from, to, amount)
	})
}

// Approve lets spender move up to amount out of owner's account. A second
// approval overwrites the first.
func (s *LedgerService) Approve(owner, spender string, amount int64) error {
	if amount < 0 {
		return ErrAmountNegative
	}
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var allowance models.LedgerAllowance
		err := tx.First(&allowance, "owner = ? AND spender = ?", owner, spender).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			allowance = models.LedgerAllowance{Owner: owner, Spender: spender, Amount: amount}
			return tx.Create(&allowance).Error
		}
		if err != nil {
			return err
		}
		allowance.Amount = amount
		return tx.Save(&allowance).Error
	})
}

// Allowance returns how much spender may still move out of owner's account.
func (s *LedgerService) Allowance(owner, spender string) (int64, error) {
	var allowance models.LedgerAllowance
	if err := s.DB.First(&allowance, "owner = ? AND spender = ?", owner, spender).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return allowance.Amount, nil
}

// TransferFromTx moves funds out of from's account on behalf of spender,
// consuming allowance, inside an existing transaction.
func (s *LedgerService) TransferFromTx(tx *gorm.DB, spender, from, to string, amount int64) error {
	if amount <= 0 {
		return ErrAmountNegative
	}
	var allowance models.LedgerAllowance
	if err := tx.First(&allowance, "owner = ? AND spender = ?", from, spender).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAllowanceLow
		}
		return err
	}
	if allowance.Amount < amount {
		return ErrAllowanceLow
	}
	allowance.Amount -= amount
	if err := tx.Save(&allowance).Error; err != nil {
		return err
	}
	return s.TransferTx(tx, from, to, amount)
}

// --- HTTP handlers (ops surface) ---

// GetBalance returns the ledger balance for an address.
func (s *LedgerService) GetBalance(c *fiber.Ctx) error {
	address := c.Params("address")
	balance, err := s.BalanceOf(address)
	if err != nil {
		log.Printf("DB error fetching balance for %s: %v", address, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch balance"})
	}
	return c.JSON(fiber.Map{"address": address, "balance": balance})
}

// CreditAccount credits an account (admin faucet for test/ops environments).
func (s *LedgerService) CreditAccount(c *fiber.Ctx) error {
	var req struct {
		Address string `json:"address" validate:"required"`
		Amount  int64  `json:"amount" validate:"required,gt=0"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := s.Credit(req.Address, req.Amount); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "account credited", "address": req.Address})
}

// ApproveSpender sets the caller's allowance for a spender.
func (s *LedgerService) ApproveSpender(c *fiber.Ctx) error {
	caller := c.Locals("user_address").(string)
	var req struct {
		Spender string `json:"spender" validate:"required"`
		Amount  int64  `json:"amount" validate:"gte=0"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := s.Approve(caller, req.Spender, req.Amount); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "allowance set", "owner": caller, "spender": req.Spender, "amount": req.Amount})
}
