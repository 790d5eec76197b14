package services

import (
	"errors"
	"log"
	"math/big"
	"sort"
	"sync"
	"time"

	"fan-claim-service/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EngineCustodyAddress holds paid-in distribution funds until they are
// claimed or swept at close.
const EngineCustodyAddress = "platform:claim-custody"

// MaxBatchClaims caps a batch claim, a hard anti-DoS ceiling.
const MaxBatchClaims = 100

// MaxEarningsAmount is the sanity ceiling on declared pool sizes:
// one billion whole units of the 6-decimal payment token.
const MaxEarningsAmount = int64(1_000_000_000) * 1_000_000

// DistributionService is the distribution/claiming engine: it snapshots
// eligibility, enforces funding-before-claiming, processes single and batch
// claims with the fee split, and settles events at close.
type DistributionService struct {
	DB      *gorm.DB
	Tokens  *TokenService
	Users   *UserService
	Ledger  *LedgerService
	Reports *ReportService

	now   func() time.Time
	locks eventLockTable
}

func NewDistributionService(db *gorm.DB, tokens *TokenService, users *UserService, ledger *LedgerService, reports *ReportService) *DistributionService {
	return &DistributionService{
		DB:      db,
		Tokens:  tokens,
		Users:   users,
		Ledger:  ledger,
		Reports: reports,
		now:     time.Now,
		locks:   eventLockTable{locks: map[uint]*sync.Mutex{}},
	}
}

// eventLockTable serializes mutating operations per distribution event so
// the claimed <= paid-in <= computed-total invariant is never observed
// violated.
type eventLockTable struct {
	mu    sync.Mutex
	locks map[uint]*sync.Mutex
}

func (t *eventLockTable) lock(eventID uint) func() {
	t.mu.Lock()
	l, ok := t.locks[eventID]
	if !ok {
		l = &sync.Mutex{}
		t.locks[eventID] = l
	}
	t.mu.Unlock()
	l.Lock()
	return l.Unlock
}

// lockAll locks a set of events in ascending id order.
func (t *eventLockTable) lockAll(eventIDs []uint) func() {
	unique := map[uint]bool{}
	var ordered []uint
	for _, id := range eventIDs {
		if !unique[id] {
			unique[id] = true
			ordered = append(ordered, id)
		}
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i] < ordered[j] })
	var unlocks []func()
	for _, id := range ordered {
		unlocks = append(unlocks, t.lock(id))
	}
	return func() {
		for i := len(unlocks) - 1; i >= 0; i-- {
			unlocks[i]()
		}
	}
}

// CreateEventParams carries everything a new payout round needs.
type CreateEventParams struct {
	AthleteAddress          string
	FantiumFeeAddress       string
	TotalTournamentEarnings int64
	TotalOtherEarnings      int64
	StartTime               int64
	CloseTime               int64
	CollectionIDs           []uint
	FantiumFeeBPS           int64
}

// CreateEvent registers a distribution event after validating addresses,
// earnings bounds, the claim window, the fee and the collection set.
func (s *DistributionService) CreateEvent(p CreateEventParams) (*models.DistributionEvent, error) {
	if p.AthleteAddress == "" || p.FantiumFeeAddress == "" {
		return nil, ErrInvalidAddress
	}
	if p.TotalTournamentEarnings <= 0 || p.TotalTournamentEarnings >= MaxEarningsAmount ||
		p.TotalOtherEarnings <= 0 || p.TotalOtherEarnings >= MaxEarningsAmount {
		return nil, ErrEarningsOutOfRange
	}
	if p.FantiumFeeBPS < 0 || p.FantiumFeeBPS > BPSDenominator {
		return nil, ErrFeeOutOfRange
	}
	if p.StartTime <= 0 || p.CloseTime <= 0 || p.CloseTime <= p.StartTime || p.CloseTime <= s.now().Unix() {
		return nil, ErrInvalidTimeWindow
	}
	if len(p.CollectionIDs) == 0 {
		return nil, ErrInvalidCollection
	}
	for _, id := range p.CollectionIDs {
		collection, err := s.Tokens.GetCollection(id)
		if err != nil {
			return nil, err
		}
		if !collection.HasEarnings() {
			return nil, ErrNoEarnings
		}
	}

	event := &models.DistributionEvent{
		AthleteAddress:          p.AthleteAddress,
		FantiumFeeAddress:       p.FantiumFeeAddress,
		TotalTournamentEarnings: p.TotalTournamentEarnings,
		TotalOtherEarnings:      p.TotalOtherEarnings,
		StartTime:               p.StartTime,
		CloseTime:               p.CloseTime,
		FantiumFeeBPS:           p.FantiumFeeBPS,
		Status:                  models.DistributionEventCreated,
	}
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(event).Error; err != nil {
			return err
		}
		for i, id := range p.CollectionIDs {
			join := models.DistributionEventCollection{EventID: event.ID, CollectionID: id, Position: i}
			if err := tx.Create(&join).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetEvent(event.ID)
}

// GetEvent loads an event with its collection set and snapshots.
func (s *DistributionService) GetEvent(eventID uint) (*models.DistributionEvent, error) {
	return s.getEvent(s.DB, eventID)
}

func (s *DistributionService) getEvent(tx *gorm.DB, eventID uint) (*models.DistributionEvent, error) {
	var event models.DistributionEvent
	err := tx.
		Preload("Collections", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Snapshots").
		First(&event, "id = ?", eventID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidEvent
	}
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// TakeSnapshot fixes, per associated collection, the eligible token count
// and the per-token claim amounts, and recomputes the event's pooled
// distribution amounts. Re-snapshotting before funding overwrites the prior
// snapshot; once any amount is paid in the snapshot is locked.
func (s *DistributionService) TakeSnapshot(eventID uint) (*models.DistributionEvent, error) {
	unlock := s.locks.lock(eventID)
	defer unlock()

	event, err := s.GetEvent(eventID)
	if err != nil {
		return nil, err
	}
	if event.Closed() {
		return nil, ErrEventNotOpen
	}
	if event.AmountPaidIn > 0 {
		return nil, ErrSnapshotAfterPay
	}

	takenAt := s.now()
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		tournamentTotal, otherTotal := new(big.Int), new(big.Int)
		for _, join := range event.Collections {
			var collection models.Collection
			if err := tx.First(&collection, "id = ?", join.CollectionID).Error; err != nil {
				return err
			}
			tokenTournamentClaim := TokenClaim(event.TotalTournamentEarnings, collection.TournamentEarningsShare1e7)
			tokenOtherClaim := TokenClaim(event.TotalOtherEarnings, collection.OtherEarningsShare1e7)

			if err := tx.Where("event_id = ? AND collection_id = ?", event.ID, collection.ID).
				Delete(&models.CollectionSnapshot{}).Error; err != nil {
				return err
			}
			snapshot := models.CollectionSnapshot{
				EventID:              event.ID,
				CollectionID:         collection.ID,
				MintedTokens:         collection.MintedCount,
				TokenTournamentClaim: tokenTournamentClaim,
				TokenOtherClaim:      tokenOtherClaim,
				TakenAt:              takenAt,
			}
			if err := tx.Create(&snapshot).Error; err != nil {
				return err
			}
			AddPooledClaim(tournamentTotal, collection.MintedCount, tokenTournamentClaim)
			AddPooledClaim(otherTotal, collection.MintedCount, tokenOtherClaim)
		}
		tournament, other, err := PooledTotalsInt64(tournamentTotal, otherTotal)
		if err != nil {
			return err
		}
		event.TournamentDistributionAmount = tournament
		event.OtherDistributionAmount = other
		event.Status = models.DistributionEventSnapshotted
		return tx.Omit("Collections", "Snapshots").Save(event).Error
	})
	if err != nil {
		return nil, err
	}
	return s.GetEvent(eventID)
}

// AddDistributionAmount pulls the outstanding computed total from the
// athlete's ledger balance into engine custody. Funding is exactly-once per
// computed total: a second call with nothing outstanding fails.
func (s *DistributionService) AddDistributionAmount(eventID uint, caller string) (*models.DistributionEvent, error) {
	unlock := s.locks.lock(eventID)
	defer unlock()

	event, err := s.GetEvent(eventID)
	if err != nil {
		return nil, err
	}
	if caller != event.AthleteAddress {
		return nil, ErrOnlyAthlete
	}
	if event.Closed() {
		return nil, ErrEventNotOpen
	}
	total := event.TotalDistributionAmount()
	if total <= 0 {
		return nil, ErrAmountZero
	}
	outstanding := total - event.AmountPaidIn
	if outstanding <= 0 {
		return nil, ErrAlreadyPaidIn
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.Ledger.TransferFromTx(tx, EngineCustodyAddress, event.AthleteAddress, EngineCustodyAddress, outstanding); err != nil {
			return err
		}
		event.AmountPaidIn = total
		event.Status = models.DistributionEventFunded
		return tx.Omit("Collections", "Snapshots").Save(event).Error
	})
	if err != nil {
		return nil, err
	}
	return event, nil
}

// UpdateEventParams carries the mutable administrative fields; nil means
// leave unchanged.
type UpdateEventParams struct {
	AthleteAddress          *string
	FantiumFeeAddress       *string
	TotalTournamentEarnings *int64
	TotalOtherEarnings      *int64
	StartTime               *int64
	CloseTime               *int64
	FantiumFeeBPS           *int64
	CollectionIDs           []uint
}

// UpdateEvent applies administrative corrections. Total-earnings updates may
// only raise the payout obligation relative to what is already paid in; the
// collection set can only change while nothing has been paid in.
func (s *DistributionService) UpdateEvent(eventID uint, p UpdateEventParams) (*models.DistributionEvent, error) {
	unlock := s.locks.lock(eventID)
	defer unlock()

	event, err := s.GetEvent(eventID)
	if err != nil {
		return nil, err
	}
	if event.Closed() {
		return nil, ErrEventNotOpen
	}

	if p.AthleteAddress != nil {
		if *p.AthleteAddress == "" {
			return nil, ErrInvalidAddress
		}
		event.AthleteAddress = *p.AthleteAddress
	}
	if p.FantiumFeeAddress != nil {
		if *p.FantiumFeeAddress == "" {
			return nil, ErrInvalidAddress
		}
		event.FantiumFeeAddress = *p.FantiumFeeAddress
	}
	if p.FantiumFeeBPS != nil {
		if *p.FantiumFeeBPS < 0 || *p.FantiumFeeBPS > BPSDenominator {
			return nil, ErrFeeOutOfRange
		}
		event.FantiumFeeBPS = *p.FantiumFeeBPS
	}
	if p.StartTime != nil {
		event.StartTime = *p.StartTime
	}
	if p.CloseTime != nil {
		event.CloseTime = *p.CloseTime
	}
	if event.StartTime <= 0 || event.CloseTime <= event.StartTime ||
		((p.StartTime != nil || p.CloseTime != nil) && event.CloseTime <= s.now().Unix()) {
		return nil, ErrInvalidTimeWindow
	}

	earningsChanged := false
	if p.TotalTournamentEarnings != nil {
		if *p.TotalTournamentEarnings <= 0 || *p.TotalTournamentEarnings >= MaxEarningsAmount {
			return nil, ErrEarningsOutOfRange
		}
		event.TotalTournamentEarnings = *p.TotalTournamentEarnings
		earningsChanged = true
	}
	if p.TotalOtherEarnings != nil {
		if *p.TotalOtherEarnings <= 0 || *p.TotalOtherEarnings >= MaxEarningsAmount {
			return nil, ErrEarningsOutOfRange
		}
		event.TotalOtherEarnings = *p.TotalOtherEarnings
		earningsChanged = true
	}

	collectionsChanged := len(p.CollectionIDs) > 0
	if collectionsChanged {
		if event.AmountPaidIn > 0 {
			return nil, ErrAlreadyPaidIn
		}
		for _, id := range p.CollectionIDs {
			collection, err := s.Tokens.GetCollection(id)
			if err != nil {
				return nil, err
			}
			if !collection.HasEarnings() {
				return nil, ErrNoEarnings
			}
		}
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if collectionsChanged {
			// the prior snapshot no longer matches the collection set; a
			// fresh snapshot is required before funding
			if err := tx.Where("event_id = ?", event.ID).Delete(&models.DistributionEventCollection{}).Error; err != nil {
				return err
			}
			if err := tx.Where("event_id = ?", event.ID).Delete(&models.CollectionSnapshot{}).Error; err != nil {
				return err
			}
			for i, id := range p.CollectionIDs {
				join := models.DistributionEventCollection{EventID: event.ID, CollectionID: id, Position: i}
				if err := tx.Create(&join).Error; err != nil {
					return err
				}
			}
			event.TournamentDistributionAmount = 0
			event.OtherDistributionAmount = 0
		} else if earningsChanged && event.Status != models.DistributionEventCreated {
			if err := s.recomputeFromSnapshotTx(tx, event); err != nil {
				return err
			}
			if event.TotalDistributionAmount() < event.AmountPaidIn {
				return ErrBelowPaidIn
			}
		}
		return tx.Omit("Collections", "Snapshots").Save(event).Error
	})
	if err != nil {
		return nil, err
	}
	return s.GetEvent(eventID)
}

// recomputeFromSnapshotTx refreshes per-token claims and the pooled totals
// using the minted counts already captured by the snapshot.
func (s *DistributionService) recomputeFromSnapshotTx(tx *gorm.DB, event *models.DistributionEvent) error {
	var snapshots []models.CollectionSnapshot
	if err := tx.Find(&snapshots, "event_id = ?", event.ID).Error; err != nil {
		return err
	}
	tournamentTotal, otherTotal := new(big.Int), new(big.Int)
	for i := range snapshots {
		snapshot := &snapshots[i]
		var collection models.Collection
		if err := tx.First(&collection, "id = ?", snapshot.CollectionID).Error; err != nil {
			return err
		}
		snapshot.TokenTournamentClaim = TokenClaim(event.TotalTournamentEarnings, collection.TournamentEarningsShare1e7)
		snapshot.TokenOtherClaim = TokenClaim(event.TotalOtherEarnings, collection.OtherEarningsShare1e7)
		if err := tx.Save(snapshot).Error; err != nil {
			return err
		}
		AddPooledClaim(tournamentTotal, snapshot.MintedTokens, snapshot.TokenTournamentClaim)
		AddPooledClaim(otherTotal, snapshot.MintedTokens, snapshot.TokenOtherClaim)
	}
	tournament, other, err := PooledTotalsInt64(tournamentTotal, otherTotal)
	if err != nil {
		return err
	}
	event.TournamentDistributionAmount = tournament
	event.OtherDistributionAmount = other
	return nil
}

// Claim processes a single claim. See claimOneTx for the validation order.
func (s *DistributionService) Claim(tokenID int64, eventID uint, caller string) (*models.ClaimReceipt, error) {
	unlock := s.locks.lock(eventID)
	defer unlock()

	var receipt *models.ClaimReceipt
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		receipt, err = s.claimOneTx(tx, tokenID, eventID, caller)
		return err
	})
	if err != nil {
		return nil, err
	}
	return receipt, nil
}

// BatchClaim processes up to MaxBatchClaims token/event pairs as a single
// all-or-nothing transaction: one failing pair rolls back every pair.
func (s *DistributionService) BatchClaim(tokenIDs []int64, eventIDs []uint, caller string) ([]models.ClaimReceipt, error) {
	if len(tokenIDs) != len(eventIDs) {
		return nil, ErrBatchShape
	}
	if len(tokenIDs) == 0 || len(tokenIDs) > MaxBatchClaims {
		return nil, ErrBatchTooLarge
	}
	unlock := s.locks.lockAll(eventIDs)
	defer unlock()

	var receipts []models.ClaimReceipt
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		for i := range tokenIDs {
			receipt, err := s.claimOneTx(tx, tokenIDs[i], eventIDs[i], caller)
			if err != nil {
				return err
			}
			receipts = append(receipts, *receipt)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return receipts, nil
}

// claimOneTx validates and settles one claim inside a transaction. The
// validation order is fixed; each failure surfaces its own reason.
func (s *DistributionService) claimOneTx(tx *gorm.DB, tokenID int64, eventID uint, caller string) (*models.ClaimReceipt, error) {
	// 1. token must resolve to a live identity
	token, err := s.Tokens.ResolveTx(tx, tokenID)
	if err != nil {
		return nil, err
	}

	event, err := s.getEvent(tx, eventID)
	if err != nil {
		return nil, err
	}
	if event.Closed() {
		return nil, ErrEventNotOpen
	}

	// 2. full funding must be complete
	if !event.FullyPaidIn() {
		return nil, ErrNotPaidIn
	}

	// 3. caller must own the token
	if token.OwnerAddress != caller {
		return nil, ErrOnlyTokenOwner
	}

	// 4. caller must be IDENT verified
	ident, err := s.Users.IsIdentVerified(caller)
	if err != nil {
		return nil, err
	}
	if !ident {
		return nil, ErrNotIdentVerified
	}

	// 5. the claim window must be open
	now := s.now().Unix()
	if now < event.StartTime || now > event.CloseTime {
		return nil, ErrOutsideWindow
	}

	// 6. the token must fall inside the snapshot for its collection
	var snapshot models.CollectionSnapshot
	err = tx.First(&snapshot, "event_id = ? AND collection_id = ?", event.ID, token.CollectionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTokenNotAllowed
	}
	if err != nil {
		return nil, err
	}
	if token.SequenceNumber >= snapshot.MintedTokens {
		return nil, ErrTokenNotAllowed
	}
	// identities issued after the snapshot, post-claim replacements
	// included, are outside it
	if token.IssuedAt.After(snapshot.TakenAt) {
		return nil, ErrTokenNotAllowed
	}

	claimAmount := snapshot.TokenTournamentClaim + snapshot.TokenOtherClaim
	if claimAmount <= 0 {
		return nil, ErrAmountZero
	}
	if event.ClaimedAmount+claimAmount > event.AmountPaidIn {
		return nil, ErrNotPaidIn
	}

	fee, payout := SplitFee(claimAmount, event.FantiumFeeBPS)
	if payout > 0 {
		if err := s.Ledger.TransferTx(tx, EngineCustodyAddress, caller, payout); err != nil {
			return nil, err
		}
	}
	if fee > 0 {
		if err := s.Ledger.TransferTx(tx, EngineCustodyAddress, event.FantiumFeeAddress, fee); err != nil {
			return nil, err
		}
	}

	event.ClaimedAmount += claimAmount
	if err := tx.Omit("Collections", "Snapshots").Save(event).Error; err != nil {
		return nil, err
	}

	oldTokenID := token.TokenID()
	newTokenID, err := s.Tokens.UpgradeVersionTx(tx, token)
	if err != nil {
		return nil, err
	}

	receipt := &models.ClaimReceipt{
		ID:           uuid.NewString(),
		EventID:      event.ID,
		CollectionID: token.CollectionID,
		OldTokenID:   oldTokenID,
		NewTokenID:   newTokenID,
		Claimant:     caller,
		ClaimAmount:  claimAmount,
		FeeAmount:    fee,
		PayoutAmount: payout,
	}
	if err := tx.Create(receipt).Error; err != nil {
		return nil, err
	}
	return receipt, nil
}

// CloseDistribution settles an event: sweeps the unclaimed remainder from
// engine custody back to the athlete, freezes the event and records a
// settlement report. The report CSV upload happens after commit and is
// best-effort.
func (s *DistributionService) CloseDistribution(eventID uint) (*models.SettlementReport, error) {
	unlock := s.locks.lock(eventID)
	defer unlock()

	event, err := s.GetEvent(eventID)
	if err != nil {
		return nil, err
	}
	if event.Closed() {
		return nil, ErrAlreadyClosed
	}
	if event.TotalDistributionAmount() <= 0 {
		return nil, ErrAmountZero
	}

	var report *models.SettlementReport
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		residual := event.AmountPaidIn - event.ClaimedAmount
		if residual > 0 {
			if err := s.Ledger.TransferTx(tx, EngineCustodyAddress, event.AthleteAddress, residual); err != nil {
				return err
			}
		}
		event.Status = models.DistributionEventClosed
		if err := tx.Omit("Collections", "Snapshots").Save(event).Error; err != nil {
			return err
		}
		var claimCount int64
		if err := tx.Model(&models.ClaimReceipt{}).Where("event_id = ?", event.ID).Count(&claimCount).Error; err != nil {
			return err
		}
		report = &models.SettlementReport{
			ID:          uuid.NewString(),
			EventID:     event.ID,
			SweptAmount: residual,
			ClaimCount:  claimCount,
		}
		return tx.Create(report).Error
	})
	if err != nil {
		return nil, err
	}

	if s.Reports != nil {
		if url, err := s.Reports.PublishSettlementReport(event, report); err != nil {
			log.Printf("settlement report upload failed for event %d: %v", event.ID, err)
		} else {
			report.ReportURL = url
		}
	}
	return report, nil
}

// --- HTTP handlers ---

type eventRequest struct {
	AthleteAddress          string `json:"athlete_address" validate:"required"`
	FantiumFeeAddress       string `json:"fantium_fee_address" validate:"required"`
	TotalTournamentEarnings int64  `json:"total_tournament_earnings" validate:"required,gt=0"`
	TotalOtherEarnings      int64  `json:"total_other_earnings" validate:"required,gt=0"`
	StartTime               int64  `json:"start_time" validate:"required,gt=0"`
	CloseTime               int64  `json:"close_time" validate:"required,gt=0"`
	CollectionIDs           []uint `json:"collection_ids" validate:"required,min=1"`
	FantiumFeeBPS           int64  `json:"fantium_fee_bps" validate:"gte=0,lte=10000"`
}

// CreateEventEndpoint registers a distribution event (platform manager only).
func (s *DistributionService) CreateEventEndpoint(c *fiber.Ctx) error {
	var req eventRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	event, err := s.CreateEvent(CreateEventParams{
		AthleteAddress:          req.AthleteAddress,
		FantiumFeeAddress:       req.FantiumFeeAddress,
		TotalTournamentEarnings: req.TotalTournamentEarnings,
		TotalOtherEarnings:      req.TotalOtherEarnings,
		StartTime:               req.StartTime,
		CloseTime:               req.CloseTime,
		CollectionIDs:           req.CollectionIDs,
		FantiumFeeBPS:           req.FantiumFeeBPS,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(event)
}

// UpdateEventEndpoint applies administrative corrections to an event.
func (s *DistributionService) UpdateEventEndpoint(c *fiber.Ctx) error {
	eventID, err := c.ParamsInt("id")
	if err != nil || eventID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid event ID"})
	}
	var req struct {
		AthleteAddress          *string `json:"athlete_address"`
		FantiumFeeAddress       *string `json:"fantium_fee_address"`
		TotalTournamentEarnings *int64  `json:"total_tournament_earnings"`
		TotalOtherEarnings      *int64  `json:"total_other_earnings"`
		StartTime               *int64  `json:"start_time"`
		CloseTime               *int64  `json:"close_time"`
		FantiumFeeBPS           *int64  `json:"fantium_fee_bps"`
		CollectionIDs           []uint  `json:"collection_ids"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	event, err := s.UpdateEvent(uint(eventID), UpdateEventParams{
		AthleteAddress:          req.AthleteAddress,
		FantiumFeeAddress:       req.FantiumFeeAddress,
		TotalTournamentEarnings: req.TotalTournamentEarnings,
		TotalOtherEarnings:      req.TotalOtherEarnings,
		StartTime:               req.StartTime,
		CloseTime:               req.CloseTime,
		FantiumFeeBPS:           req.FantiumFeeBPS,
		CollectionIDs:           req.CollectionIDs,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(event)
}

// TakeSnapshotEndpoint captures eligibility for an event.
func (s *DistributionService) TakeSnapshotEndpoint(c *fiber.Ctx) error {
	eventID, err := c.ParamsInt("id")
	if err != nil || eventID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid event ID"})
	}
	event, err := s.TakeSnapshot(uint(eventID))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(event)
}

// PayInEndpoint lets the event's athlete fund the computed total.
func (s *DistributionService) PayInEndpoint(c *fiber.Ctx) error {
	caller := c.Locals("user_address").(string)
	eventID, err := c.ParamsInt("id")
	if err != nil || eventID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid event ID"})
	}
	event, err := s.AddDistributionAmount(uint(eventID), caller)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(event)
}

// ClaimEndpoint processes a single claim for the calling token owner.
func (s *DistributionService) ClaimEndpoint(c *fiber.Ctx) error {
	caller := c.Locals("user_address").(string)
	var req struct {
		TokenID int64 `json:"token_id" validate:"required,gt=0"`
		EventID uint  `json:"event_id" validate:"required"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	receipt, err := s.Claim(req.TokenID, req.EventID, caller)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(receipt)
}

// BatchClaimEndpoint processes a batch of claims atomically.
func (s *DistributionService) BatchClaimEndpoint(c *fiber.Ctx) error {
	caller := c.Locals("user_address").(string)
	var req struct {
		TokenIDs []int64 `json:"token_ids" validate:"required,min=1"`
		EventIDs []uint  `json:"event_ids" validate:"required,min=1"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	receipts, err := s.BatchClaim(req.TokenIDs, req.EventIDs, caller)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"receipts": receipts})
}

// CloseEndpoint settles an event (platform manager only).
func (s *DistributionService) CloseEndpoint(c *fiber.Ctx) error {
	eventID, err := c.ParamsInt("id")
	if err != nil || eventID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid event ID"})
	}
	report, err := s.CloseDistribution(uint(eventID))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(report)
}

// GetEventEndpoint returns one event with collections and snapshots.
func (s *DistributionService) GetEventEndpoint(c *fiber.Ctx) error {
	eventID, err := c.ParamsInt("id")
	if err != nil || eventID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid event ID"})
	}
	event, err := s.GetEvent(uint(eventID))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(event)
}

// ListEventsEndpoint returns all events (admin view).
func (s *DistributionService) ListEventsEndpoint(c *fiber.Ctx) error {
	var events []models.DistributionEvent
	err := s.DB.
		Preload("Collections", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Order("id ASC").Find(&events).Error
	if err != nil {
		log.Printf("DB error fetching distribution events: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch events"})
	}
	return c.JSON(events)
}

// ListReceiptsEndpoint returns the claim receipts of one event.
func (s *DistributionService) ListReceiptsEndpoint(c *fiber.Ctx) error {
	eventID, err := c.ParamsInt("id")
	if err != nil || eventID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid event ID"})
	}
	var receipts []models.ClaimReceipt
	if err := s.DB.Order("claimed_at ASC").Find(&receipts, "event_id = ?", eventID).Error; err != nil {
		log.Printf("DB error fetching claim receipts: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch receipts"})
	}
	return c.JSON(receipts)
}
