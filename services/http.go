package services

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// respondServiceError maps engine sentinels to HTTP statuses. The sentinel
// text is returned verbatim so clients can branch on it.
func respondServiceError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, ErrInvalidEvent),
		errors.Is(err, ErrInvalidToken),
		errors.Is(err, ErrInvalidCollection):
		status = fiber.StatusNotFound
	case errors.Is(err, ErrOnlyAthlete),
		errors.Is(err, ErrOnlyTokenOwner),
		errors.Is(err, ErrNotIdentVerified),
		errors.Is(err, ErrNotKYCVerified),
		errors.Is(err, ErrOutsideWindow):
		status = fiber.StatusForbidden
	case errors.Is(err, ErrAlreadyPaidIn),
		errors.Is(err, ErrAlreadyClosed),
		errors.Is(err, ErrEventNotOpen),
		errors.Is(err, ErrNotPaidIn),
		errors.Is(err, ErrTokenNotAllowed),
		errors.Is(err, ErrSnapshotAfterPay):
		status = fiber.StatusConflict
	case errors.Is(err, ErrInvalidAddress),
		errors.Is(err, ErrFeeOutOfRange),
		errors.Is(err, ErrEarningsOutOfRange),
		errors.Is(err, ErrInvalidTimeWindow),
		errors.Is(err, ErrBatchShape),
		errors.Is(err, ErrBatchTooLarge),
		errors.Is(err, ErrNoEarnings),
		errors.Is(err, ErrAmountZero),
		errors.Is(err, ErrBelowPaidIn),
		errors.Is(err, ErrAmountNegative),
		errors.Is(err, ErrInsufficient),
		errors.Is(err, ErrAllowanceLow),
		errors.Is(err, ErrCollectionFull),
		errors.Is(err, ErrNotMintable),
		errors.Is(err, ErrNoAllocation),
		errors.Is(err, ErrVersionExceeded):
		status = fiber.StatusBadRequest
	}
	if status == fiber.StatusInternalServerError {
		return c.Status(status).JSON(fiber.Map{"error": "internal error"})
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
