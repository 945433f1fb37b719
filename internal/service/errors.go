package service

import (
	"errors"
	"fmt"

	"academy/internal/domain"
	"academy/pkg/payment"
)

// processorError translates processor failures into domain errors, keeping the cause in the message.
func processorError(err error) error {
	switch {
	case errors.Is(err, payment.ErrMisconfigured):
		return fmt.Errorf("%w: %v", domain.ErrConfiguration, err)
	case errors.Is(err, payment.ErrNotFound):
		return domain.ErrPaymentNotFound
	default:
		return fmt.Errorf("%w: %v", domain.ErrPaymentProvider, err)
	}
}
