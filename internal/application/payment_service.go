package application

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/carhive/service-rental/internal/common/clock"
	"github.com/carhive/service-rental/internal/common/domain"
	"github.com/carhive/service-rental/internal/domain/availability"
	"github.com/carhive/service-rental/internal/domain/booking"
)

// VerifyPaymentRequest holds the gateway callback data for a simulated
// payment.
type VerifyPaymentRequest struct {
	BookingID     uuid.UUID `json:"bookingId" binding:"required"`
	PaymentID     string    `json:"paymentId" binding:"required"`
	PaymentMethod string    `json:"paymentMethod" binding:"required"`
}

// PaymentService simulates a payment provider: it issues opaque order
// handles and, on verification, pays and confirms the booking in one
// atomic step. Order creation and verification are separate operations so
// a real webhook-driven gateway could replace this without touching the
// booking lifecycle.
type PaymentService struct {
	bookings  booking.Repository
	publisher EventPublisher
	clk       clock.Clock
	logger    *zap.Logger
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(
	bookings booking.Repository,
	publisher EventPublisher,
	clk clock.Clock,
	logger *zap.Logger,
) *PaymentService {
	return &PaymentService{
		bookings:  bookings,
		publisher: publisher,
		clk:       clk,
		logger:    logger,
	}
}

// CreateOrder issues a fresh opaque order ID for a payable booking, along
// with the booking's frozen total price. No booking state is mutated.
func (s *PaymentService) CreateOrder(ctx context.Context, userID, bookingID uuid.UUID) (*PaymentOrderDTO, error) {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if bk.RenterID() != userID {
		return nil, domain.NewForbiddenError("forbidden")
	}
	if err := bk.IsPayable(); err != nil {
		return nil, err
	}

	return &PaymentOrderDTO{
		OrderID:  "order_" + uuid.NewString(),
		Amount:   bk.TotalPriceCents(),
		Currency: bk.CurrencyCode(),
	}, nil
}

// VerifyPayment settles a simulated payment. It re-applies the payability
// checks and re-validates availability under the car's lock — a second,
// later-arriving check, since another booking may have been confirmed for
// the same slot between order creation and verification — then atomically
// marks the booking paid and confirmed.
func (s *PaymentService) VerifyPayment(ctx context.Context, userID uuid.UUID, req VerifyPaymentRequest) (*BookingDTO, error) {
	bk, err := s.bookings.FindByID(ctx, req.BookingID)
	if err != nil {
		return nil, err
	}
	if bk.RenterID() != userID {
		return nil, domain.NewForbiddenError("forbidden")
	}
	if err := bk.IsPayable(); err != nil {
		return nil, err
	}

	var paid *booking.Booking
	err = s.bookings.WithCarLock(ctx, bk.CarID(), func(r booking.Repository) error {
		bk, err := r.FindByID(ctx, req.BookingID)
		if err != nil {
			return err
		}
		if err := bk.IsPayable(); err != nil {
			return err
		}

		engine := availability.NewEngine(r)
		free, err := engine.IsRangeAvailable(ctx, bk.CarID(), bk.Dates(), bk.ID())
		if err != nil {
			return fmt.Errorf("failed to check availability: %w", err)
		}
		if !free {
			return domain.NewConflictError("car is not available for the selected dates")
		}

		if err := bk.MarkPaidAndConfirm(req.PaymentID, req.PaymentMethod, s.clk.Now()); err != nil {
			return err
		}
		bk.IncrementVersion()
		if err := r.Update(ctx, bk); err != nil {
			return err
		}
		paid = bk
		return nil
	})
	if err != nil {
		return nil, err
	}

	publishEvent(ctx, s.publisher, s.logger, booking.TopicBookingEvents, booking.EventBookingConfirmed, paid.ID().String(), booking.ConfirmedEvent{
		BookingID:  paid.ID(),
		CarID:      paid.CarID(),
		RenterID:   paid.RenterID(),
		PaymentID:  paid.PaymentID(),
		OccurredAt: s.clk.Now(),
	})

	result := toBookingDTO(paid)
	return &result, nil
}

// FailPayment records a failed payment attempt. The booking stays pending
// so the renter can retry with a new order.
func (s *PaymentService) FailPayment(ctx context.Context, userID, bookingID uuid.UUID) (*BookingDTO, error) {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if bk.RenterID() != userID {
		return nil, domain.NewForbiddenError("forbidden")
	}

	if err := bk.FailPayment(s.clk.Now()); err != nil {
		return nil, err
	}
	bk.IncrementVersion()
	if err := s.bookings.Update(ctx, bk); err != nil {
		return nil, err
	}

	publishEvent(ctx, s.publisher, s.logger, booking.TopicBookingEvents, booking.EventBookingPaymentFailed, bk.ID().String(), booking.PaymentFailedEvent{
		BookingID:  bk.ID(),
		RenterID:   bk.RenterID(),
		OccurredAt: s.clk.Now(),
	})

	result := toBookingDTO(bk)
	return &result, nil
}
