package booking

import (
	"time"

	"github.com/google/uuid"

	"github.com/carhive/service-rental/internal/common/domain"
)

// Currency is the fixed currency tag of the simulated payment flow.
const Currency = "USD"

// Booking is the aggregate root for the booking domain. A booking is
// created pending/unpaid by a renter, confirmed through the payment flow
// or an owner accept, auto-completed once its return date passes, and
// never hard-deleted.
type Booking struct {
	id              uuid.UUID
	renterID        uuid.UUID
	carID           uuid.UUID
	dates           DateRange
	totalPriceCents int64
	currency        string
	status          BookingStatus
	paymentStatus   PaymentStatus

	paymentID     string
	paymentMethod string
	paidAt        *time.Time

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// NewBooking creates a Booking in status pending/unpaid. The total price is
// computed from the car's daily rate at creation time and frozen: later
// price changes on the car never reprice existing bookings.
func NewBooking(renterID, carID, carOwnerID uuid.UUID, pricePerDayCents int64, dates DateRange, now time.Time) (*Booking, error) {
	if renterID == uuid.Nil {
		return nil, domain.NewValidationError("renter ID is required")
	}
	if carID == uuid.Nil {
		return nil, domain.NewValidationError("car ID is required")
	}
	if renterID == carOwnerID {
		return nil, domain.NewValidationError("owners cannot book their own cars")
	}
	if pricePerDayCents <= 0 {
		return nil, domain.NewValidationError("price per day must be positive")
	}

	now = now.UTC()
	return &Booking{
		id:              uuid.New(),
		renterID:        renterID,
		carID:           carID,
		dates:           dates,
		totalPriceCents: TotalPriceCents(pricePerDayCents, dates),
		currency:        Currency,
		status:          StatusPending,
		paymentStatus:   PaymentUnpaid,
		version:         1,
		createdAt:       now,
		updatedAt:       now,
	}, nil
}

// ReconstructBooking rebuilds a Booking from persistence data (no validation).
func ReconstructBooking(
	id, renterID, carID uuid.UUID,
	dates DateRange,
	totalPriceCents int64,
	currency string,
	status BookingStatus,
	paymentStatus PaymentStatus,
	paymentID, paymentMethod string,
	paidAt *time.Time,
	version int64,
	createdAt, updatedAt time.Time,
) *Booking {
	return &Booking{
		id:              id,
		renterID:        renterID,
		carID:           carID,
		dates:           dates,
		totalPriceCents: totalPriceCents,
		currency:        currency,
		status:          status,
		paymentStatus:   paymentStatus,
		paymentID:       paymentID,
		paymentMethod:   paymentMethod,
		paidAt:          paidAt,
		version:         version,
		createdAt:       createdAt,
		updatedAt:       updatedAt,
	}
}

// --- Getters ---

// ID returns the booking's unique identifier.
func (b *Booking) ID() uuid.UUID { return b.id }

// RenterID returns the renter's user ID.
func (b *Booking) RenterID() uuid.UUID { return b.renterID }

// CarID returns the booked car's ID.
func (b *Booking) CarID() uuid.UUID { return b.carID }

// Dates returns the booked [pickup, return] range.
func (b *Booking) Dates() DateRange { return b.dates }

// PickupDate returns the pickup date.
func (b *Booking) PickupDate() time.Time { return b.dates.Pickup }

// ReturnDate returns the return date.
func (b *Booking) ReturnDate() time.Time { return b.dates.Return }

// TotalPriceCents returns the frozen total price in cents.
func (b *Booking) TotalPriceCents() int64 { return b.totalPriceCents }

// CurrencyCode returns the currency code.
func (b *Booking) CurrencyCode() string { return b.currency }

// Status returns the current booking status.
func (b *Booking) Status() BookingStatus { return b.status }

// PaymentStatus returns the current payment status.
func (b *Booking) PaymentStatus() PaymentStatus { return b.paymentStatus }

// PaymentID returns the gateway payment ID, empty until paid.
func (b *Booking) PaymentID() string { return b.paymentID }

// PaymentMethod returns the payment method, empty until paid.
func (b *Booking) PaymentMethod() string { return b.paymentMethod }

// PaidAt returns the payment timestamp, or nil if unpaid.
func (b *Booking) PaidAt() *time.Time { return b.paidAt }

// Version returns the entity version for optimistic locking.
func (b *Booking) Version() int64 { return b.version }

// CreatedAt returns the creation timestamp.
func (b *Booking) CreatedAt() time.Time { return b.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (b *Booking) UpdatedAt() time.Time { return b.updatedAt }

// --- Behavior ---

// IsPayable reports whether a payment attempt may be made: the booking is
// still pending, not yet paid, and its payment status allows a retry.
func (b *Booking) IsPayable() error {
	if b.status == StatusCancelled {
		return domain.NewValidationError("cannot pay for a cancelled booking")
	}
	if b.status != StatusPending {
		return domain.NewValidationError("only pending bookings can be paid")
	}
	if b.paymentStatus == PaymentPaid {
		return domain.NewValidationError("booking is already paid")
	}
	if !b.paymentStatus.Retryable() {
		return domain.NewValidationError("payment cannot be initiated for this booking")
	}
	return nil
}

// MarkPaidAndConfirm records a successful payment and confirms the booking
// in one step. This is the only path that moves a booking from pending to
// confirmed without the owner-accept transition. Availability must have
// been re-validated by the caller under the car's serialization lock.
func (b *Booking) MarkPaidAndConfirm(paymentID, paymentMethod string, now time.Time) error {
	if err := b.IsPayable(); err != nil {
		return err
	}
	if !b.status.CanTransitionTo(StatusConfirmed) {
		return domain.NewInvalidStateError(string(b.status), string(StatusConfirmed))
	}
	now = now.UTC()
	b.paymentStatus = PaymentPaid
	b.status = StatusConfirmed
	b.paymentID = paymentID
	b.paymentMethod = paymentMethod
	b.paidAt = &now
	b.updatedAt = now
	return nil
}

// FailPayment records a failed payment attempt. The booking stays pending
// so the renter can retry with a fresh order.
func (b *Booking) FailPayment(now time.Time) error {
	if b.status == StatusCancelled {
		return domain.NewValidationError("cannot pay for a cancelled booking")
	}
	if b.paymentStatus == PaymentPaid {
		return domain.NewValidationError("booking is already paid")
	}
	b.paymentStatus = PaymentFailed
	b.updatedAt = now.UTC()
	return nil
}

// Confirm transitions the booking from pending to confirmed via the
// owner-accept path. Payment must already have cleared; availability must
// have been re-validated by the caller under the car's serialization lock.
func (b *Booking) Confirm(now time.Time) error {
	if !b.status.CanTransitionTo(StatusConfirmed) {
		return domain.NewInvalidStateError(string(b.status), string(StatusConfirmed))
	}
	if b.paymentStatus != PaymentPaid {
		return domain.NewValidationError("payment must be completed before confirming")
	}
	b.status = StatusConfirmed
	b.updatedAt = now.UTC()
	return nil
}

// Cancel transitions the booking from pending to cancelled.
func (b *Booking) Cancel(now time.Time) error {
	if !b.status.CanTransitionTo(StatusCancelled) {
		return domain.NewInvalidStateError(string(b.status), string(StatusCancelled))
	}
	b.status = StatusCancelled
	b.updatedAt = now.UTC()
	return nil
}

// Complete transitions the booking from confirmed to completed. Normally
// reached through the bulk auto-completion sweep once the return date
// passes; exposed for rehydrated aggregates and tests.
func (b *Booking) Complete(now time.Time) error {
	if !b.status.CanTransitionTo(StatusCompleted) {
		return domain.NewInvalidStateError(string(b.status), string(StatusCompleted))
	}
	b.status = StatusCompleted
	b.updatedAt = now.UTC()
	return nil
}

// IncrementVersion bumps the version for optimistic locking.
func (b *Booking) IncrementVersion() {
	b.version++
	b.updatedAt = time.Now().UTC()
}
