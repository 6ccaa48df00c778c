package booking

import (
	"time"

	"github.com/google/uuid"
)

// Topic and event types for booking lifecycle events.
const (
	TopicBookingEvents = "booking.events"

	EventBookingCreated       = "booking.created"
	EventBookingConfirmed     = "booking.confirmed"
	EventBookingCancelled     = "booking.cancelled"
	EventBookingPaymentFailed = "booking.payment_failed"
)

// CreatedEvent is published when a renter places a new pending booking.
type CreatedEvent struct {
	BookingID       uuid.UUID `json:"booking_id"`
	CarID           uuid.UUID `json:"car_id"`
	RenterID        uuid.UUID `json:"renter_id"`
	PickupDate      time.Time `json:"pickup_date"`
	ReturnDate      time.Time `json:"return_date"`
	TotalPriceCents int64     `json:"total_price_cents"`
	Currency        string    `json:"currency"`
	OccurredAt      time.Time `json:"occurred_at"`
}

// ConfirmedEvent is published when a booking reaches confirmed, whether
// through payment verification or an owner accept.
type ConfirmedEvent struct {
	BookingID  uuid.UUID `json:"booking_id"`
	CarID      uuid.UUID `json:"car_id"`
	RenterID   uuid.UUID `json:"renter_id"`
	PaymentID  string    `json:"payment_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// CancelledEvent is published when a pending booking is cancelled.
type CancelledEvent struct {
	BookingID   uuid.UUID `json:"booking_id"`
	CarID       uuid.UUID `json:"car_id"`
	CancelledBy uuid.UUID `json:"cancelled_by"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// PaymentFailedEvent is published when a payment attempt is marked failed.
type PaymentFailedEvent struct {
	BookingID  uuid.UUID `json:"booking_id"`
	RenterID   uuid.UUID `json:"renter_id"`
	OccurredAt time.Time `json:"occurred_at"`
}
