package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// MonthlyRevenue is one month's earned-revenue aggregate for an owner.
type MonthlyRevenue struct {
	Month        int   `json:"month"`
	RevenueCents int64 `json:"revenue"`
	Bookings     int64 `json:"bookings"`
}

// RevenueFilter restricts the revenue aggregation. Now is always applied
// as an upper bound on pickup dates (earned revenue only); Year, when
// non-zero, additionally restricts to that UTC calendar year.
type RevenueFilter struct {
	CarIDs []uuid.UUID
	Now    time.Time
	Year   int
}

// Repository defines the persistence contract for booking aggregates.
type Repository interface {
	// FindByID retrieves a booking by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Booking, error)

	// FindByRenterID retrieves a renter's bookings, newest first.
	FindByRenterID(ctx context.Context, renterID uuid.UUID) ([]*Booking, error)

	// FindByCarIDs retrieves bookings for any of the given cars, newest first.
	FindByCarIDs(ctx context.Context, carIDs []uuid.UUID) ([]*Booking, error)

	// Save persists a new booking.
	Save(ctx context.Context, booking *Booking) error

	// Update persists changes to an existing booking with optimistic locking.
	Update(ctx context.Context, booking *Booking) error

	// HasConfirmedOverlap reports whether a confirmed booking for the car
	// overlaps the range under inclusive-inclusive semantics, ignoring the
	// booking identified by exclude when it is non-nil (uuid.Nil = none).
	HasConfirmedOverlap(ctx context.Context, carID uuid.UUID, r DateRange, exclude uuid.UUID) (bool, error)

	// FindConfirmedIntersecting retrieves every confirmed booking for the
	// car whose range intersects [from, to] inclusive.
	FindConfirmedIntersecting(ctx context.Context, carID uuid.UUID, from, to time.Time) ([]*Booking, error)

	// CompleteExpired transitions every confirmed booking whose return
	// date is strictly before now to completed, as a single predicate
	// update. Idempotent and safe to run concurrently.
	CompleteExpired(ctx context.Context, now time.Time) error

	// HasActiveForCar reports whether the car has a pending or confirmed
	// booking that has not yet been returned.
	HasActiveForCar(ctx context.Context, carID uuid.UUID, now time.Time) (bool, error)

	// AggregateRevenue sums confirmed+paid earned revenue per UTC calendar
	// month over the filtered bookings. Months with no activity are absent
	// from the result; callers zero-fill.
	AggregateRevenue(ctx context.Context, filter RevenueFilter) ([]MonthlyRevenue, error)

	// WithCarLock runs fn inside a transaction that holds an exclusive
	// lock on the car's row, serializing confirming writes per car. The
	// repository passed to fn operates within that transaction.
	WithCarLock(ctx context.Context, carID uuid.UUID, fn func(r Repository) error) error
}
