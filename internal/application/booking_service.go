package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/carhive/service-rental/internal/common/clock"
	"github.com/carhive/service-rental/internal/common/domain"
	"github.com/carhive/service-rental/internal/domain/availability"
	"github.com/carhive/service-rental/internal/domain/booking"
	"github.com/carhive/service-rental/internal/domain/car"
)

// CreateBookingRequest holds the data needed to create a new booking.
// Dates accept RFC 3339 timestamps or bare YYYY-MM-DD dates.
type CreateBookingRequest struct {
	CarID      uuid.UUID `json:"carId" binding:"required"`
	PickupDate string    `json:"pickupDate" binding:"required"`
	ReturnDate string    `json:"returnDate" binding:"required"`
}

// BookingService is the application service orchestrating the booking
// lifecycle: creation, status transitions, auto-completion and revenue.
type BookingService struct {
	bookings  booking.Repository
	cars      car.Repository
	publisher EventPublisher
	clk       clock.Clock
	logger    *zap.Logger
}

// NewBookingService creates a new BookingService.
func NewBookingService(
	bookings booking.Repository,
	cars car.Repository,
	publisher EventPublisher,
	clk clock.Clock,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		bookings:  bookings,
		cars:      cars,
		publisher: publisher,
		clk:       clk,
		logger:    logger,
	}
}

// CreateBooking validates the request against the car and current
// confirmed bookings and persists a pending/unpaid booking with its price
// frozen.
func (s *BookingService) CreateBooking(ctx context.Context, renterID uuid.UUID, req CreateBookingRequest) (*BookingDTO, error) {
	c, err := s.cars.FindByID(ctx, req.CarID)
	if err != nil {
		return nil, err
	}

	pickup, err := ParseDate(req.PickupDate)
	if err != nil {
		return nil, domain.NewValidationError("invalid pickup or return date")
	}
	ret, err := ParseDate(req.ReturnDate)
	if err != nil {
		return nil, domain.NewValidationError("invalid pickup or return date")
	}
	dates, err := booking.NewDateRange(pickup, ret)
	if err != nil {
		return nil, err
	}

	engine := availability.NewEngine(s.bookings)
	free, err := engine.IsRangeAvailable(ctx, c.ID(), dates, uuid.Nil)
	if err != nil {
		return nil, fmt.Errorf("failed to check availability: %w", err)
	}
	if !free {
		return nil, domain.NewConflictError("car is not available for the selected dates")
	}

	bk, err := booking.NewBooking(renterID, c.ID(), c.OwnerID(), c.PricePerDayCents(), dates, s.clk.Now())
	if err != nil {
		return nil, err
	}

	if err := s.bookings.Save(ctx, bk); err != nil {
		return nil, fmt.Errorf("failed to save booking: %w", err)
	}

	publishEvent(ctx, s.publisher, s.logger, booking.TopicBookingEvents, booking.EventBookingCreated, bk.ID().String(), booking.CreatedEvent{
		BookingID:       bk.ID(),
		CarID:           bk.CarID(),
		RenterID:        bk.RenterID(),
		PickupDate:      bk.PickupDate(),
		ReturnDate:      bk.ReturnDate(),
		TotalPriceCents: bk.TotalPriceCents(),
		Currency:        bk.CurrencyCode(),
		OccurredAt:      s.clk.Now(),
	})

	result := toBookingDTO(bk)
	return &result, nil
}

// AutoCompleteBookings transitions every confirmed booking whose return
// date has passed to completed, as one predicate-based bulk update. It is
// idempotent and runs before every booking read.
func (s *BookingService) AutoCompleteBookings(ctx context.Context) error {
	if err := s.bookings.CompleteExpired(ctx, s.clk.Now()); err != nil {
		return fmt.Errorf("failed to auto-complete bookings: %w", err)
	}
	return nil
}

// GetMyBookings retrieves the renter's bookings, newest first, with their
// cars embedded.
func (s *BookingService) GetMyBookings(ctx context.Context, renterID uuid.UUID) ([]BookingDTO, error) {
	if err := s.AutoCompleteBookings(ctx); err != nil {
		return nil, err
	}

	bookings, err := s.bookings.FindByRenterID(ctx, renterID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return s.withCars(ctx, bookings)
}

// GetOwnerBookings retrieves bookings for all of the owner's cars, newest
// first, with the cars embedded.
func (s *BookingService) GetOwnerBookings(ctx context.Context, ownerID uuid.UUID) ([]BookingDTO, error) {
	if err := s.AutoCompleteBookings(ctx); err != nil {
		return nil, err
	}

	carIDs, err := s.cars.OwnerCarIDs(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list owner cars: %w", err)
	}
	if len(carIDs) == 0 {
		return []BookingDTO{}, nil
	}

	bookings, err := s.bookings.FindByCarIDs(ctx, carIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list owner bookings: %w", err)
	}
	return s.withCars(ctx, bookings)
}

// UpdateBookingStatus applies an owner-requested transition: accept
// (confirm) or reject (cancel) a pending booking. Confirmation requires
// the booking to be paid and its slot re-validated under the car's lock,
// excluding the booking's own range.
func (s *BookingService) UpdateBookingStatus(ctx context.Context, ownerID, bookingID uuid.UUID, status string) (*BookingDTO, error) {
	if err := s.AutoCompleteBookings(ctx); err != nil {
		return nil, err
	}

	target, err := booking.ParseBookingStatus(status)
	if err != nil || (target != booking.StatusConfirmed && target != booking.StatusCancelled) {
		return nil, domain.NewValidationError("invalid booking status")
	}

	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	c, err := s.cars.FindByID(ctx, bk.CarID())
	if err != nil {
		return nil, err
	}
	if c.OwnerID() != ownerID {
		return nil, domain.NewForbiddenError("forbidden")
	}

	if target == booking.StatusConfirmed {
		bk, err = s.confirmUnderLock(ctx, bk.ID(), bk.CarID())
		if err != nil {
			return nil, err
		}
		publishEvent(ctx, s.publisher, s.logger, booking.TopicBookingEvents, booking.EventBookingConfirmed, bk.ID().String(), booking.ConfirmedEvent{
			BookingID:  bk.ID(),
			CarID:      bk.CarID(),
			RenterID:   bk.RenterID(),
			PaymentID:  bk.PaymentID(),
			OccurredAt: s.clk.Now(),
		})
	} else {
		if err := bk.Cancel(s.clk.Now()); err != nil {
			return nil, err
		}
		bk.IncrementVersion()
		if err := s.bookings.Update(ctx, bk); err != nil {
			return nil, err
		}
		publishEvent(ctx, s.publisher, s.logger, booking.TopicBookingEvents, booking.EventBookingCancelled, bk.ID().String(), booking.CancelledEvent{
			BookingID:   bk.ID(),
			CarID:       bk.CarID(),
			CancelledBy: ownerID,
			OccurredAt:  s.clk.Now(),
		})
	}

	result := toBookingDTO(bk)
	return &result, nil
}

// CancelMyBooking lets a renter cancel their own booking while it is
// still pending.
func (s *BookingService) CancelMyBooking(ctx context.Context, renterID, bookingID uuid.UUID) (*BookingDTO, error) {
	if err := s.AutoCompleteBookings(ctx); err != nil {
		return nil, err
	}

	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if bk.RenterID() != renterID {
		return nil, domain.NewForbiddenError("forbidden")
	}

	if err := bk.Cancel(s.clk.Now()); err != nil {
		return nil, err
	}
	bk.IncrementVersion()
	if err := s.bookings.Update(ctx, bk); err != nil {
		return nil, err
	}

	publishEvent(ctx, s.publisher, s.logger, booking.TopicBookingEvents, booking.EventBookingCancelled, bk.ID().String(), booking.CancelledEvent{
		BookingID:   bk.ID(),
		CarID:       bk.CarID(),
		CancelledBy: renterID,
		OccurredAt:  s.clk.Now(),
	})

	result := toBookingDTO(bk)
	return &result, nil
}

// GetOwnerRevenue aggregates earned revenue over the owner's cars:
// confirmed, paid bookings whose pickup date has arrived, grouped by UTC
// calendar month and zero-filled. Future-dated confirmed+paid bookings are
// excluded until their pickup date passes.
func (s *BookingService) GetOwnerRevenue(ctx context.Context, ownerID uuid.UUID, year int) (*RevenueDTO, error) {
	if err := s.AutoCompleteBookings(ctx); err != nil {
		return nil, err
	}

	result := &RevenueDTO{Year: year, Months: emptyMonths()}

	carIDs, err := s.cars.OwnerCarIDs(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list owner cars: %w", err)
	}
	if len(carIDs) == 0 {
		return result, nil
	}

	rows, err := s.bookings.AggregateRevenue(ctx, booking.RevenueFilter{
		CarIDs: carIDs,
		Now:    s.clk.Now(),
		Year:   year,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate revenue: %w", err)
	}

	for _, row := range rows {
		if row.Month < 1 || row.Month > 12 {
			continue
		}
		result.Months[row.Month-1] = row
		result.TotalRevenue += row.RevenueCents
		result.TotalBookings += row.Bookings
	}
	return result, nil
}

// confirmUnderLock re-reads the booking inside the car's serialization
// lock, re-validates payment and availability, and persists the
// confirmation. Two concurrent confirmations for overlapping ranges on the
// same car cannot both pass this section.
func (s *BookingService) confirmUnderLock(ctx context.Context, bookingID, carID uuid.UUID) (*booking.Booking, error) {
	var confirmed *booking.Booking
	err := s.bookings.WithCarLock(ctx, carID, func(r booking.Repository) error {
		bk, err := r.FindByID(ctx, bookingID)
		if err != nil {
			return err
		}

		if bk.PaymentStatus() != booking.PaymentPaid {
			return domain.NewValidationError("payment must be completed before confirming")
		}

		engine := availability.NewEngine(r)
		free, err := engine.IsRangeAvailable(ctx, carID, bk.Dates(), bk.ID())
		if err != nil {
			return fmt.Errorf("failed to check availability: %w", err)
		}
		if !free {
			return domain.NewConflictError("car is not available for the selected dates")
		}

		if err := bk.Confirm(s.clk.Now()); err != nil {
			return err
		}
		bk.IncrementVersion()
		if err := r.Update(ctx, bk); err != nil {
			return err
		}
		confirmed = bk
		return nil
	})
	if err != nil {
		return nil, err
	}
	return confirmed, nil
}

func (s *BookingService) withCars(ctx context.Context, bookings []*booking.Booking) ([]BookingDTO, error) {
	idSet := make(map[uuid.UUID]struct{}, len(bookings))
	ids := make([]uuid.UUID, 0, len(bookings))
	for _, bk := range bookings {
		if _, ok := idSet[bk.CarID()]; !ok {
			idSet[bk.CarID()] = struct{}{}
			ids = append(ids, bk.CarID())
		}
	}

	carsByID := make(map[uuid.UUID]CarDTO, len(ids))
	if len(ids) > 0 {
		cars, err := s.cars.FindByIDs(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("failed to load cars: %w", err)
		}
		for _, c := range cars {
			carsByID[c.ID()] = toCarDTO(c)
		}
	}

	dtos := make([]BookingDTO, len(bookings))
	for i, bk := range bookings {
		dto := toBookingDTO(bk)
		if c, ok := carsByID[bk.CarID()]; ok {
			carCopy := c
			dto.Car = &carCopy
		}
		dtos[i] = dto
	}
	return dtos, nil
}

func emptyMonths() []booking.MonthlyRevenue {
	months := make([]booking.MonthlyRevenue, 12)
	for i := range months {
		months[i] = booking.MonthlyRevenue{Month: i + 1}
	}
	return months
}

// ParseDate parses an RFC 3339 timestamp or a bare YYYY-MM-DD date (UTC).
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
