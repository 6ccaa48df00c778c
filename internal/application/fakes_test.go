package application

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/carhive/service-rental/internal/common/domain"
	"github.com/carhive/service-rental/internal/common/kafka"
	"github.com/carhive/service-rental/internal/domain/booking"
	"github.com/carhive/service-rental/internal/domain/car"
)

// memBookingRepo is an in-memory booking.Repository. Reads return clones
// so in-flight mutations only land through Update, which enforces the
// same version check as the SQL implementation.
type memBookingRepo struct {
	mu       sync.Mutex
	bookings map[uuid.UUID]*booking.Booking
}

func newMemBookingRepo() *memBookingRepo {
	return &memBookingRepo{bookings: make(map[uuid.UUID]*booking.Booking)}
}

func cloneBooking(bk *booking.Booking) *booking.Booking {
	return booking.ReconstructBooking(
		bk.ID(), bk.RenterID(), bk.CarID(), bk.Dates(),
		bk.TotalPriceCents(), bk.CurrencyCode(),
		bk.Status(), bk.PaymentStatus(),
		bk.PaymentID(), bk.PaymentMethod(), bk.PaidAt(),
		bk.Version(), bk.CreatedAt(), bk.UpdatedAt(),
	)
}

func (r *memBookingRepo) FindByID(_ context.Context, id uuid.UUID) (*booking.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	bk, ok := r.bookings[id]
	if !ok {
		return nil, domain.NewNotFoundError("Booking", id.String())
	}
	return cloneBooking(bk), nil
}

func (r *memBookingRepo) FindByRenterID(_ context.Context, renterID uuid.UUID) ([]*booking.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*booking.Booking
	for _, bk := range r.bookings {
		if bk.RenterID() == renterID {
			out = append(out, cloneBooking(bk))
		}
	}
	return out, nil
}

func (r *memBookingRepo) FindByCarIDs(_ context.Context, carIDs []uuid.UUID) ([]*booking.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make(map[uuid.UUID]struct{}, len(carIDs))
	for _, id := range carIDs {
		ids[id] = struct{}{}
	}
	var out []*booking.Booking
	for _, bk := range r.bookings {
		if _, ok := ids[bk.CarID()]; ok {
			out = append(out, cloneBooking(bk))
		}
	}
	return out, nil
}

func (r *memBookingRepo) Save(_ context.Context, bk *booking.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bookings[bk.ID()] = cloneBooking(bk)
	return nil
}

func (r *memBookingRepo) Update(_ context.Context, bk *booking.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.bookings[bk.ID()]
	if !ok {
		return domain.NewNotFoundError("Booking", bk.ID().String())
	}
	if stored.Version() != bk.Version()-1 {
		return domain.NewConflictError("booking was modified by another transaction")
	}
	r.bookings[bk.ID()] = cloneBooking(bk)
	return nil
}

func (r *memBookingRepo) HasConfirmedOverlap(_ context.Context, carID uuid.UUID, dates booking.DateRange, exclude uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, bk := range r.bookings {
		if bk.CarID() != carID || bk.Status() != booking.StatusConfirmed {
			continue
		}
		if exclude != uuid.Nil && bk.ID() == exclude {
			continue
		}
		if bk.Dates().Overlaps(dates) {
			return true, nil
		}
	}
	return false, nil
}

func (r *memBookingRepo) FindConfirmedIntersecting(_ context.Context, carID uuid.UUID, from, to time.Time) ([]*booking.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	query := booking.DateRange{Pickup: from, Return: to}
	var out []*booking.Booking
	for _, bk := range r.bookings {
		if bk.CarID() != carID || bk.Status() != booking.StatusConfirmed {
			continue
		}
		if bk.Dates().Overlaps(query) {
			out = append(out, cloneBooking(bk))
		}
	}
	return out, nil
}

func (r *memBookingRepo) CompleteExpired(_ context.Context, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, bk := range r.bookings {
		if bk.Status() == booking.StatusConfirmed && bk.ReturnDate().Before(now) {
			if err := bk.Complete(now); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *memBookingRepo) HasActiveForCar(_ context.Context, carID uuid.UUID, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, bk := range r.bookings {
		if bk.CarID() != carID {
			continue
		}
		active := bk.Status() == booking.StatusPending || bk.Status() == booking.StatusConfirmed
		if active && !bk.ReturnDate().Before(now) {
			return true, nil
		}
	}
	return false, nil
}

func (r *memBookingRepo) AggregateRevenue(_ context.Context, filter booking.RevenueFilter) ([]booking.MonthlyRevenue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make(map[uuid.UUID]struct{}, len(filter.CarIDs))
	for _, id := range filter.CarIDs {
		ids[id] = struct{}{}
	}

	byMonth := make(map[int]*booking.MonthlyRevenue)
	for _, bk := range r.bookings {
		if _, ok := ids[bk.CarID()]; !ok {
			continue
		}
		if bk.Status() != booking.StatusConfirmed {
			continue
		}
		if bk.PaymentStatus() != booking.PaymentPaid {
			continue
		}
		pickup := bk.PickupDate().UTC()
		if pickup.After(filter.Now) {
			continue
		}
		if filter.Year != 0 && pickup.Year() != filter.Year {
			continue
		}
		m := int(pickup.Month())
		row, ok := byMonth[m]
		if !ok {
			row = &booking.MonthlyRevenue{Month: m}
			byMonth[m] = row
		}
		row.RevenueCents += bk.TotalPriceCents()
		row.Bookings++
	}

	var out []booking.MonthlyRevenue
	for m := 1; m <= 12; m++ {
		if row, ok := byMonth[m]; ok {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (r *memBookingRepo) WithCarLock(_ context.Context, _ uuid.UUID, fn func(repo booking.Repository) error) error {
	return fn(r)
}

// memCarRepo is an in-memory car.Repository.
type memCarRepo struct {
	mu   sync.Mutex
	cars map[uuid.UUID]*car.Car
}

func newMemCarRepo() *memCarRepo {
	return &memCarRepo{cars: make(map[uuid.UUID]*car.Car)}
}

func (r *memCarRepo) FindByID(_ context.Context, id uuid.UUID) (*car.Car, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.cars[id]
	if !ok {
		return nil, domain.NewNotFoundError("Car", id.String())
	}
	return c, nil
}

func (r *memCarRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]*car.Car, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*car.Car
	for _, id := range ids {
		if c, ok := r.cars[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *memCarRepo) FindByOwnerID(_ context.Context, ownerID uuid.UUID) ([]*car.Car, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*car.Car
	for _, c := range r.cars {
		if c.OwnerID() == ownerID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *memCarRepo) OwnerCarIDs(_ context.Context, ownerID uuid.UUID) ([]uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []uuid.UUID
	for _, c := range r.cars {
		if c.OwnerID() == ownerID {
			out = append(out, c.ID())
		}
	}
	return out, nil
}

func (r *memCarRepo) List(_ context.Context, filter car.Filter) ([]*car.Car, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*car.Car
	for _, c := range r.cars {
		if filter.Brand != "" && c.Brand() != filter.Brand {
			continue
		}
		if filter.Model != "" && c.Model() != filter.Model {
			continue
		}
		if filter.Location != "" && c.Location() != filter.Location {
			continue
		}
		if filter.AvailableOnly && !c.IsAvailable() {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (r *memCarRepo) Save(_ context.Context, c *car.Car) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cars[c.ID()] = c
	return nil
}

func (r *memCarRepo) Update(_ context.Context, c *car.Car) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.cars[c.ID()]; !ok {
		return domain.NewNotFoundError("Car", c.ID().String())
	}
	r.cars[c.ID()] = c
	return nil
}

func (r *memCarRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.cars[id]; !ok {
		return domain.NewNotFoundError("Car", id.String())
	}
	delete(r.cars, id)
	return nil
}

// capturingPublisher records every published event.
type capturingPublisher struct {
	mu     sync.Mutex
	events []kafka.CloudEvent
}

func (p *capturingPublisher) PublishEvent(_ context.Context, _ string, _ string, event kafka.CloudEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *capturingPublisher) eventTypes() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]string, len(p.events))
	for i, e := range p.events {
		types[i] = e.Type
	}
	return types
}
