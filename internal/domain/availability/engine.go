// Package availability decides whether a car is free for a date range and
// derives the unavailable-dates calendar. Only confirmed bookings block a
// range; pending, cancelled and completed bookings never do.
package availability

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/carhive/service-rental/internal/domain/booking"
)

// Engine answers availability questions over the booking store.
type Engine struct {
	bookings booking.Repository
}

// NewEngine creates an Engine over the given booking repository. Pass a
// transaction-scoped repository to evaluate availability under a car lock.
func NewEngine(bookings booking.Repository) *Engine {
	return &Engine{bookings: bookings}
}

// IsRangeAvailable reports whether no confirmed booking for the car
// overlaps r, using inclusive-inclusive semantics (both boundary days are
// occupied). exclude, when not uuid.Nil, ignores that booking so a booking
// can re-validate its own slot.
func (e *Engine) IsRangeAvailable(ctx context.Context, carID uuid.UUID, r booking.DateRange, exclude uuid.UUID) (bool, error) {
	overlap, err := e.bookings.HasConfirmedOverlap(ctx, carID, r, exclude)
	if err != nil {
		return false, err
	}
	return !overlap, nil
}

// UnavailableDates returns every calendar day covered by a confirmed
// booking whose span intersects [from, to], as sorted, deduplicated
// YYYY-MM-DD strings. Each day is normalized to UTC midnight before
// enumeration so timezone drift cannot split or shift days. A zero-length
// query range (from == to) still reports a single-day overlap.
func (e *Engine) UnavailableDates(ctx context.Context, carID uuid.UUID, from, to time.Time) ([]string, error) {
	bookings, err := e.bookings.FindConfirmedIntersecting(ctx, carID, from.UTC(), to.UTC())
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	for _, bk := range bookings {
		bk.Dates().EachDay(func(day time.Time) {
			seen[day.Format("2006-01-02")] = struct{}{}
		})
	}

	dates := make([]string, 0, len(seen))
	for d := range seen {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return dates, nil
}
