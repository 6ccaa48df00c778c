package booking

import (
	"time"

	"github.com/carhive/service-rental/internal/common/domain"
)

const msPerDay = 24 * time.Hour

// DateRange is the inclusive-inclusive [Pickup, Return] interval of a
// booking. Both boundary days count as occupied: the car is out on the
// pickup day and back on the return day, so two ranges conflict whenever
// neither ends strictly before the other begins.
type DateRange struct {
	Pickup time.Time
	Return time.Time
}

// NewDateRange builds a validated range. The return date must be strictly
// after the pickup date; both are normalized to UTC.
func NewDateRange(pickup, ret time.Time) (DateRange, error) {
	r := DateRange{Pickup: pickup.UTC(), Return: ret.UTC()}
	if !r.Return.After(r.Pickup) {
		return DateRange{}, domain.NewValidationError("return date must be after pickup date")
	}
	return r, nil
}

// Overlaps reports whether two ranges conflict under inclusive-inclusive
// semantics: a.Pickup <= b.Return && a.Return >= b.Pickup.
func (r DateRange) Overlaps(other DateRange) bool {
	return !r.Pickup.After(other.Return) && !r.Return.Before(other.Pickup)
}

// Days returns the number of billable days, the duration divided by 24h
// rounded up. A partial day bills as a whole one.
func (r DateRange) Days() int64 {
	d := r.Return.Sub(r.Pickup)
	days := int64(d / msPerDay)
	if d%msPerDay != 0 {
		days++
	}
	return days
}

// EachDay calls fn with every calendar day the range covers, inclusive of
// both endpoints, each normalized to UTC midnight.
func (r DateRange) EachDay(fn func(day time.Time)) {
	start := DayUTC(r.Pickup)
	end := DayUTC(r.Return)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		fn(d)
	}
}

// DayUTC truncates t to UTC midnight of its calendar day.
func DayUTC(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
