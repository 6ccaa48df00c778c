package booking

// TotalPriceCents computes the booking price: the number of billable days
// (duration divided by 24h, rounded up) times the car's daily rate. The
// result is computed once at creation and frozen on the booking.
func TotalPriceCents(pricePerDayCents int64, dates DateRange) int64 {
	return dates.Days() * pricePerDayCents
}
