package application

import (
	"time"

	"github.com/google/uuid"

	"github.com/carhive/service-rental/internal/domain/booking"
	"github.com/carhive/service-rental/internal/domain/car"
)

// CarDTO is the response representation of a car listing.
type CarDTO struct {
	ID           uuid.UUID `json:"id"`
	OwnerID      uuid.UUID `json:"ownerId"`
	Brand        string    `json:"brand"`
	Model        string    `json:"model"`
	Year         int       `json:"year"`
	PricePerDay  int64     `json:"pricePerDay"`
	Category     string    `json:"category,omitempty"`
	Transmission string    `json:"transmission,omitempty"`
	FuelType     string    `json:"fuelType,omitempty"`
	Seats        int       `json:"seats,omitempty"`
	Location     string    `json:"location"`
	Description  string    `json:"description,omitempty"`
	Features     []string  `json:"features,omitempty"`
	Images       []string  `json:"images,omitempty"`
	IsAvailable  bool      `json:"isAvailable"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// BookingDTO is the response representation of a booking. Car is embedded
// on list endpoints.
type BookingDTO struct {
	ID            uuid.UUID  `json:"id"`
	RenterID      uuid.UUID  `json:"renterId"`
	CarID         uuid.UUID  `json:"carId"`
	PickupDate    time.Time  `json:"pickupDate"`
	ReturnDate    time.Time  `json:"returnDate"`
	TotalPrice    int64      `json:"totalPrice"`
	Currency      string     `json:"currency"`
	BookingStatus string     `json:"bookingStatus"`
	PaymentStatus string     `json:"paymentStatus"`
	PaymentID     string     `json:"paymentId,omitempty"`
	PaymentMethod string     `json:"paymentMethod,omitempty"`
	PaidAt        *time.Time `json:"paidAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
	Car           *CarDTO    `json:"car,omitempty"`
}

// RevenueDTO is the owner revenue report: earned revenue per UTC month,
// zero-filled, months ordered 1 through 12.
type RevenueDTO struct {
	Year          int                      `json:"year"`
	TotalRevenue  int64                    `json:"totalRevenue"`
	TotalBookings int64                    `json:"totalBookings"`
	Months        []booking.MonthlyRevenue `json:"months"`
}

// AvailabilityDTO is the public unavailable-dates calendar for a car.
type AvailabilityDTO struct {
	CarID            uuid.UUID `json:"carId"`
	From             string    `json:"from"`
	To               string    `json:"to"`
	UnavailableDates []string  `json:"unavailableDates"`
}

// PaymentOrderDTO is the client-facing handle for a simulated payment.
type PaymentOrderDTO struct {
	OrderID  string `json:"orderId"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

func toCarDTO(c *car.Car) CarDTO {
	return CarDTO{
		ID:           c.ID(),
		OwnerID:      c.OwnerID(),
		Brand:        c.Brand(),
		Model:        c.Model(),
		Year:         c.Year(),
		PricePerDay:  c.PricePerDayCents(),
		Category:     c.Category(),
		Transmission: c.Transmission(),
		FuelType:     c.FuelType(),
		Seats:        c.Seats(),
		Location:     c.Location(),
		Description:  c.Description(),
		Features:     c.Features(),
		Images:       c.Images(),
		IsAvailable:  c.IsAvailable(),
		CreatedAt:    c.CreatedAt(),
		UpdatedAt:    c.UpdatedAt(),
	}
}

func toBookingDTO(bk *booking.Booking) BookingDTO {
	return BookingDTO{
		ID:            bk.ID(),
		RenterID:      bk.RenterID(),
		CarID:         bk.CarID(),
		PickupDate:    bk.PickupDate(),
		ReturnDate:    bk.ReturnDate(),
		TotalPrice:    bk.TotalPriceCents(),
		Currency:      bk.CurrencyCode(),
		BookingStatus: bk.Status().String(),
		PaymentStatus: bk.PaymentStatus().String(),
		PaymentID:     bk.PaymentID(),
		PaymentMethod: bk.PaymentMethod(),
		PaidAt:        bk.PaidAt(),
		CreatedAt:     bk.CreatedAt(),
		UpdatedAt:     bk.UpdatedAt(),
	}
}
