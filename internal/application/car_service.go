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

// CreateCarRequest holds the owner-supplied data for a new listing.
type CreateCarRequest struct {
	Brand        string   `json:"brand" binding:"required"`
	Model        string   `json:"model" binding:"required"`
	Year         int      `json:"year" binding:"required"`
	PricePerDay  int64    `json:"pricePerDay" binding:"required"`
	Category     string   `json:"category"`
	Transmission string   `json:"transmission"`
	FuelType     string   `json:"fuelType"`
	Seats        int      `json:"seats"`
	Location     string   `json:"location" binding:"required"`
	Description  string   `json:"description"`
	Features     []string `json:"features"`
	Images       []string `json:"images"`
	IsAvailable  *bool    `json:"isAvailable"`
}

// ListCarsQuery narrows the public catalog. When both dates are present
// and parse, cars with a conflicting confirmed booking are filtered out.
type ListCarsQuery struct {
	Brand         string
	Model         string
	Location      string
	AvailableOnly bool
	PickupDate    string
	ReturnDate    string
}

// CarService is the application service for the car catalog.
type CarService struct {
	cars     car.Repository
	bookings booking.Repository
	clk      clock.Clock
	logger   *zap.Logger
}

// NewCarService creates a new CarService.
func NewCarService(cars car.Repository, bookings booking.Repository, clk clock.Clock, logger *zap.Logger) *CarService {
	return &CarService{cars: cars, bookings: bookings, clk: clk, logger: logger}
}

// ListCars retrieves the public catalog, newest first.
func (s *CarService) ListCars(ctx context.Context, query ListCarsQuery) ([]CarDTO, error) {
	cars, err := s.cars.List(ctx, car.Filter{
		Brand:         query.Brand,
		Model:         query.Model,
		Location:      query.Location,
		AvailableOnly: query.AvailableOnly,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list cars: %w", err)
	}

	if query.PickupDate != "" && query.ReturnDate != "" {
		pickup, errP := ParseDate(query.PickupDate)
		ret, errR := ParseDate(query.ReturnDate)
		if errP == nil && errR == nil {
			if dates, err := booking.NewDateRange(pickup, ret); err == nil {
				cars, err = s.filterByAvailability(ctx, cars, dates)
				if err != nil {
					return nil, err
				}
			}
		}
	}

	dtos := make([]CarDTO, len(cars))
	for i, c := range cars {
		dtos[i] = toCarDTO(c)
	}
	return dtos, nil
}

// GetOwnerCars retrieves the owner's listings, newest first.
func (s *CarService) GetOwnerCars(ctx context.Context, ownerID uuid.UUID) ([]CarDTO, error) {
	cars, err := s.cars.FindByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list owner cars: %w", err)
	}
	dtos := make([]CarDTO, len(cars))
	for i, c := range cars {
		dtos[i] = toCarDTO(c)
	}
	return dtos, nil
}

// GetCar retrieves a single car by ID.
func (s *CarService) GetCar(ctx context.Context, id uuid.UUID) (*CarDTO, error) {
	c, err := s.cars.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	result := toCarDTO(c)
	return &result, nil
}

// CreateCar persists a new listing owned by ownerID.
func (s *CarService) CreateCar(ctx context.Context, ownerID uuid.UUID, req CreateCarRequest) (*CarDTO, error) {
	c, err := car.NewCar(ownerID, car.Spec{
		Brand:            req.Brand,
		Model:            req.Model,
		Year:             req.Year,
		PricePerDayCents: req.PricePerDay,
		Category:         req.Category,
		Transmission:     req.Transmission,
		FuelType:         req.FuelType,
		Seats:            req.Seats,
		Location:         req.Location,
		Description:      req.Description,
		Features:         req.Features,
		Images:           req.Images,
		IsAvailable:      req.IsAvailable,
	}, s.clk.Now())
	if err != nil {
		return nil, err
	}

	if err := s.cars.Save(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to save car: %w", err)
	}

	result := toCarDTO(c)
	return &result, nil
}

// UpdateCarStatus flips the owner's listing toggle.
func (s *CarService) UpdateCarStatus(ctx context.Context, ownerID, id uuid.UUID, isAvailable bool) (*CarDTO, error) {
	c, err := s.cars.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.OwnerID() != ownerID {
		return nil, domain.NewForbiddenError("forbidden")
	}

	c.SetAvailability(isAvailable, s.clk.Now())
	if err := s.cars.Update(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to update car: %w", err)
	}

	result := toCarDTO(c)
	return &result, nil
}

// DeleteCar removes a listing. Cars with an active (pending or confirmed,
// not yet returned) booking cannot be deleted; their booking history is
// retained either way.
func (s *CarService) DeleteCar(ctx context.Context, ownerID, id uuid.UUID) error {
	c, err := s.cars.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if c.OwnerID() != ownerID {
		return domain.NewForbiddenError("forbidden")
	}

	active, err := s.bookings.HasActiveForCar(ctx, id, s.clk.Now())
	if err != nil {
		return fmt.Errorf("failed to check active bookings: %w", err)
	}
	if active {
		return domain.NewValidationError("cannot delete car with active bookings")
	}

	return s.cars.Delete(ctx, id)
}

// GetAvailability returns the unavailable-dates calendar for a car over
// [from, to], defaulting to today through +90 days.
func (s *CarService) GetAvailability(ctx context.Context, carID uuid.UUID, from, to string) (*AvailabilityDTO, error) {
	if _, err := s.cars.FindByID(ctx, carID); err != nil {
		return nil, err
	}

	now := s.clk.Now()
	start := now
	end := now.Add(90 * 24 * time.Hour)
	if from != "" {
		parsed, err := ParseDate(from)
		if err != nil {
			return nil, domain.NewValidationError("invalid date range")
		}
		start = parsed
	}
	if to != "" {
		parsed, err := ParseDate(to)
		if err != nil {
			return nil, domain.NewValidationError("invalid date range")
		}
		end = parsed
	}
	if end.Before(start) {
		return nil, domain.NewValidationError("invalid date range")
	}

	engine := availability.NewEngine(s.bookings)
	dates, err := engine.UnavailableDates(ctx, carID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to compute unavailable dates: %w", err)
	}

	return &AvailabilityDTO{
		CarID:            carID,
		From:             start.UTC().Format("2006-01-02"),
		To:               end.UTC().Format("2006-01-02"),
		UnavailableDates: dates,
	}, nil
}

func (s *CarService) filterByAvailability(ctx context.Context, cars []*car.Car, dates booking.DateRange) ([]*car.Car, error) {
	engine := availability.NewEngine(s.bookings)
	available := make([]*car.Car, 0, len(cars))
	for _, c := range cars {
		free, err := engine.IsRangeAvailable(ctx, c.ID(), dates, uuid.Nil)
		if err != nil {
			return nil, fmt.Errorf("failed to check availability: %w", err)
		}
		if free {
			available = append(available, c)
		}
	}
	return available, nil
}
