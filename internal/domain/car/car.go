package car

import (
	"time"

	"github.com/google/uuid"

	"github.com/carhive/service-rental/internal/common/domain"
)

// Car is the aggregate root for a listed vehicle. The owner reference is
// immutable after creation; the availability flag is the owner's listing
// toggle and is distinct from date-range availability.
type Car struct {
	id           uuid.UUID
	ownerID      uuid.UUID
	brand        string
	model        string
	year         int
	priceCents   int64
	category     string
	transmission string
	fuelType     string
	seats        int
	location     string
	description  string
	features     []string
	images       []string
	isAvailable  bool
	createdAt    time.Time
	updatedAt    time.Time
}

// Spec holds the owner-supplied listing attributes.
type Spec struct {
	Brand            string
	Model            string
	Year             int
	PricePerDayCents int64
	Category         string
	Transmission     string
	FuelType         string
	Seats            int
	Location         string
	Description      string
	Features         []string
	Images           []string
	IsAvailable      *bool
}

// NewCar creates a listed Car owned by ownerID. New listings default to
// available unless spec.IsAvailable is set.
func NewCar(ownerID uuid.UUID, spec Spec, now time.Time) (*Car, error) {
	if ownerID == uuid.Nil {
		return nil, domain.NewValidationError("owner ID is required")
	}
	if spec.Brand == "" {
		return nil, domain.NewValidationError("brand is required")
	}
	if spec.Model == "" {
		return nil, domain.NewValidationError("model is required")
	}
	if spec.Location == "" {
		return nil, domain.NewValidationError("location is required")
	}
	if spec.PricePerDayCents <= 0 {
		return nil, domain.NewValidationError("price per day must be positive")
	}

	available := true
	if spec.IsAvailable != nil {
		available = *spec.IsAvailable
	}

	now = now.UTC()
	return &Car{
		id:           uuid.New(),
		ownerID:      ownerID,
		brand:        spec.Brand,
		model:        spec.Model,
		year:         spec.Year,
		priceCents:   spec.PricePerDayCents,
		category:     spec.Category,
		transmission: spec.Transmission,
		fuelType:     spec.FuelType,
		seats:        spec.Seats,
		location:     spec.Location,
		description:  spec.Description,
		features:     spec.Features,
		images:       spec.Images,
		isAvailable:  available,
		createdAt:    now,
		updatedAt:    now,
	}, nil
}

// ReconstructCar rebuilds a Car from persistence data (no validation).
func ReconstructCar(
	id, ownerID uuid.UUID,
	brand, model string,
	year int,
	priceCents int64,
	category, transmission, fuelType string,
	seats int,
	location, description string,
	features, images []string,
	isAvailable bool,
	createdAt, updatedAt time.Time,
) *Car {
	return &Car{
		id:           id,
		ownerID:      ownerID,
		brand:        brand,
		model:        model,
		year:         year,
		priceCents:   priceCents,
		category:     category,
		transmission: transmission,
		fuelType:     fuelType,
		seats:        seats,
		location:     location,
		description:  description,
		features:     features,
		images:       images,
		isAvailable:  isAvailable,
		createdAt:    createdAt,
		updatedAt:    updatedAt,
	}
}

// ID returns the car's unique identifier.
func (c *Car) ID() uuid.UUID { return c.id }

// OwnerID returns the owning user's ID.
func (c *Car) OwnerID() uuid.UUID { return c.ownerID }

// Brand returns the manufacturer name.
func (c *Car) Brand() string { return c.brand }

// Model returns the model name.
func (c *Car) Model() string { return c.model }

// Year returns the model year.
func (c *Car) Year() int { return c.year }

// PricePerDayCents returns the daily rate in cents.
func (c *Car) PricePerDayCents() int64 { return c.priceCents }

// Category returns the vehicle category.
func (c *Car) Category() string { return c.category }

// Transmission returns the transmission type.
func (c *Car) Transmission() string { return c.transmission }

// FuelType returns the fuel type.
func (c *Car) FuelType() string { return c.fuelType }

// Seats returns the seat count.
func (c *Car) Seats() int { return c.seats }

// Location returns the pickup location.
func (c *Car) Location() string { return c.location }

// Description returns the free-text description.
func (c *Car) Description() string { return c.description }

// Features returns the feature list.
func (c *Car) Features() []string { return c.features }

// Images returns the image references.
func (c *Car) Images() []string { return c.images }

// IsAvailable returns the owner's listing toggle.
func (c *Car) IsAvailable() bool { return c.isAvailable }

// CreatedAt returns the creation timestamp.
func (c *Car) CreatedAt() time.Time { return c.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (c *Car) UpdatedAt() time.Time { return c.updatedAt }

// SetAvailability flips the owner's listing toggle.
func (c *Car) SetAvailability(available bool, now time.Time) {
	c.isAvailable = available
	c.updatedAt = now.UTC()
}
