package car

import (
	"context"

	"github.com/google/uuid"
)

// Filter narrows catalog listings.
type Filter struct {
	Brand         string
	Model         string
	Location      string
	AvailableOnly bool
}

// Repository defines the persistence contract for car aggregates.
type Repository interface {
	// FindByID retrieves a car by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Car, error)

	// FindByIDs retrieves the cars with the given IDs, unordered.
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*Car, error)

	// FindByOwnerID retrieves an owner's cars, newest first.
	FindByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]*Car, error)

	// OwnerCarIDs retrieves the IDs of an owner's cars.
	OwnerCarIDs(ctx context.Context, ownerID uuid.UUID) ([]uuid.UUID, error)

	// List retrieves cars matching the filter, newest first.
	List(ctx context.Context, filter Filter) ([]*Car, error)

	// Save persists a new car.
	Save(ctx context.Context, car *Car) error

	// Update persists changes to an existing car.
	Update(ctx context.Context, car *Car) error

	// Delete removes a car. Bookings referencing it are retained.
	Delete(ctx context.Context, id uuid.UUID) error
}
