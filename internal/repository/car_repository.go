package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/carhive/service-rental/internal/common/domain"
	carDomain "github.com/carhive/service-rental/internal/domain/car"
)

// CarModel is the GORM model for the cars table.
type CarModel struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OwnerID         uuid.UUID       `gorm:"type:uuid;index;not null"`
	Brand           string          `gorm:"not null;size:100"`
	Model           string          `gorm:"not null;size:100"`
	Year            int             `gorm:""`
	PricePerDay     int64           `gorm:"not null"`
	Category        string          `gorm:"size:50"`
	Transmission    string          `gorm:"size:50"`
	FuelType        string          `gorm:"size:50"`
	Seats           int             `gorm:""`
	Location        string          `gorm:"not null;size:200"`
	Description     string          `gorm:"type:text"`
	Features        json.RawMessage `gorm:"type:jsonb"`
	Images          json.RawMessage `gorm:"type:jsonb"`
	IsAvailable     bool            `gorm:"not null;default:true"`
	CreatedAt       time.Time       `gorm:"not null"`
	UpdatedAt       time.Time       `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (CarModel) TableName() string {
	return "cars"
}

// GormCarRepository is the GORM-based implementation of the car Repository.
type GormCarRepository struct {
	db *gorm.DB
}

// NewGormCarRepository creates a new GormCarRepository.
func NewGormCarRepository(db *gorm.DB) *GormCarRepository {
	return &GormCarRepository{db: db}
}

// FindByID retrieves a car by its unique identifier.
func (r *GormCarRepository) FindByID(ctx context.Context, id uuid.UUID) (*carDomain.Car, error) {
	var model CarModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Car", id.String())
		}
		return nil, fmt.Errorf("failed to find car by ID: %w", err)
	}
	return toDomainCar(&model)
}

// FindByIDs retrieves the cars with the given IDs, unordered.
func (r *GormCarRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*carDomain.Car, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var models []CarModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find cars by IDs: %w", err)
	}
	return toDomainCars(models)
}

// FindByOwnerID retrieves an owner's cars, newest first.
func (r *GormCarRepository) FindByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]*carDomain.Car, error) {
	var models []CarModel
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find owner cars: %w", err)
	}
	return toDomainCars(models)
}

// OwnerCarIDs retrieves the IDs of an owner's cars.
func (r *GormCarRepository) OwnerCarIDs(ctx context.Context, ownerID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&CarModel{}).
		Where("owner_id = ?", ownerID).
		Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to list owner car IDs: %w", err)
	}
	return ids, nil
}

// List retrieves cars matching the filter, newest first.
func (r *GormCarRepository) List(ctx context.Context, filter carDomain.Filter) ([]*carDomain.Car, error) {
	q := r.db.WithContext(ctx).Model(&CarModel{})
	if filter.Brand != "" {
		q = q.Where("brand ILIKE ?", filter.Brand)
	}
	if filter.Model != "" {
		q = q.Where("model ILIKE ?", filter.Model)
	}
	if filter.Location != "" {
		q = q.Where("location ILIKE ?", filter.Location)
	}
	if filter.AvailableOnly {
		q = q.Where("is_available = ?", true)
	}

	var models []CarModel
	if err := q.Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list cars: %w", err)
	}
	return toDomainCars(models)
}

// Save persists a new car.
func (r *GormCarRepository) Save(ctx context.Context, c *carDomain.Car) error {
	model, err := toCarModel(c)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save car: %w", err)
	}
	return nil
}

// Update persists changes to an existing car.
func (r *GormCarRepository) Update(ctx context.Context, c *carDomain.Car) error {
	model, err := toCarModel(c)
	if err != nil {
		return err
	}
	result := r.db.WithContext(ctx).
		Model(&CarModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]interface{}{
			"is_available": model.IsAvailable,
			"updated_at":   model.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update car: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("Car", model.ID.String())
	}
	return nil
}

// Delete removes a car. Bookings referencing it are retained.
func (r *GormCarRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&CarModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete car: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("Car", id.String())
	}
	return nil
}

// --- Conversion helpers ---

func toCarModel(c *carDomain.Car) (*CarModel, error) {
	featuresJSON, err := json.Marshal(c.Features())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal features: %w", err)
	}
	imagesJSON, err := json.Marshal(c.Images())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal images: %w", err)
	}

	return &CarModel{
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
		Features:     featuresJSON,
		Images:       imagesJSON,
		IsAvailable:  c.IsAvailable(),
		CreatedAt:    c.CreatedAt(),
		UpdatedAt:    c.UpdatedAt(),
	}, nil
}

func toDomainCar(m *CarModel) (*carDomain.Car, error) {
	var features []string
	if len(m.Features) > 0 {
		if err := json.Unmarshal(m.Features, &features); err != nil {
			return nil, fmt.Errorf("failed to unmarshal features: %w", err)
		}
	}
	var images []string
	if len(m.Images) > 0 {
		if err := json.Unmarshal(m.Images, &images); err != nil {
			return nil, fmt.Errorf("failed to unmarshal images: %w", err)
		}
	}

	return carDomain.ReconstructCar(
		m.ID,
		m.OwnerID,
		m.Brand,
		m.Model,
		m.Year,
		m.PricePerDay,
		m.Category,
		m.Transmission,
		m.FuelType,
		m.Seats,
		m.Location,
		m.Description,
		features,
		images,
		m.IsAvailable,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}

func toDomainCars(models []CarModel) ([]*carDomain.Car, error) {
	cars := make([]*carDomain.Car, len(models))
	for i := range models {
		c, err := toDomainCar(&models[i])
		if err != nil {
			return nil, err
		}
		cars[i] = c
	}
	return cars, nil
}
