package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/carhive/service-rental/internal/common/domain"
	bookingDomain "github.com/carhive/service-rental/internal/domain/booking"
)

// BookingModel is the GORM model for the bookings table. Bookings are
// never hard-deleted; history backs the revenue report.
type BookingModel struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey"`
	RenterID        uuid.UUID  `gorm:"type:uuid;index;not null"`
	CarID           uuid.UUID  `gorm:"type:uuid;index:idx_bookings_car_status;not null"`
	PickupDate      time.Time  `gorm:"not null"`
	ReturnDate      time.Time  `gorm:"not null"`
	TotalPriceCents int64      `gorm:"not null"`
	Currency        string     `gorm:"not null;size:3;default:'USD'"`
	Status          string     `gorm:"not null;size:20;index:idx_bookings_car_status"`
	PaymentStatus   string     `gorm:"not null;size:20"`
	PaymentID       string     `gorm:"size:100"`
	PaymentMethod   string     `gorm:"size:50"`
	PaidAt          *time.Time `gorm:""`
	Version         int64      `gorm:"not null;default:1"`
	CreatedAt       time.Time  `gorm:"not null"`
	UpdatedAt       time.Time  `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (BookingModel) TableName() string {
	return "bookings"
}

// GormBookingRepository is the GORM-based implementation of the booking
// Repository.
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GormBookingRepository.
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

// FindByID retrieves a booking by its unique identifier.
func (r *GormBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", id.String())
		}
		return nil, fmt.Errorf("failed to find booking by ID: %w", err)
	}
	return toDomainBooking(&model)
}

// FindByRenterID retrieves a renter's bookings, newest first.
func (r *GormBookingRepository) FindByRenterID(ctx context.Context, renterID uuid.UUID) ([]*bookingDomain.Booking, error) {
	var models []BookingModel
	if err := r.db.WithContext(ctx).
		Where("renter_id = ?", renterID).
		Order("created_at DESC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find renter bookings: %w", err)
	}
	return toDomainBookings(models)
}

// FindByCarIDs retrieves bookings for any of the given cars, newest first.
func (r *GormBookingRepository) FindByCarIDs(ctx context.Context, carIDs []uuid.UUID) ([]*bookingDomain.Booking, error) {
	var models []BookingModel
	if err := r.db.WithContext(ctx).
		Where("car_id IN ?", carIDs).
		Order("created_at DESC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find car bookings: %w", err)
	}
	return toDomainBookings(models)
}

// Save persists a new booking.
func (r *GormBookingRepository) Save(ctx context.Context, bk *bookingDomain.Booking) error {
	model := toBookingModel(bk)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save booking: %w", err)
	}
	return nil
}

// Update persists changes to an existing booking with optimistic locking.
func (r *GormBookingRepository) Update(ctx context.Context, bk *bookingDomain.Booking) error {
	model := toBookingModel(bk)

	// Only update if the version matches (current version - 1, since
	// IncrementVersion was called before Update).
	expectedVersion := bk.Version() - 1
	result := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"status":         model.Status,
			"payment_status": model.PaymentStatus,
			"payment_id":     model.PaymentID,
			"payment_method": model.PaymentMethod,
			"paid_at":        model.PaidAt,
			"version":        model.Version,
			"updated_at":     model.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update booking: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("booking was modified by another transaction")
	}
	return nil
}

// HasConfirmedOverlap reports whether a confirmed booking for the car
// overlaps [r.Pickup, r.Return] inclusive-inclusive, ignoring exclude.
func (r *GormBookingRepository) HasConfirmedOverlap(ctx context.Context, carID uuid.UUID, dates bookingDomain.DateRange, exclude uuid.UUID) (bool, error) {
	q := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Where("car_id = ? AND status = ?", carID, bookingDomain.StatusConfirmed.String()).
		Where("pickup_date <= ? AND return_date >= ?", dates.Return, dates.Pickup)
	if exclude != uuid.Nil {
		q = q.Where("id <> ?", exclude)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check overlap: %w", err)
	}
	return count > 0, nil
}

// FindConfirmedIntersecting retrieves every confirmed booking for the car
// whose span intersects [from, to] inclusive.
func (r *GormBookingRepository) FindConfirmedIntersecting(ctx context.Context, carID uuid.UUID, from, to time.Time) ([]*bookingDomain.Booking, error) {
	var models []BookingModel
	if err := r.db.WithContext(ctx).
		Where("car_id = ? AND status = ?", carID, bookingDomain.StatusConfirmed.String()).
		Where("pickup_date <= ? AND return_date >= ?", to, from).
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find intersecting bookings: %w", err)
	}
	return toDomainBookings(models)
}

// CompleteExpired bulk-transitions past-due confirmed bookings to
// completed with a single predicate update.
func (r *GormBookingRepository) CompleteExpired(ctx context.Context, now time.Time) error {
	err := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Where("status = ? AND return_date < ?", bookingDomain.StatusConfirmed.String(), now).
		Updates(map[string]interface{}{
			"status":     bookingDomain.StatusCompleted.String(),
			"updated_at": now,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to complete expired bookings: %w", err)
	}
	return nil
}

// HasActiveForCar reports whether the car has a pending or confirmed
// booking that has not yet been returned.
func (r *GormBookingRepository) HasActiveForCar(ctx context.Context, carID uuid.UUID, now time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Where("car_id = ? AND status IN ? AND return_date >= ?",
			carID,
			[]string{bookingDomain.StatusPending.String(), bookingDomain.StatusConfirmed.String()},
			now,
		).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check active bookings: %w", err)
	}
	return count > 0, nil
}

// AggregateRevenue sums earned revenue per UTC calendar month over the
// filtered bookings.
func (r *GormBookingRepository) AggregateRevenue(ctx context.Context, filter bookingDomain.RevenueFilter) ([]bookingDomain.MonthlyRevenue, error) {
	type row struct {
		Month    int
		Revenue  int64
		Bookings int64
	}

	q := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Select("EXTRACT(MONTH FROM pickup_date AT TIME ZONE 'UTC')::int AS month, "+
			"COALESCE(SUM(total_price_cents), 0) AS revenue, COUNT(*) AS bookings").
		Where("car_id IN ? AND status = ? AND payment_status = ?",
			filter.CarIDs,
			bookingDomain.StatusConfirmed.String(),
			bookingDomain.PaymentPaid.String(),
		).
		Where("pickup_date <= ?", filter.Now)

	if filter.Year != 0 {
		start := time.Date(filter.Year, time.January, 1, 0, 0, 0, 0, time.UTC)
		end := start.AddDate(1, 0, 0)
		q = q.Where("pickup_date >= ? AND pickup_date < ?", start, end)
	}

	var rows []row
	if err := q.Group("month").Order("month").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate revenue: %w", err)
	}

	result := make([]bookingDomain.MonthlyRevenue, len(rows))
	for i, rw := range rows {
		result[i] = bookingDomain.MonthlyRevenue{
			Month:        rw.Month,
			RevenueCents: rw.Revenue,
			Bookings:     rw.Bookings,
		}
	}
	return result, nil
}

// WithCarLock runs fn inside a transaction holding a row lock on the car,
// serializing confirming writes for that car. The availability re-check
// and the confirming write happen under the same lock, which closes the
// check-then-confirm race between concurrent confirmations.
func (r *GormBookingRepository) WithCarLock(ctx context.Context, carID uuid.UUID, fn func(repo bookingDomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var locked CarModel
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").
			Where("id = ?", carID).
			First(&locked).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.NewNotFoundError("Car", carID.String())
			}
			return fmt.Errorf("failed to lock car: %w", err)
		}
		return fn(NewGormBookingRepository(tx))
	})
}

// --- Conversion helpers ---

func toBookingModel(bk *bookingDomain.Booking) *BookingModel {
	return &BookingModel{
		ID:              bk.ID(),
		RenterID:        bk.RenterID(),
		CarID:           bk.CarID(),
		PickupDate:      bk.PickupDate(),
		ReturnDate:      bk.ReturnDate(),
		TotalPriceCents: bk.TotalPriceCents(),
		Currency:        bk.CurrencyCode(),
		Status:          bk.Status().String(),
		PaymentStatus:   bk.PaymentStatus().String(),
		PaymentID:       bk.PaymentID(),
		PaymentMethod:   bk.PaymentMethod(),
		PaidAt:          bk.PaidAt(),
		Version:         bk.Version(),
		CreatedAt:       bk.CreatedAt(),
		UpdatedAt:       bk.UpdatedAt(),
	}
}

func toDomainBooking(m *BookingModel) (*bookingDomain.Booking, error) {
	status, err := bookingDomain.ParseBookingStatus(m.Status)
	if err != nil {
		return nil, err
	}
	paymentStatus, err := bookingDomain.ParsePaymentStatus(m.PaymentStatus)
	if err != nil {
		return nil, err
	}

	return bookingDomain.ReconstructBooking(
		m.ID,
		m.RenterID,
		m.CarID,
		bookingDomain.DateRange{Pickup: m.PickupDate.UTC(), Return: m.ReturnDate.UTC()},
		m.TotalPriceCents,
		m.Currency,
		status,
		paymentStatus,
		m.PaymentID,
		m.PaymentMethod,
		m.PaidAt,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}

func toDomainBookings(models []BookingModel) ([]*bookingDomain.Booking, error) {
	bookings := make([]*bookingDomain.Booking, len(models))
	for i := range models {
		bk, err := toDomainBooking(&models[i])
		if err != nil {
			return nil, err
		}
		bookings[i] = bk
	}
	return bookings, nil
}
