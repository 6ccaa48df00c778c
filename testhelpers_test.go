//go:build integration

package main_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap/zaptest"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/carhive/service-rental/internal/application"
	"github.com/carhive/service-rental/internal/common/clock"
	carDomain "github.com/carhive/service-rental/internal/domain/car"
	"github.com/carhive/service-rental/internal/repository"
)

// testInfra holds shared test infrastructure.
type testInfra struct {
	DB      *gorm.DB
	Cleanup func()
}

// rentalStack holds wired-up rental service components over a fixed clock.
type rentalStack struct {
	Bookings *application.BookingService
	Cars     *application.CarService
	Payments *application.PaymentService

	BookingRepo *repository.GormBookingRepository
	CarRepo     *repository.GormCarRepository
}

// setupPostgres starts a PostgreSQL testcontainer and returns a connected
// GORM DB with the schema migrated.
func setupPostgres(t *testing.T) *testInfra {
	t.Helper()
	ctx := context.Background()

	pgReq := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "test_rental",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: pgReq,
		Started:          true,
	})
	require.NoError(t, err, "failed to start PostgreSQL container")

	pgHost, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	pgPort, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("host=%s port=%s user=test password=test dbname=test_rental sslmode=disable", pgHost, pgPort.Port())

	// Poll until GORM can actually connect and ping.
	var db *gorm.DB
	require.Eventually(t, func() bool {
		var err error
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err != nil {
			return false
		}
		sqlDB, err := db.DB()
		if err != nil {
			return false
		}
		return sqlDB.Ping() == nil
	}, 30*time.Second, 1*time.Second, "PostgreSQL not ready for connections")

	require.NoError(t, db.AutoMigrate(&repository.CarModel{}, &repository.BookingModel{}))

	cleanup := func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate PostgreSQL container: %v", err)
		}
	}

	return &testInfra{DB: db, Cleanup: cleanup}
}

// setupRentalStack wires up the application services against the test
// database with a fixed clock.
func setupRentalStack(t *testing.T, db *gorm.DB, now time.Time) *rentalStack {
	t.Helper()
	log := zaptest.NewLogger(t)
	clk := clock.Fixed(now)

	bookingRepo := repository.NewGormBookingRepository(db)
	carRepo := repository.NewGormCarRepository(db)
	publisher := application.NopPublisher{}

	return &rentalStack{
		Bookings:    application.NewBookingService(bookingRepo, carRepo, publisher, clk, log),
		Cars:        application.NewCarService(carRepo, bookingRepo, clk, log),
		Payments:    application.NewPaymentService(bookingRepo, publisher, clk, log),
		BookingRepo: bookingRepo,
		CarRepo:     carRepo,
	}
}

// seedCar inserts a car owned by ownerID and returns it.
func seedCar(t *testing.T, stack *rentalStack, ownerID uuid.UUID, pricePerDayCents int64) *carDomain.Car {
	t.Helper()
	c, err := carDomain.NewCar(ownerID, carDomain.Spec{
		Brand:            "Toyota",
		Model:            "Corolla",
		Year:             2022,
		PricePerDayCents: pricePerDayCents,
		Location:         "Austin",
	}, time.Now().UTC())
	require.NoError(t, err)
	require.NoError(t, stack.CarRepo.Save(context.Background(), c))
	return c
}

// createAndPay places a booking and settles its simulated payment.
func createAndPay(t *testing.T, stack *rentalStack, carID uuid.UUID, pickup, ret string) *application.BookingDTO {
	t.Helper()
	renterID := uuid.New()

	created, err := stack.Bookings.CreateBooking(context.Background(), renterID, application.CreateBookingRequest{
		CarID:      carID,
		PickupDate: pickup,
		ReturnDate: ret,
	})
	require.NoError(t, err)

	paid, err := stack.Payments.VerifyPayment(context.Background(), renterID, application.VerifyPaymentRequest{
		BookingID:     created.ID,
		PaymentID:     "pay_" + uuid.NewString()[:8],
		PaymentMethod: "card",
	})
	require.NoError(t, err)
	return paid
}
