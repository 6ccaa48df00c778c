package application

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carhive/service-rental/internal/domain/booking"
)

func createPendingBooking(t *testing.T, stack *testStack, renterID uuid.UUID) *BookingDTO {
	t.Helper()
	c := stack.seedCar(t, uuid.New(), 10000)
	dto, err := stack.booking.CreateBooking(context.Background(), renterID, CreateBookingRequest{
		CarID:      c.ID(),
		PickupDate: "2024-07-01",
		ReturnDate: "2024-07-04",
	})
	require.NoError(t, err)
	return dto
}

func TestPaymentService_CreateOrder(t *testing.T) {
	now := day(2024, 6, 1)

	t.Run("issues opaque order for pending booking", func(t *testing.T) {
		stack := newTestStack(t, now)
		renterID := uuid.New()
		created := createPendingBooking(t, stack, renterID)

		order, err := stack.payment.CreateOrder(context.Background(), renterID, created.ID)
		require.NoError(t, err)

		assert.True(t, strings.HasPrefix(order.OrderID, "order_"))
		assert.Equal(t, int64(30000), order.Amount)
		assert.Equal(t, "USD", order.Currency)

		// No booking state change.
		got, err := stack.bookings.FindByID(context.Background(), created.ID)
		require.NoError(t, err)
		assert.Equal(t, booking.StatusPending, got.Status())
		assert.Equal(t, booking.PaymentUnpaid, got.PaymentStatus())

		// A fresh order every call.
		second, err := stack.payment.CreateOrder(context.Background(), renterID, created.ID)
		require.NoError(t, err)
		assert.NotEqual(t, order.OrderID, second.OrderID)
	})

	t.Run("other renters are forbidden", func(t *testing.T) {
		stack := newTestStack(t, now)
		created := createPendingBooking(t, stack, uuid.New())

		_, err := stack.payment.CreateOrder(context.Background(), uuid.New(), created.ID)
		assert.Error(t, err)
	})

	t.Run("cancelled booking is rejected", func(t *testing.T) {
		stack := newTestStack(t, now)
		renterID := uuid.New()
		created := createPendingBooking(t, stack, renterID)
		_, err := stack.booking.CancelMyBooking(context.Background(), renterID, created.ID)
		require.NoError(t, err)

		_, err = stack.payment.CreateOrder(context.Background(), renterID, created.ID)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cancelled")
	})
}

func TestPaymentService_VerifyPayment(t *testing.T) {
	now := day(2024, 6, 1)

	t.Run("pays and confirms atomically", func(t *testing.T) {
		stack := newTestStack(t, now)
		renterID := uuid.New()
		created := createPendingBooking(t, stack, renterID)

		dto, err := stack.payment.VerifyPayment(context.Background(), renterID, VerifyPaymentRequest{
			BookingID:     created.ID,
			PaymentID:     "pay_abc",
			PaymentMethod: "card",
		})
		require.NoError(t, err)

		assert.Equal(t, "confirmed", dto.BookingStatus)
		assert.Equal(t, "paid", dto.PaymentStatus)
		assert.Equal(t, "pay_abc", dto.PaymentID)
		assert.Equal(t, "card", dto.PaymentMethod)
		require.NotNil(t, dto.PaidAt)
		assert.Equal(t, now, *dto.PaidAt)
		assert.Contains(t, stack.publisher.eventTypes(), booking.EventBookingConfirmed)
	})

	t.Run("cancelled booking is rejected and payment unchanged", func(t *testing.T) {
		stack := newTestStack(t, now)
		renterID := uuid.New()
		created := createPendingBooking(t, stack, renterID)
		_, err := stack.booking.CancelMyBooking(context.Background(), renterID, created.ID)
		require.NoError(t, err)

		_, err = stack.payment.VerifyPayment(context.Background(), renterID, VerifyPaymentRequest{
			BookingID:     created.ID,
			PaymentID:     "pay_abc",
			PaymentMethod: "card",
		})
		require.Error(t, err)

		got, err := stack.bookings.FindByID(context.Background(), created.ID)
		require.NoError(t, err)
		assert.Equal(t, booking.StatusCancelled, got.Status())
		assert.Equal(t, booking.PaymentUnpaid, got.PaymentStatus())
	})

	t.Run("already paid booking is rejected", func(t *testing.T) {
		stack := newTestStack(t, now)
		renterID := uuid.New()
		created := createPendingBooking(t, stack, renterID)
		stack.payAndConfirm(t, renterID, created.ID)

		_, err := stack.payment.VerifyPayment(context.Background(), renterID, VerifyPaymentRequest{
			BookingID:     created.ID,
			PaymentID:     "pay_other",
			PaymentMethod: "card",
		})
		assert.Error(t, err)
	})

	t.Run("other renters are forbidden", func(t *testing.T) {
		stack := newTestStack(t, now)
		created := createPendingBooking(t, stack, uuid.New())

		_, err := stack.payment.VerifyPayment(context.Background(), uuid.New(), VerifyPaymentRequest{
			BookingID:     created.ID,
			PaymentID:     "pay_abc",
			PaymentMethod: "card",
		})
		assert.Error(t, err)
	})
}

func TestPaymentService_FailPayment(t *testing.T) {
	now := day(2024, 6, 1)

	t.Run("marks failed, booking stays pending and retryable", func(t *testing.T) {
		stack := newTestStack(t, now)
		renterID := uuid.New()
		created := createPendingBooking(t, stack, renterID)

		dto, err := stack.payment.FailPayment(context.Background(), renterID, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "pending", dto.BookingStatus)
		assert.Equal(t, "failed", dto.PaymentStatus)
		assert.Contains(t, stack.publisher.eventTypes(), booking.EventBookingPaymentFailed)

		// A retry can still succeed.
		verified, err := stack.payment.VerifyPayment(context.Background(), renterID, VerifyPaymentRequest{
			BookingID:     created.ID,
			PaymentID:     "pay_retry",
			PaymentMethod: "card",
		})
		require.NoError(t, err)
		assert.Equal(t, "confirmed", verified.BookingStatus)
		assert.Equal(t, "paid", verified.PaymentStatus)
	})

	t.Run("paid booking cannot be failed", func(t *testing.T) {
		stack := newTestStack(t, now)
		renterID := uuid.New()
		created := createPendingBooking(t, stack, renterID)
		stack.payAndConfirm(t, renterID, created.ID)

		_, err := stack.payment.FailPayment(context.Background(), renterID, created.ID)
		assert.Error(t, err)
	})
}
