package booking

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBooking(t *testing.T) *Booking {
	t.Helper()
	dates, err := NewDateRange(day(2024, 7, 1), day(2024, 7, 4))
	require.NoError(t, err)

	bk, err := NewBooking(uuid.New(), uuid.New(), uuid.New(), 10000, dates, day(2024, 6, 20))
	require.NoError(t, err)
	return bk
}

func TestNewBooking(t *testing.T) {
	t.Run("freezes total price at creation", func(t *testing.T) {
		bk := newTestBooking(t)
		assert.Equal(t, int64(30000), bk.TotalPriceCents())
		assert.Equal(t, "USD", bk.CurrencyCode())
		assert.Equal(t, StatusPending, bk.Status())
		assert.Equal(t, PaymentUnpaid, bk.PaymentStatus())
		assert.Equal(t, int64(1), bk.Version())
	})

	t.Run("rejects booking own car", func(t *testing.T) {
		dates, err := NewDateRange(day(2024, 7, 1), day(2024, 7, 4))
		require.NoError(t, err)

		ownerID := uuid.New()
		_, err = NewBooking(ownerID, uuid.New(), ownerID, 10000, dates, day(2024, 6, 20))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "own cars")
	})

	t.Run("rejects non-positive price", func(t *testing.T) {
		dates, err := NewDateRange(day(2024, 7, 1), day(2024, 7, 4))
		require.NoError(t, err)

		_, err = NewBooking(uuid.New(), uuid.New(), uuid.New(), 0, dates, day(2024, 6, 20))
		assert.Error(t, err)
	})
}

func TestBooking_MarkPaidAndConfirm(t *testing.T) {
	bk := newTestBooking(t)
	now := day(2024, 6, 21)

	require.NoError(t, bk.MarkPaidAndConfirm("pay_123", "card", now))

	assert.Equal(t, StatusConfirmed, bk.Status())
	assert.Equal(t, PaymentPaid, bk.PaymentStatus())
	assert.Equal(t, "pay_123", bk.PaymentID())
	assert.Equal(t, "card", bk.PaymentMethod())
	require.NotNil(t, bk.PaidAt())
	assert.Equal(t, now, *bk.PaidAt())

	// Second payment is rejected.
	err := bk.MarkPaidAndConfirm("pay_456", "card", now)
	assert.Error(t, err)
	assert.Equal(t, "pay_123", bk.PaymentID())
}

func TestBooking_IsPayable(t *testing.T) {
	t.Run("fresh pending booking is payable", func(t *testing.T) {
		bk := newTestBooking(t)
		assert.NoError(t, bk.IsPayable())
	})

	t.Run("failed payment can be retried", func(t *testing.T) {
		bk := newTestBooking(t)
		require.NoError(t, bk.FailPayment(day(2024, 6, 21)))
		assert.Equal(t, StatusPending, bk.Status())
		assert.NoError(t, bk.IsPayable())
	})

	t.Run("cancelled booking is not payable", func(t *testing.T) {
		bk := newTestBooking(t)
		require.NoError(t, bk.Cancel(day(2024, 6, 21)))
		err := bk.IsPayable()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cancelled")
	})

	t.Run("paid booking is not payable again", func(t *testing.T) {
		bk := newTestBooking(t)
		require.NoError(t, bk.MarkPaidAndConfirm("pay_1", "card", day(2024, 6, 21)))
		assert.Error(t, bk.IsPayable())
	})
}

func TestBooking_Confirm(t *testing.T) {
	t.Run("requires completed payment", func(t *testing.T) {
		bk := newTestBooking(t)
		err := bk.Confirm(day(2024, 6, 21))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "payment must be completed")
		assert.Equal(t, StatusPending, bk.Status())
	})

	t.Run("confirms a paid pending booking", func(t *testing.T) {
		paidAt := day(2024, 6, 21)
		bk := ReconstructBooking(
			uuid.New(), uuid.New(), uuid.New(),
			DateRange{Pickup: day(2024, 7, 1), Return: day(2024, 7, 4)},
			30000, "USD",
			StatusPending, PaymentPaid,
			"pay_1", "card", &paidAt,
			2, day(2024, 6, 20), paidAt,
		)
		require.NoError(t, bk.Confirm(day(2024, 6, 22)))
		assert.Equal(t, StatusConfirmed, bk.Status())
	})
}

func TestBooking_Cancel(t *testing.T) {
	bk := newTestBooking(t)
	require.NoError(t, bk.Cancel(day(2024, 6, 21)))
	assert.Equal(t, StatusCancelled, bk.Status())

	// Terminal: no further transitions.
	assert.Error(t, bk.Cancel(day(2024, 6, 22)))
	assert.Error(t, bk.Complete(day(2024, 6, 22)))
	assert.Error(t, bk.MarkPaidAndConfirm("pay_1", "card", day(2024, 6, 22)))
}

func TestBooking_Complete(t *testing.T) {
	bk := newTestBooking(t)

	// Pending bookings never complete directly.
	assert.Error(t, bk.Complete(day(2024, 7, 5)))

	require.NoError(t, bk.MarkPaidAndConfirm("pay_1", "card", day(2024, 6, 21)))
	require.NoError(t, bk.Complete(day(2024, 7, 5)))
	assert.Equal(t, StatusCompleted, bk.Status())
	assert.True(t, bk.Status().IsTerminal())
}

func TestBooking_FailPayment(t *testing.T) {
	bk := newTestBooking(t)
	require.NoError(t, bk.FailPayment(day(2024, 6, 21)))
	assert.Equal(t, PaymentFailed, bk.PaymentStatus())
	assert.Equal(t, StatusPending, bk.Status())

	// A paid booking cannot be failed afterwards.
	require.NoError(t, bk.MarkPaidAndConfirm("pay_1", "card", day(2024, 6, 21)))
	assert.Error(t, bk.FailPayment(day(2024, 6, 22)))
}

func TestBooking_IncrementVersion(t *testing.T) {
	bk := newTestBooking(t)
	assert.Equal(t, int64(1), bk.Version())
	bk.IncrementVersion()
	assert.Equal(t, int64(2), bk.Version())
}

func TestReconstructBooking(t *testing.T) {
	id := uuid.New()
	renterID := uuid.New()
	carID := uuid.New()
	paidAt := day(2024, 6, 21)
	dates := DateRange{Pickup: day(2024, 7, 1), Return: day(2024, 7, 4)}

	bk := ReconstructBooking(
		id, renterID, carID, dates,
		30000, "USD",
		StatusConfirmed, PaymentPaid,
		"pay_123", "card", &paidAt,
		3, day(2024, 6, 20), paidAt,
	)

	assert.Equal(t, id, bk.ID())
	assert.Equal(t, renterID, bk.RenterID())
	assert.Equal(t, carID, bk.CarID())
	assert.Equal(t, StatusConfirmed, bk.Status())
	assert.Equal(t, PaymentPaid, bk.PaymentStatus())
	assert.Equal(t, int64(3), bk.Version())

	require.NoError(t, bk.Complete(day(2024, 7, 5)))
	assert.Equal(t, StatusCompleted, bk.Status())
}
