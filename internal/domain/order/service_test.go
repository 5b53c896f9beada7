package order_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockpilot/internal/core/apperror"
	"stockpilot/internal/core/types"
	"stockpilot/internal/domain/order"
	"stockpilot/internal/infrastructure/storage/memory"
	"stockpilot/pkg/numerator"
)

func newOrderService() *order.Service {
	store := memory.NewStore()
	return order.NewService(memory.NewOrderRepository(store),
		numerator.NewInMemory(), memory.NewTxManager(), memory.NewAuditRecorder(store))
}

func sampleOrder(t *testing.T, svc *order.Service) *order.Order {
	t.Helper()
	o := order.New("PO-123", "ACME Corp")
	o.AddLine("widget", types.NewQuantityFromFloat64(3), types.MustMoney("19.99"))
	require.NoError(t, svc.Create(context.Background(), o))
	return o
}

func TestCreate_NumbersAndTotals(t *testing.T) {
	svc := newOrderService()
	o := order.New("PO-123", "ACME Corp")
	o.AddLine("widget", types.NewQuantityFromFloat64(3), types.MustMoney("19.99"))
	o.AddLine("gizmo", types.NewQuantityFromFloat64(1.5), types.MustMoney("10.00"))

	require.NoError(t, svc.Create(context.Background(), o))

	assert.True(t, strings.HasPrefix(o.Number, "SO-"), "number %q", o.Number)
	assert.Equal(t, order.StatusPendingDelivery, o.Status)
	assert.Equal(t, "74.97", o.Total.StringFixed(2))
	require.Len(t, o.History, 1)
	assert.Equal(t, string(order.StatusPendingDelivery), o.History[0].Status)
}

func TestCreate_Validation(t *testing.T) {
	svc := newOrderService()
	ctx := context.Background()

	t.Run("no customer", func(t *testing.T) {
		o := order.New("", "  ")
		o.AddLine("widget", types.NewQuantityFromFloat64(1), types.MustMoney("1.00"))
		err := svc.Create(ctx, o)
		assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
	})

	t.Run("no lines", func(t *testing.T) {
		o := order.New("PO-1", "ACME Corp")
		err := svc.Create(ctx, o)
		assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
	})

	t.Run("negative price", func(t *testing.T) {
		o := order.New("PO-1", "ACME Corp")
		o.AddLine("widget", types.NewQuantityFromFloat64(1), types.MustMoney("-0.01"))
		err := svc.Create(ctx, o)
		assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
	})
}

func TestUpdateStatus_AnyKnownStatusIsReachable(t *testing.T) {
	// Tracking labels, not a state machine: stages may arrive out of order.
	tests := []struct {
		name string
		path []order.Status
	}{
		{"forward", []order.Status{order.StatusPendingInvoice, order.StatusDelivery, order.StatusDone}},
		{"backward", []order.Status{order.StatusDone, order.StatusPendingDelivery}},
		{"repeat", []order.Status{order.StatusDelivery, order.StatusDelivery}},
		{"skip ahead", []order.Status{order.StatusDone}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newOrderService()
			o := sampleOrder(t, svc)

			for _, status := range tt.path {
				var err error
				o, err = svc.UpdateStatus(context.Background(), o.ID, status, "")
				require.NoError(t, err)
				assert.Equal(t, status, o.Status)
			}
			// creation record plus one per change
			assert.Len(t, o.History, 1+len(tt.path))
		})
	}
}

func TestUpdateStatus_UnknownStatus(t *testing.T) {
	svc := newOrderService()
	o := sampleOrder(t, svc)

	_, err := svc.UpdateStatus(context.Background(), o.ID, order.Status("shipped"), "")
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeUnknownStatus))

	got, err := svc.Get(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusPendingDelivery, got.Status)
	assert.Len(t, got.History, 1)
}

func TestUpdate_RecomputesTotal(t *testing.T) {
	svc := newOrderService()
	ctx := context.Background()
	o := sampleOrder(t, svc)

	o.Lines = o.Lines[:0]
	o.AddLine("bigger widget", types.NewQuantityFromFloat64(2), types.MustMoney("100.00"))
	require.NoError(t, svc.Update(ctx, o))

	got, err := svc.Get(ctx, o.ID)
	require.NoError(t, err)
	require.Len(t, got.Lines, 1)
	assert.Equal(t, "200.00", got.Total.StringFixed(2))
}

func TestUpdate_DoneIsFrozen(t *testing.T) {
	svc := newOrderService()
	ctx := context.Background()
	o := sampleOrder(t, svc)

	o, err := svc.UpdateStatus(ctx, o.ID, order.StatusDone, "")
	require.NoError(t, err)

	o.CustomerName = "Someone Else"
	err = svc.Update(ctx, o)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeIllegalOperation))
}

func TestDelete_DoneIsKept(t *testing.T) {
	svc := newOrderService()
	ctx := context.Background()

	open := sampleOrder(t, svc)
	require.NoError(t, svc.Delete(ctx, open.ID))
	_, err := svc.Get(ctx, open.ID)
	assert.True(t, apperror.IsNotFound(err))

	done := sampleOrder(t, svc)
	_, err = svc.UpdateStatus(ctx, done.ID, order.StatusDone, "")
	require.NoError(t, err)

	err = svc.Delete(ctx, done.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeIllegalOperation))
}

func TestAddLine_DecimalPrecision(t *testing.T) {
	o := order.New("PO-1", "ACME Corp")
	// 0.1 + 0.2 style traps must not leak into money math.
	o.AddLine("a", types.NewQuantityFromFloat64(0.1), types.MustMoney("1.00"))
	o.AddLine("b", types.NewQuantityFromFloat64(0.2), types.MustMoney("1.00"))
	assert.Equal(t, "0.30", o.Total.StringFixed(2))
}
