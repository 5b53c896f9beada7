package receiving_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockpilot/internal/core/apperror"
	"stockpilot/internal/core/entity"
	"stockpilot/internal/core/id"
	"stockpilot/internal/core/types"
	"stockpilot/internal/domain/ledger"
	"stockpilot/internal/domain/receiving"
	"stockpilot/internal/infrastructure/storage/memory"
	"stockpilot/pkg/numerator"
)

func newReceivingFixture(t *testing.T) (*receiving.Service, *ledger.Service, *entity.InventoryItem) {
	t.Helper()
	store := memory.NewStore()
	txm := memory.NewTxManager()
	stock := ledger.NewService(memory.NewLedgerRepository(store), txm)
	receipts := receiving.NewService(memory.NewReceiptRepository(store),
		stock, numerator.NewInMemory(), txm, memory.NewAuditRecorder(store))

	item := entity.NewInventoryItem(entity.ItemKey{
		Plant:           "1000",
		StorageLocation: "0001",
		MaterialCode:    "MAT-001",
	}, "test material")
	item.CurrentStock = types.NewQuantityFromFloat64(10)
	item.MinimumStock = types.NewQuantityFromFloat64(2)

	created, err := stock.CreateItem(context.Background(), item)
	require.NoError(t, err)
	return receipts, stock, created
}

func TestReceiptCreate_PostsStockMovement(t *testing.T) {
	receipts, stock, item := newReceivingFixture(t)
	ctx := context.Background()

	r := receiving.New(item.ID, "Steelworks AG", types.NewQuantityFromFloat64(25))
	require.NoError(t, receipts.Create(ctx, r))

	assert.True(t, strings.HasPrefix(r.Number, "GR-"), "number %q", r.Number)

	onHand, err := stock.CurrentStock(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 35.0, onHand.Float64())

	movements, err := stock.Movements(ctx, item.ID, ledger.MovementFilter{})
	require.NoError(t, err)
	require.NotEmpty(t, movements)
	latest := movements[0]
	assert.Equal(t, entity.MovementReceipt, latest.Kind)
	assert.Equal(t, r.ID, latest.RecorderID)
	assert.Equal(t, "GoodsReceipt", latest.RecorderType)
}

func TestReceiptCreate_Validation(t *testing.T) {
	receipts, _, item := newReceivingFixture(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		receipt *receiving.Receipt
	}{
		{"zero quantity", receiving.New(item.ID, "Vendor", 0)},
		{"negative quantity", receiving.New(item.ID, "Vendor", types.NewQuantityFromFloat64(5).Neg())},
		{"no vendor", receiving.New(item.ID, "  ", types.NewQuantityFromFloat64(5))},
		{"nil item", receiving.New(id.Nil(), "Vendor", types.NewQuantityFromFloat64(5))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := receipts.Create(ctx, tt.receipt)
			require.Error(t, err)
			assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
		})
	}
}

func TestReceiptCreate_UnknownItem(t *testing.T) {
	receipts, _, _ := newReceivingFixture(t)

	r := receiving.New(id.New(), "Vendor", types.NewQuantityFromFloat64(5))
	err := receipts.Create(context.Background(), r)
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestReceiptNumbers_StrictSequence(t *testing.T) {
	receipts, _, item := newReceivingFixture(t)
	ctx := context.Background()

	first := receiving.New(item.ID, "Vendor", types.NewQuantityFromFloat64(1))
	require.NoError(t, receipts.Create(ctx, first))
	second := receiving.New(item.ID, "Vendor", types.NewQuantityFromFloat64(1))
	require.NoError(t, receipts.Create(ctx, second))

	assert.NotEqual(t, first.Number, second.Number)
	assert.Greater(t, second.Number, first.Number)
}
