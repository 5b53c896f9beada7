package ledger_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockpilot/internal/core/apperror"
	"stockpilot/internal/core/entity"
	"stockpilot/internal/core/id"
	"stockpilot/internal/core/types"
	"stockpilot/internal/domain/ledger"
	"stockpilot/internal/infrastructure/storage/memory"
)

func newLedgerService(t *testing.T) *ledger.Service {
	t.Helper()
	store := memory.NewStore()
	return ledger.NewService(memory.NewLedgerRepository(store), memory.NewTxManager())
}

func createItem(t *testing.T, svc *ledger.Service, materialCode string, current, minimum float64) *entity.InventoryItem {
	t.Helper()
	item := entity.NewInventoryItem(entity.ItemKey{
		Plant:           "1000",
		StorageLocation: "0001",
		MaterialCode:    materialCode,
	}, "test material "+materialCode)
	item.CurrentStock = types.NewQuantityFromFloat64(current)
	item.MinimumStock = types.NewQuantityFromFloat64(minimum)

	created, err := svc.CreateItem(context.Background(), item)
	require.NoError(t, err)
	return created
}

func TestCreateItem_OpeningStockGoesThroughLedger(t *testing.T) {
	svc := newLedgerService(t)
	ctx := context.Background()

	item := createItem(t, svc, "MAT-001", 50, 10)
	assert.Equal(t, 50.0, item.CurrentStock.Float64())

	movements, err := svc.Movements(ctx, item.ID, ledger.MovementFilter{})
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, entity.MovementAdjustment, movements[0].Kind)
	assert.Equal(t, 50.0, movements[0].Quantity.Float64())
	assert.Equal(t, "OpeningStock", movements[0].RecorderType)
}

func TestCreateItem_DuplicateKey(t *testing.T) {
	svc := newLedgerService(t)
	ctx := context.Background()

	createItem(t, svc, "MAT-001", 0, 0)

	dup := entity.NewInventoryItem(entity.ItemKey{
		Plant:           "1000",
		StorageLocation: "0001",
		MaterialCode:    "MAT-001",
	}, "second copy")
	_, err := svc.CreateItem(ctx, dup)
	require.Error(t, err)
	assert.True(t, apperror.IsDuplicate(err))
}

func TestApplyDelta_FoldsIntoCurrentStock(t *testing.T) {
	svc := newLedgerService(t)
	ctx := context.Background()
	item := createItem(t, svc, "MAT-001", 100, 10)

	corr := entity.Correlation{RecorderID: id.New(), RecorderType: "GoodsReceipt"}

	_, err := svc.ApplyDelta(ctx, item.ID, types.NewQuantityFromFloat64(25), entity.MovementReceipt, corr)
	require.NoError(t, err)

	_, err = svc.ApplyDelta(ctx, item.ID, types.NewQuantityFromFloat64(40).Neg(), entity.MovementReservation, corr)
	require.NoError(t, err)

	stock, err := svc.CurrentStock(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 85.0, stock.Float64())
}

func TestApplyDelta_RejectsNegativeResult(t *testing.T) {
	svc := newLedgerService(t)
	ctx := context.Background()
	item := createItem(t, svc, "MAT-001", 10, 2)

	corr := entity.Correlation{RecorderID: id.New(), RecorderType: "Transfer"}
	_, err := svc.ApplyDelta(ctx, item.ID, types.NewQuantityFromFloat64(11).Neg(), entity.MovementTransferOut, corr)
	require.Error(t, err)
	assert.True(t, apperror.IsInsufficientStock(err))

	// The failed delta must leave both the stock and the movement log alone.
	stock, err := svc.CurrentStock(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 10.0, stock.Float64())

	movements, err := svc.Movements(ctx, item.ID, ledger.MovementFilter{})
	require.NoError(t, err)
	assert.Len(t, movements, 1) // opening stock only
}

func TestApplyDelta_ValidationErrors(t *testing.T) {
	svc := newLedgerService(t)
	ctx := context.Background()
	item := createItem(t, svc, "MAT-001", 10, 2)
	corr := entity.Correlation{RecorderID: id.New(), RecorderType: "Test"}

	tests := []struct {
		name   string
		itemID id.ID
		delta  types.Quantity
		kind   entity.MovementKind
	}{
		{"zero quantity", item.ID, 0, entity.MovementReceipt},
		{"unknown kind", item.ID, types.NewQuantityFromFloat64(1), entity.MovementKind("teleport")},
		{"nil item", id.Nil(), types.NewQuantityFromFloat64(1), entity.MovementReceipt},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ApplyDelta(ctx, tt.itemID, tt.delta, tt.kind, corr)
			require.Error(t, err)
			assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
		})
	}
}

func TestApplyDeltas_AllOrNothing(t *testing.T) {
	svc := newLedgerService(t)
	ctx := context.Background()

	rich := createItem(t, svc, "MAT-001", 100, 10)
	poor := createItem(t, svc, "MAT-002", 5, 1)

	corr := entity.Correlation{RecorderID: id.New(), RecorderType: "Transfer"}
	_, err := svc.ApplyDeltas(ctx, []ledger.Delta{
		{ItemID: rich.ID, Quantity: types.NewQuantityFromFloat64(30).Neg(), Kind: entity.MovementTransferOut, Correlation: corr},
		{ItemID: poor.ID, Quantity: types.NewQuantityFromFloat64(10).Neg(), Kind: entity.MovementTransferOut, Correlation: corr},
	})
	require.Error(t, err)
	assert.True(t, apperror.IsInsufficientStock(err))

	richStock, err := svc.CurrentStock(ctx, rich.ID)
	require.NoError(t, err)
	assert.Equal(t, 100.0, richStock.Float64())

	poorStock, err := svc.CurrentStock(ctx, poor.ID)
	require.NoError(t, err)
	assert.Equal(t, 5.0, poorStock.Float64())
}

func TestApplyDeltas_NetsSameItem(t *testing.T) {
	svc := newLedgerService(t)
	ctx := context.Background()
	item := createItem(t, svc, "MAT-001", 10, 2)

	// -8 then +5 nets to -3: legal even though neither interim check runs.
	corr := entity.Correlation{RecorderID: id.New(), RecorderType: "Adjustment"}
	_, err := svc.ApplyDeltas(ctx, []ledger.Delta{
		{ItemID: item.ID, Quantity: types.NewQuantityFromFloat64(8).Neg(), Kind: entity.MovementAdjustment, Correlation: corr},
		{ItemID: item.ID, Quantity: types.NewQuantityFromFloat64(5), Kind: entity.MovementAdjustment, Correlation: corr},
	})
	require.NoError(t, err)

	stock, err := svc.CurrentStock(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 7.0, stock.Float64())
}

func TestStatusOf_Thresholds(t *testing.T) {
	tests := []struct {
		name    string
		current float64
		minimum float64
		want    entity.StockStatus
	}{
		{"well above", 50, 10, entity.StockStatusGood},
		{"just above double", 20.0001, 10, entity.StockStatusGood},
		{"at double minimum", 20, 10, entity.StockStatusLow},
		{"between min and double", 15, 10, entity.StockStatusLow},
		{"at minimum", 10, 10, entity.StockStatusCritical},
		{"below minimum", 3, 10, entity.StockStatusCritical},
		{"zero stock zero minimum", 0, 0, entity.StockStatusCritical},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newLedgerService(t)
			item := createItem(t, svc, "MAT-001", tt.current, tt.minimum)

			status, err := svc.StatusOf(context.Background(), item.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.want, status)
		})
	}
}

func TestApplyDelta_ConcurrentSerialization(t *testing.T) {
	svc := newLedgerService(t)
	ctx := context.Background()
	item := createItem(t, svc, "MAT-001", 1000, 10)

	corr := entity.Correlation{RecorderID: id.New(), RecorderType: "Reservation"}

	const workers = 20
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.ApplyDelta(ctx, item.ID,
				types.NewQuantityFromFloat64(10).Neg(), entity.MovementReservation, corr)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	stock, err := svc.CurrentStock(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 800.0, stock.Float64())
}

func TestUpdateItemDetails_PreservesStock(t *testing.T) {
	svc := newLedgerService(t)
	ctx := context.Background()
	item := createItem(t, svc, "MAT-001", 42, 5)

	updated, err := svc.UpdateItemDetails(ctx, item.ID, func(i *entity.InventoryItem) {
		i.MaterialDescription = "renamed"
		i.MinimumStock = types.NewQuantityFromFloat64(8)
		// Attempted stock edit must be discarded.
		i.CurrentStock = types.NewQuantityFromFloat64(9999)
	})
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.MaterialDescription)
	assert.Equal(t, 8.0, updated.MinimumStock.Float64())
	assert.Equal(t, 42.0, updated.CurrentStock.Float64())
}

func TestEnsureItem_CreatesEmptyFromTemplate(t *testing.T) {
	svc := newLedgerService(t)
	ctx := context.Background()
	source := createItem(t, svc, "MAT-001", 30, 5)

	destKey := entity.ItemKey{Plant: "2000", StorageLocation: "0001", MaterialCode: "MAT-001"}
	dest, err := svc.EnsureItem(ctx, destKey, source)
	require.NoError(t, err)
	assert.Equal(t, destKey, dest.ItemKey)
	assert.True(t, dest.CurrentStock.IsZero())
	assert.Equal(t, source.MinimumStock, dest.MinimumStock)

	// Second call resolves the same row.
	again, err := svc.EnsureItem(ctx, destKey, source)
	require.NoError(t, err)
	assert.Equal(t, dest.ID, again.ID)
}

func TestDailyUsage_FromOutflow(t *testing.T) {
	svc := newLedgerService(t)
	ctx := context.Background()
	item := createItem(t, svc, "MAT-001", 300, 10)

	corr := entity.Correlation{RecorderID: id.New(), RecorderType: "Reservation"}
	_, err := svc.ApplyDelta(ctx, item.ID, types.NewQuantityFromFloat64(60).Neg(), entity.MovementReservation, corr)
	require.NoError(t, err)
	// Inflow does not count toward usage.
	_, err = svc.ApplyDelta(ctx, item.ID, types.NewQuantityFromFloat64(40), entity.MovementReceipt, corr)
	require.NoError(t, err)

	usage, err := svc.DailyUsage(ctx, item.ID, 30*24*time.Hour)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, usage, 1e-9)
}

func TestTurnoverFor_SumsBothDirections(t *testing.T) {
	svc := newLedgerService(t)
	ctx := context.Background()
	item := createItem(t, svc, "MAT-001", 100, 10)

	corr := entity.Correlation{RecorderID: id.New(), RecorderType: "Test"}
	_, err := svc.ApplyDelta(ctx, item.ID, types.NewQuantityFromFloat64(20), entity.MovementReceipt, corr)
	require.NoError(t, err)
	_, err = svc.ApplyDelta(ctx, item.ID, types.NewQuantityFromFloat64(35).Neg(), entity.MovementReservation, corr)
	require.NoError(t, err)

	from := time.Now().UTC().Add(-time.Hour)
	to := time.Now().UTC().Add(time.Hour)
	turnover, err := svc.TurnoverFor(ctx, item.ID, from, to)
	require.NoError(t, err)
	// Opening stock counts as inflow too.
	assert.Equal(t, 120.0, turnover.Inflow.Float64())
	assert.Equal(t, 35.0, turnover.Outflow.Float64())
	assert.Equal(t, 85.0, turnover.Net.Float64())
}

func TestTurnoverFor_EmptyPeriod(t *testing.T) {
	svc := newLedgerService(t)
	item := createItem(t, svc, "MAT-001", 10, 2)

	now := time.Now().UTC()
	_, err := svc.TurnoverFor(context.Background(), item.ID, now, now)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
}
