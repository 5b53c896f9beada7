package transfer_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockpilot/internal/core/apperror"
	"stockpilot/internal/core/entity"
	"stockpilot/internal/core/types"
	"stockpilot/internal/domain/ledger"
	"stockpilot/internal/domain/transfer"
	"stockpilot/internal/domain/warehouse"
	"stockpilot/internal/infrastructure/storage/memory"
	"stockpilot/pkg/numerator"
)

type fixture struct {
	transfers  *transfer.Service
	stock      *ledger.Service
	warehouses warehouse.Repository
	source     *warehouse.Warehouse
	dest       *warehouse.Warehouse
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	txm := memory.NewTxManager()
	warehouseRepo := memory.NewWarehouseRepository(store)
	stock := ledger.NewService(memory.NewLedgerRepository(store), txm)
	transfers := transfer.NewService(memory.NewTransferRepository(store),
		warehouseRepo, stock, numerator.NewInMemory(), txm, memory.NewAuditRecorder(store))

	ctx := context.Background()
	source := warehouse.New("WH-A", "Alpha", "1000", "0001", warehouse.TypeCentral)
	dest := warehouse.New("WH-B", "Beta", "2000", "0001", warehouse.TypeRegional)
	require.NoError(t, warehouseRepo.Create(ctx, source))
	require.NoError(t, warehouseRepo.Create(ctx, dest))

	return &fixture{transfers: transfers, stock: stock, warehouses: warehouseRepo, source: source, dest: dest}
}

func (f *fixture) stockItem(t *testing.T, materialCode string, onHand float64) *entity.InventoryItem {
	t.Helper()
	item := entity.NewInventoryItem(entity.ItemKey{
		Plant:           f.source.Plant,
		StorageLocation: f.source.StorageLocation,
		MaterialCode:    materialCode,
	}, "material "+materialCode)
	item.CurrentStock = types.NewQuantityFromFloat64(onHand)
	item.MinimumStock = types.NewQuantityFromFloat64(1)

	created, err := f.stock.CreateItem(context.Background(), item)
	require.NoError(t, err)
	return created
}

func (f *fixture) draft(t *testing.T, lines map[*entity.InventoryItem]float64) *transfer.Transfer {
	t.Helper()
	tr := transfer.New(f.source.ID, f.dest.ID, time.Now().AddDate(0, 0, 3))
	for item, qty := range lines {
		tr.AddLine(item.ID, item.MaterialCode, types.NewQuantityFromFloat64(qty))
	}
	require.NoError(t, f.transfers.Create(context.Background(), tr))
	return tr
}

func TestCreate_NumbersAndSeedsHistory(t *testing.T) {
	f := newFixture(t)
	item := f.stockItem(t, "MAT-001", 100)
	tr := f.draft(t, map[*entity.InventoryItem]float64{item: 10})

	assert.True(t, strings.HasPrefix(tr.Number, "TRF-"), "number %q", tr.Number)
	assert.Equal(t, transfer.StatusDraft, tr.Status)
	require.Len(t, tr.History, 1)
	assert.Equal(t, string(transfer.StatusDraft), tr.History[0].Status)
	assert.True(t, tr.History[0].Applied)
}

func TestCreate_Validation(t *testing.T) {
	f := newFixture(t)
	item := f.stockItem(t, "MAT-001", 5)
	ctx := context.Background()

	t.Run("same source and destination", func(t *testing.T) {
		tr := transfer.New(f.source.ID, f.source.ID, time.Now())
		tr.AddLine(item.ID, item.MaterialCode, types.NewQuantityFromFloat64(1))
		err := f.transfers.Create(ctx, tr)
		assert.True(t, apperror.IsCode(err, apperror.CodeInvalidRoute))
	})

	t.Run("no lines", func(t *testing.T) {
		tr := transfer.New(f.source.ID, f.dest.ID, time.Now())
		err := f.transfers.Create(ctx, tr)
		assert.True(t, apperror.IsCode(err, apperror.CodeEmptyTransfer))
	})

	t.Run("non-positive quantity", func(t *testing.T) {
		tr := transfer.New(f.source.ID, f.dest.ID, time.Now())
		tr.AddLine(item.ID, item.MaterialCode, 0)
		err := f.transfers.Create(ctx, tr)
		assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
	})

	t.Run("insufficient stock at source", func(t *testing.T) {
		tr := transfer.New(f.source.ID, f.dest.ID, time.Now())
		tr.AddLine(item.ID, item.MaterialCode, types.NewQuantityFromFloat64(6))
		err := f.transfers.Create(ctx, tr)
		assert.True(t, apperror.IsInsufficientStock(err))
	})

	t.Run("inactive endpoint", func(t *testing.T) {
		cold := warehouse.New("WH-COLD", "Mothballed", "3000", "0001", warehouse.TypeRegional)
		cold.IsActive = false
		require.NoError(t, f.warehouses.Create(ctx, cold))

		tr := transfer.New(f.source.ID, cold.ID, time.Now())
		tr.AddLine(item.ID, item.MaterialCode, types.NewQuantityFromFloat64(1))
		err := f.transfers.Create(ctx, tr)
		assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
	})
}

func TestTransition_Table(t *testing.T) {
	tests := []struct {
		from    transfer.Status
		to      transfer.Status
		allowed bool
	}{
		{transfer.StatusDraft, transfer.StatusPending, true},
		{transfer.StatusDraft, transfer.StatusCancelled, true},
		{transfer.StatusDraft, transfer.StatusInTransit, false},
		{transfer.StatusDraft, transfer.StatusCompleted, false},
		{transfer.StatusPending, transfer.StatusInTransit, true},
		{transfer.StatusPending, transfer.StatusCancelled, true},
		{transfer.StatusPending, transfer.StatusDraft, false},
		{transfer.StatusPending, transfer.StatusCompleted, false},
		{transfer.StatusInTransit, transfer.StatusCompleted, true},
		{transfer.StatusInTransit, transfer.StatusCancelled, true},
		{transfer.StatusInTransit, transfer.StatusPending, false},
		{transfer.StatusCompleted, transfer.StatusCancelled, false},
		{transfer.StatusCompleted, transfer.StatusDraft, false},
		{transfer.StatusCancelled, transfer.StatusPending, false},
	}
	for _, tt := range tests {
		name := string(tt.from) + "_to_" + string(tt.to)
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, transfer.CanTransition(tt.from, tt.to))
		})
	}
}

func TestTransition_HappyPathToCompleted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	item := f.stockItem(t, "MAT-001", 100)
	tr := f.draft(t, map[*entity.InventoryItem]float64{item: 30})

	for _, to := range []transfer.Status{transfer.StatusPending, transfer.StatusInTransit, transfer.StatusCompleted} {
		var err error
		tr, err = f.transfers.Transition(ctx, tr.ID, to, "")
		require.NoError(t, err)
		assert.Equal(t, to, tr.Status)
	}

	require.NotNil(t, tr.CompletionDate)

	// Source drained, destination filled.
	sourceStock, err := f.stock.CurrentStock(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 70.0, sourceStock.Float64())

	destItem, err := f.stock.GetItemByKey(ctx, entity.ItemKey{
		Plant:           f.dest.Plant,
		StorageLocation: f.dest.StorageLocation,
		MaterialCode:    item.MaterialCode,
	})
	require.NoError(t, err)
	assert.Equal(t, 30.0, destItem.CurrentStock.Float64())

	// draft + 3 applied transitions
	history, err := f.transfers.History(ctx, tr.ID)
	require.NoError(t, err)
	assert.Len(t, history, 4)
}

func TestTransition_IllegalAppendsRejectedHistory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	item := f.stockItem(t, "MAT-001", 100)
	tr := f.draft(t, map[*entity.InventoryItem]float64{item: 10})

	_, err := f.transfers.Transition(ctx, tr.ID, transfer.StatusCompleted, "")
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeIllegalTransition))

	got, err := f.transfers.Get(ctx, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, transfer.StatusDraft, got.Status)

	require.Len(t, got.History, 2)
	rejection := got.History[1]
	assert.Equal(t, string(transfer.StatusCompleted), rejection.Status)
	assert.False(t, rejection.Applied)
}

func TestTransition_UnknownStatus(t *testing.T) {
	f := newFixture(t)
	item := f.stockItem(t, "MAT-001", 100)
	tr := f.draft(t, map[*entity.InventoryItem]float64{item: 10})

	_, err := f.transfers.Transition(context.Background(), tr.ID, transfer.Status("shipped"), "")
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeUnknownStatus))

	// No history record for a status that does not exist at all.
	got, err := f.transfers.Get(context.Background(), tr.ID)
	require.NoError(t, err)
	assert.Len(t, got.History, 1)
}

func TestTransition_CompletionFailsWithoutStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	item := f.stockItem(t, "MAT-001", 50)
	tr := f.draft(t, map[*entity.InventoryItem]float64{item: 40})

	// Drain the source after the transfer was created.
	_, err := f.stock.ApplyDelta(ctx, item.ID, types.NewQuantityFromFloat64(30).Neg(),
		entity.MovementReservation, entity.Correlation{RecorderID: tr.ID, RecorderType: "Test"})
	require.NoError(t, err)

	_, err = f.transfers.Transition(ctx, tr.ID, transfer.StatusPending, "")
	require.NoError(t, err)
	_, err = f.transfers.Transition(ctx, tr.ID, transfer.StatusInTransit, "")
	require.NoError(t, err)

	_, err = f.transfers.Transition(ctx, tr.ID, transfer.StatusCompleted, "")
	require.Error(t, err)
	assert.True(t, apperror.IsInsufficientStock(err))

	// Status stays in-transit, stock untouched, rejection recorded.
	got, err := f.transfers.Get(ctx, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, transfer.StatusInTransit, got.Status)
	assert.Nil(t, got.CompletionDate)

	stock, err := f.stock.CurrentStock(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 20.0, stock.Float64())

	last := got.History[len(got.History)-1]
	assert.Equal(t, string(transfer.StatusCompleted), last.Status)
	assert.False(t, last.Applied)

	// Restock and retry: completion now goes through.
	_, err = f.stock.ApplyDelta(ctx, item.ID, types.NewQuantityFromFloat64(30),
		entity.MovementReceipt, entity.Correlation{RecorderID: tr.ID, RecorderType: "Test"})
	require.NoError(t, err)

	got, err = f.transfers.Transition(ctx, tr.ID, transfer.StatusCompleted, "second attempt")
	require.NoError(t, err)
	assert.Equal(t, transfer.StatusCompleted, got.Status)
	require.NotNil(t, got.CompletionDate)
}

func TestTransition_MultiLineCompletionIsAtomic(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	full := f.stockItem(t, "MAT-001", 100)
	short := f.stockItem(t, "MAT-002", 5)

	tr := transfer.New(f.source.ID, f.dest.ID, time.Now())
	tr.AddLine(full.ID, full.MaterialCode, types.NewQuantityFromFloat64(10))
	tr.AddLine(short.ID, short.MaterialCode, types.NewQuantityFromFloat64(5))
	require.NoError(t, f.transfers.Create(ctx, tr))

	// Make the second line unfulfillable.
	_, err := f.stock.ApplyDelta(ctx, short.ID, types.NewQuantityFromFloat64(3).Neg(),
		entity.MovementReservation, entity.Correlation{RecorderID: tr.ID, RecorderType: "Test"})
	require.NoError(t, err)

	_, err = f.transfers.Transition(ctx, tr.ID, transfer.StatusPending, "")
	require.NoError(t, err)
	_, err = f.transfers.Transition(ctx, tr.ID, transfer.StatusInTransit, "")
	require.NoError(t, err)
	_, err = f.transfers.Transition(ctx, tr.ID, transfer.StatusCompleted, "")
	require.Error(t, err)

	// Neither line moved.
	fullStock, err := f.stock.CurrentStock(ctx, full.ID)
	require.NoError(t, err)
	assert.Equal(t, 100.0, fullStock.Float64())

	shortStock, err := f.stock.CurrentStock(ctx, short.ID)
	require.NoError(t, err)
	assert.Equal(t, 2.0, shortStock.Float64())
}

func TestDelete_DraftOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	item := f.stockItem(t, "MAT-001", 100)

	draft := f.draft(t, map[*entity.InventoryItem]float64{item: 5})
	require.NoError(t, f.transfers.Delete(ctx, draft.ID))
	_, err := f.transfers.Get(ctx, draft.ID)
	assert.True(t, apperror.IsNotFound(err))

	pending := f.draft(t, map[*entity.InventoryItem]float64{item: 5})
	_, err = f.transfers.Transition(ctx, pending.ID, transfer.StatusPending, "")
	require.NoError(t, err)

	err = f.transfers.Delete(ctx, pending.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeIllegalOperation))
}

func TestTransition_CompletionDateSetOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	item := f.stockItem(t, "MAT-001", 100)
	tr := f.draft(t, map[*entity.InventoryItem]float64{item: 10})

	for _, to := range []transfer.Status{transfer.StatusPending, transfer.StatusInTransit, transfer.StatusCompleted} {
		var err error
		tr, err = f.transfers.Transition(ctx, tr.ID, to, "")
		require.NoError(t, err)
	}
	require.NotNil(t, tr.CompletionDate)
	first := *tr.CompletionDate

	// Terminal: a repeat attempt is rejected and the date stays put.
	_, err := f.transfers.Transition(ctx, tr.ID, transfer.StatusCompleted, "")
	require.Error(t, err)

	got, err := f.transfers.Get(ctx, tr.ID)
	require.NoError(t, err)
	require.NotNil(t, got.CompletionDate)
	assert.Equal(t, first, *got.CompletionDate)
}

// faultyTransferRepo injects a persistence failure on Update so the
// completion path can be observed when the status write does not land.
type faultyTransferRepo struct {
	transfer.Repository
	failUpdate bool
}

func (r *faultyTransferRepo) Update(ctx context.Context, t *transfer.Transfer) error {
	if r.failUpdate {
		return errors.New("storage unavailable")
	}
	return r.Repository.Update(ctx, t)
}

func TestTransition_CompletionPersistFailureMovesNoStock(t *testing.T) {
	store := memory.NewStore()
	txm := memory.NewTxManager()
	warehouseRepo := memory.NewWarehouseRepository(store)
	stock := ledger.NewService(memory.NewLedgerRepository(store), txm)
	repo := &faultyTransferRepo{Repository: memory.NewTransferRepository(store)}
	transfers := transfer.NewService(repo, warehouseRepo, stock,
		numerator.NewInMemory(), txm, memory.NewAuditRecorder(store))

	ctx := context.Background()
	source := warehouse.New("WH-A", "Alpha", "1000", "0001", warehouse.TypeCentral)
	dest := warehouse.New("WH-B", "Beta", "2000", "0001", warehouse.TypeRegional)
	require.NoError(t, warehouseRepo.Create(ctx, source))
	require.NoError(t, warehouseRepo.Create(ctx, dest))

	item := entity.NewInventoryItem(entity.ItemKey{
		Plant:           source.Plant,
		StorageLocation: source.StorageLocation,
		MaterialCode:    "MAT-001",
	}, "material MAT-001")
	item.CurrentStock = types.NewQuantityFromFloat64(50)
	item, err := stock.CreateItem(ctx, item)
	require.NoError(t, err)

	tr := transfer.New(source.ID, dest.ID, time.Now().AddDate(0, 0, 3))
	tr.AddLine(item.ID, item.MaterialCode, types.NewQuantityFromFloat64(20))
	require.NoError(t, transfers.Create(ctx, tr))
	for _, to := range []transfer.Status{transfer.StatusPending, transfer.StatusInTransit} {
		_, err := transfers.Transition(ctx, tr.ID, to, "")
		require.NoError(t, err)
	}

	repo.failUpdate = true
	_, err = transfers.Transition(ctx, tr.ID, transfer.StatusCompleted, "")
	require.Error(t, err)

	// Nothing moved and the transfer still reads in-transit.
	current, err := stock.CurrentStock(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantityFromFloat64(50), current)

	got, err := transfers.Get(ctx, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, transfer.StatusInTransit, got.Status)
	assert.Nil(t, got.CompletionDate)

	// Once the store recovers the same transition goes through.
	repo.failUpdate = false
	_, err = transfers.Transition(ctx, tr.ID, transfer.StatusCompleted, "")
	require.NoError(t, err)

	current, err = stock.CurrentStock(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantityFromFloat64(30), current)
}
