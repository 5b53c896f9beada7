package warehouse_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockpilot/internal/core/apperror"
	"stockpilot/internal/domain/warehouse"
	"stockpilot/internal/infrastructure/storage/memory"
)

func newWarehouseService() *warehouse.Service {
	return warehouse.NewService(memory.NewWarehouseRepository(memory.NewStore()))
}

func TestWarehouseCreate_NormalizesCode(t *testing.T) {
	svc := newWarehouseService()
	ctx := context.Background()

	w := warehouse.New("  wh-main ", "Main", "1000", "0001", warehouse.TypeCentral)
	require.NoError(t, svc.Create(ctx, w))
	assert.Equal(t, "WH-MAIN", w.Code)
	assert.True(t, w.IsActive)

	got, err := svc.GetByCode(ctx, "wh-main")
	require.NoError(t, err)
	assert.Equal(t, w.ID, got.ID)
}

func TestWarehouseCreate_DuplicateCode(t *testing.T) {
	svc := newWarehouseService()
	ctx := context.Background()

	require.NoError(t, svc.Create(ctx, warehouse.New("WH-1", "First", "1000", "0001", warehouse.TypeCentral)))

	err := svc.Create(ctx, warehouse.New("wh-1", "Second", "2000", "0001", warehouse.TypeRegional))
	require.Error(t, err)
	assert.True(t, apperror.IsDuplicate(err))
}

func TestWarehouseCreate_Validation(t *testing.T) {
	svc := newWarehouseService()
	ctx := context.Background()

	tests := []struct {
		name string
		w    *warehouse.Warehouse
	}{
		{"no code", warehouse.New("", "Name", "1000", "0001", warehouse.TypeCentral)},
		{"no name", warehouse.New("WH-1", "", "1000", "0001", warehouse.TypeCentral)},
		{"no plant", warehouse.New("WH-1", "Name", "", "0001", warehouse.TypeCentral)},
		{"bad type", warehouse.New("WH-1", "Name", "1000", "0001", warehouse.Type("floating"))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.Create(ctx, tt.w)
			require.Error(t, err)
			assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
		})
	}
}

func TestWarehouseDeactivate(t *testing.T) {
	svc := newWarehouseService()
	ctx := context.Background()

	w := warehouse.New("WH-1", "First", "1000", "0001", warehouse.TypeCentral)
	require.NoError(t, svc.Create(ctx, w))

	require.NoError(t, svc.Deactivate(ctx, w.ID))

	got, err := svc.Get(ctx, w.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	// Deactivation filters out of active-only listings but not full ones.
	active, err := svc.List(ctx, warehouse.Filter{ActiveOnly: true})
	require.NoError(t, err)
	assert.Empty(t, active)

	all, err := svc.List(ctx, warehouse.Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestWarehouseList_TypeFilter(t *testing.T) {
	svc := newWarehouseService()
	ctx := context.Background()

	require.NoError(t, svc.Create(ctx, warehouse.New("WH-1", "Central", "1000", "0001", warehouse.TypeCentral)))
	require.NoError(t, svc.Create(ctx, warehouse.New("WH-2", "North", "2000", "0001", warehouse.TypeRegional)))

	regional := warehouse.TypeRegional
	got, err := svc.List(ctx, warehouse.Filter{Type: &regional})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "WH-2", got[0].Code)
}
