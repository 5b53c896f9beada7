// Package main provides a CLI tool for seeding the database with demo data.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"stockpilot/internal/core/apperror"
	"stockpilot/internal/core/entity"
	"stockpilot/internal/core/types"
	"stockpilot/internal/domain/ledger"
	"stockpilot/internal/domain/order"
	"stockpilot/internal/domain/receiving"
	"stockpilot/internal/domain/transfer"
	"stockpilot/internal/domain/warehouse"
	"stockpilot/internal/infrastructure/storage/postgres"
	"stockpilot/pkg/logger"
	"stockpilot/pkg/numerator"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := logger.WithLogger(context.Background(), log)

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(dbURL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	txManager := postgres.NewTxManager(pool)
	recorder, err := postgres.NewAuditRecorder(txManager)
	if err != nil {
		log.Fatalw("failed to create audit recorder", "error", err)
	}
	gen := numerator.New(pool)

	warehouseService := warehouse.NewService(postgres.NewWarehouseRepo(txManager))
	stockService := ledger.NewService(postgres.NewLedgerRepo(txManager), txManager)
	receivingService := receiving.NewService(postgres.NewReceiptRepo(txManager),
		stockService, gen, txManager, recorder)
	transferService := transfer.NewService(postgres.NewTransferRepo(txManager),
		postgres.NewWarehouseRepo(txManager), stockService, gen, txManager, recorder)
	orderService := order.NewService(postgres.NewOrderRepo(txManager), gen, txManager, recorder)

	central, north, err := seedWarehouses(ctx, warehouseService, log)
	if err != nil {
		log.Fatalw("failed to seed warehouses", "error", err)
	}

	items, err := seedItems(ctx, stockService, receivingService, central, log)
	if err != nil {
		log.Fatalw("failed to seed items", "error", err)
	}

	if err := seedTransfer(ctx, transferService, central, north, items, log); err != nil {
		log.Fatalw("failed to seed transfer", "error", err)
	}

	if err := seedOrder(ctx, orderService, log); err != nil {
		log.Fatalw("failed to seed order", "error", err)
	}

	log.Info("seed complete")
}

func seedWarehouses(ctx context.Context, svc *warehouse.Service, log *logger.Logger) (*warehouse.Warehouse, *warehouse.Warehouse, error) {
	central := warehouse.New("WH-CENTRAL", "Central Warehouse", "1000", "0001", warehouse.TypeCentral)
	central.Address = "12 Dock Road, Hamburg"

	north := warehouse.New("WH-NORTH", "North Regional", "2000", "0001", warehouse.TypeRegional)
	north.Address = "4 Harbour Street, Kiel"

	for _, w := range []*warehouse.Warehouse{central, north} {
		err := svc.Create(ctx, w)
		switch {
		case err == nil:
			log.Infow("warehouse created", "code", w.Code)
		case apperror.IsDuplicate(err):
			existing, getErr := svc.GetByCode(ctx, w.Code)
			if getErr != nil {
				return nil, nil, getErr
			}
			*w = *existing
			log.Infow("warehouse exists, reusing", "code", w.Code)
		default:
			return nil, nil, err
		}
	}
	return central, north, nil
}

func seedItems(ctx context.Context, stock *ledger.Service, receipts *receiving.Service, central *warehouse.Warehouse, log *logger.Logger) ([]*entity.InventoryItem, error) {
	type seedItem struct {
		code        string
		description string
		minimum     float64
		onHand      float64
	}
	defs := []seedItem{
		{"MAT-1001", "Hex bolts M8 (box of 500)", 20, 180},
		{"MAT-1002", "Steel plate 2mm", 15, 42},
		{"MAT-1003", "Hydraulic oil 20L", 10, 8},
	}

	items := make([]*entity.InventoryItem, 0, len(defs))
	for _, def := range defs {
		key := entity.ItemKey{
			Plant:           central.Plant,
			StorageLocation: central.StorageLocation,
			MaterialCode:    def.code,
		}

		item, err := stock.GetItemByKey(ctx, key)
		if err == nil {
			log.Infow("item exists, skipping", "key", key.String())
			items = append(items, item)
			continue
		}
		if !apperror.IsNotFound(err) {
			return nil, err
		}

		item = entity.NewInventoryItem(key, def.description)
		item.PlantName = central.Name
		item.MinimumStock = types.NewQuantityFromFloat64(def.minimum)
		item.TotalStock = types.NewQuantityFromFloat64(def.onHand * 3)

		item, err = stock.CreateItem(ctx, item)
		if err != nil {
			return nil, err
		}

		receipt := receiving.New(item.ID, "Initial stock intake", types.NewQuantityFromFloat64(def.onHand))
		if err := receipts.Create(ctx, receipt); err != nil {
			return nil, err
		}

		log.Infow("item seeded", "key", key.String(), "on_hand", def.onHand)
		items = append(items, item)
	}
	return items, nil
}

func seedTransfer(ctx context.Context, svc *transfer.Service, central, north *warehouse.Warehouse, items []*entity.InventoryItem, log *logger.Logger) error {
	if len(items) == 0 {
		return nil
	}

	t := transfer.New(central.ID, north.ID, time.Now().AddDate(0, 0, 7))
	t.Notes = "Weekly replenishment run"
	t.AddLine(items[0].ID, items[0].MaterialCode, types.NewQuantityFromFloat64(25))

	if err := svc.Create(ctx, t); err != nil {
		return err
	}
	log.Infow("transfer seeded", "number", t.Number, "status", t.Status)
	return nil
}

func seedOrder(ctx context.Context, svc *order.Service, log *logger.Logger) error {
	price, err := types.NewMoneyFromString("34.50")
	if err != nil {
		return err
	}

	o := order.New("PO-77581", "Nordwerk GmbH")
	o.DeliveryAddress = "Industriestrasse 9, Bremen"
	o.AddLine("Hex bolts M8 (box of 500)", types.NewQuantityFromFloat64(12), price)

	if err := svc.Create(ctx, o); err != nil {
		return err
	}
	log.Infow("order seeded", "number", o.Number, "total", o.Total.StringFixed(2))
	return nil
}
