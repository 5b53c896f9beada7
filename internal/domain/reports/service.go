// Package reports builds read-only summaries over the ledger: low-stock
// alerts and per-item turnover.
package reports

import (
	"context"
	"sort"
	"time"

	"stockpilot/internal/core/apperror"
	"stockpilot/internal/core/entity"
	"stockpilot/internal/core/id"
	"stockpilot/internal/domain/ledger"
)

// Alert flags an item at or near its minimum threshold.
type Alert struct {
	ItemID              id.ID              `json:"itemId"`
	ItemKey             string             `json:"itemKey"`
	MaterialDescription string             `json:"materialDescription"`
	CurrentStock        float64            `json:"currentStock"`
	MinimumStock        float64            `json:"minimumStock"`
	Status              entity.StockStatus `json:"status"`
}

// TurnoverReport is inflow/outflow totals for one item over a period.
type TurnoverReport struct {
	ItemID  id.ID     `json:"itemId"`
	From    time.Time `json:"from"`
	To      time.Time `json:"to"`
	Inflow  float64   `json:"inflow"`
	Outflow float64   `json:"outflow"`
	Net     float64   `json:"net"`
}

// Service serves reports off the ledger.
type Service struct {
	stock *ledger.Service
}

func NewService(stock *ledger.Service) *Service {
	return &Service{stock: stock}
}

// StockAlerts returns every item whose status is low or critical,
// critical first.
func (s *Service) StockAlerts(ctx context.Context) ([]Alert, error) {
	items, err := s.stock.ListItems(ctx, ledger.ItemFilter{})
	if err != nil {
		return nil, err
	}

	alerts := make([]Alert, 0)
	for _, item := range items {
		status := item.StockStatus()
		if status == entity.StockStatusGood {
			continue
		}
		alerts = append(alerts, Alert{
			ItemID:              item.ID,
			ItemKey:             item.ItemKey.String(),
			MaterialDescription: item.MaterialDescription,
			CurrentStock:        item.CurrentStock.Float64(),
			MinimumStock:        item.MinimumStock.Float64(),
			Status:              status,
		})
	}

	// critical before low, then by key for a stable listing
	sort.Slice(alerts, func(i, j int) bool {
		if alerts[i].Status != alerts[j].Status {
			return alerts[i].Status == entity.StockStatusCritical
		}
		return alerts[i].ItemKey < alerts[j].ItemKey
	})
	return alerts, nil
}

// Turnover sums inflow and outflow quantities for one item between the
// given dates.
func (s *Service) Turnover(ctx context.Context, itemID id.ID, from, to time.Time) (TurnoverReport, error) {
	if !to.After(from) {
		return TurnoverReport{}, apperror.NewValidation("report period is empty")
	}

	t, err := s.stock.TurnoverFor(ctx, itemID, from, to)
	if err != nil {
		return TurnoverReport{}, err
	}

	return TurnoverReport{
		ItemID:  itemID,
		From:    from,
		To:      to,
		Inflow:  t.Inflow.Float64(),
		Outflow: t.Outflow.Float64(),
		Net:     t.Net.Float64(),
	}, nil
}
