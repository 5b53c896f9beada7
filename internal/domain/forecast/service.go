package forecast

import (
	"context"

	"stockpilot/internal/core/id"
	"stockpilot/internal/domain/ledger"
	"stockpilot/pkg/logger"
)

// Service derives projections from ledger data. Usage rates come from
// outflow movements over a trailing window.
type Service struct {
	stock *ledger.Service
}

func NewService(stock *ledger.Service) *Service {
	return &Service{stock: stock}
}

// ForecastFor projects depletion for one item over the horizon.
// horizonDays of zero selects the default horizon.
func (s *Service) ForecastFor(ctx context.Context, itemID id.ID, horizonDays int) (Projection, error) {
	item, err := s.stock.GetItem(ctx, itemID)
	if err != nil {
		return Projection{}, err
	}

	usage, err := s.stock.DailyUsage(ctx, itemID, DefaultUsageWindow)
	if err != nil {
		return Projection{}, err
	}

	p, err := Project(item.ID.String(),
		item.CurrentStock.Float64(), item.MinimumStock.Float64(),
		usage, horizonDays)
	if err != nil {
		return Projection{}, err
	}

	logger.Debug(ctx, "forecast computed",
		"item_id", itemID, "daily_usage", usage, "severity", p.Severity)
	return p, nil
}

// ForecastAll projects every item matching the filter. Items whose
// projection fails are skipped with a warning so one bad item does not
// sink the whole report.
func (s *Service) ForecastAll(ctx context.Context, filter ledger.ItemFilter, horizonDays int) ([]Projection, error) {
	items, err := s.stock.ListItems(ctx, filter)
	if err != nil {
		return nil, err
	}

	projections := make([]Projection, 0, len(items))
	for _, item := range items {
		p, err := s.ForecastFor(ctx, item.ID, horizonDays)
		if err != nil {
			logger.Warn(ctx, "forecast skipped", "item_id", item.ID, "error", err)
			continue
		}
		projections = append(projections, p)
	}
	return projections, nil
}
