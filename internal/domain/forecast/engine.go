// Package forecast projects stock depletion from consumption rates.
//
// The projection is a simple linear drawdown: given current stock, the
// minimum threshold and a daily usage rate, it answers how many days
// remain until the threshold is crossed, classifies the urgency against
// a planning horizon, and renders the day-by-day depletion curve.
package forecast

import (
	"math"
	"time"

	"stockpilot/internal/core/apperror"
)

// Severity grades how urgent a projected shortfall is.
type Severity string

const (
	SeverityGood     Severity = "good"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// DefaultHorizonDays is the planning horizon when the caller does not
// supply one.
const DefaultHorizonDays = 30

// DefaultUsageWindow is the trailing period consumption rates are
// derived from.
const DefaultUsageWindow = 30 * 24 * time.Hour

// Point is one day of the projected depletion curve.
type Point struct {
	Day   int     `json:"day"`
	Stock float64 `json:"stock"`
}

// Projection is the forecast for one item.
type Projection struct {
	ItemID       string  `json:"itemId"`
	CurrentStock float64 `json:"currentStock"`
	MinimumStock float64 `json:"minimumStock"`
	DailyUsage   float64 `json:"dailyUsage"`

	// DaysUntilMinimum is nil when usage is zero and the stock never
	// depletes.
	DaysUntilMinimum *float64 `json:"daysUntilMinimum,omitempty"`

	HorizonDays int      `json:"horizonDays"`
	Severity    Severity `json:"severity"`
	Curve       []Point  `json:"curve"`
}

// DaysUntilMinimum returns how many days of usage remain before stock
// reaches the minimum threshold. Zero or negative usage means the stock
// never depletes and +Inf is returned. Stock already at or below the
// minimum with positive usage yields zero or a negative count.
func DaysUntilMinimum(current, minimum, dailyUsage float64) float64 {
	if dailyUsage <= 0 {
		return math.Inf(1)
	}
	return (current - minimum) / dailyUsage
}

// Classify grades days-until-minimum against the horizon:
// below 30% of the horizon is critical, below 70% is a warning,
// anything longer (including never) is good.
func Classify(daysUntilMinimum float64, horizonDays int) Severity {
	if horizonDays <= 0 {
		horizonDays = DefaultHorizonDays
	}
	horizon := float64(horizonDays)
	switch {
	case daysUntilMinimum < 0.3*horizon:
		return SeverityCritical
	case daysUntilMinimum < 0.7*horizon:
		return SeverityWarning
	default:
		return SeverityGood
	}
}

// ProjectedCurve renders the linear drawdown over the horizon, one point
// per day from day one through the horizon. Stock is floored at zero.
func ProjectedCurve(current, dailyUsage float64, horizonDays int) []Point {
	if horizonDays <= 0 {
		horizonDays = DefaultHorizonDays
	}
	curve := make([]Point, 0, horizonDays)
	for day := 1; day <= horizonDays; day++ {
		stock := current - dailyUsage*float64(day)
		if stock < 0 {
			stock = 0
		}
		curve = append(curve, Point{Day: day, Stock: stock})
	}
	return curve
}

// Project builds the full projection for one item.
func Project(itemID string, current, minimum, dailyUsage float64, horizonDays int) (Projection, error) {
	if horizonDays < 0 {
		return Projection{}, apperror.NewValidation("horizon must not be negative")
	}
	if horizonDays == 0 {
		horizonDays = DefaultHorizonDays
	}

	days := DaysUntilMinimum(current, minimum, dailyUsage)
	p := Projection{
		ItemID:       itemID,
		CurrentStock: current,
		MinimumStock: minimum,
		DailyUsage:   dailyUsage,
		HorizonDays:  horizonDays,
		Severity:     Classify(days, horizonDays),
		Curve:        ProjectedCurve(current, dailyUsage, horizonDays),
	}
	if !math.IsInf(days, 1) {
		p.DaysUntilMinimum = &days
	}
	return p, nil
}
