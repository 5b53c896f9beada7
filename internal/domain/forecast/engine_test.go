package forecast

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDaysUntilMinimum(t *testing.T) {
	tests := []struct {
		name    string
		current float64
		minimum float64
		usage   float64
		want    float64
	}{
		{"typical drawdown", 65, 40, 7, 25.0 / 7},
		{"already at minimum", 40, 40, 5, 0},
		{"below minimum", 30, 40, 5, -2},
		{"fractional usage", 10, 0, 0.25, 40},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DaysUntilMinimum(tt.current, tt.minimum, tt.usage)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}

	t.Run("zero usage never depletes", func(t *testing.T) {
		assert.True(t, math.IsInf(DaysUntilMinimum(10, 5, 0), 1))
		assert.True(t, math.IsInf(DaysUntilMinimum(10, 5, -1), 1))
	})
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		days    float64
		horizon int
		want    Severity
	}{
		{"well inside critical band", 65.0/7 - 6, 30, SeverityCritical}, // ~3.3 days
		{"just under 30 percent", 8.9, 30, SeverityCritical},
		{"at 30 percent boundary", 9, 30, SeverityWarning},
		{"inside warning band", 15, 30, SeverityWarning},
		{"at 70 percent boundary", 21, 30, SeverityGood},
		{"beyond horizon", 45, 30, SeverityGood},
		{"never depletes", math.Inf(1), 30, SeverityGood},
		{"negative days is critical", -3, 30, SeverityCritical},
		{"zero horizon falls back to default", 8.9, 0, SeverityCritical},
		{"scaled horizon", 29, 100, SeverityCritical},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.days, tt.horizon))
		})
	}
}

func TestProjectedCurve(t *testing.T) {
	curve := ProjectedCurve(10, 3, 5)
	require.Len(t, curve, 5)

	assert.Equal(t, Point{Day: 1, Stock: 7}, curve[0])
	assert.Equal(t, Point{Day: 3, Stock: 1}, curve[2])
	// floored at zero, never negative
	assert.Equal(t, Point{Day: 4, Stock: 0}, curve[3])
	assert.Equal(t, Point{Day: 5, Stock: 0}, curve[4])

	for i := 1; i < len(curve); i++ {
		assert.LessOrEqual(t, curve[i].Stock, curve[i-1].Stock, "curve must be non-increasing")
	}
}

func TestProjectedCurve_ZeroUsageIsFlat(t *testing.T) {
	curve := ProjectedCurve(10, 0, 3)
	require.Len(t, curve, 3)
	for _, p := range curve {
		assert.Equal(t, 10.0, p.Stock)
	}
}

func TestProject(t *testing.T) {
	p, err := Project("item-1", 65, 40, 7, 30)
	require.NoError(t, err)

	require.NotNil(t, p.DaysUntilMinimum)
	assert.InDelta(t, 25.0/7, *p.DaysUntilMinimum, 1e-9)
	assert.Equal(t, SeverityCritical, p.Severity)
	assert.Equal(t, 30, p.HorizonDays)
	require.Len(t, p.Curve, 30)
	assert.Equal(t, 1, p.Curve[0].Day)
	assert.Equal(t, 30, p.Curve[len(p.Curve)-1].Day)
}

func TestProject_ZeroUsage(t *testing.T) {
	p, err := Project("item-1", 65, 40, 0, 30)
	require.NoError(t, err)

	// nil marks "never": keeps +Inf out of the JSON encoding
	assert.Nil(t, p.DaysUntilMinimum)
	assert.Equal(t, SeverityGood, p.Severity)
}

func TestProject_HorizonHandling(t *testing.T) {
	p, err := Project("item-1", 10, 5, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultHorizonDays, p.HorizonDays)

	_, err = Project("item-1", 10, 5, 1, -1)
	require.Error(t, err)
}
