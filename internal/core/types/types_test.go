package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuantity_Scaling(t *testing.T) {
	q := NewQuantityFromFloat64(12.3456)
	assert.Equal(t, int64(123456), q.Int64Scaled())
	assert.Equal(t, 12.3456, q.Float64())

	assert.Equal(t, NewQuantityFromInt(5), NewQuantityFromFloat64(5.0))
	assert.Equal(t, NewQuantityFromInt64Scaled(123456), q)
}

func TestQuantity_String(t *testing.T) {
	tests := []struct {
		q    Quantity
		want string
	}{
		{NewQuantityFromFloat64(12.3456), "12.3456"},
		{NewQuantityFromFloat64(5), "5.0000"},
		{NewQuantityFromFloat64(-0.25), "-0.2500"},
		{0, "0.0000"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.q.String())
	}
}

func TestQuantity_JSONRoundTrip(t *testing.T) {
	type payload struct {
		Qty Quantity `json:"qty"`
	}

	data, err := json.Marshal(payload{Qty: NewQuantityFromFloat64(7.5)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"qty":7.5000}`, string(data))

	var decoded payload
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, NewQuantityFromFloat64(7.5), decoded.Qty)
}

func TestQuantity_UnmarshalVariants(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Quantity
	}{
		{"number", `3.25`, NewQuantityFromFloat64(3.25)},
		{"string", `"3.25"`, NewQuantityFromFloat64(3.25)},
		{"negative", `-1.5`, NewQuantityFromFloat64(-1.5)},
		{"integer", `42`, NewQuantityFromInt(42)},
		{"null", `null`, 0},
		{"extra digits truncated", `1.23456789`, NewQuantityFromInt64Scaled(12345)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var q Quantity
			require.NoError(t, json.Unmarshal([]byte(tt.input), &q))
			assert.Equal(t, tt.want, q)
		})
	}
}

func TestMoney_Precision(t *testing.T) {
	a := MustMoney("0.1")
	b := MustMoney("0.2")
	assert.Equal(t, "0.30", a.Add(b).StringFixed(2))

	price := MustMoney("19.99")
	assert.Equal(t, "59.97", price.Mul(NewMoney(3)).StringFixed(2))
}
