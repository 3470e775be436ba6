package task

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeProfit(t *testing.T) {
	tests := []struct {
		name        string
		ctc, actual *float64
		qty         *float64
		want        Profit
	}{
		{"billed per unit", ptr(100.0), ptr(40.0), ptr(3.0), Profit{PerUnit: 60, Net: 180}},
		{"no quantity bills one", ptr(100.0), ptr(40.0), nil, Profit{PerUnit: 60, Net: 60}},
		{"zero quantity bills one", ptr(100.0), ptr(40.0), ptr(0.0), Profit{PerUnit: 60, Net: 60}},
		{"nothing recorded", nil, nil, nil, Profit{}},
		{"loss", ptr(50.0), ptr(80.0), ptr(2.0), Profit{PerUnit: -30, Net: -60}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := Task{
				Fulfillment:   Fulfillment{ActualCost: tt.actual},
				Profitability: Profitability{CostToClient: tt.ctc, BillableQuantity: tt.qty},
			}
			got := ComputeProfit(task)
			assert.InDelta(t, tt.want.PerUnit, got.PerUnit, 1e-9)
			assert.InDelta(t, tt.want.Net, got.Net, 1e-9)
		})
	}
}

func TestNewView(t *testing.T) {
	v := NewView(Task{Status: StatusInProgress, Profitability: Profitability{CostToClient: ptr(20.0)}})
	assert.Equal(t, ProgressInfo{Step: 2, Steps: 5, Fraction: 0.5}, v.Progress)
	assert.InDelta(t, 20, v.Profit.Net, 1e-9)
}
