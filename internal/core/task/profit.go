package task

// Profit is derived on every read and never stored.
type Profit struct {
	PerUnit float64 `json:"profit_per_unit"`
	Net     float64 `json:"net_profit"`
}

// ComputeProfit derives margin from the billing and fulfillment figures.
// Absent amounts count as zero; an absent or zero quantity bills as one unit.
func ComputeProfit(t Task) Profit {
	perUnit := value(t.CostToClient) - value(t.ActualCost)

	qty := value(t.BillableQuantity)
	if qty == 0 {
		qty = 1
	}

	return Profit{PerUnit: perUnit, Net: perUnit * qty}
}

func value(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}
