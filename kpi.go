package findash

// KPIs are the headline figures of the dashboard.
type KPIs struct {
	TotalRevenue Money
	TotalProfit  Money
	Expenses     Money
	CashFlow     Money
}

// ComputeKPIs sums the dataset columns into the headline figures.
//
// An empty dataset yields zero amounts.
func ComputeKPIs(ds *Dataset) KPIs {
	cur := ds.Currency()
	k := KPIs{
		TotalRevenue: M(0, cur),
		TotalProfit:  M(0, cur),
		Expenses:     M(0, cur),
		CashFlow:     M(0, cur),
	}
	for _, r := range ds.records {
		k.TotalRevenue = k.TotalRevenue.Add(r.Revenue)
		k.TotalProfit = k.TotalProfit.Add(r.Profit)
		k.Expenses = k.Expenses.Add(r.TotalExpenses())
		k.CashFlow = k.CashFlow.Add(r.NetCashFlow())
	}
	return k
}

// KPICard is a titled KPI, as displayed on the dashboard.
type KPICard struct {
	ID    string
	Title string
	Value Money
	Color string
}

// Cards returns the KPI cards in display order.
func (k KPIs) Cards() []KPICard {
	return []KPICard{
		{ID: "kpi-total-revenue", Title: "Total Revenue", Value: k.TotalRevenue, Color: "primary"},
		{ID: "kpi-total-profit", Title: "Total Profit", Value: k.TotalProfit, Color: "success"},
		{ID: "kpi-expenses", Title: "Expenses", Value: k.Expenses, Color: "danger"},
		{ID: "kpi-cash-flow", Title: "Cash Flow", Value: k.CashFlow, Color: "info"},
	}
}

func (k KPIs) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("totalRevenue", k.TotalRevenue)
	w.Append("totalProfit", k.TotalProfit)
	w.Append("expenses", k.Expenses)
	w.Append("cashFlow", k.CashFlow)
	return w.MarshalJSON()
}
