package ingest

import "sort"

// HighRisk returns the rows at or above the risk threshold, the
// exception queue flagged for VP authorization.
func (e *Export) HighRisk(threshold float64) []Row {
	var flagged []Row
	for _, row := range e.Rows {
		if row.ClaimedAmount >= threshold {
			flagged = append(flagged, row)
		}
	}
	sort.Slice(flagged, func(i, j int) bool {
		return flagged[i].ClaimedAmount > flagged[j].ClaimedAmount
	})
	return flagged
}

// TotalLeakage sums the claimed amounts across the whole export
func (e *Export) TotalLeakage() float64 {
	var total float64
	for _, row := range e.Rows {
		total += row.ClaimedAmount
	}
	return total
}

// RetailerTotals rolls up claimed exposure per retailer
func (e *Export) RetailerTotals() map[string]float64 {
	totals := make(map[string]float64)
	for _, row := range e.Rows {
		totals[row.Retailer] += row.ClaimedAmount
	}
	return totals
}
