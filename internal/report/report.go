// Package report derives aggregate metrics from a request store snapshot.
// Every function here is a pure derivation: no component state, no
// persistence, recomputed on demand. Calling Build twice on the same snapshot
// yields identical results.
package report

import (
	"sort"
	"time"

	"relieftrack/pkg/domain"
)

// Unit costs per supply kind, currency-agnostic. Kinds outside the table
// price at zero.
var unitCosts = map[domain.SupplyKind]int{
	domain.SupplyFood:    10,
	domain.SupplyWater:   5,
	domain.SupplyBaby:    15,
	domain.SupplyHygiene: 12,
	domain.SupplyMedical: 20,
	domain.SupplyBlanket: 8,
}

// UnitCost returns the budget cost of one unit of the given supply kind.
func UnitCost(kind domain.SupplyKind) int { return unitCosts[kind] }

// BudgetLine is the cost contribution of one supply kind.
type BudgetLine struct {
	Kind     domain.SupplyKind `json:"kind"`
	Count    int               `json:"count"`
	UnitCost int               `json:"unit_cost"`
	Cost     int               `json:"cost"`
}

// DailyCount is the number of requests received on one calendar date.
type DailyCount struct {
	Date  string `json:"date"` // 2006-01-02
	Count int    `json:"count"`
}

// KPIs are the headline ratios of the snapshot. AvgResponseHours is nil when
// there are no Delivered records to average over.
type KPIs struct {
	CompletionRate   float64  `json:"completion_rate"`
	BacklogRate      float64  `json:"backlog_rate"`
	RejectionRate    float64  `json:"rejection_rate"`
	AvgResponseHours *float64 `json:"avg_response_hours,omitempty"`
}

// Report is the full set of derived views over one snapshot.
type Report struct {
	Total        int                          `json:"total"`
	StatusCounts map[domain.RequestStatus]int `json:"status_counts"`
	SupplyDemand map[domain.SupplyKind]int    `json:"supply_demand"`
	BudgetLines  []BudgetLine                 `json:"budget_lines"`
	Budget       int                          `json:"budget"`
	Daily        []DailyCount                 `json:"daily"`
	KPIs         KPIs                         `json:"kpis"`
}

// Build computes every derived view from the snapshot. now anchors the
// response-time average. Records with an unparsable timestamp are excluded
// from the daily series and the response average only; they still count in
// every other aggregate.
func Build(records []domain.RequestRecord, now time.Time) Report {
	rpt := Report{
		Total:        len(records),
		StatusCounts: StatusCounts(records),
		SupplyDemand: SupplyDemand(records),
		Daily:        TimeSeries(records),
	}
	rpt.BudgetLines, rpt.Budget = Budget(rpt.SupplyDemand)
	rpt.KPIs = ComputeKPIs(records, now)
	return rpt
}

// StatusCounts counts records per fulfillment state.
func StatusCounts(records []domain.RequestRecord) map[domain.RequestStatus]int {
	counts := make(map[domain.RequestStatus]int)
	for _, r := range records {
		counts[r.RequestStatus]++
	}
	return counts
}

// SupplyDemand counts, per supply kind, the records whose supply set contains
// it. A record contributes to every kind it lists.
func SupplyDemand(records []domain.RequestRecord) map[domain.SupplyKind]int {
	demand := make(map[domain.SupplyKind]int)
	for _, r := range records {
		for _, kind := range domain.DedupeSupplies(r.Supplies) {
			demand[kind]++
		}
	}
	return demand
}

// Budget prices the demand against the unit cost table. Lines are ordered by
// descending demand, ties broken by kind name.
func Budget(demand map[domain.SupplyKind]int) ([]BudgetLine, int) {
	lines := make([]BudgetLine, 0, len(demand))
	total := 0
	for kind, count := range demand {
		cost := count * unitCosts[kind]
		lines = append(lines, BudgetLine{Kind: kind, Count: count, UnitCost: unitCosts[kind], Cost: cost})
		total += cost
	}
	sort.Slice(lines, func(i, j int) bool {
		if lines[i].Count != lines[j].Count {
			return lines[i].Count > lines[j].Count
		}
		return lines[i].Kind < lines[j].Kind
	})
	return lines, total
}

// TimeSeries groups records by the calendar date of their timestamp, in
// ascending date order. Records whose timestamp does not parse are silently
// dropped from this view; the timestamp is system-generated and expected
// always-valid.
func TimeSeries(records []domain.RequestRecord) []DailyCount {
	byDate := make(map[string]int)
	for _, r := range records {
		t, ok := r.SubmittedAt()
		if !ok {
			continue
		}
		byDate[t.Format("2006-01-02")]++
	}
	out := make([]DailyCount, 0, len(byDate))
	for date, count := range byDate {
		out = append(out, DailyCount{Date: date, Count: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// ComputeKPIs derives the headline ratios. All rates are 0 for an empty
// snapshot rather than a division error.
func ComputeKPIs(records []domain.RequestRecord, now time.Time) KPIs {
	kpis := KPIs{}
	total := len(records)
	if total == 0 {
		return kpis
	}
	counts := StatusCounts(records)
	kpis.CompletionRate = float64(counts[domain.StatusDelivered]) / float64(total)
	kpis.BacklogRate = float64(counts[domain.StatusPending]) / float64(total)
	kpis.RejectionRate = float64(counts[domain.StatusRejected]) / float64(total)

	var hours float64
	var delivered int
	for _, r := range records {
		if r.RequestStatus != domain.StatusDelivered {
			continue
		}
		t, ok := r.SubmittedAt()
		if !ok {
			continue
		}
		hours += now.Sub(t).Hours()
		delivered++
	}
	if delivered > 0 {
		avg := hours / float64(delivered)
		kpis.AvgResponseHours = &avg
	}
	return kpis
}
