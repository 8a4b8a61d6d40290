// Package metrics derives advertising efficiency ratios from summed
// performance figures.
package metrics

import (
	"github.com/shopspring/decimal"

	"github.com/AngelCh415/ROAS_GO/internal/models"
)

// Derive computes the six ratios for one joined row. A zero denominator
// yields 0 for that ratio.
func Derive(cost, impressions, clicks, orders, grossRevenue float64) models.Metrics {
	return models.Metrics{
		CPM:  safeDivF(cost, impressions) * 1000,
		CPC:  safeDivF(cost, clicks),
		CTR:  safeDivF(clicks, impressions),
		CR:   safeDivF(orders, clicks),
		ROAS: safeDivF(grossRevenue, cost),
		CPP:  safeDivF(cost, orders),
	}
}

// DeriveRow turns a joined row into a full-precision result row.
func DeriveRow(j models.JoinedRow) models.ResultRow {
	return models.ResultRow{
		ProductID:    j.ProductID,
		ProductName:  j.ProductName,
		Cost:         j.Cost,
		Impressions:  j.Impressions,
		Clicks:       j.Clicks,
		Orders:       j.Orders,
		GrossRevenue: j.GrossRevenue,
		Metrics:      Derive(j.Cost, j.Impressions, j.Clicks, j.Orders, j.GrossRevenue),
	}
}

// Summarize collapses rows into one aggregate. Ratios are recomputed from
// the summed figures, never averaged.
func Summarize(rows []models.ResultRow) models.Summary {
	s := models.Summary{Products: len(rows)}
	for _, r := range rows {
		s.Cost += r.Cost
		s.Impressions += r.Impressions
		s.Clicks += r.Clicks
		s.Orders += r.Orders
		s.GrossRevenue += r.GrossRevenue
	}
	s.Metrics = Derive(s.Cost, s.Impressions, s.Clicks, s.Orders, s.GrossRevenue)
	return s
}

func safeDivF(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}

// Display precision: money and cost ratios to cents, rate fractions to four
// places.
const (
	moneyPlaces = 2
	ratePlaces  = 4
)

func round(f float64, places int32) float64 {
	return decimal.NewFromFloat(f).Round(places).InexactFloat64()
}

func roundMetrics(m models.Metrics) models.Metrics {
	return models.Metrics{
		CPM:  round(m.CPM, moneyPlaces),
		CPC:  round(m.CPC, moneyPlaces),
		CTR:  round(m.CTR, ratePlaces),
		CR:   round(m.CR, ratePlaces),
		ROAS: round(m.ROAS, moneyPlaces),
		CPP:  round(m.CPP, moneyPlaces),
	}
}

// RoundRow is the display view of a full-precision row.
func RoundRow(r models.ResultRow) models.ResultRow {
	r.Cost = round(r.Cost, moneyPlaces)
	r.GrossRevenue = round(r.GrossRevenue, moneyPlaces)
	r.Metrics = roundMetrics(r.Metrics)
	return r
}

func RoundSummary(s models.Summary) models.Summary {
	s.Cost = round(s.Cost, moneyPlaces)
	s.GrossRevenue = round(s.GrossRevenue, moneyPlaces)
	s.Metrics = roundMetrics(s.Metrics)
	return s
}

// Display returns a copy of res with every row and the summary rounded for
// presentation. res itself is left untouched.
func Display(res *models.Result) *models.Result {
	out := *res
	out.Rows = make([]models.ResultRow, len(res.Rows))
	for i, r := range res.Rows {
		out.Rows[i] = RoundRow(r)
	}
	if res.Summary != nil {
		s := RoundSummary(*res.Summary)
		out.Summary = &s
	}
	return &out
}
