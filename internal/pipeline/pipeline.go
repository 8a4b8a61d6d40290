// Package pipeline reconciles cost and ad-performance tables into per-product
// efficiency metrics. Every stage takes tables and returns new ones.
package pipeline

import (
	"errors"
	"fmt"

	"github.com/AngelCh415/ROAS_GO/internal/columns"
	"github.com/AngelCh415/ROAS_GO/internal/metrics"
	"github.com/AngelCh415/ROAS_GO/internal/models"
)

// Options selects between the supported pipeline variants.
type Options struct {
	AllowMultipleCostFiles bool
	ColumnSelection        columns.Selection
	EnrichmentEnabled      bool
	IncludeSummary         bool
	// Overrides holds caller-picked columns per table kind; used only with
	// columns.SelectManual.
	Overrides map[models.TableKind]map[models.Role]string
}

// Input is one set of uploaded tables.
type Input struct {
	Cost        []*models.Table
	Performance []*models.Table
	Names       *models.Table
}

var (
	costCols = []string{string(models.RoleProductID), string(models.RoleProductName), string(models.RoleCost)}
	perfCols = []string{
		string(models.RoleProductID),
		string(models.RoleImpressions),
		string(models.RoleClicks),
		string(models.RoleOrders),
		string(models.RoleGrossRevenue),
	}
)

// Run executes resolve -> aggregate -> join -> derive -> (enrich) ->
// (summarize). Any required-column failure aborts the run with no result.
func Run(in Input, opt Options) (*models.Result, error) {
	if len(in.Cost) == 0 {
		return nil, fmt.Errorf("%w: no cost table supplied", models.ErrInvalidOptions)
	}
	if len(in.Performance) == 0 {
		return nil, fmt.Errorf("%w: no performance table supplied", models.ErrInvalidOptions)
	}
	if len(in.Cost) > 1 && !opt.AllowMultipleCostFiles {
		return nil, fmt.Errorf("%w: %d cost tables supplied but multiple cost files are not allowed", models.ErrInvalidOptions, len(in.Cost))
	}
	sel := opt.ColumnSelection
	if sel == "" {
		sel = columns.SelectAuto
	}

	res := &models.Result{}
	cost, hasName, warn, err := projectCost(in.Cost, sel, opt.Overrides[models.KindCost])
	if err != nil {
		return nil, err
	}
	res.HasProductName = hasName
	if !opt.EnrichmentEnabled || in.Names == nil {
		res.Warnings = append(res.Warnings, warn...)
	}

	perf, err := projectPerformance(in.Performance, sel, opt.Overrides[models.KindPerformance])
	if err != nil {
		return nil, err
	}
	agg, err := Aggregate(perf, string(models.RoleProductID), perfCols[1:])
	if err != nil {
		return nil, err
	}
	joined, err := Join(cost, agg, string(models.RoleProductID), string(models.RoleProductID))
	if err != nil {
		return nil, err
	}
	res.Rows = deriveRows(joined)

	if opt.EnrichmentEnabled && in.Names != nil {
		names := in.Names.Normalize()
		m, err := columns.ResolveTable(names, columns.NamesSpec, sel, opt.Overrides[models.KindNames])
		var missing *models.MissingColumnsError
		switch {
		case errors.As(err, &missing):
			res.Warnings = append(res.Warnings, fmt.Sprintf("name table %s: enrichment skipped, %s", names.Name, rolesText(missing.Roles)))
		case err != nil:
			return nil, err
		default:
			if res, err = Enrich(res, names, m.Columns[models.RoleProductID], m.Columns[models.RoleProductName]); err != nil {
				return nil, err
			}
		}
	}

	if opt.IncludeSummary {
		s := metrics.Summarize(res.Rows)
		res.Summary = &s
	}
	return res, nil
}

func projectCost(tables []*models.Table, sel columns.Selection, overrides map[models.Role]string) (*models.Table, bool, []string, error) {
	var (
		rows    [][]any
		hasName bool
		warn    []string
	)
	for _, t := range tables {
		t = t.Normalize()
		m, err := columns.ResolveTable(t, columns.CostSpec, sel, overrides)
		if err != nil {
			return nil, false, nil, err
		}
		idIx, costIx := t.Index(m.Columns[models.RoleProductID]), t.Index(m.Columns[models.RoleCost])
		nameIx := -1
		if c, ok := m.Column(models.RoleProductName); ok {
			nameIx = t.Index(c)
			hasName = true
		} else {
			warn = append(warn, fmt.Sprintf("cost table %s: optional column %s not found", t.Name, models.RoleProductName))
		}
		for r := range t.Rows {
			name := ""
			if nameIx >= 0 {
				name = cellString(t.Cell(r, nameIx))
			}
			rows = append(rows, []any{models.CanonicalID(t.Cell(r, idIx)), name, models.Number(t.Cell(r, costIx))})
		}
	}
	return models.NewTable(string(models.KindCost), costCols, rows).Normalize(), hasName, warn, nil
}

func projectPerformance(tables []*models.Table, sel columns.Selection, overrides map[models.Role]string) (*models.Table, error) {
	var rows [][]any
	for _, t := range tables {
		t = t.Normalize()
		m, err := columns.ResolveTable(t, columns.PerformanceSpec, sel, overrides)
		if err != nil {
			return nil, err
		}
		ix := make([]int, len(perfCols))
		for i, c := range perfCols {
			ix[i] = t.Index(m.Columns[models.Role(c)])
		}
		for r := range t.Rows {
			row := make([]any, len(ix))
			for i, j := range ix {
				row[i] = t.Cell(r, j)
			}
			rows = append(rows, row)
		}
	}
	return models.NewTable(string(models.KindPerformance), perfCols, rows).Normalize(), nil
}

func deriveRows(joined *models.Table) []models.ResultRow {
	ix := func(r models.Role) int { return joined.Index(string(r)) }
	id, name, cost := ix(models.RoleProductID), ix(models.RoleProductName), ix(models.RoleCost)
	imp, clk, ord, rev := ix(models.RoleImpressions), ix(models.RoleClicks), ix(models.RoleOrders), ix(models.RoleGrossRevenue)

	out := make([]models.ResultRow, 0, joined.Len())
	for r := range joined.Rows {
		out = append(out, metrics.DeriveRow(models.JoinedRow{
			ProductID:    cellString(joined.Cell(r, id)),
			ProductName:  cellString(joined.Cell(r, name)),
			Cost:         models.Number(joined.Cell(r, cost)),
			Impressions:  models.Number(joined.Cell(r, imp)),
			Clicks:       models.Number(joined.Cell(r, clk)),
			Orders:       models.Number(joined.Cell(r, ord)),
			GrossRevenue: models.Number(joined.Cell(r, rev)),
		}))
	}
	return out
}

func rolesText(roles []models.Role) string {
	s := "missing"
	for i, r := range roles {
		if i > 0 {
			s += ","
		}
		s += " " + string(r)
	}
	return s
}
