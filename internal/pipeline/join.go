package pipeline

import (
	"fmt"

	"github.com/AngelCh415/ROAS_GO/internal/models"
)

const dupSuffix = "_right"

// Join left-joins cost against agg on the identifier columns. Every cost row
// appears exactly once; agg columns are zero when no aggregate matches.
// Aggregate columns that clash with a cost column get a "_right" suffix.
func Join(cost, agg *models.Table, costIDCol, aggIDCol string) (*models.Table, error) {
	costIx := cost.Index(costIDCol)
	if costIx < 0 {
		return nil, fmt.Errorf("join %s: no column %q", cost.Name, costIDCol)
	}
	aggIx := agg.Index(aggIDCol)
	if aggIx < 0 {
		return nil, fmt.Errorf("join %s: no column %q", agg.Name, aggIDCol)
	}

	cols := append([]string(nil), cost.Columns...)
	var carry []int
	for i, c := range agg.Columns {
		if i == aggIx {
			continue
		}
		if cost.Index(c) >= 0 {
			c += dupSuffix
		}
		cols = append(cols, c)
		carry = append(carry, i)
	}

	// first aggregate row wins for a repeated key, keeping the row count fixed
	lookup := make(map[string]int, agg.Len())
	for r := range agg.Rows {
		key := models.IDKey(agg.Cell(r, aggIx))
		if _, seen := lookup[key]; key != "" && !seen {
			lookup[key] = r
		}
	}

	rows := make([][]any, 0, cost.Len())
	for r := range cost.Rows {
		row := make([]any, 0, len(cols))
		for i := range cost.Columns {
			row = append(row, cost.Cell(r, i))
		}
		ar, ok := lookup[models.IDKey(cost.Cell(r, costIx))]
		for _, i := range carry {
			if ok {
				row = append(row, models.Number(agg.Cell(ar, i)))
			} else {
				row = append(row, float64(0))
			}
		}
		rows = append(rows, row)
	}
	out := models.NewTable(cost.Name, cols, rows)
	if cost.Normalized() {
		out = out.Normalize()
	}
	return out, nil
}
