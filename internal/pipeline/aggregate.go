package pipeline

import (
	"fmt"

	"github.com/AngelCh415/ROAS_GO/internal/models"
)

// Aggregate groups t by idCol and sums sumCols per group. The result has one
// row per distinct identifier in first-seen order, with columns
// [idCol, sumCols...]. Rows with an empty identifier are skipped.
func Aggregate(t *models.Table, idCol string, sumCols []string) (*models.Table, error) {
	idIx := t.Index(idCol)
	if idIx < 0 {
		return nil, fmt.Errorf("aggregate %s: no column %q", t.Name, idCol)
	}
	sumIx := make([]int, len(sumCols))
	for i, c := range sumCols {
		if sumIx[i] = t.Index(c); sumIx[i] < 0 {
			return nil, fmt.Errorf("aggregate %s: no column %q", t.Name, c)
		}
	}

	type group struct {
		id   string
		sums []float64
	}
	var order []*group
	byKey := make(map[string]*group)
	for r := range t.Rows {
		raw := t.Cell(r, idIx)
		key := models.IDKey(raw)
		if key == "" {
			continue
		}
		g, ok := byKey[key]
		if !ok {
			g = &group{id: models.CanonicalID(raw), sums: make([]float64, len(sumCols))}
			byKey[key] = g
			order = append(order, g)
		}
		for i, ix := range sumIx {
			g.sums[i] += models.Number(t.Cell(r, ix))
		}
	}

	cols := append([]string{idCol}, sumCols...)
	rows := make([][]any, 0, len(order))
	for _, g := range order {
		row := make([]any, 0, len(cols))
		row = append(row, g.id)
		for _, s := range g.sums {
			row = append(row, s)
		}
		rows = append(rows, row)
	}
	out := models.NewTable(t.Name, cols, rows)
	if t.Normalized() {
		out = out.Normalize()
	}
	return out, nil
}
