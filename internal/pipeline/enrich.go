package pipeline

import (
	"fmt"
	"strings"

	"github.com/AngelCh415/ROAS_GO/internal/models"
)

// Enrich attaches product names from names to the rows of res. All rows are
// kept; a row keeps its existing name unless the lookup has a non-empty one.
// The first occurrence of a repeated identifier in names wins.
func Enrich(res *models.Result, names *models.Table, idCol, nameCol string) (*models.Result, error) {
	idIx, nameIx := names.Index(idCol), names.Index(nameCol)
	if idIx < 0 || nameIx < 0 {
		return nil, fmt.Errorf("enrich %s: columns %q/%q not found", names.Name, idCol, nameCol)
	}

	lookup := make(map[string]string, names.Len())
	for r := range names.Rows {
		key := models.IDKey(names.Cell(r, idIx))
		if key == "" {
			continue
		}
		if _, seen := lookup[key]; !seen {
			lookup[key] = cellString(names.Cell(r, nameIx))
		}
	}

	out := *res
	out.HasProductName = true
	out.Rows = make([]models.ResultRow, len(res.Rows))
	for i, row := range res.Rows {
		if n := lookup[strings.ToLower(row.ProductID)]; n != "" {
			row.ProductName = n
		}
		out.Rows[i] = row
	}
	return &out, nil
}

func cellString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	default:
		return strings.TrimSpace(fmt.Sprint(x))
	}
}
