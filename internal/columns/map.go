package columns

import (
	"fmt"

	"github.com/AngelCh415/ROAS_GO/internal/models"
)

// Selection chooses between keyword detection and caller-picked columns.
type Selection string

const (
	SelectAuto   Selection = "auto"
	SelectManual Selection = "manual"
)

// ParseSelection accepts "auto", "manual" or empty (auto).
func ParseSelection(s string) (Selection, error) {
	switch Selection(s) {
	case "", SelectAuto:
		return SelectAuto, nil
	case SelectManual:
		return SelectManual, nil
	}
	return "", fmt.Errorf("%w: column selection %q (want auto or manual)", models.ErrInvalidOptions, s)
}

// Spec lists the roles one table must (Required) or may (Optional) provide.
type Spec struct {
	Required []models.Role
	Optional []models.Role
}

var (
	CostSpec = Spec{
		Required: []models.Role{models.RoleProductID, models.RoleCost},
		Optional: []models.Role{models.RoleProductName},
	}
	PerformanceSpec = Spec{
		Required: []models.Role{models.RoleProductID, models.RoleImpressions, models.RoleClicks, models.RoleOrders, models.RoleGrossRevenue},
	}
	NamesSpec = Spec{
		Required: []models.Role{models.RoleProductID, models.RoleProductName},
	}
)

// Map is the resolved role -> column mapping for one table.
type Map struct {
	Columns map[models.Role]string
	Missing []models.Role // optional roles left unresolved
}

func (m Map) Column(r models.Role) (string, bool) {
	c, ok := m.Columns[r]
	return c, ok
}

// ResolveTable resolves spec against t. In manual mode an override names the
// column for its role directly; roles without one are detected as in auto
// mode. Unresolved required roles yield a *models.MissingColumnsError.
func ResolveTable(t *models.Table, spec Spec, sel Selection, overrides map[models.Role]string) (Map, error) {
	t = t.Normalize()
	m := Map{Columns: make(map[models.Role]string, len(spec.Required)+len(spec.Optional))}

	resolve := func(role models.Role) (string, bool) {
		if sel == SelectManual {
			if o, ok := overrides[role]; ok && o != "" {
				col := models.NormalizeColumn(o)
				return col, t.Index(col) >= 0
			}
		}
		def, ok := Def(role)
		if !ok {
			return "", false
		}
		r := Resolve(t.Columns, def)
		return r.Column, r.Found
	}

	var missing []models.Role
	for _, role := range spec.Required {
		if c, ok := resolve(role); ok {
			m.Columns[role] = c
		} else {
			missing = append(missing, role)
		}
	}
	if len(missing) > 0 {
		return Map{}, &models.MissingColumnsError{Table: t.Name, Roles: missing, Columns: append([]string(nil), t.Columns...)}
	}
	for _, role := range spec.Optional {
		if c, ok := resolve(role); ok {
			m.Columns[role] = c
		} else {
			m.Missing = append(m.Missing, role)
		}
	}
	return m, nil
}
