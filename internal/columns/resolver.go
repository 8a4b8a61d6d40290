// Package columns maps semantic roles onto the columns of an uploaded table
// using ordered keyword sets.
package columns

import (
	"strings"
	"unicode"

	"github.com/AngelCh415/ROAS_GO/internal/models"
)

// KeywordSet matches a column in which every keyword starts a word, so "id"
// matches "product id" but not "product video views". A run-together header
// such as "productid" matches the keywords joined.
type KeywordSet []string

// RoleDef is the declarative lookup rule for one role. Keyword sets are
// tried in order; a column with a word starting with any Exclude entry never
// matches.
type RoleDef struct {
	Role     models.Role
	Keywords []KeywordSet
	Exclude  []string
}

// Resolution is the outcome of resolving one role against one table.
type Resolution struct {
	Role   models.Role
	Column string
	Found  bool
}

var defaultRoles = map[models.Role]RoleDef{
	models.RoleProductID: {
		Role:     models.RoleProductID,
		Keywords: []KeywordSet{{"product", "id"}, {"item", "id"}, {"product", "code"}, {"sku", "id"}},
		Exclude:  []string{"name", "title", "video", "view"},
	},
	models.RoleProductName: {
		Role:     models.RoleProductName,
		Keywords: []KeywordSet{{"product", "name"}, {"product", "title"}, {"item", "name"}, {"name"}},
		Exclude:  []string{"campaign", "creative", "ad", "group", "account", "store", "shop"},
	},
	models.RoleCost: {
		Role:     models.RoleCost,
		Keywords: []KeywordSet{{"cost"}, {"spend"}},
		Exclude:  []string{"per", "cpm", "cpc", "cpa", "rate"},
	},
	models.RoleImpressions: {
		Role:     models.RoleImpressions,
		Keywords: []KeywordSet{{"impression"}, {"impr"}},
		Exclude:  []string{"per", "rate", "cpm", "share"},
	},
	models.RoleClicks: {
		Role:     models.RoleClicks,
		Keywords: []KeywordSet{{"click"}},
		Exclude:  []string{"per", "rate", "through", "ctr", "cpc"},
	},
	models.RoleOrders: {
		Role:     models.RoleOrders,
		Keywords: []KeywordSet{{"order", "sku"}, {"items", "sold"}, {"order"}, {"purchase"}},
		Exclude:  []string{"per", "rate", "cost", "value"},
	},
	models.RoleGrossRevenue: {
		Role:     models.RoleGrossRevenue,
		Keywords: []KeywordSet{{"gross", "revenue"}, {"revenue"}, {"gmv"}},
		Exclude:  []string{"per", "roas"},
	},
}

// Def returns the built-in rule for role.
func Def(role models.Role) (RoleDef, bool) {
	d, ok := defaultRoles[role]
	return d, ok
}

// Resolve finds the column for def among cols, which must already be
// normalized. Keyword sets win by priority; within a set the first column in
// input order wins.
func Resolve(cols []string, def RoleDef) Resolution {
	split := make([][]string, len(cols))
	for i, c := range cols {
		split[i] = words(c)
	}
	for _, set := range def.Keywords {
		for i, c := range cols {
			if excluded(split[i], def.Exclude) {
				continue
			}
			if containsAll(split[i], set) {
				return Resolution{Role: def.Role, Column: c, Found: true}
			}
		}
	}
	return Resolution{Role: def.Role}
}

func containsAll(words []string, set KeywordSet) bool {
	if len(set) == 0 {
		return false
	}
	if len(set) > 1 && hasWordPrefix(words, strings.Join(set, "")) {
		return true
	}
	for _, k := range set {
		if !hasWordPrefix(words, k) {
			return false
		}
	}
	return true
}

func excluded(words []string, ex []string) bool {
	for _, e := range ex {
		if hasWordPrefix(words, e) {
			return true
		}
	}
	return false
}

func hasWordPrefix(words []string, k string) bool {
	for _, w := range words {
		if strings.HasPrefix(w, k) {
			return true
		}
	}
	return false
}

// words splits a normalized column name on anything that is not a letter or
// digit: "click-through rate" -> [click through rate].
func words(col string) []string {
	return strings.FieldsFunc(col, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
