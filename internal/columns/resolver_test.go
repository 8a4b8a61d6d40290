package columns

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AngelCh415/ROAS_GO/internal/models"
)

func TestResolveDefaults(t *testing.T) {
	tiktok := []string{
		"creative name", "product id", "cost", "cost per order", "impressions", "cpm",
		"clicks", "click-through rate", "sku orders", "gross revenue", "roas",
	}
	tests := []struct {
		name string
		cols []string
		role models.Role
		want string
		ok   bool
	}{
		{"product id", tiktok, models.RoleProductID, "product id", true},
		{"cost skips cost per order", []string{"cost per order", "cost"}, models.RoleCost, "cost", true},
		{"cost falls back to spend", []string{"product id", "ad spend"}, models.RoleCost, "ad spend", true},
		{"clicks skips ctr", []string{"click-through rate", "clicks"}, models.RoleClicks, "clicks", true},
		{"orders prefers sku orders", []string{"orders", "sku orders"}, models.RoleOrders, "sku orders", true},
		{"orders falls back to order", []string{"total orders"}, models.RoleOrders, "total orders", true},
		{"orders from items sold", []string{"items sold"}, models.RoleOrders, "items sold", true},
		{"revenue from gmv", []string{"gmv"}, models.RoleGrossRevenue, "gmv", true},
		{"gross revenue", tiktok, models.RoleGrossRevenue, "gross revenue", true},
		{"product id ignores product name", []string{"product name", "product id"}, models.RoleProductID, "product id", true},
		{"product name", []string{"product id", "product name"}, models.RoleProductName, "product name", true},
		{"impressions unresolved", []string{"product id", "cpm"}, models.RoleImpressions, "", false},
		{"product name skips campaign name", []string{"campaign name", "product id", "cost"}, models.RoleProductName, "", false},
		{"product name skips creative and ad group", []string{"creative name", "ad group name", "account name", "product name"}, models.RoleProductName, "product name", true},
		{"bare name column", []string{"sku", "name"}, models.RoleProductName, "name", true},
		{"product id skips video views", []string{"product video views", "product id"}, models.RoleProductID, "product id", true},
		{"id is not matched inside words", []string{"paid width", "item id"}, models.RoleProductID, "item id", true},
		{"snake case id", []string{"product_id"}, models.RoleProductID, "product_id", true},
		{"run-together id", []string{"productid"}, models.RoleProductID, "productid", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def, ok := Def(tt.role)
			require.True(t, ok)
			got := Resolve(tt.cols, def)
			assert.Equal(t, tt.ok, got.Found)
			assert.Equal(t, tt.want, got.Column)
			assert.Equal(t, tt.role, got.Role)
		})
	}
}

func TestResolveTieBreakFirstColumnWins(t *testing.T) {
	def := RoleDef{Role: models.RoleCost, Keywords: []KeywordSet{{"cost"}}}
	cols := []string{"cost (usd)", "cost"}
	first := Resolve(cols, def)
	assert.Equal(t, "cost (usd)", first.Column)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Resolve(cols, def), "resolution must be deterministic")
	}
}

func TestResolveKeywordSetPriority(t *testing.T) {
	// the higher-priority set wins even when its column comes later
	def := RoleDef{Role: models.RoleOrders, Keywords: []KeywordSet{{"order", "sku"}, {"order"}}}
	got := Resolve([]string{"orders", "sku orders"}, def)
	assert.Equal(t, "sku orders", got.Column)
}

func TestResolveEmptyKeywordSetNeverMatches(t *testing.T) {
	def := RoleDef{Role: models.RoleCost, Keywords: []KeywordSet{{}}}
	assert.False(t, Resolve([]string{"cost"}, def).Found)
}

func TestResolveTable(t *testing.T) {
	perf := models.NewTable("perf.xlsx",
		[]string{"Product ID", "Impressions", "Clicks", "SKU Orders", "Gross Revenue"}, nil)

	m, err := ResolveTable(perf, PerformanceSpec, SelectAuto, nil)
	require.NoError(t, err)
	assert.Equal(t, "product id", m.Columns[models.RoleProductID])
	assert.Equal(t, "sku orders", m.Columns[models.RoleOrders])
	assert.Empty(t, m.Missing)
}

func TestResolveTableMissingRequired(t *testing.T) {
	perf := models.NewTable("perf.xlsx", []string{"Product ID", "Impressions"}, nil)

	_, err := ResolveTable(perf, PerformanceSpec, SelectAuto, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrMissingRequiredColumn))

	var mc *models.MissingColumnsError
	require.True(t, errors.As(err, &mc))
	assert.Equal(t, "perf.xlsx", mc.Table)
	assert.Equal(t, []models.Role{models.RoleClicks, models.RoleOrders, models.RoleGrossRevenue}, mc.Roles)
	assert.Equal(t, []string{"product id", "impressions"}, mc.Columns)
}

func TestResolveTableOptionalMissing(t *testing.T) {
	cost := models.NewTable("cost.xlsx", []string{"Product ID", "Cost"}, nil)

	m, err := ResolveTable(cost, CostSpec, SelectAuto, nil)
	require.NoError(t, err)
	_, ok := m.Column(models.RoleProductName)
	assert.False(t, ok)
	assert.Equal(t, []models.Role{models.RoleProductName}, m.Missing)
}

func TestResolveTableManual(t *testing.T) {
	cost := models.NewTable("cost.xlsx", []string{"Code", "Budget Used", "Cost"}, nil)
	overrides := map[models.Role]string{
		models.RoleProductID: " CODE ",
		models.RoleCost:      "Budget Used",
	}

	t.Run("overrides win in manual mode", func(t *testing.T) {
		m, err := ResolveTable(cost, CostSpec, SelectManual, overrides)
		require.NoError(t, err)
		assert.Equal(t, "code", m.Columns[models.RoleProductID])
		assert.Equal(t, "budget used", m.Columns[models.RoleCost])
	})

	t.Run("overrides ignored in auto mode", func(t *testing.T) {
		_, err := ResolveTable(cost, CostSpec, SelectAuto, overrides)
		assert.True(t, errors.Is(err, models.ErrMissingRequiredColumn))
	})

	t.Run("override naming an absent column is unresolved", func(t *testing.T) {
		_, err := ResolveTable(cost, CostSpec, SelectManual, map[models.Role]string{
			models.RoleProductID: "sku",
		})
		var mc *models.MissingColumnsError
		require.True(t, errors.As(err, &mc))
		assert.Equal(t, []models.Role{models.RoleProductID}, mc.Roles)
	})
}

func TestParseSelection(t *testing.T) {
	s, err := ParseSelection("")
	require.NoError(t, err)
	assert.Equal(t, SelectAuto, s)

	s, err = ParseSelection("manual")
	require.NoError(t, err)
	assert.Equal(t, SelectManual, s)

	_, err = ParseSelection("guess")
	assert.True(t, errors.Is(err, models.ErrInvalidOptions))
}
