package models

// Role is a semantic column role looked up in an uploaded table.
type Role string

const (
	RoleProductID    Role = "product_id"
	RoleProductName  Role = "product_name"
	RoleCost         Role = "cost"
	RoleImpressions  Role = "impressions"
	RoleClicks       Role = "clicks"
	RoleOrders       Role = "orders"
	RoleGrossRevenue Role = "gross_revenue"
)

// TableKind identifies which upload a table came from.
type TableKind string

const (
	KindCost        TableKind = "cost"
	KindPerformance TableKind = "performance"
	KindNames       TableKind = "names"
)

type JoinedRow struct {
	ProductID    string
	ProductName  string
	Cost         float64
	Impressions  float64
	Clicks       float64
	Orders       float64
	GrossRevenue float64
}

// Metrics serialize under the same upper-case names as the CSV header.
type Metrics struct {
	CPM  float64 `json:"CPM"`
	CPC  float64 `json:"CPC"`
	CTR  float64 `json:"CTR"`
	CR   float64 `json:"CR"`
	ROAS float64 `json:"ROAS"`
	CPP  float64 `json:"CPP"`
}

type ResultRow struct {
	ProductID    string  `json:"product_id"`
	ProductName  string  `json:"product_name,omitempty"`
	Cost         float64 `json:"cost"`
	Impressions  float64 `json:"impressions"`
	Clicks       float64 `json:"clicks"`
	Orders       float64 `json:"orders"`
	GrossRevenue float64 `json:"gross_revenue"`
	Metrics
}

type Summary struct {
	Products     int     `json:"products"`
	Cost         float64 `json:"cost"`
	Impressions  float64 `json:"impressions"`
	Clicks       float64 `json:"clicks"`
	Orders       float64 `json:"orders"`
	GrossRevenue float64 `json:"gross_revenue"`
	Metrics
}

// Result is the output of one pipeline run. Rows hold full precision;
// display rounding is applied on the way out.
type Result struct {
	RunID          string      `json:"run_id,omitempty"`
	HasProductName bool        `json:"has_product_name"`
	Rows           []ResultRow `json:"rows"`
	Summary        *Summary    `json:"summary,omitempty"`
	Warnings       []string    `json:"warnings,omitempty"`
}
