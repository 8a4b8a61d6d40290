// Package report writes pipeline results as CSV, JSON or a terminal table.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/AngelCh415/ROAS_GO/internal/metrics"
	"github.com/AngelCh415/ROAS_GO/internal/models"
)

type Precision string

const (
	Display Precision = "display"
	Raw     Precision = "raw"
)

func ParsePrecision(s string) (Precision, error) {
	switch Precision(s) {
	case "", Display:
		return Display, nil
	case Raw:
		return Raw, nil
	}
	return "", fmt.Errorf("%w: precision %q (want display or raw)", models.ErrInvalidOptions, s)
}

// Header returns the output columns in their fixed order.
func Header(withName bool) []string {
	h := []string{"product_id"}
	if withName {
		h = append(h, "product_name")
	}
	return append(h, "cost", "impressions", "clicks", "orders", "gross_revenue",
		"CPM", "CPC", "CTR", "CR", "ROAS", "CPP")
}

var summaryHeader = []string{"products", "cost", "impressions", "clicks", "orders", "gross_revenue",
	"CPM", "CPC", "CTR", "CR", "ROAS", "CPP"}

// View applies p to res. Display rounding is derived from the raw rows.
func View(res *models.Result, p Precision) *models.Result {
	if p == Raw {
		return res
	}
	return metrics.Display(res)
}

func WriteCSV(w io.Writer, res *models.Result, p Precision) error {
	res = View(res, p)
	cw := csv.NewWriter(w)
	if err := cw.Write(Header(res.HasProductName)); err != nil {
		return err
	}
	for _, r := range res.Rows {
		if err := cw.Write(record(r, res.HasProductName)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteSummaryCSV writes the one-row summary. It fails when the run did not
// include a summary.
func WriteSummaryCSV(w io.Writer, res *models.Result, p Precision) error {
	if res.Summary == nil {
		return fmt.Errorf("%w: summary was not requested", models.ErrInvalidOptions)
	}
	res = View(res, p)
	cw := csv.NewWriter(w)
	if err := cw.Write(summaryHeader); err != nil {
		return err
	}
	if err := cw.Write(summaryRecord(*res.Summary)); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

func WriteJSON(w io.Writer, res *models.Result, p Precision) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", " ")
	return enc.Encode(View(res, p))
}

func record(r models.ResultRow, withName bool) []string {
	out := []string{r.ProductID}
	if withName {
		out = append(out, r.ProductName)
	}
	return append(out, numbers(r.Cost, r.Impressions, r.Clicks, r.Orders, r.GrossRevenue,
		r.CPM, r.CPC, r.CTR, r.CR, r.ROAS, r.CPP)...)
}

func summaryRecord(s models.Summary) []string {
	return append([]string{strconv.Itoa(s.Products)}, numbers(s.Cost, s.Impressions, s.Clicks, s.Orders, s.GrossRevenue,
		s.CPM, s.CPC, s.CTR, s.CR, s.ROAS, s.CPP)...)
}

func numbers(vs ...float64) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = strconv.FormatFloat(v, 'f', -1, 64)
	}
	return out
}
