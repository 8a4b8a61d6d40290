package report

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/AngelCh415/ROAS_GO/internal/models"
)

// RenderTable prints the result, and the summary when present, as terminal
// tables.
func RenderTable(w io.Writer, res *models.Result, p Precision) error {
	res = View(res, p)
	if len(res.Rows) == 0 {
		if _, err := fmt.Fprintln(w, "(0 rows)"); err != nil {
			return err
		}
	} else {
		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.SetStyle(table.StyleLight)
		t.AppendHeader(prettyRow(Header(res.HasProductName)))
		for _, r := range res.Rows {
			t.AppendRow(prettyRow(record(r, res.HasProductName)))
		}
		t.Render()
		if _, err := fmt.Fprintf(w, "(%d rows)\n", len(res.Rows)); err != nil {
			return err
		}
	}

	if s := res.Summary; s != nil {
		st := table.NewWriter()
		st.SetOutputMirror(w)
		st.SetStyle(table.StyleLight)
		st.SetTitle("Monthly summary")
		st.AppendHeader(prettyRow(summaryHeader))
		st.AppendRow(prettyRow(summaryRecord(*s)))
		st.Render()
	}
	for _, warn := range res.Warnings {
		if _, err := fmt.Fprintf(w, "warning: %s\n", warn); err != nil {
			return err
		}
	}
	return nil
}

func prettyRow(cells []string) table.Row {
	r := make(table.Row, len(cells))
	for i, c := range cells {
		r[i] = c
	}
	return r
}
