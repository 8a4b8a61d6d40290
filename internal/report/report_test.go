package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AngelCh415/ROAS_GO/internal/metrics"
	"github.com/AngelCh415/ROAS_GO/internal/models"
)

func sampleResult(withName bool) *models.Result {
	rows := []models.ResultRow{
		metrics.DeriveRow(models.JoinedRow{ProductID: "A1", ProductName: "Mug", Cost: 1, Impressions: 3, Clicks: 3, Orders: 1, GrossRevenue: 2}),
		metrics.DeriveRow(models.JoinedRow{ProductID: "B2", Cost: 80}),
	}
	s := metrics.Summarize(rows)
	return &models.Result{HasProductName: withName, Rows: rows, Summary: &s, Warnings: []string{"heads up"}}
}

func readCSV(t *testing.T, b []byte) [][]string {
	t.Helper()
	recs, err := csv.NewReader(bytes.NewReader(b)).ReadAll()
	require.NoError(t, err)
	return recs
}

func TestHeaderOrder(t *testing.T) {
	assert.Equal(t, []string{"product_id", "cost", "impressions", "clicks", "orders", "gross_revenue",
		"CPM", "CPC", "CTR", "CR", "ROAS", "CPP"}, Header(false))
	h := Header(true)
	assert.Equal(t, "product_name", h[1])
	assert.Len(t, h, 13)
}

func TestWriteCSV(t *testing.T) {
	t.Run("display", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteCSV(&buf, sampleResult(true), Display))
		recs := readCSV(t, buf.Bytes())
		require.Len(t, recs, 3)
		assert.Equal(t, Header(true), recs[0])
		assert.Equal(t, []string{"A1", "Mug", "1", "3", "3", "1", "2", "333.33", "0.33", "1", "0.3333", "2", "1"}, recs[1])
		assert.Equal(t, []string{"B2", "", "80", "0", "0", "0", "0", "0", "0", "0", "0", "0", "0"}, recs[2])
	})

	t.Run("raw", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteCSV(&buf, sampleResult(false), Raw))
		recs := readCSV(t, buf.Bytes())
		assert.Equal(t, Header(false), recs[0])
		assert.Equal(t, "0.3333333333333333", recs[1][9])
	})
}

func TestWriteSummaryCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSummaryCSV(&buf, sampleResult(false), Display))
	recs := readCSV(t, buf.Bytes())
	require.Len(t, recs, 2)
	assert.Equal(t, summaryHeader, recs[0])
	assert.Equal(t, "2", recs[1][0])
	assert.Equal(t, "81", recs[1][1])

	res := sampleResult(false)
	res.Summary = nil
	err := WriteSummaryCSV(&buf, res, Display)
	assert.True(t, errors.Is(err, models.ErrInvalidOptions))
}

func TestWriteJSON(t *testing.T) {
	res := sampleResult(false)
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, res, Display))

	var got models.Result
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got.Rows, 2)
	assert.Equal(t, 0.3333, got.Rows[0].CR)
	assert.Equal(t, "A1", got.Rows[0].ProductID)
	assert.Equal(t, "Mug", got.Rows[0].ProductName, "name is serialized when set")
	require.NotNil(t, got.Summary)
	assert.Equal(t, []string{"heads up"}, got.Warnings)
	assert.InDelta(t, 1.0/3.0, res.Rows[0].CR, 1e-12, "writer must not round the caller's result")
}

func TestParsePrecision(t *testing.T) {
	p, err := ParsePrecision("")
	require.NoError(t, err)
	assert.Equal(t, Display, p)
	p, err = ParsePrecision("raw")
	require.NoError(t, err)
	assert.Equal(t, Raw, p)
	_, err = ParsePrecision("exact")
	assert.True(t, errors.Is(err, models.ErrInvalidOptions))
}

func TestRenderTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderTable(&buf, sampleResult(true), Display))
	out := buf.String()
	assert.Contains(t, out, "A1")
	assert.Contains(t, out, "Mug")
	assert.Contains(t, out, "333.33")
	assert.Contains(t, out, "(2 rows)")
	assert.Contains(t, out, "Monthly summary")
	assert.Contains(t, out, "warning: heads up")
}

func TestRenderTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderTable(&buf, &models.Result{Warnings: []string{"nothing joined"}}, Display))
	assert.Equal(t, "(0 rows)\nwarning: nothing joined\n", buf.String())
}

func TestJSONMetricKeysMatchCSVHeader(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sampleResult(false), Display))

	var raw struct {
		Rows    []map[string]any `json:"rows"`
		Summary map[string]any   `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &raw))
	require.NotEmpty(t, raw.Rows)
	for _, col := range Header(false) {
		assert.Contains(t, raw.Rows[0], col)
	}
	for _, col := range summaryHeader {
		assert.Contains(t, raw.Summary, col)
	}
	assert.NotContains(t, raw.Rows[0], "roas")
}
