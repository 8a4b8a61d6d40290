package ingest

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/AngelCh415/ROAS_GO/internal/models"
)

const utf8BOM = "\ufeff"

var zipMagic = []byte("PK\x03\x04")

// ReadTable decodes one upload into a table. The format comes from the file
// extension, or from the leading bytes when the extension is unknown.
// Decode failures wrap models.ErrMalformedInput.
func ReadTable(name string, r io.Reader) (*models.Table, error) {
	br := bufio.NewReader(r)
	var (
		rows [][]string
		err  error
	)
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		rows, err = readXLSX(br)
	case ".csv", ".tsv", ".txt":
		rows, err = readDelimited(br)
	default:
		head, _ := br.Peek(len(zipMagic))
		if bytes.Equal(head, zipMagic) {
			rows, err = readXLSX(br)
		} else {
			rows, err = readDelimited(br)
		}
	}
	if err != nil {
		return nil, models.Malformed(name, err)
	}
	t, err := toTable(name, rows)
	if err != nil {
		return nil, models.Malformed(name, err)
	}
	return t, nil
}

func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	// raw values keep number formats (thousands separators, currency) out of the cells
	return f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
}

func readDelimited(br *bufio.Reader) ([][]string, error) {
	head, err := br.Peek(4096)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, err
	}
	cr := csv.NewReader(br)
	cr.Comma = sniffDelimiter(head)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	return cr.ReadAll()
}

// sniffDelimiter picks the most frequent of ',', ';' and '\t' on the first line.
func sniffDelimiter(head []byte) rune {
	line := string(head)
	if i := strings.IndexAny(line, "\r\n"); i >= 0 {
		line = line[:i]
	}
	best, n := ',', strings.Count(line, ",")
	for _, d := range []rune{';', '\t'} {
		if c := strings.Count(line, string(d)); c > n {
			best, n = d, c
		}
	}
	return best
}

func toTable(name string, rows [][]string) (*models.Table, error) {
	start := -1
	for i, r := range rows {
		if !blank(r) {
			start = i
			break
		}
	}
	if start < 0 {
		return nil, errors.New("no header row")
	}
	header := append([]string(nil), rows[start]...)
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}

	data := make([][]any, 0, len(rows)-start-1)
	for _, r := range rows[start+1:] {
		if blank(r) {
			continue
		}
		row := make([]any, len(header))
		for i := range header {
			if i < len(r) && strings.TrimSpace(r[i]) != "" {
				row[i] = r[i]
			}
		}
		data = append(data, row)
	}
	return models.NewTable(filepath.Base(name), header, data), nil
}

func blank(r []string) bool {
	for _, c := range r {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
