// Package importer reads student rows from xlsx workbooks.
//
// The first sheet is used. Its first row is a header naming the name, year
// and section columns in any order; later rows are data.
package importer

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/okian/roster/internal/domain/model"
)

// Row is one data row of the sheet. Number is the 1-based spreadsheet row.
type Row struct {
	Number  int
	Student model.NewStudent
}

// Header aliases accepted for each field, compared case-insensitively.
var columnAliases = map[string][]string{ //nolint:gochecknoglobals // read-only lookup table
	"name":    {"name", "student", "student name", "full name"},
	"year":    {"year", "year level", "grade", "level"},
	"section": {"section", "class", "block"},
}

// Option configures Parse.
type Option func(*parser)

type parser struct {
	maxRows int
}

// WithMaxRows rejects sheets with more than n data rows.
func WithMaxRows(n int) Option {
	return func(p *parser) {
		if n > 0 {
			p.maxRows = n
		}
	}
}

// Parse reads the first sheet of an xlsx workbook. Rows whose cells are all
// blank are dropped. Rows with missing values are returned as-is for the
// caller to validate.
func Parse(r io.Reader, opts ...Option) ([]Row, error) {
	p := &parser{}
	for _, opt := range opts {
		opt(p)
	}

	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpenWorkbook, err)
	}
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, ErrNoSheet
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("%w: sheet %s: %w", ErrOpenWorkbook, sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: sheet %s is empty", ErrMissingColumn, sheet)
	}

	cols, err := mapHeader(rows[0])
	if err != nil {
		return nil, err
	}

	out := make([]Row, 0, len(rows)-1)
	for i, cells := range rows[1:] {
		if blank(cells) {
			continue
		}
		if p.maxRows > 0 && len(out) == p.maxRows {
			return nil, fmt.Errorf("%w: limit is %d", ErrTooManyRows, p.maxRows)
		}
		out = append(out, Row{
			Number: i + 2,
			Student: model.NewStudent{
				Name:    cell(cells, cols["name"]),
				Year:    cell(cells, cols["year"]),
				Section: cell(cells, cols["section"]),
			},
		})
	}
	return out, nil
}

func mapHeader(header []string) (map[string]int, error) {
	cols := make(map[string]int, len(columnAliases))
	for idx, title := range header {
		title = strings.ToLower(strings.TrimSpace(title))
		for field, aliases := range columnAliases {
			if _, ok := cols[field]; ok {
				continue
			}
			for _, a := range aliases {
				if title == a {
					cols[field] = idx
				}
			}
		}
	}
	for _, field := range []string{"name", "year", "section"} {
		if _, ok := cols[field]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, field)
		}
	}
	return cols, nil
}

// cell returns the trimmed value at idx; GetRows omits trailing empty cells.
func cell(cells []string, idx int) string {
	if idx >= len(cells) {
		return ""
	}
	return strings.TrimSpace(cells[idx])
}

func blank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
