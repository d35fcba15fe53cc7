package importer

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/okian/roster/internal/domain/model"
)

// workbook builds an xlsx file whose first sheet holds rows starting at A1.
func workbook(t *testing.T, rows ...[]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cellRef, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cellRef, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestParse_ReadsDataRows(t *testing.T) {
	buf := workbook(t,
		[]interface{}{"Name", "Year", "Section"},
		[]interface{}{"Alice Reyes", "1st Year", "A"},
		[]interface{}{"  Ben Cruz ", "2nd Year", "B"},
	)

	rows, err := Parse(buf)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, Row{Number: 2, Student: model.NewStudent{Name: "Alice Reyes", Year: "1st Year", Section: "A"}}, rows[0])
	assert.Equal(t, 3, rows[1].Number)
	assert.Equal(t, "Ben Cruz", rows[1].Student.Name)
}

func TestParse_HeaderOrderAndAliases(t *testing.T) {
	buf := workbook(t,
		[]interface{}{"Section", "Student Name", "Notes", "Year Level"},
		[]interface{}{"C", "Carla", "transferee", "3rd Year"},
	)

	rows, err := Parse(buf)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, model.NewStudent{Name: "Carla", Year: "3rd Year", Section: "C"}, rows[0].Student)
}

func TestParse_KeepsIncompleteRowsAndDropsBlankOnes(t *testing.T) {
	buf := workbook(t,
		[]interface{}{"name", "year", "section"},
		[]interface{}{"Dan", "4th Year"},
		[]interface{}{"", " ", ""},
		[]interface{}{"Eve", "1st Year", "D"},
	)

	rows, err := Parse(buf)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, 2, rows[0].Number)
	assert.Empty(t, rows[0].Student.Section)
	assert.Error(t, rows[0].Student.Validate())

	assert.Equal(t, 4, rows[1].Number)
	assert.NoError(t, rows[1].Student.Validate())
}

func TestParse_MissingColumn(t *testing.T) {
	buf := workbook(t,
		[]interface{}{"Name", "Year"},
		[]interface{}{"Frank", "1st Year"},
	)

	_, err := Parse(buf)
	require.ErrorIs(t, err, ErrMissingColumn)
	assert.Contains(t, err.Error(), "section")
}

func TestParse_EmptySheet(t *testing.T) {
	_, err := Parse(workbook(t))
	assert.ErrorIs(t, err, ErrMissingColumn)
}

func TestParse_MaxRows(t *testing.T) {
	buf := workbook(t,
		[]interface{}{"Name", "Year", "Section"},
		[]interface{}{"A", "1st Year", "A"},
		[]interface{}{"B", "1st Year", "A"},
		[]interface{}{"C", "1st Year", "A"},
	)
	data := buf.Bytes()

	_, err := Parse(bytes.NewReader(data), WithMaxRows(2))
	assert.ErrorIs(t, err, ErrTooManyRows)

	rows, err := Parse(bytes.NewReader(data), WithMaxRows(3))
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestParse_NotAWorkbook(t *testing.T) {
	_, err := Parse(strings.NewReader("name,year,section\nAlice,1st Year,A\n"))
	assert.ErrorIs(t, err, ErrOpenWorkbook)
}
