package importer

import "errors"

// Sentinel kinds for spreadsheet import errors.
var (
	ErrOpenWorkbook  = errors.New("cannot read workbook")
	ErrNoSheet       = errors.New("workbook does not contain any sheets")
	ErrMissingColumn = errors.New("header row is missing a required column")
	ErrTooManyRows   = errors.New("too many rows")
)
