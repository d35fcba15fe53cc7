package api

import "errors"

// Sentinel kinds for API errors.
var (
	ErrBadRequest      = errors.New("bad request")
	ErrUnsupportedMIME = errors.New("unsupported content type")
	ErrMissingUpload   = errors.New("missing spreadsheet upload")
)

// Fixed client-facing messages.
const (
	msgInvalidInput     = "Invalid input. Please provide name, year, and section."
	msgStudentNotFound  = "Student not found"
	msgResourceNotFound = "Resource not found"
	msgMethodNotAllowed = "Method not allowed"
	msgInternal         = "Internal server error"
	msgUnavailable      = "Service unavailable"
)
