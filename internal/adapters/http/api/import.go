package api

import (
	"errors"
	"net/http"

	"github.com/okian/roster/internal/adapters/importer"
	service "github.com/okian/roster/internal/app"
	"github.com/okian/roster/internal/domain/model"
	"github.com/okian/roster/pkg/logger"
)

const uploadField = "file"

type importResponse struct {
	Message  string               `json:"message"`
	Imported int                  `json:"imported"`
	Skipped  []service.SkippedRow `json:"skipped"`
	Students []model.Student      `json:"students"`
}

// ImportHandler handles spreadsheet uploads.
type ImportHandler struct {
	deps     Dependencies
	maxBytes int64
	log      logger.Logger
}

// NewImportHandler creates a new import handler.
func NewImportHandler(deps Dependencies, maxBytes int64, log logger.Logger) *ImportHandler {
	return &ImportHandler{deps: deps, maxBytes: maxBytes, log: log}
}

// HandleImport handles POST /students/import with a multipart "file" field
// holding an xlsx workbook.
func (h *ImportHandler) HandleImport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	if err := r.ParseMultipartForm(multipartMemoryBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "Upload too large")
			return
		}
		writeError(w, http.StatusBadRequest, ErrMissingUpload.Error())
		return
	}
	file, _, err := r.FormFile(uploadField)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrMissingUpload.Error())
		return
	}
	defer func() { _ = file.Close() }()

	res, err := h.deps.ImportStudents(r.Context(), file)
	switch {
	case errors.Is(err, importer.ErrOpenWorkbook),
		errors.Is(err, importer.ErrNoSheet),
		errors.Is(err, importer.ErrMissingColumn),
		errors.Is(err, importer.ErrTooManyRows):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, service.ErrNotStarted):
		writeError(w, http.StatusServiceUnavailable, msgUnavailable)
		return
	case err != nil:
		h.log.Error(r.Context(), "import failed",
			logger.String("request_id", RequestIDFromContext(r.Context())),
			logger.Error(err),
		)
		writeError(w, http.StatusInternalServerError, msgInternal)
		return
	}

	writeJSON(w, http.StatusOK, importResponse{
		Message:  "Import complete",
		Imported: len(res.Imported),
		Skipped:  res.Skipped,
		Students: res.Imported,
	})
}
