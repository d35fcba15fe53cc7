package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/okian/roster/internal/adapters/repository"
	service "github.com/okian/roster/internal/app"
	"github.com/okian/roster/internal/domain/model"
	"github.com/okian/roster/pkg/logger"
)

const (
	maxCreateBodyBytes    = 1 << 20
	defaultImportMaxBytes = 10 << 20
	multipartMemoryBytes  = 1 << 20
)

type listResponse struct {
	Status   string          `json:"status"`
	Count    int             `json:"count"`
	Students []model.Student `json:"students"`
}

type createResponse struct {
	Message string        `json:"message"`
	Student model.Student `json:"student"`
}

// StudentsHandler serves the student collection and single records.
type StudentsHandler struct {
	deps Dependencies
	log  logger.Logger
}

// NewStudentsHandler creates a new students handler.
func NewStudentsHandler(deps Dependencies, log logger.Logger) *StudentsHandler {
	return &StudentsHandler{deps: deps, log: log}
}

// HandleList handles GET /students requests.
func (h *StudentsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	students, err := h.deps.ListStudents(r.Context())
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Status: "success", Count: len(students), Students: students})
}

// HandleGet handles GET /students/{id} requests. Ids that are not positive
// integers in canonical form ("+1", "01") are reported as not found.
func (h *StudentsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 || strconv.Itoa(id) != raw {
		writeError(w, http.StatusNotFound, msgStudentNotFound)
		return
	}
	student, err := h.deps.GetStudent(r.Context(), id)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, msgStudentNotFound)
	case err != nil:
		h.serverError(w, r, err)
	default:
		writeJSON(w, http.StatusOK, student)
	}
}

// HandleCreate handles POST /students requests with a JSON or form body.
func (h *StudentsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxCreateBodyBytes)

	in, err := decodeNewStudent(r)
	if err != nil {
		h.log.Debug(r.Context(), "create request rejected",
			logger.String("request_id", RequestIDFromContext(r.Context())),
			logger.Error(err),
		)
		writeError(w, http.StatusBadRequest, msgInvalidInput)
		return
	}

	student, err := h.deps.CreateStudent(r.Context(), in)
	switch {
	case errors.Is(err, repository.ErrValidation):
		writeError(w, http.StatusBadRequest, msgInvalidInput)
	case err != nil:
		h.serverError(w, r, err)
	default:
		writeJSON(w, http.StatusCreated, createResponse{Message: "Student added successfully!", Student: student})
	}
}

// decodeNewStudent reads the create payload from JSON, urlencoded or
// multipart bodies. A missing Content-Type is read as JSON.
func decodeNewStudent(r *http.Request) (model.NewStudent, error) {
	var in model.NewStudent

	mediaType := "application/json"
	if ct := r.Header.Get("Content-Type"); ct != "" {
		mt, _, err := mime.ParseMediaType(ct)
		if err != nil {
			return in, fmt.Errorf("%w: %w", ErrUnsupportedMIME, err)
		}
		mediaType = mt
	}

	switch mediaType {
	case "application/json":
		dec := json.NewDecoder(r.Body)
		if err := dec.Decode(&in); err != nil {
			return in, fmt.Errorf("%w: %w", ErrBadRequest, err)
		}
		if err := dec.Decode(&json.RawMessage{}); !errors.Is(err, io.EOF) {
			return in, fmt.Errorf("%w: trailing data after JSON body", ErrBadRequest)
		}
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return in, fmt.Errorf("%w: %w", ErrBadRequest, err)
		}
		in = formStudent(r)
	case "multipart/form-data":
		if err := r.ParseMultipartForm(multipartMemoryBytes); err != nil {
			return in, fmt.Errorf("%w: %w", ErrBadRequest, err)
		}
		in = formStudent(r)
	default:
		return in, fmt.Errorf("%w: %s", ErrUnsupportedMIME, mediaType)
	}
	return in, nil
}

func formStudent(r *http.Request) model.NewStudent {
	return model.NewStudent{
		Name:    r.PostFormValue("name"),
		Year:    r.PostFormValue("year"),
		Section: r.PostFormValue("section"),
	}
}

func (h *StudentsHandler) serverError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, service.ErrNotStarted) {
		writeError(w, http.StatusServiceUnavailable, msgUnavailable)
		return
	}
	h.log.Error(r.Context(), "request failed",
		logger.String("request_id", RequestIDFromContext(r.Context())),
		logger.String("path", r.URL.Path),
		logger.Error(err),
	)
	writeError(w, http.StatusInternalServerError, msgInternal)
}
