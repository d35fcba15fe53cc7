// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	service "github.com/okian/roster/internal/app"
	"github.com/okian/roster/internal/domain/model"
	"github.com/okian/roster/pkg/logger"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	ListStudents(ctx context.Context) ([]model.Student, error)
	GetStudent(ctx context.Context, id int) (model.Student, error)
	CreateStudent(ctx context.Context, in model.NewStudent) (model.Student, error)
	ImportStudents(ctx context.Context, r io.Reader) (service.ImportResult, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	rootHandler     *RootHandler
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	studentsHandler *StudentsHandler
	importHandler   *ImportHandler

	allowedOrigins []string
	log            logger.Logger
}

// Option configures a Server.
type Option func(*serverOptions)

type serverOptions struct {
	importMaxBytes int64
	allowedOrigins []string
	log            logger.Logger
}

// WithImportMaxBytes caps the size of spreadsheet uploads.
func WithImportMaxBytes(n int64) Option {
	return func(o *serverOptions) {
		if n > 0 {
			o.importMaxBytes = n
		}
	}
}

// WithAllowedOrigins enables CORS for the given origins.
func WithAllowedOrigins(origins ...string) Option {
	return func(o *serverOptions) {
		o.allowedOrigins = append(o.allowedOrigins, origins...)
	}
}

// WithLogger sets the logger used for request and recovery logs.
func WithLogger(l logger.Logger) Option {
	return func(o *serverOptions) {
		if l != nil {
			o.log = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	o := serverOptions{importMaxBytes: defaultImportMaxBytes}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = logger.Named("http")
	}
	return &Server{
		rootHandler:     NewRootHandler(),
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(statsProvider),
		studentsHandler: NewStudentsHandler(deps, o.log),
		importHandler:   NewImportHandler(deps, o.importMaxBytes, o.log),
		allowedOrigins:  o.allowedOrigins,
		log:             o.log,
	}
}

// Register attaches all HTTP routes to r, plus JSON 404 and 405 handlers.
func (s *Server) Register(_ context.Context, r *mux.Router) {
	r.HandleFunc("/", MetricsMiddleware(s.rootHandler.HandleRoot, "root")).Methods(http.MethodGet)
	r.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz")).Methods(http.MethodGet)
	r.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats")).Methods(http.MethodGet)

	// /students/import must precede /students/{id}.
	r.HandleFunc("/students/import", MetricsMiddleware(s.importHandler.HandleImport, "students_import")).Methods(http.MethodPost)
	r.HandleFunc("/students", MetricsMiddleware(s.studentsHandler.HandleList, "students")).Methods(http.MethodGet)
	r.HandleFunc("/students", MetricsMiddleware(s.studentsHandler.HandleCreate, "students")).Methods(http.MethodPost)
	r.HandleFunc("/students/{id}", MetricsMiddleware(s.studentsHandler.HandleGet, "student")).Methods(http.MethodGet)

	r.NotFoundHandler = MetricsMiddleware(handleNotFound, "not_found")
	r.MethodNotAllowedHandler = MetricsMiddleware(handleMethodNotAllowed, "method_not_allowed")
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	if msg == "" {
		msg = http.StatusText(status)
	}
	writeJSON(w, status, errorResponse{Error: msg})
}

func handleNotFound(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusNotFound, msgResourceNotFound)
}

func handleMethodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, msgMethodNotAllowed)
}
