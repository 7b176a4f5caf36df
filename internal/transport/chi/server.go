// Package chi exposes the listing pipeline over HTTP.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/estaterag/internal/domain"
	domanswer "github.com/kailas-cloud/estaterag/internal/domain/answer"
	dombatch "github.com/kailas-cloud/estaterag/internal/domain/batch"
	domlisting "github.com/kailas-cloud/estaterag/internal/domain/listing"
	logpkg "github.com/kailas-cloud/estaterag/internal/logger"
	"github.com/kailas-cloud/estaterag/internal/metrics"
	answeruc "github.com/kailas-cloud/estaterag/internal/usecase/answer"
	healthuc "github.com/kailas-cloud/estaterag/internal/usecase/health"
	listinguc "github.com/kailas-cloud/estaterag/internal/usecase/listing"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 8 << 20

// Index build statuses returned by POST /index.
const (
	indexReady       = "ready"
	indexUnavailable = "unavailable"
)

// Server serves the HTTP API.
type Server struct {
	listings      *listinguc.Service
	answers       *answeruc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	listings *listinguc.Service,
	answers *answeruc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	return &Server{
		listings:      listings,
		answers:       answers,
		health:        health,
		logger:        logger,
		errorHandlers: defaultErrorHandlers(),
	}
}

// Router mounts every route with the standard middleware stack.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(s.logger))
	r.Use(recoverJSON)
	r.Use(metrics.Middleware())

	r.Post("/listings", s.IngestListings)
	r.Get("/listings/count", s.CountListings)
	r.Post("/index", s.BuildIndex)
	r.Post("/query", s.Query)
	r.Get("/health", s.HealthCheck)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, codeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
	})
	return r
}

type ingestRequest struct {
	Listings []map[string]any `json:"listings"`
}

type ingestItem struct {
	Index  int            `json:"index"`
	ID     string         `json:"id,omitempty"`
	Status string         `json:"status"`
	Error  *ErrorResponse `json:"error,omitempty"`
}

type ingestResponse struct {
	Added   int          `json:"added"`
	Skipped int          `json:"skipped"`
	Failed  int          `json:"failed"`
	Items   []ingestItem `json:"items"`
}

// IngestListings handles POST /listings.
func (s *Server) IngestListings(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Listings == nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, `"listings" array is required`)
		return
	}

	records := make([]domlisting.RawRecord, len(req.Listings))
	for i, l := range req.Listings {
		records[i] = l
	}

	report := s.listings.Ingest(r.Context(), records)
	logpkg.AddFields(r.Context(),
		zap.Int("listings", len(records)),
		zap.Int("added", report.Added),
		zap.Int("skipped", report.Skipped),
		zap.Int("failed", report.Failed),
	)
	writeJSON(w, http.StatusOK, ingestReportToResponse(report))
}

func ingestReportToResponse(report dombatch.Report) ingestResponse {
	resp := ingestResponse{
		Added:   report.Added,
		Skipped: report.Skipped,
		Failed:  report.Failed,
		Items:   make([]ingestItem, len(report.Items)),
	}
	for i, it := range report.Items {
		item := ingestItem{Index: it.Index(), ID: it.ID(), Status: string(it.Status())}
		if it.Err() != nil {
			e := itemError(it.Err())
			item.Error = &e
		}
		resp.Items[i] = item
	}
	return resp
}

// CountListings handles GET /listings/count.
func (s *Server) CountListings(w http.ResponseWriter, r *http.Request) {
	n, err := s.listings.Count(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"count": n})
}

type indexResponse struct {
	Status  string `json:"status"`
	Warning string `json:"warning,omitempty"`
}

// BuildIndex handles POST /index. A failed build is reported, not raised:
// search keeps working on the scan path.
func (s *Server) BuildIndex(w http.ResponseWriter, r *http.Request) {
	err := s.listings.BuildIndex(r.Context())
	if err != nil {
		if errors.Is(err, domain.ErrIndexBuild) {
			logpkg.AddFields(r.Context(), zap.String("index", indexUnavailable))
			writeJSON(w, http.StatusOK, indexResponse{Status: indexUnavailable, Warning: err.Error()})
			return
		}
		s.handleDomainError(w, r, err)
		return
	}
	logpkg.AddFields(r.Context(), zap.String("index", indexReady))
	writeJSON(w, http.StatusOK, indexResponse{Status: indexReady})
}

type queryRequest struct {
	Query string `json:"query"`
	K     *int   `json:"k,omitempty"`
}

// Query handles POST /query.
func (s *Server) Query(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if !decodeBody(w, r, &req) {
		return
	}
	k := domanswer.DefaultK
	if req.K != nil {
		k = *req.K
	}
	logpkg.AddFields(r.Context(), zap.Int("k", k))

	ans, err := s.answers.Query(r.Context(), req.Query, k)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	logpkg.AddFields(r.Context(), zap.Int("sources", len(ans.Sources)))
	writeJSON(w, http.StatusOK, ans)
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for _, name := range report.Names() {
		checks[name] = string(report.Checks[name])
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{Status: string(report.Status), Checks: checks})
}

// decodeBody decodes a size-limited JSON body. Numbers stay json.Number so
// listing prices survive without float rounding.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			writeError(w, http.StatusRequestEntityTooLarge, codeBadRequest, "request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logpkg.FromContext(r.Context())
	log.Warn("domain error", zap.Error(err))
	for _, h := range s.errorHandlers {
		if h(w, err) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
