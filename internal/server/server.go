package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/trustlens/trustlens/internal/app"
	"github.com/trustlens/trustlens/internal/history"
	"github.com/trustlens/trustlens/internal/logging"

	_ "github.com/trustlens/trustlens/internal/server/docs" // registers the swagger spec
)

// maxBodyBytes caps request bodies; a batch of URLs fits comfortably.
const maxBodyBytes = 1 << 20

// wsSubmitTimeout is how long a websocket client has to send its batch.
const wsSubmitTimeout = 30 * time.Second

// Server is the HTTP + WebSocket API surface for TrustLens.
type Server struct {
	cfg      Config
	svc      *app.Service
	router   chi.Router
	upgrader websocket.Upgrader
	logger   logging.Logger
}

// NewServer serves svc. The caller keeps ownership of svc and closes it.
func NewServer(cfg Config, svc *app.Service) (*Server, error) {
	if svc == nil {
		return nil, errors.New("server: nil service")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewStdoutLogger("server")
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"*"}
	}

	s := &Server{
		cfg:    cfg,
		svc:    svc,
		router: chi.NewRouter(),
		logger: logger.With(logging.F("component", "server")),
	}
	s.upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || s.originAllowed(origin)
		},
	}

	s.routes()
	return s, nil
}

// Service returns the underlying application service (tests, etc.).
func (s *Server) Service() *app.Service {
	return s.svc
}

func (s *Server) routes() {
	r := s.router

	r.Use(s.corsMiddleware)

	// CORS preflight
	r.Options("/analyze", s.optionsHandler("POST"))
	r.Options("/analyses", s.optionsHandler("GET"))
	r.Options("/analyses/{id}", s.optionsHandler("GET"))
	r.Options("/analyses/{id}/diff", s.optionsHandler("GET"))
	r.Options("/batches", s.optionsHandler("GET, POST"))
	r.Options("/batches/{jobID}", s.optionsHandler("GET, DELETE"))

	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", s.svc.Metrics().Handler())

	// Analyses
	r.Post("/analyze", s.handleAnalyze)
	r.Get("/analyses", s.handleListAnalyses)
	r.Get("/analyses/{id}", s.handleGetAnalysis)
	r.Get("/analyses/{id}/diff", s.handleDiffAnalysis)

	// Batches over REST
	r.Post("/batches", s.handleStartBatch)
	r.Get("/batches", s.handleListBatches)
	r.Get("/batches/{jobID}", s.handleGetBatch)
	r.Delete("/batches/{jobID}", s.handleCancelBatch)

	// WebSocket for batch progress
	r.Get("/ws/batches", s.handleBatchWS)

	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
}

func (s *Server) originAllowed(origin string) bool {
	return slices.Contains(s.cfg.AllowedOrigins, "*") || slices.Contains(s.cfg.AllowedOrigins, origin)
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		switch {
		case slices.Contains(s.cfg.AllowedOrigins, "*"):
			w.Header().Set("Access-Control-Allow-Origin", "*")
		case origin != "" && s.originAllowed(origin):
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
		}
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Max-Age", "86400")

		next.ServeHTTP(w, r)
	})
}

func (s *Server) optionsHandler(methods string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Methods", methods)
		w.WriteHeader(http.StatusNoContent)
	}
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	fields := []logging.Field{
		logging.F("method", r.Method),
		logging.F("path", r.URL.Path),
	}

	if q := r.URL.Query(); len(q) > 0 {
		fields = append(fields, logging.F("query", q))
	}

	if r.Body != nil && (r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch) {
		if bodyBytes, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1)); err == nil {
			fields = append(fields, logging.F("body_bytes", len(bodyBytes)))
			r.Body = io.NopCloser(bytes.NewReader(bodyBytes))
		}
	}

	s.logger.Info("http_request", fields...)

	s.router.ServeHTTP(w, r)
}

// HTTPServer creates an *http.Server ready to ListenAndServe.
func (s *Server) HTTPServer() *http.Server {
	readTimeout := s.cfg.ReadTimeout
	if readTimeout <= 0 {
		readTimeout = 15 * time.Second
	}
	return &http.Server{
		Addr:         s.cfg.ListenAddr,
		Handler:      s,
		ReadTimeout:  readTimeout,
		WriteTimeout: 0, // allow streaming
	}
}

// --- JSON helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// --- HTTP handlers ---

// handleHealth godoc
// @Summary Liveness and engine setup
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	cfg := s.svc.Config()
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:         "ok",
		ScoringVersion: cfg.Engine.ScoringVersion,
		Classifier:     cfg.Oracles.Classifier,
		Identity:       cfg.Oracles.Identity,
	})
}

// Analyses

// handleAnalyze godoc
// @Summary Analyse a URL
// @Description Fetches the page (unless text or image_urls are given), scores it and stores the report.
// @Tags analyses
// @Accept json
// @Produce json
// @Param request body AnalyzeRequest true "URL to analyse"
// @Success 200 {object} history.Report
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /analyze [post]
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var body AnalyzeRequest
	if err := decodeBody(r, &body); err != nil {
		s.logger.Warn("decoding analyze body", logging.Err(err))
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	var (
		report *history.Report
		err    error
	)
	if body.Text != nil || body.ImageURLs != nil {
		text := ""
		if body.Text != nil {
			text = *body.Text
		}
		report, err = s.svc.AnalyzeContent(r.Context(), body.URL, text, body.ImageURLs)
	} else {
		report, err = s.svc.Analyze(r.Context(), body.URL)
	}
	if err != nil {
		s.writeServiceError(w, "analyzing url", err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// handleListAnalyses godoc
// @Summary List stored reports, newest first
// @Tags analyses
// @Produce json
// @Param limit query int false "maximum number of reports" default(50)
// @Success 200 {array} history.Report
// @Failure 400 {object} ErrorResponse
// @Router /analyses [get]
func (s *Server) handleListAnalyses(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if ls := r.URL.Query().Get("limit"); ls != "" {
		v, err := strconv.Atoi(ls)
		if err != nil || v <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = v
	}

	reports, err := s.svc.ListReports(r.Context(), limit)
	if err != nil {
		s.writeServiceError(w, "listing reports", err)
		return
	}
	if reports == nil {
		reports = []*history.Report{}
	}
	writeJSON(w, http.StatusOK, reports)
}

// handleGetAnalysis godoc
// @Summary Get one report
// @Tags analyses
// @Produce json
// @Param id path string true "report id"
// @Success 200 {object} history.Report
// @Failure 404 {object} ErrorResponse
// @Router /analyses/{id} [get]
func (s *Server) handleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	report, err := s.svc.GetReport(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeServiceError(w, "getting report", err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// handleDiffAnalysis godoc
// @Summary Compare a report with the previous analysis of the same URL
// @Tags analyses
// @Produce json
// @Param id path string true "report id"
// @Success 200 {object} history.Comparison
// @Failure 404 {object} ErrorResponse
// @Router /analyses/{id}/diff [get]
func (s *Server) handleDiffAnalysis(w http.ResponseWriter, r *http.Request) {
	cmp, err := s.svc.Diff(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeServiceError(w, "diffing report", err)
		return
	}
	writeJSON(w, http.StatusOK, cmp)
}

// Batches

// handleStartBatch godoc
// @Summary Start a batch analysis
// @Tags batches
// @Accept json
// @Produce json
// @Param request body BatchRequest true "URLs to analyse"
// @Success 202 {object} app.Job
// @Failure 400 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /batches [post]
func (s *Server) handleStartBatch(w http.ResponseWriter, r *http.Request) {
	var body BatchRequest
	if err := decodeBody(r, &body); err != nil {
		s.logger.Warn("decoding batch body", logging.Err(err))
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	job, err := s.svc.StartBatch(r.Context(), body.URLs)
	if err != nil {
		s.writeServiceError(w, "starting batch", err)
		return
	}
	s.logger.Info("started batch", logging.F("job_id", job.ID), logging.F("total", job.Total))
	writeJSON(w, http.StatusAccepted, job)
}

// handleListBatches godoc
// @Summary List batch jobs, newest first
// @Tags batches
// @Produce json
// @Success 200 {array} app.Job
// @Router /batches [get]
func (s *Server) handleListBatches(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.ListBatches())
}

// handleGetBatch godoc
// @Summary Get a batch job
// @Tags batches
// @Produce json
// @Param jobID path string true "job id"
// @Success 200 {object} app.Job
// @Failure 404 {object} ErrorResponse
// @Router /batches/{jobID} [get]
func (s *Server) handleGetBatch(w http.ResponseWriter, r *http.Request) {
	job := s.svc.GetBatch(chi.URLParam(r, "jobID"))
	if job == nil {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// handleCancelBatch godoc
// @Summary Cancel a running batch job
// @Tags batches
// @Produce json
// @Param jobID path string true "job id"
// @Success 200 {object} CancelResponse
// @Failure 404 {object} ErrorResponse
// @Router /batches/{jobID} [delete]
func (s *Server) handleCancelBatch(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	if s.svc.GetBatch(jobID) == nil {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	canceled := s.svc.CancelBatch(jobID)
	s.logger.Info("canceled job", logging.F("job_id", jobID), logging.F("was_running", canceled))
	writeJSON(w, http.StatusOK, CancelResponse{Job: s.svc.GetBatch(jobID), Canceled: canceled})
}

// WebSockets

// handleBatchWS reads one BatchRequest from the socket, then streams the
// job snapshot followed by every job event. Closing the socket cancels the job.
func (s *Server) handleBatchWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("upgrading to websocket", logging.Err(err))
		return
	}
	defer conn.Close()

	var body BatchRequest
	_ = conn.SetReadDeadline(time.Now().Add(wsSubmitTimeout))
	if err := conn.ReadJSON(&body); err != nil {
		s.logger.Warn("reading batch request from websocket", logging.Err(err))
		_ = conn.WriteJSON(ErrorResponse{Error: "invalid batch request"})
		return
	}
	_ = conn.SetReadDeadline(time.Time{})

	job, err := s.svc.StartBatch(r.Context(), body.URLs)
	if err != nil {
		s.logger.Warn("starting batch", logging.Err(err))
		_ = conn.WriteJSON(ErrorResponse{Error: err.Error()})
		return
	}

	s.logger.Info("started batch", logging.F("job_id", job.ID), logging.F("transport", "websocket"))
	_ = conn.WriteJSON(job)

	for ev := range job.Events {
		if err := conn.WriteJSON(ev); err != nil {
			// Assume client disconnected; cancel job
			s.svc.CancelBatch(job.ID)
			return
		}
	}
	_ = conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "batch finished"))
}

// writeServiceError maps application errors onto HTTP statuses.
func (s *Server) writeServiceError(w http.ResponseWriter, op string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, app.ErrInvalidURL),
		errors.Is(err, app.ErrEmptyBatch),
		errors.Is(err, app.ErrBatchTooLarge):
		status = http.StatusBadRequest
	case errors.Is(err, history.ErrNotFound),
		errors.Is(err, app.ErrNoPrevious):
		status = http.StatusNotFound
	case errors.Is(err, app.ErrClosed):
		status = http.StatusServiceUnavailable
	}

	if status == http.StatusInternalServerError {
		s.logger.Error(op, logging.Err(err))
	} else {
		s.logger.Warn(op, logging.Err(err), logging.F("status", status))
	}
	writeError(w, status, err.Error())
}
