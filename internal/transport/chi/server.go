package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/astrobio/internal/domain"
	"github.com/kailas-cloud/astrobio/internal/domain/budget"
	domgap "github.com/kailas-cloud/astrobio/internal/domain/gap"
	"github.com/kailas-cloud/astrobio/internal/domain/mode"
	"github.com/kailas-cloud/astrobio/internal/domain/search/filter"
	"github.com/kailas-cloud/astrobio/internal/logger"
	"github.com/kailas-cloud/astrobio/internal/metrics"
	chatuc "github.com/kailas-cloud/astrobio/internal/usecase/chat"
	documentuc "github.com/kailas-cloud/astrobio/internal/usecase/document"
	gapuc "github.com/kailas-cloud/astrobio/internal/usecase/gap"
	healthuc "github.com/kailas-cloud/astrobio/internal/usecase/health"
	searchuc "github.com/kailas-cloud/astrobio/internal/usecase/search"
	summarizeuc "github.com/kailas-cloud/astrobio/internal/usecase/summarize"
	timelineuc "github.com/kailas-cloud/astrobio/internal/usecase/timeline"
	usageuc "github.com/kailas-cloud/astrobio/internal/usecase/usage"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// Response headers describing how a request was served.
const (
	HeaderMode           = metrics.ModeHeader
	HeaderProviderCalls  = "X-Provider-Calls"
	HeaderProviderTokens = "X-Provider-Tokens"
	HeaderFallbacks      = "X-Fallbacks"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Services groups the use cases served over HTTP.
type Services struct {
	Summarize *summarizeuc.Service
	Search    *searchuc.Service
	Chat      *chatuc.Service
	Gap       *gapuc.Service
	Timeline  *timelineuc.Service
	Documents *documentuc.Service
	Health    *healthuc.Service
	Usage     *usageuc.Service
}

// Defaults fill request fields the client left empty.
type Defaults struct {
	Language     string
	Takeaways    int
	GapThreshold int
}

// Server is the HTTP API adapter over the use cases.
type Server struct {
	svc           Services
	defaults      Defaults
	validate      *validator.Validate
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(svc Services, logger *zap.Logger) *Server {
	s := &Server{
		svc:      svc,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
	}
	s.errorHandlers = []errorHandler{
		validationHandler,
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, ErrorResponseCodeNotFound),
		sentinelHandler(domain.ErrCorpusUnavailable, http.StatusServiceUnavailable, ErrorResponseCodeCorpusUnavailable),
	}
	return s
}

// WithDefaults sets the values used for omitted request fields.
func (s *Server) WithDefaults(d Defaults) *Server {
	s.defaults = d
	return s
}

// Register mounts every route on r. Middleware must be installed before calling.
func (s *Server) Register(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/summarize", s.Summarize)
		r.Post("/search", s.Search)
		r.Post("/chat", s.Chat)
		r.Post("/gap_analyze", s.GapAnalyze)
		r.Get("/timeline", s.Timeline)
		r.Get("/documents", s.ListDocuments)
		r.Get("/documents/{id}", s.GetDocument)
		r.Get("/stats", s.Stats)
		r.Get("/usage", s.Usage)
	})
}

// Handler returns a router with every route mounted and no middleware.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	s.Register(r)
	return r
}

// Summarize handles POST /api/v1/summarize.
func (s *Server) Summarize(w http.ResponseWriter, r *http.Request) {
	var req SummarizeRequest
	if !s.decode(w, r, &req) {
		return
	}

	if req.Language == "" {
		req.Language = s.defaults.Language
	}
	if req.Takeaways == 0 {
		req.Takeaways = s.defaults.Takeaways
	}
	sumReq, err := summaryRequestFromDTO(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeValidationFailed, err.Error())
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	out, m, err := s.svc.Summarize.Summarize(ctx, sumReq)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	setUsageHeaders(w, m, usage)
	writeJSON(w, http.StatusOK, summaryToDTO(out))
}

// Search handles POST /api/v1/search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if !s.decode(w, r, &req) {
		return
	}

	searchReq, err := searchRequestFromDTO(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeValidationFailed, err.Error())
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	resp, err := s.svc.Search.Search(ctx, &searchReq)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	setUsageHeaders(w, resp.Mode, usage)
	writeJSON(w, http.StatusOK, searchResponseToDTO(resp))
}

// Chat handles POST /api/v1/chat.
func (s *Server) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if !s.decode(w, r, &req) {
		return
	}

	conv, err := conversationFromDTO(req.Messages)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeValidationFailed, err.Error())
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	reply, m, err := s.svc.Chat.Reply(ctx, chatuc.Request{Conversation: conv, System: req.System})
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	setUsageHeaders(w, m, usage)
	writeJSON(w, http.StatusOK, ChatResponse{Reply: reply})
}

// GapAnalyze handles POST /api/v1/gap_analyze.
func (s *Server) GapAnalyze(w http.ResponseWriter, r *http.Request) {
	var req GapRequest
	if !s.decode(w, r, &req) {
		return
	}

	if req.Threshold == 0 {
		req.Threshold = s.defaults.GapThreshold
	}
	gapReq, err := domgap.NewRequest(req.Topic, req.Threshold)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeValidationFailed, err.Error())
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	report, err := s.svc.Gap.Analyze(ctx, gapReq)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	setUsageHeaders(w, report.Mode, usage)
	writeJSON(w, http.StatusOK, gapReportToDTO(report))
}

// Timeline handles GET /api/v1/timeline.
func (s *Server) Timeline(w http.ResponseWriter, r *http.Request) {
	ctx, usage := domain.NewContextWithUsage(r.Context())
	tl, err := s.svc.Timeline.Build(ctx)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	setUsageHeaders(w, tl.Mode, usage)
	writeJSON(w, http.StatusOK, timelineToDTO(tl))
}

// ListDocuments handles GET /api/v1/documents.
func (s *Server) ListDocuments(w http.ResponseWriter, r *http.Request) {
	params, err := bindListParams(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, err.Error())
		return
	}

	f, err := filter.New(deref(params.Organism), deref(params.Mission), params.Year)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeValidationFailed, err.Error())
		return
	}
	limit := 0
	if params.Limit != nil {
		limit = *params.Limit
	}

	docs, next, err := s.svc.Documents.List(r.Context(), f, deref(params.Cursor), limit)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	items := make([]DocumentResponse, len(docs))
	for i := range docs {
		items[i] = documentToDTO(&docs[i])
	}
	resp := DocumentListResponse{Items: items, HasMore: next != ""}
	if next != "" {
		resp.NextCursor = &next
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetDocument handles GET /api/v1/documents/{id}.
func (s *Server) GetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := s.svc.Documents.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, documentToDTO(&doc))
}

// Stats handles GET /api/v1/stats.
func (s *Server) Stats(w http.ResponseWriter, r *http.Request) {
	st, err := s.svc.Documents.Stats(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, statsToDTO(st))
}

// Usage handles GET /api/v1/usage?period=day|month.
func (s *Server) Usage(w http.ResponseWriter, r *http.Request) {
	period, err := budget.ParsePeriod(r.URL.Query().Get("period"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, usageToDTO(s.svc.Usage.Report(r.Context(), period)))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.svc.Health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}
	writeJSON(w, httpStatus, healthToDTO(report))
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// decode reads and validates a JSON body. It writes the error response and
// returns false on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeValidationFailed, validationMessage(err))
		return false
	}
	return true
}

func bindListParams(q url.Values) (ListDocumentsParams, error) {
	var p ListDocumentsParams
	bindings := []struct {
		name string
		dest any
	}{
		{"organism", &p.Organism},
		{"mission", &p.Mission},
		{"year", &p.Year},
		{"cursor", &p.Cursor},
		{"limit", &p.Limit},
	}
	for _, b := range bindings {
		if err := runtime.BindQueryParameter("form", true, false, b.name, q, b.dest); err != nil {
			return ListDocumentsParams{}, fmt.Errorf("invalid format for parameter %s: %w", b.name, err)
		}
	}
	return p, nil
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func setUsageHeaders(w http.ResponseWriter, m mode.Mode, usage *domain.ProviderUsage) {
	w.Header().Set(HeaderMode, string(m))
	calls, tokens, fallbacks := usage.Snapshot()
	if calls > 0 {
		w.Header().Set(HeaderProviderCalls, strconv.Itoa(calls))
		w.Header().Set(HeaderProviderTokens, strconv.Itoa(tokens))
	}
	if fallbacks > 0 {
		w.Header().Set(HeaderFallbacks, strconv.Itoa(fallbacks))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorResponseCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return verr.Error()
	}
	sentinels := []error{
		domain.ErrValidation,
		domain.ErrNotFound,
		domain.ErrCorpusUnavailable,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorResponseCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func validationHandler(w http.ResponseWriter, err error, msg string) bool {
	if !errors.Is(err, domain.ErrValidation) {
		return false
	}
	writeError(w, http.StatusBadRequest, ErrorResponseCodeValidationFailed, msg)
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context(), s.logger)
	log.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorResponseCodeInternalError, "internal error")
}
