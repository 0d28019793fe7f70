package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/JakeFAU/careers-crawler/internal/config"
	"github.com/JakeFAU/careers-crawler/internal/crawler"
	"github.com/JakeFAU/careers-crawler/internal/extract"
	"github.com/JakeFAU/careers-crawler/internal/metrics"
)

// scrapeTimeout bounds a single synchronous scrape request.
const scrapeTimeout = 5 * time.Minute

// PipelineRunner runs one crawl plus its fan-out. *app.Runner satisfies it.
type PipelineRunner interface {
	Run(ctx context.Context, site crawler.SiteConfig, maxPages int) (crawler.CrawlResult, error)
}

// SiteLookup resolves company names. *sites.Registry satisfies it.
type SiteLookup interface {
	Lookup(name string) (crawler.SiteConfig, bool)
	Names() []string
}

// Server wires HTTP handlers to the pipeline runner.
type Server struct {
	router chi.Router
	runner PipelineRunner
	sites  SiteLookup
	cfg    config.Config
	logger *zap.Logger
}

// NewServer constructs a Server with middleware and routes.
func NewServer(runner PipelineRunner, sites SiteLookup, cfg config.Config, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		runner: runner,
		sites:  sites,
		cfg:    cfg,
		logger: logger,
	}
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(logger))
	r.Use(recoverMiddleware(logger))
	r.Use(metrics.Middleware)

	r.Get("/healthz", s.healthz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/v1", func(r chi.Router) {
		if cfg.Auth.Enabled {
			r.Use(apiKeyMiddleware(cfg.Auth.APIKey))
		}
		r.Get("/scrape/jobs", s.scrapeUsage)
		r.Post("/scrape/jobs", s.scrapeJobs)
	})

	s.router = r
	return s
}

// Handler returns the Router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type scrapeRequest struct {
	CompanyName string `json:"companyName"`
	MaxPages    *int   `json:"maxPages"`
}

type scrapeResponse struct {
	Success     bool                    `json:"success"`
	Company     string                  `json:"company"`
	RunID       string                  `json:"runId"`
	JobsScraped int                     `json:"jobsScraped"`
	Jobs        []crawler.PostingRecord `json:"jobs"`
}

func (s *Server) scrapeUsage(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"message":            "Job scraper API",
		"availableCompanies": s.sites.Names(),
		"recognizedSkills":   extract.DefaultVocabulary().Skills(),
		"usage": map[string]any{
			"method": http.MethodPost,
			"body": map[string]string{
				"companyName": "string (required)",
				"maxPages":    fmt.Sprintf("number (optional, default %d)", s.cfg.Crawler.MaxPagesDefault),
			},
			"example": map[string]any{
				"companyName": "Google",
				"maxPages":    s.cfg.Crawler.MaxPagesDefault,
			},
		},
	})
}

func (s *Server) scrapeJobs(w http.ResponseWriter, r *http.Request) {
	var req scrapeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.CompanyName == "" {
		s.writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":              "companyName required",
			"availableCompanies": s.sites.Names(),
		})
		return
	}
	site, ok := s.sites.Lookup(req.CompanyName)
	if !ok {
		s.writeJSON(w, http.StatusNotFound, map[string]any{
			"error":              fmt.Sprintf("Company %q not found", req.CompanyName),
			"availableCompanies": s.sites.Names(),
		})
		return
	}

	maxPages := s.maxPages(req.MaxPages)
	ctx, cancel := context.WithTimeout(r.Context(), scrapeTimeout)
	defer cancel()

	result, err := s.runner.Run(ctx, site, maxPages)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, context.DeadlineExceeded) {
			status = http.StatusGatewayTimeout
		}
		s.logger.Warn("scrape failed", zap.String("company", site.Name), zap.Error(err))
		s.writeJSON(w, status, map[string]string{"error": "Scraper failed", "details": err.Error()})
		return
	}
	s.writeJSON(w, http.StatusOK, scrapeResponse{
		Success:     true,
		Company:     site.DisplayName(),
		RunID:       result.RunID,
		JobsScraped: len(result.Records),
		Jobs:        result.Records,
	})
}

// maxPages applies the default when the field is absent and clamps an
// explicit value to [1, limit].
func (s *Server) maxPages(requested *int) int {
	if requested == nil {
		return s.cfg.ClampMaxPages(0)
	}
	return s.cfg.ClampMaxPages(max(1, *requested))
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	writeJSON(w, status, payload, s.logger)
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, payload any, logger *zap.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("write JSON failed", zap.Error(err))
	}
}
