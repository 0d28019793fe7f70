// Package metrics exposes Prometheus collectors for the careers crawler.
package metrics

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	listingPagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "careers_listing_pages_total",
			Help: "Total number of listing pages processed, labeled by site and status.",
		},
		[]string{"site", "status"},
	)

	postingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "careers_postings_total",
			Help: "Total number of posting URLs handled, labeled by site and status.",
		},
		[]string{"site", "status"},
	)

	fetchAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "careers_fetch_attempts_total",
			Help: "Total number of HTTP fetch attempts, labeled by outcome.",
		},
		[]string{"outcome"},
	)

	crawlDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "careers_crawl_duration_seconds",
			Help:    "Histogram of whole-crawl durations, labeled by site.",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
		},
		[]string{"site"},
	)

	fanoutFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "careers_fanout_failures_total",
			Help: "Total number of failed persistence/publish steps after a crawl, labeled by target.",
		},
		[]string{"target"},
	)

	headlessPromotionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "careers_headless_promotions_total",
			Help: "Total number of pages re-fetched with the headless browser, labeled by outcome.",
		},
		[]string{"outcome"},
	)

	robotsFallbacksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "careers_robots_fallbacks_total",
			Help: "Total number of robots.txt requests that fell back to allow-all after transient failures.",
		},
	)

	rateLimitDelaySeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "careers_rate_limit_delay_seconds",
			Help:    "Histogram of time spent waiting on the per-host rate limiter.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"host"},
	)

	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests, labeled by method and code.",
		},
		[]string{"method", "code"},
	)

	httpRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request latencies, labeled by method and route.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 15, 60},
		},
		[]string{"method", "route"},
	)
)

// SiteLabel turns a site name or URL into a bounded, lowercase label value.
// It returns "unknown" when nothing usable remains.
func SiteLabel(site string) string {
	site = strings.TrimSpace(site)
	if strings.HasPrefix(site, "http://") || strings.HasPrefix(site, "https://") {
		u, err := url.Parse(site)
		if err != nil || u.Hostname() == "" {
			return "unknown"
		}
		return strings.ToLower(u.Hostname())
	}
	if site == "" {
		return "unknown"
	}
	return strings.ToLower(site)
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveListingPage counts a listing page with status "fetched" or "failed".
func ObserveListingPage(site, status string) {
	listingPagesTotal.WithLabelValues(SiteLabel(site), status).Inc()
}

// ObservePosting counts a posting URL with status "extracted", "failed", or "duplicate".
func ObservePosting(site, status string) {
	postingsTotal.WithLabelValues(SiteLabel(site), status).Inc()
}

// ObserveFetchAttempt counts one HTTP attempt.
func ObserveFetchAttempt(outcome string) {
	fetchAttemptsTotal.WithLabelValues(outcome).Inc()
}

// ObserveCrawlDuration records how long a crawl took.
func ObserveCrawlDuration(site string, d time.Duration) {
	crawlDurationSeconds.WithLabelValues(SiteLabel(site)).Observe(d.Seconds())
}

// ObserveFanoutFailure counts a failed post-crawl step (store, blob, publish).
func ObserveFanoutFailure(target string) {
	fanoutFailuresTotal.WithLabelValues(target).Inc()
}

// ObserveHeadlessPromotion counts one headless re-fetch ("rendered" or "failed").
func ObserveHeadlessPromotion(outcome string) {
	headlessPromotionsTotal.WithLabelValues(outcome).Inc()
}

// ObserveRobotsFallback counts a robots.txt request answered with allow-all.
func ObserveRobotsFallback() {
	robotsFallbacksTotal.Inc()
}

// ObserveRateLimitDelay records a non-trivial limiter wait for host.
func ObserveRateLimitDelay(host string, d time.Duration) {
	rateLimitDelaySeconds.WithLabelValues(SiteLabel(host)).Observe(d.Seconds())
}

// ObserveHTTPRequest increments the HTTP request metrics.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}
