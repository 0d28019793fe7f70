// Package api hosts the HTTP server for on-demand career-site scrapes.
// Routes:
//   - GET /healthz for liveness probes.
//   - GET /metrics for Prometheus scraping.
//   - GET /v1/scrape/jobs for usage and the known companies.
//   - POST /v1/scrape/jobs to crawl one company synchronously.
package api
