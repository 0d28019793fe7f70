// Package app assembles the crawl pipeline and fans crawl results out to the
// configured stores.
package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/careers-crawler/internal/crawler"
	"github.com/JakeFAU/careers-crawler/internal/metrics"
)

// EventCrawlCompleted is the Pub/Sub event type attribute for CrawlCompleted.
const EventCrawlCompleted = "crawl.completed"

// fanoutTimeout bounds the fan-out of one crawl, which still runs after the
// crawl context is canceled so partial results are kept.
const fanoutTimeout = 30 * time.Second

// SiteCrawler runs a single crawl. *crawler.Controller satisfies it.
type SiteCrawler interface {
	Crawl(ctx context.Context, site crawler.SiteConfig, maxPages int) (crawler.CrawlResult, error)
}

// RunnerConfig names where fan-out artifacts go.
type RunnerConfig struct {
	BlobPrefix string
	Topic      string
}

// CrawlCompleted is published once per run after the records are stored.
type CrawlCompleted struct {
	RunID          string    `json:"run_id"`
	Site           string    `json:"site"`
	Records        int       `json:"records"`
	Pages          int       `json:"pages"`
	FailedPostings int       `json:"failed_postings"`
	StopReason     string    `json:"stop_reason"`
	BlobURI        string    `json:"blob_uri,omitempty"`
	ArchiveDigest  string    `json:"archive_digest,omitempty"`
	FinishedAt     time.Time `json:"finished_at"`
}

// Attributes implements the Pub/Sub publisher's attribute hook.
func (e CrawlCompleted) Attributes() map[string]string {
	return map[string]string{
		"event":  EventCrawlCompleted,
		"run_id": e.RunID,
		"site":   e.Site,
	}
}

// Sinks are the optional fan-out targets of a Runner. Nil fields are skipped.
type Sinks struct {
	Postings  crawler.PostingStore
	Blobs     crawler.BlobStore
	Publisher crawler.Publisher
	Hasher    crawler.Hasher
}

// Runner crawls a site and hands the records to every configured sink.
type Runner struct {
	crawler SiteCrawler
	ids     crawler.IDGenerator
	sinks   Sinks
	cfg     RunnerConfig
	logger  *zap.Logger
}

// NewRunner wires a Runner.
func NewRunner(
	siteCrawler SiteCrawler,
	ids crawler.IDGenerator,
	sinks Sinks,
	cfg RunnerConfig,
	logger *zap.Logger,
) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		crawler: siteCrawler,
		ids:     ids,
		sinks:   sinks,
		cfg:     cfg,
		logger:  logger,
	}
}

// Run crawls site and fans the result out. A crawl interrupted by ctx still
// fans out what it gathered and returns it together with the context error.
func (r *Runner) Run(ctx context.Context, site crawler.SiteConfig, maxPages int) (crawler.CrawlResult, error) {
	runID, err := r.ids.NewID()
	if err != nil {
		return crawler.CrawlResult{}, fmt.Errorf("generate run id: %w", err)
	}
	logger := r.logger.With(zap.String("run_id", runID), zap.String("site", site.DisplayName()))

	result, crawlErr := r.crawler.Crawl(ctx, site, maxPages)
	result.RunID = runID

	fanoutCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), fanoutTimeout)
	defer cancel()
	r.fanout(fanoutCtx, result, logger)

	return result, crawlErr
}

func (r *Runner) fanout(ctx context.Context, result crawler.CrawlResult, logger *zap.Logger) {
	if r.sinks.Postings != nil {
		if err := r.sinks.Postings.UpsertPostings(ctx, result.RunID, result.Site, result.Records); err != nil {
			metrics.ObserveFanoutFailure("postings")
			logger.Error("posting upsert failed", zap.Error(err))
		} else {
			logger.Info("postings stored", zap.Int("records", len(result.Records)))
		}
	}

	var blobURI, digest string
	if r.sinks.Blobs != nil {
		uri, sum, err := r.archive(ctx, result)
		if err != nil {
			metrics.ObserveFanoutFailure("archive")
			logger.Error("archive write failed", zap.Error(err))
		} else {
			blobURI, digest = uri, sum
			logger.Info("archive written", zap.String("uri", uri))
		}
	}

	if r.sinks.Publisher != nil {
		event := CrawlCompleted{
			RunID:          result.RunID,
			Site:           result.Site,
			Records:        len(result.Records),
			Pages:          result.PagesVisited,
			FailedPostings: result.FailedPostings,
			StopReason:     string(result.StopReason),
			BlobURI:        blobURI,
			ArchiveDigest:  digest,
			FinishedAt:     result.FinishedAt,
		}
		msgID, err := r.sinks.Publisher.Publish(ctx, r.cfg.Topic, event)
		if err != nil {
			metrics.ObserveFanoutFailure("publish")
			logger.Error("crawl event publish failed", zap.Error(err))
		} else {
			logger.Debug("crawl event published", zap.String("message_id", msgID))
		}
	}
}

// archive writes the records and returns the object URI and, when a hasher
// is configured, the archive digest.
func (r *Runner) archive(ctx context.Context, result crawler.CrawlResult) (string, string, error) {
	data, err := EncodeRecords(result.Records)
	if err != nil {
		return "", "", err
	}
	var digest string
	if r.sinks.Hasher != nil {
		if digest, err = r.sinks.Hasher.Hash(data); err != nil {
			return "", "", fmt.Errorf("hash archive: %w", err)
		}
	}
	object := ArchivePath(r.cfg.BlobPrefix, result.Site, result.RunID)
	uri, err := r.sinks.Blobs.PutObject(ctx, object, "application/json", bytes.NewReader(data))
	if err != nil {
		return "", "", err
	}
	return uri, digest, nil
}

// EncodeRecords renders records as a JSON array indented by two spaces. A nil
// slice encodes as [].
func EncodeRecords(records []crawler.PostingRecord) ([]byte, error) {
	if records == nil {
		records = []crawler.PostingRecord{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode records: %w", err)
	}
	return data, nil
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// SiteSlug lowercases name and collapses everything else into single dashes.
func SiteSlug(name string) string {
	slug := strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(name), "-"), "-")
	if slug == "" {
		return "site"
	}
	return slug
}

// ArchivePath returns <prefix>/<site-slug>/<run_id>.json.
func ArchivePath(prefix, site, runID string) string {
	return path.Join(strings.Trim(prefix, "/"), SiteSlug(site), runID+".json")
}
