package crawler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/careers-crawler/internal/metrics"
)

// DefaultPageDelay is the pacing delay between two listing-page fetches.
const DefaultPageDelay = time.Second

// ControllerConfig holds the crawl pacing knobs.
type ControllerConfig struct {
	PageDelay time.Duration
}

// crawlPhase is the Controller's state machine position.
type crawlPhase int

const (
	phaseAwaitingPage crawlPhase = iota
	phaseFetchingListing
	phaseExtractingPostings
	phaseDone
)

func (p crawlPhase) String() string {
	switch p {
	case phaseAwaitingPage:
		return "awaiting_page"
	case phaseFetchingListing:
		return "fetching_listing"
	case phaseExtractingPostings:
		return "extracting_postings"
	case phaseDone:
		return "done"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// crawlState is owned by exactly one Crawl call and never shared.
type crawlState struct {
	phase   crawlPhase
	page    int
	budget  int
	visited *visitedSet
	nextURL string
	pending []string
}

func newCrawlState(startURL string, budget int) *crawlState {
	return &crawlState{
		phase:   phaseAwaitingPage,
		budget:  budget,
		visited: newVisitedSet(),
		nextURL: startURL,
	}
}

// stopReason reports whether another listing page may be fetched.
func (s *crawlState) stopReason() (StopReason, bool) {
	if s.page >= s.budget {
		return StopBudgetExhausted, true
	}
	if s.nextURL == "" {
		return StopNoNextPage, true
	}
	return "", false
}

// Controller walks a site's listing pages and extracts every newly seen posting.
type Controller struct {
	fetcher   Fetcher
	parser    ListingParser
	extractor FieldExtractor
	pauser    Pauser
	clock     Clock
	cfg       ControllerConfig
	logger    *zap.Logger
}

// NewController wires a Controller. fetcher should already apply retries.
func NewController(
	fetcher Fetcher,
	parser ListingParser,
	extractor FieldExtractor,
	pauser Pauser,
	clock Clock,
	cfg ControllerConfig,
	logger *zap.Logger,
) *Controller {
	if pauser == nil {
		pauser = TimerPauser{}
	}
	if clock == nil {
		clock = systemClock{}
	}
	if cfg.PageDelay < 0 {
		cfg.PageDelay = 0
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		fetcher:   fetcher,
		parser:    parser,
		extractor: extractor,
		pauser:    pauser,
		clock:     clock,
		cfg:       cfg,
		logger:    logger,
	}
}

// Crawl processes up to maxPages listing pages starting at site.CareersURL and
// returns records in the order their URLs were first discovered. Listing and
// posting failures shorten the result instead of failing the call; the only
// error returned is ctx's, alongside the partial result.
func (c *Controller) Crawl(ctx context.Context, site SiteConfig, maxPages int) (CrawlResult, error) {
	state := newCrawlState(site.CareersURL, maxPages)
	result := CrawlResult{
		Site:      site.DisplayName(),
		Records:   []PostingRecord{},
		StartedAt: c.clock.Now(),
	}
	logger := c.logger.With(zap.String("site", result.Site))
	logger.Info("starting crawl", zap.String("url", site.CareersURL), zap.Int("max_pages", maxPages))

	for state.phase != phaseDone {
		if ctx.Err() != nil {
			result.StopReason = StopCanceled
			state.phase = phaseDone
			break
		}
		switch state.phase {
		case phaseAwaitingPage:
			if reason, stop := state.stopReason(); stop {
				result.StopReason = reason
				state.phase = phaseDone
				continue
			}
			if state.page > 0 {
				c.pauser.Pause(ctx, c.cfg.PageDelay)
			}
			state.phase = phaseFetchingListing

		case phaseFetchingListing:
			c.fetchListing(ctx, site, state, &result, logger)

		case phaseExtractingPostings:
			c.extractPostings(ctx, site, state, &result, logger)
			state.phase = phaseAwaitingPage
		}
	}

	result.FinishedAt = c.clock.Now()
	metrics.ObserveCrawlDuration(result.Site, result.FinishedAt.Sub(result.StartedAt))
	logger.Info("crawl finished",
		zap.Int("records", len(result.Records)),
		zap.Int("pages", result.PagesVisited),
		zap.Int("failed_postings", result.FailedPostings),
		zap.String("stop_reason", string(result.StopReason)),
	)
	if result.StopReason == StopCanceled {
		return result, fmt.Errorf("crawl %s interrupted: %w", result.Site, ctx.Err())
	}
	return result, nil
}

func (c *Controller) fetchListing(
	ctx context.Context,
	site SiteConfig,
	state *crawlState,
	result *CrawlResult,
	logger *zap.Logger,
) {
	pageURL := state.nextURL
	logger.Debug("fetching listing page", zap.Int("page", state.page+1), zap.String("url", pageURL))

	resp, err := c.fetcher.Fetch(ctx, FetchRequest{URL: pageURL})
	if err != nil {
		metrics.ObserveListingPage(result.Site, "failed")
		result.StopReason = StopListingFailed
		if errors.Is(err, context.Canceled) || ctx.Err() != nil {
			result.StopReason = StopCanceled
		}
		logger.Warn("listing fetch failed; ending crawl",
			zap.Int("page", state.page+1),
			zap.String("url", pageURL),
			zap.Error(err),
		)
		state.phase = phaseDone
		return
	}

	listing := c.parser.ParseListing(resp.Body, site)
	state.page++
	state.pending = listing.PostingURLs
	state.nextURL = listing.NextPageURL
	result.PagesVisited = state.page
	metrics.ObserveListingPage(result.Site, "fetched")
	logger.Info("listing page parsed",
		zap.Int("page", state.page),
		zap.Int("postings", len(listing.PostingURLs)),
		zap.Bool("has_next", listing.NextPageURL != ""),
	)
	state.phase = phaseExtractingPostings
}

func (c *Controller) extractPostings(
	ctx context.Context,
	site SiteConfig,
	state *crawlState,
	result *CrawlResult,
	logger *zap.Logger,
) {
	pending := state.pending
	state.pending = nil
	for _, postingURL := range pending {
		if ctx.Err() != nil {
			return
		}
		if !state.visited.MarkIfNew(postingURL) {
			metrics.ObservePosting(result.Site, "duplicate")
			continue
		}
		resp, err := c.fetcher.Fetch(ctx, FetchRequest{URL: postingURL})
		if err != nil {
			result.FailedPostings++
			metrics.ObservePosting(result.Site, "failed")
			logger.Warn("posting fetch failed; skipping", zap.String("url", postingURL), zap.Error(err))
			continue
		}
		record := c.extractor.ExtractFields(resp.Body, site, postingURL)
		result.Records = append(result.Records, record)
		metrics.ObservePosting(result.Site, "extracted")
		logger.Debug("posting extracted",
			zap.String("url", postingURL),
			zap.String("title", record.Title),
			zap.String("seniority", string(record.Seniority)),
			zap.String("domain", string(record.Domain)),
		)
	}
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}
