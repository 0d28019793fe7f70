package crawler

import (
	"context"

	"go.uber.org/zap"

	"github.com/JakeFAU/careers-crawler/internal/metrics"
)

// PromotingFetcher fetches with a plain HTTP fetcher first and re-fetches
// through a headless browser when the detector flags the page as a
// client-rendered shell. A failed render keeps the plain response.
type PromotingFetcher struct {
	primary  Fetcher
	headless Fetcher
	detector HeadlessDetector
	logger   *zap.Logger
}

// NewPromotingFetcher builds a PromotingFetcher. With a nil headless fetcher
// or detector it behaves exactly like primary.
func NewPromotingFetcher(primary, headless Fetcher, detector HeadlessDetector, logger *zap.Logger) *PromotingFetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PromotingFetcher{
		primary:  primary,
		headless: headless,
		detector: detector,
		logger:   logger,
	}
}

// Fetch implements Fetcher.
func (f *PromotingFetcher) Fetch(ctx context.Context, request FetchRequest) (FetchResponse, error) {
	resp, err := f.primary.Fetch(ctx, request)
	if err != nil {
		return resp, err
	}
	if f.headless == nil || f.detector == nil || !f.detector.ShouldPromote(resp) {
		return resp, nil
	}

	f.logger.Debug("promoting to headless", zap.String("url", request.URL), zap.Int("bytes", len(resp.Body)))
	rendered, err := f.headless.Fetch(ctx, request)
	if err != nil {
		if ctx.Err() != nil {
			return FetchResponse{}, err
		}
		metrics.ObserveHeadlessPromotion("failed")
		f.logger.Warn("headless fetch failed; keeping static response",
			zap.String("url", request.URL),
			zap.Error(err),
		)
		return resp, nil
	}
	metrics.ObserveHeadlessPromotion("rendered")
	rendered.UsedHeadless = true
	return rendered, nil
}
