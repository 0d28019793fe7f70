package crawler

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/JakeFAU/careers-crawler/internal/metrics"
)

// RetryingFetcher wraps a single-shot Fetcher with bounded retries, increasing
// backoff, a fixed identifying header set, and optional per-host throttling.
// Each call is a fresh round trip; nothing is cached.
type RetryingFetcher struct {
	inner   Fetcher
	policy  RetryPolicy
	pauser  Pauser
	limiter RequestLimiter
	headers http.Header
	logger  *zap.Logger
}

// NewRetryingFetcher builds a RetryingFetcher. pauser defaults to a timer and
// limiter may be nil.
func NewRetryingFetcher(
	inner Fetcher,
	policy RetryPolicy,
	pauser Pauser,
	limiter RequestLimiter,
	headers http.Header,
	logger *zap.Logger,
) *RetryingFetcher {
	if policy == nil {
		policy = NewLinearRetryPolicy(0, 0)
	}
	if pauser == nil {
		pauser = TimerPauser{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RetryingFetcher{
		inner:   inner,
		policy:  policy,
		pauser:  pauser,
		limiter: limiter,
		headers: headers.Clone(),
		logger:  logger,
	}
}

// Fetch performs the GET, retrying transport failures and non-2xx responses.
// Exhausting every attempt yields a *FetchError.
func (f *RetryingFetcher) Fetch(ctx context.Context, request FetchRequest) (FetchResponse, error) {
	request.Headers = mergeHeaders(f.headers, request.Headers)
	for attempt := 0; ; attempt++ {
		resp, err := f.attempt(ctx, request)
		if err == nil {
			metrics.ObserveFetchAttempt("success")
			return resp, nil
		}
		metrics.ObserveFetchAttempt("failure")
		f.logger.Debug("fetch attempt failed",
			zap.String("url", request.URL),
			zap.Int("attempt", attempt+1),
			zap.Int("status_code", resp.StatusCode),
			zap.Error(err),
		)
		if ctx.Err() != nil || !f.policy.ShouldRetry(err, attempt) {
			return FetchResponse{}, &FetchError{
				URL:        request.URL,
				Attempts:   attempt + 1,
				StatusCode: resp.StatusCode,
				Err:        err,
			}
		}
		f.pauser.Pause(ctx, f.policy.Backoff(attempt))
	}
}

func (f *RetryingFetcher) attempt(ctx context.Context, request FetchRequest) (FetchResponse, error) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx, request.URL); err != nil {
			return FetchResponse{}, err
		}
	}
	resp, err := f.inner.Fetch(ctx, request)
	if err != nil {
		return resp, err
	}
	if resp.StatusCode != 0 && (resp.StatusCode < 200 || resp.StatusCode > 299) {
		return resp, &StatusError{StatusCode: resp.StatusCode}
	}
	return resp, nil
}

func mergeHeaders(base, extra http.Header) http.Header {
	out := base.Clone()
	if out == nil {
		out = http.Header{}
	}
	for key, values := range extra {
		out.Del(key)
		for _, v := range values {
			out.Add(key, v)
		}
	}
	return out
}
