package crawler

import (
	"context"
	"io"
	"time"
)

// Fetcher fetches a URL and returns the body plus metadata.
type Fetcher interface {
	Fetch(ctx context.Context, request FetchRequest) (FetchResponse, error)
}

// HeadlessDetector reports whether a static response needs a browser render.
type HeadlessDetector interface {
	ShouldPromote(resp FetchResponse) bool
}

// ListingParser turns a listing document into posting URLs and a next-page URL.
type ListingParser interface {
	ParseListing(document []byte, site SiteConfig) Listing
}

// FieldExtractor turns a posting document into a PostingRecord. It never fails;
// missing elements degrade to empty or default field values.
type FieldExtractor interface {
	ExtractFields(document []byte, site SiteConfig, url string) PostingRecord
}

// RetryPolicy decides whether a failed attempt is retried and how long to wait.
type RetryPolicy interface {
	ShouldRetry(err error, attempt int) bool
	Backoff(attempt int) time.Duration
}

// Pauser blocks for the given delay or until ctx is done.
type Pauser interface {
	Pause(ctx context.Context, delay time.Duration)
}

// RequestLimiter throttles outbound requests per host.
type RequestLimiter interface {
	Wait(ctx context.Context, url string) error
}

// PostingStore persists extracted records.
type PostingStore interface {
	UpsertPostings(ctx context.Context, runID string, site string, records []PostingRecord) error
}

// BlobStore writes raw artifacts and returns a URI.
type BlobStore interface {
	PutObject(ctx context.Context, path string, contentType string, data io.Reader) (string, error)
}

// Publisher pushes completion events to Pub/Sub (or similar).
type Publisher interface {
	Publish(ctx context.Context, topic string, payload any) (string, error)
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

// IDGenerator produces crawl run IDs.
type IDGenerator interface {
	NewID() (string, error)
}

// Hasher fingerprints archived artifacts.
type Hasher interface {
	Hash(data []byte) (string, error)
}
