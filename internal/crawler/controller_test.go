package crawler_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/careers-crawler/internal/crawler"
	"github.com/JakeFAU/careers-crawler/internal/extract"
	"github.com/JakeFAU/careers-crawler/internal/listing"
)

// siteFetcher serves canned pages and fails for anything it does not know.
type siteFetcher struct {
	mu    sync.Mutex
	pages map[string]string
	calls []string
	hook  func(url string)
}

func (f *siteFetcher) Fetch(_ context.Context, req crawler.FetchRequest) (crawler.FetchResponse, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req.URL)
	hook := f.hook
	f.mu.Unlock()
	if hook != nil {
		hook(req.URL)
	}
	body, ok := f.pages[req.URL]
	if !ok {
		return crawler.FetchResponse{}, &crawler.FetchError{URL: req.URL, Attempts: 3, StatusCode: 404, Err: &crawler.StatusError{StatusCode: 404}}
	}
	return crawler.FetchResponse{URL: req.URL, StatusCode: 200, Body: []byte(body)}, nil
}

func (f *siteFetcher) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

type recordingPauser struct {
	delays []time.Duration
}

func (p *recordingPauser) Pause(_ context.Context, d time.Duration) {
	p.delays = append(p.delays, d)
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

const (
	careersURL = "https://acme.example/careers"
	page2URL   = "https://acme.example/careers?page=2"
)

func acmeSite() crawler.SiteConfig {
	return crawler.SiteConfig{
		Name:             "Acme",
		CareersURL:       careersURL,
		JobLinkSelector:  "a.job",
		NextPageSelector: "a.next",
	}
}

func postingHTML(title, body string) string {
	return `<html><body><h1>` + title + `</h1><div class="job-description">` + body + `</div></body></html>`
}

func twoPageSite() *siteFetcher {
	return &siteFetcher{pages: map[string]string{
		careersURL: `<a class="job" href="/jobs/a">A</a>
			<a class="job" href="/jobs/b">B</a>
			<a class="next" href="/careers?page=2">Next</a>`,
		page2URL: `<a class="job" href="/jobs/b#again">B</a>
			<a class="job" href="/jobs/c">C</a>
			<a class="job" href="/jobs/gone">Gone</a>`,
		"https://acme.example/jobs/a": postingHTML("Senior Backend Engineer", "5+ years of Golang and PostgreSQL"),
		"https://acme.example/jobs/b": postingHTML("Frontend Engineer", "3-5 years experience with React and Node.js"),
		"https://acme.example/jobs/c": postingHTML("Platform Engineer", "Entry level position. Terraform on AWS."),
	}}
}

func newController(fetcher crawler.Fetcher, pauser crawler.Pauser) *crawler.Controller {
	return crawler.NewController(
		fetcher,
		listing.NewParser(nil),
		extract.New(),
		pauser,
		fixedClock{t: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)},
		crawler.ControllerConfig{PageDelay: crawler.DefaultPageDelay},
		nil,
	)
}

func TestCrawl_TwoPagesWithDuplicateAndFailure(t *testing.T) {
	t.Parallel()

	fetcher := twoPageSite()
	pauser := &recordingPauser{}

	result, err := newController(fetcher, pauser).Crawl(context.Background(), acmeSite(), 2)
	require.NoError(t, err)

	require.Len(t, result.Records, 3)
	urls := []string{result.Records[0].URL, result.Records[1].URL, result.Records[2].URL}
	assert.Equal(t, []string{
		"https://acme.example/jobs/a",
		"https://acme.example/jobs/b",
		"https://acme.example/jobs/c",
	}, urls)

	a, b, c := result.Records[0], result.Records[1], result.Records[2]
	assert.Equal(t, "5+", a.YearsRequired)
	assert.Equal(t, crawler.SenioritySenior, a.Seniority)
	assert.Equal(t, crawler.DomainBackend, a.Domain)
	assert.Equal(t, []string{"Go", "PostgreSQL"}, a.RequiredSkills)

	assert.Equal(t, "3-5", b.YearsRequired)
	assert.Equal(t, crawler.SeniorityMid, b.Seniority)
	assert.Equal(t, crawler.DomainFullStack, b.Domain)
	assert.Equal(t, []string{"React", "Node.js"}, b.RequiredSkills)

	assert.Equal(t, "0", c.YearsRequired)
	assert.Equal(t, crawler.SeniorityEntry, c.Seniority)
	assert.Equal(t, crawler.DomainDevOps, c.Domain)

	assert.Equal(t, 2, result.PagesVisited)
	assert.Equal(t, 1, result.FailedPostings)
	assert.Equal(t, crawler.StopBudgetExhausted, result.StopReason)
	assert.Equal(t, "Acme", result.Site)

	calls := fetcher.Calls()
	assert.Equal(t, 1, count(calls, "https://acme.example/jobs/b"), "duplicate posting fetched once")
	assert.Equal(t, []time.Duration{crawler.DefaultPageDelay}, pauser.delays, "pacing only between listing pages")
}

func TestCrawl_BudgetOfOneFetchesOneListing(t *testing.T) {
	t.Parallel()

	fetcher := twoPageSite()
	pauser := &recordingPauser{}

	result, err := newController(fetcher, pauser).Crawl(context.Background(), acmeSite(), 1)
	require.NoError(t, err)

	assert.Equal(t, 1, result.PagesVisited)
	assert.Equal(t, crawler.StopBudgetExhausted, result.StopReason)
	assert.Len(t, result.Records, 2)
	assert.Zero(t, count(fetcher.Calls(), page2URL))
	assert.Empty(t, pauser.delays)
}

func TestCrawl_NonPositiveBudget(t *testing.T) {
	t.Parallel()

	for _, budget := range []int{0, -3} {
		fetcher := twoPageSite()
		result, err := newController(fetcher, &recordingPauser{}).Crawl(context.Background(), acmeSite(), budget)
		require.NoError(t, err)
		assert.Empty(t, fetcher.Calls())
		assert.NotNil(t, result.Records)
		assert.Empty(t, result.Records)
		assert.Equal(t, crawler.StopBudgetExhausted, result.StopReason)
	}
}

func TestCrawl_StopsWithoutNextPage(t *testing.T) {
	t.Parallel()

	fetcher := twoPageSite()
	site := acmeSite()
	site.NextPageSelector = ""

	result, err := newController(fetcher, &recordingPauser{}).Crawl(context.Background(), site, 5)
	require.NoError(t, err)

	assert.Equal(t, 1, result.PagesVisited)
	assert.Equal(t, crawler.StopNoNextPage, result.StopReason)
}

func TestCrawl_ListingFailureKeepsEarlierRecords(t *testing.T) {
	t.Parallel()

	fetcher := twoPageSite()
	delete(fetcher.pages, page2URL)

	result, err := newController(fetcher, &recordingPauser{}).Crawl(context.Background(), acmeSite(), 3)
	require.NoError(t, err)

	assert.Equal(t, 1, result.PagesVisited)
	assert.Len(t, result.Records, 2)
	assert.Equal(t, crawler.StopListingFailed, result.StopReason)
}

func TestCrawl_FirstListingFailureYieldsEmptyResult(t *testing.T) {
	t.Parallel()

	fetcher := &siteFetcher{pages: map[string]string{}}

	result, err := newController(fetcher, &recordingPauser{}).Crawl(context.Background(), acmeSite(), 2)
	require.NoError(t, err)

	assert.Zero(t, result.PagesVisited)
	assert.Empty(t, result.Records)
	assert.Equal(t, crawler.StopListingFailed, result.StopReason)
}

func TestCrawl_CancellationReturnsPartialResult(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fetcher := twoPageSite()
	fetcher.hook = func(url string) {
		if url == "https://acme.example/jobs/a" {
			cancel()
		}
	}

	result, err := newController(fetcher, &recordingPauser{}).Crawl(ctx, acmeSite(), 2)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))

	assert.Equal(t, crawler.StopCanceled, result.StopReason)
	require.Len(t, result.Records, 1)
	assert.Equal(t, "https://acme.example/jobs/a", result.Records[0].URL)
	assert.Zero(t, count(fetcher.Calls(), "https://acme.example/jobs/b"))
}

func TestCrawl_Timestamps(t *testing.T) {
	t.Parallel()

	result, err := newController(twoPageSite(), &recordingPauser{}).Crawl(context.Background(), acmeSite(), 1)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), result.StartedAt)
	assert.Equal(t, result.StartedAt, result.FinishedAt)
}

func count(values []string, target string) int {
	n := 0
	for _, v := range values {
		if v == target {
			n++
		}
	}
	return n
}
