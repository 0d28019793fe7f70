package crawler_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/careers-crawler/internal/crawler"
	"github.com/JakeFAU/careers-crawler/internal/headless/detector"
)

const spaShell = `<!doctype html><html><head><title>Careers at Acme</title></head>
<body><div id="__next"></div>
<script id="__NEXT_DATA__" type="application/json">{"props":{"pageProps":{}},"page":"/careers"}</script>
<script src="/_next/static/chunks/pages/careers.js" defer></script></body></html>`

const renderedListing = `<html><body><div id="__next"><h1>Open roles</h1>
<a class="job" href="/jobs/1">Senior Go Engineer</a></div></body></html>`

type stubFetcher struct {
	resp  crawler.FetchResponse
	err   error
	calls int
}

func (f *stubFetcher) Fetch(context.Context, crawler.FetchRequest) (crawler.FetchResponse, error) {
	f.calls++
	return f.resp, f.err
}

func TestPromotingFetcher_RendersSPAShell(t *testing.T) {
	t.Parallel()

	primary := &stubFetcher{resp: crawler.FetchResponse{StatusCode: http.StatusOK, Body: []byte(spaShell)}}
	headless := &stubFetcher{resp: crawler.FetchResponse{StatusCode: http.StatusOK, Body: []byte(renderedListing)}}

	f := crawler.NewPromotingFetcher(primary, headless, detector.NewHeuristic(0), nil)
	resp, err := f.Fetch(context.Background(), crawler.FetchRequest{URL: "https://acme.example/careers"})
	require.NoError(t, err)

	assert.Equal(t, renderedListing, string(resp.Body))
	assert.True(t, resp.UsedHeadless)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 1, headless.calls)
}

func TestPromotingFetcher_KeepsServerRenderedPage(t *testing.T) {
	t.Parallel()

	page := `<html><body><h1>Jobs</h1><a class="job" href="/jobs/1">Engineer</a></body></html>`
	primary := &stubFetcher{resp: crawler.FetchResponse{StatusCode: http.StatusOK, Body: []byte(page)}}
	headless := &stubFetcher{}

	f := crawler.NewPromotingFetcher(primary, headless, detector.NewHeuristic(0), nil)
	resp, err := f.Fetch(context.Background(), crawler.FetchRequest{URL: "https://acme.example/careers"})
	require.NoError(t, err)

	assert.Equal(t, page, string(resp.Body))
	assert.False(t, resp.UsedHeadless)
	assert.Zero(t, headless.calls)
}

func TestPromotingFetcher_HeadlessFailureKeepsStaticResponse(t *testing.T) {
	t.Parallel()

	primary := &stubFetcher{resp: crawler.FetchResponse{StatusCode: http.StatusOK, Body: []byte(spaShell)}}
	headless := &stubFetcher{err: errors.New("chrome crashed")}

	f := crawler.NewPromotingFetcher(primary, headless, detector.NewHeuristic(0), nil)
	resp, err := f.Fetch(context.Background(), crawler.FetchRequest{URL: "https://acme.example/careers"})
	require.NoError(t, err)

	assert.Equal(t, spaShell, string(resp.Body))
	assert.False(t, resp.UsedHeadless)
	assert.Equal(t, 1, headless.calls)
}

func TestPromotingFetcher_HeadlessCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	primary := &stubFetcher{resp: crawler.FetchResponse{StatusCode: http.StatusOK, Body: []byte(spaShell)}}
	headless := &stubFetcher{err: context.Canceled}

	f := crawler.NewPromotingFetcher(primary, headless, detector.NewHeuristic(0), nil)
	_, err := f.Fetch(ctx, crawler.FetchRequest{URL: "https://acme.example/careers"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPromotingFetcher_PrimaryErrorAndNoHeadless(t *testing.T) {
	t.Parallel()

	boom := errors.New("connection refused")
	f := crawler.NewPromotingFetcher(&stubFetcher{err: boom}, &stubFetcher{}, detector.NewHeuristic(0), nil)
	_, err := f.Fetch(context.Background(), crawler.FetchRequest{URL: "https://acme.example"})
	assert.ErrorIs(t, err, boom)

	shell := &stubFetcher{resp: crawler.FetchResponse{StatusCode: http.StatusOK, Body: []byte(spaShell)}}
	resp, err := crawler.NewPromotingFetcher(shell, nil, detector.NewHeuristic(0), nil).
		Fetch(context.Background(), crawler.FetchRequest{URL: "https://acme.example"})
	require.NoError(t, err)
	assert.False(t, resp.UsedHeadless)
}
