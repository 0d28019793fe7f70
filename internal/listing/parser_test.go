package listing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/careers-crawler/internal/crawler"
)

func testSite() crawler.SiteConfig {
	return crawler.SiteConfig{
		Name:             "Acme",
		CareersURL:       "https://acme.example/careers/",
		JobLinkSelector:  "a.job",
		NextPageSelector: "a.next",
	}
}

func TestParseListing_ResolvesAndDedupes(t *testing.T) {
	t.Parallel()

	html := `<html><body>
		<a class="job" href="/jobs/1">One</a>
		<a class="job" href="jobs/2">Two</a>
		<a class="job" href="https://acme.example/jobs/1#apply">One again</a>
		<a class="job" href="/jobs/3">Three</a>
		<a class="job" href="/jobs/2/">Two with slash</a>
		<a class="job" href="/jobs/1">One repeated</a>
		<a class="next" href="?page=2">Next</a>
	</body></html>`

	listing := NewParser(nil).ParseListing([]byte(html), testSite())

	assert.Equal(t, []string{
		"https://acme.example/jobs/1",
		"https://acme.example/careers/jobs/2",
		"https://acme.example/jobs/3",
		"https://acme.example/jobs/2/",
	}, listing.PostingURLs)
	assert.Equal(t, "https://acme.example/careers/?page=2", listing.NextPageURL)
}

func TestParseListing_NeverReturnsDuplicates(t *testing.T) {
	t.Parallel()

	html := `<a class="job" href="/a">a</a><a class="job" href="/a">a</a><a class="job" href=" /a ">a</a>`
	listing := NewParser(nil).ParseListing([]byte(html), testSite())

	require.Len(t, listing.PostingURLs, 1)
	assert.Equal(t, "https://acme.example/a", listing.PostingURLs[0])
}

func TestParseListing_FallbackAttribute(t *testing.T) {
	t.Parallel()

	html := `<a class="job" data-href="/jobs/js-only">JS</a>
		<button class="next" data-href="/careers?page=3">More</button>`
	listing := NewParser(nil).ParseListing([]byte(html), testSite())

	assert.Equal(t, []string{"https://acme.example/jobs/js-only"}, listing.PostingURLs)
	assert.Equal(t, "https://acme.example/careers?page=3", listing.NextPageURL)
}

func TestParseListing_HrefWinsOverFallback(t *testing.T) {
	t.Parallel()

	html := `<a class="next" href="/p2" data-href="/other">Next</a>`
	listing := NewParser(nil).ParseListing([]byte(html), testSite())

	assert.Equal(t, "https://acme.example/p2", listing.NextPageURL)
}

func TestParseListing_NoNextPage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		site crawler.SiteConfig
		html string
	}{
		{
			name: "selector not configured",
			site: crawler.SiteConfig{CareersURL: "https://acme.example/", JobLinkSelector: "a.job"},
			html: `<a class="next" href="/p2">Next</a>`,
		},
		{
			name: "selector matches nothing",
			site: testSite(),
			html: `<a class="job" href="/j">Job</a>`,
		},
		{
			name: "next link without destination",
			site: testSite(),
			html: `<a class="next">Next</a>`,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			listing := NewParser(nil).ParseListing([]byte(tc.html), tc.site)
			assert.Empty(t, listing.NextPageURL)
		})
	}
}

func TestParseListing_DegradesOnBadInput(t *testing.T) {
	t.Parallel()

	site := testSite()
	site.JobLinkSelector = "a[[[" // invalid selector
	listing := NewParser(nil).ParseListing([]byte(`<a href="/x">x</a>`), site)
	assert.NotNil(t, listing.PostingURLs)
	assert.Empty(t, listing.PostingURLs)

	listing = NewParser(nil).ParseListing(nil, testSite())
	assert.Empty(t, listing.PostingURLs)
	assert.Empty(t, listing.NextPageURL)
}

func TestParseListing_SkipsNonHTTPLinks(t *testing.T) {
	t.Parallel()

	html := `<a class="job" href="mailto:jobs@acme.example">Mail</a>
		<a class="job" href="javascript:void(0)">JS</a>
		<a class="job" href="">Empty</a>
		<a class="job" href="/real">Real</a>`
	listing := NewParser(nil).ParseListing([]byte(html), testSite())

	assert.Equal(t, []string{"https://acme.example/real"}, listing.PostingURLs)
}
