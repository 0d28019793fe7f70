package crawler

import (
	"net/http"
	"time"
)

// Seniority is the inferred experience tier of a posting.
type Seniority string

// Seniority tiers.
const (
	SeniorityEntry     Seniority = "Entry"
	SeniorityMid       Seniority = "Mid"
	SenioritySenior    Seniority = "Senior"
	SeniorityPrincipal Seniority = "Principal"
)

// Domain is the technical category of a posting.
type Domain string

// Domain categories. DomainBackend is the fallback when nothing matches.
const (
	DomainFrontend  Domain = "Frontend"
	DomainBackend   Domain = "Backend"
	DomainFullStack Domain = "Full-Stack"
	DomainDevOps    Domain = "DevOps"
	DomainData      Domain = "Data"
)

// Default selectors used when a SiteConfig leaves the optional ones empty.
const (
	DefaultTitleSelector       = "h1"
	DefaultDescriptionSelector = ".job-description"
)

// SiteConfig describes how to crawl one company's career pages. It is
// treated as immutable for the lifetime of a crawl.
type SiteConfig struct {
	Name                string `json:"name" mapstructure:"name" yaml:"name"`
	CareersURL          string `json:"careersUrl" mapstructure:"careersUrl" yaml:"careersUrl" validate:"required,url"`
	JobLinkSelector     string `json:"jobLinkSelector" mapstructure:"jobLinkSelector" yaml:"jobLinkSelector" validate:"required"`
	NextPageSelector    string `json:"nextPageSelector,omitempty" mapstructure:"nextPageSelector" yaml:"nextPageSelector"`
	TitleSelector       string `json:"titleSelector,omitempty" mapstructure:"titleSelector" yaml:"titleSelector"`
	DescriptionSelector string `json:"descriptionSelector,omitempty" mapstructure:"descriptionSelector" yaml:"descriptionSelector"`
	LocationSelector    string `json:"locationSelector,omitempty" mapstructure:"locationSelector" yaml:"locationSelector"`
}

// HasNextPage reports whether pagination is configured at all.
func (s SiteConfig) HasNextPage() bool {
	return s.NextPageSelector != ""
}

// TitleSelectorOrDefault returns the configured title selector or "h1".
func (s SiteConfig) TitleSelectorOrDefault() string {
	if s.TitleSelector == "" {
		return DefaultTitleSelector
	}
	return s.TitleSelector
}

// DescriptionSelectorOrDefault returns the configured description selector or ".job-description".
func (s SiteConfig) DescriptionSelectorOrDefault() string {
	if s.DescriptionSelector == "" {
		return DefaultDescriptionSelector
	}
	return s.DescriptionSelector
}

// HasLocation reports whether location extraction is enabled.
func (s SiteConfig) HasLocation() bool {
	return s.LocationSelector != ""
}

// DisplayName returns the site name, falling back to the careers URL.
func (s SiteConfig) DisplayName() string {
	if s.Name != "" {
		return s.Name
	}
	return s.CareersURL
}

// PostingRecord is the normalized output for a single job posting.
type PostingRecord struct {
	Title          string    `json:"title"`
	RequiredSkills []string  `json:"requiredSkills"`
	YearsRequired  string    `json:"yearsRequired"`
	Seniority      Seniority `json:"seniority"`
	Domain         Domain    `json:"domain"`
	Location       *string   `json:"location"`
	Description    string    `json:"description"`
	URL            string    `json:"url"`
}

// FetchRequest captures everything needed to fetch a URL.
type FetchRequest struct {
	URL     string
	Headers http.Header
}

// FetchResponse is the result returned by a Fetcher implementation.
type FetchResponse struct {
	URL          string
	StatusCode   int
	Headers      http.Header
	Body         []byte
	Duration     time.Duration
	UsedHeadless bool
}

// Listing is what a listing page yields: posting URLs in first-seen order
// and, when present, the absolute URL of the next listing page.
type Listing struct {
	PostingURLs []string
	NextPageURL string
}

// StopReason records why a crawl reached its terminal state.
type StopReason string

// Stop reasons.
const (
	StopBudgetExhausted StopReason = "budget_exhausted"
	StopNoNextPage      StopReason = "no_next_page"
	StopListingFailed   StopReason = "listing_fetch_failed"
	StopCanceled        StopReason = "canceled"
)

// CrawlResult is the outcome of one crawl run.
type CrawlResult struct {
	RunID          string          `json:"runId"`
	Site           string          `json:"site"`
	Records        []PostingRecord `json:"records"`
	PagesVisited   int             `json:"pagesVisited"`
	FailedPostings int             `json:"failedPostings"`
	StopReason     StopReason      `json:"stopReason"`
	StartedAt      time.Time       `json:"startedAt"`
	FinishedAt     time.Time       `json:"finishedAt"`
}
