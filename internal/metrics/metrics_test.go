package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestSiteLabel(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain name", "Acme", "acme"},
		{"padded name", "  Globex ", "globex"},
		{"https url", "https://Jobs.Example.com/careers", "jobs.example.com"},
		{"http url with port", "http://example.com:8080/x", "example.com"},
		{"invalid url", "http://%", "unknown"},
		{"empty string", "", "unknown"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := SiteLabel(tc.input); got != tc.expected {
				t.Errorf("SiteLabel(%q) = %q; want %q", tc.input, got, tc.expected)
			}
		})
	}
}

func TestObservePosting(t *testing.T) {
	before := testutil.ToFloat64(postingsTotal.WithLabelValues("metrics-test", "extracted"))
	ObservePosting("Metrics-Test", "extracted")
	ObservePosting("metrics-test", "extracted")
	after := testutil.ToFloat64(postingsTotal.WithLabelValues("metrics-test", "extracted"))
	if after-before != 2 {
		t.Errorf("expected 2 new extracted postings, got %f", after-before)
	}
}

func TestObserveCrawlDuration(t *testing.T) {
	ObserveCrawlDuration("duration-test", 3*time.Second)
	if n := testutil.CollectAndCount(crawlDurationSeconds); n == 0 {
		t.Error("expected crawl duration histogram to have samples")
	}
}

// Fuzz test for SiteLabel.
func FuzzSiteLabel(f *testing.F) {
	testcases := []string{"http://example.com", "Acme Corp", "ftp://example.com"}
	for _, tc := range testcases {
		f.Add(tc)
	}
	f.Fuzz(func(t *testing.T, orig string) {
		if SiteLabel(orig) == "" {
			t.Errorf("SiteLabel(%q) returned an empty string", orig)
		}
	})
}
