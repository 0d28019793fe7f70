// Package detector decides when a listing or posting page must be re-fetched
// with a headless browser.
package detector

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/JakeFAU/careers-crawler/internal/crawler"
)

// DefaultThreshold is the visible-text length below which a page counts as
// an unrendered shell.
const DefaultThreshold = 2048

// Heuristic flags client-rendered careers pages from their static HTML.
type Heuristic struct {
	Threshold int
}

// NewHeuristic builds a detector. A non-positive threshold uses DefaultThreshold.
func NewHeuristic(threshold int) *Heuristic {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Heuristic{Threshold: threshold}
}

var shellMarkers = [][]byte{
	[]byte(`id="__next"`),
	[]byte(`id="__nuxt"`),
	[]byte(`id="root"`),
	[]byte(`id="app"`),
	[]byte("data-reactroot"),
	[]byte("ng-version"),
}

// ShouldPromote reports whether resp looks like a page whose content only
// appears after JavaScript runs. Only 200 responses are considered.
func (h *Heuristic) ShouldPromote(resp crawler.FetchResponse) bool {
	if resp.StatusCode != http.StatusOK {
		return false
	}
	if len(bytes.TrimSpace(resp.Body)) == 0 {
		return true
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
	if err != nil {
		return false
	}

	scriptBytes := 0
	doc.Find("script").Each(func(_ int, s *goquery.Selection) {
		if html, err := goquery.OuterHtml(s); err == nil {
			scriptBytes += len(html)
		}
	})
	if len(resp.Body) < h.Threshold && scriptBytes*100/len(resp.Body) >= 25 {
		return true
	}

	if !hasShellMarker(resp.Body) {
		return false
	}
	doc.Find("script, style, noscript, template").Remove()
	text := strings.Join(strings.Fields(doc.Text()), " ")
	return len(text) < h.Threshold
}

func hasShellMarker(body []byte) bool {
	lower := bytes.ToLower(body)
	for _, marker := range shellMarkers {
		if bytes.Contains(lower, marker) {
			return true
		}
	}
	return false
}
