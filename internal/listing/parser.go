// Package listing extracts posting links and the next-page link from a
// career-site listing page.
package listing

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/JakeFAU/careers-crawler/internal/crawler"
)

// Link attributes, in lookup order. data-href covers JS-driven links that
// keep their destination out of href.
const (
	AttrHref         = "href"
	AttrFallbackHref = "data-href"
)

// Parser implements crawler.ListingParser with goquery selectors.
type Parser struct {
	logger *zap.Logger
}

// NewParser builds a Parser.
func NewParser(logger *zap.Logger) *Parser {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Parser{logger: logger}
}

// ParseListing returns the absolute posting URLs in first-seen order with
// duplicates dropped, plus the next-page URL when the site configures a
// next-page selector and it matches a link. Unparsable documents and
// unmatched selectors yield an empty Listing.
func (p *Parser) ParseListing(document []byte, site crawler.SiteConfig) crawler.Listing {
	listing := crawler.Listing{PostingURLs: []string{}}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(document))
	if err != nil {
		p.logger.Debug("listing document unparsable", zap.String("site", site.DisplayName()), zap.Error(err))
		return listing
	}

	if strings.TrimSpace(site.JobLinkSelector) != "" {
		seen := make(map[string]struct{})
		doc.Find(site.JobLinkSelector).Each(func(_ int, s *goquery.Selection) {
			abs, ok := p.resolveLink(s, site.CareersURL)
			if !ok {
				return
			}
			if _, dup := seen[abs]; dup {
				return
			}
			seen[abs] = struct{}{}
			listing.PostingURLs = append(listing.PostingURLs, abs)
		})
	}

	if site.HasNextPage() {
		next := doc.Find(site.NextPageSelector).First()
		if next.Length() > 0 {
			if abs, ok := p.resolveLink(next, site.CareersURL); ok {
				listing.NextPageURL = abs
			}
		}
	}
	return listing
}

func (p *Parser) resolveLink(s *goquery.Selection, base string) (string, bool) {
	href, ok := LinkTarget(s)
	if !ok {
		return "", false
	}
	abs, err := crawler.ResolveURL(base, href)
	if err != nil {
		p.logger.Debug("skipping unresolvable link", zap.String("href", href), zap.Error(err))
		return "", false
	}
	return abs, true
}

// LinkTarget returns the element's href, or its data-href when href is
// absent or blank.
func LinkTarget(s *goquery.Selection) (string, bool) {
	for _, attr := range []string{AttrHref, AttrFallbackHref} {
		if v, ok := s.Attr(attr); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v), true
		}
	}
	return "", false
}
