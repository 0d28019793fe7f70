package extract

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/JakeFAU/careers-crawler/internal/crawler"
)

// Extractor implements crawler.FieldExtractor.
type Extractor struct {
	vocabulary *Vocabulary
	logger     *zap.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithVocabulary replaces the built-in skill vocabulary.
func WithVocabulary(v *Vocabulary) Option {
	return func(e *Extractor) {
		if v != nil {
			e.vocabulary = v
		}
	}
}

// WithLogger sets the extractor's logger.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Extractor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// New builds an Extractor using the default vocabulary unless overridden.
func New(opts ...Option) *Extractor {
	e := &Extractor{
		vocabulary: DefaultVocabulary(),
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ExtractFields builds a record from a posting page. It never fails: missing
// elements yield empty strings, and a missing description element falls back
// to the whole page's text.
func (e *Extractor) ExtractFields(document []byte, site crawler.SiteConfig, url string) crawler.PostingRecord {
	record := crawler.PostingRecord{
		URL:            url,
		RequiredSkills: []string{},
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(document))
	if err != nil {
		e.logger.Debug("posting document unparsable", zap.String("url", url), zap.Error(err))
		record.YearsRequired = EntryLevelYears
		record.Seniority = ClassifySeniority("", record.YearsRequired)
		record.Domain = ClassifyDomain(nil, "")
		return record
	}

	record.Title = inlineText(first(doc, site.TitleSelectorOrDefault()))

	descriptionHTML := ""
	if desc := first(doc, site.DescriptionSelectorOrDefault()); desc.Length() > 0 {
		record.Description = blockText(desc)
		descriptionHTML, err = goquery.OuterHtml(desc)
		if err != nil {
			descriptionHTML = record.Description
		}
	} else {
		record.Description = blockText(pageRoot(doc))
		descriptionHTML = record.Description
	}

	if site.HasLocation() {
		if loc := first(doc, site.LocationSelector); loc.Length() > 0 {
			if text := inlineText(loc); text != "" {
				record.Location = &text
			}
		}
	}

	record.RequiredSkills = e.vocabulary.Match(record.Title + "\n" + descriptionHTML)
	record.YearsRequired = ExtractYears(record.Description)
	record.Seniority = ClassifySeniority(record.Title, record.YearsRequired)
	record.Domain = ClassifyDomain(record.RequiredSkills, record.Title)
	return record
}

func first(doc *goquery.Document, selector string) *goquery.Selection {
	if strings.TrimSpace(selector) == "" {
		return doc.Selection.Slice(0, 0)
	}
	return doc.Find(selector).First()
}

func pageRoot(doc *goquery.Document) *goquery.Selection {
	if body := doc.Find("body"); body.Length() > 0 {
		return body
	}
	return doc.Selection
}
