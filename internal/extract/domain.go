package extract

import (
	"strings"

	"github.com/JakeFAU/careers-crawler/internal/crawler"
)

type domainKeywords struct {
	titleWord string
	keywords  []string
}

var (
	frontendKeywords = domainKeywords{
		titleWord: "frontend",
		keywords:  []string{"react", "vue", "angular", "typescript", "javascript", "html", "css", "ui"},
	}
	backendKeywords = domainKeywords{
		titleWord: "backend",
		keywords:  []string{"node", "node.js", "python", "java", "go", "golang", "rust", "c++", "c#", "express", "api"},
	}
	devopsKeywords = domainKeywords{
		titleWord: "devops",
		keywords:  []string{"aws", "gcp", "azure", "docker", "kubernetes", "terraform", "sre"},
	}
	dataKeywords = domainKeywords{
		titleWord: "data",
		keywords:  []string{"sql", "spark", "hadoop", "ml", "machine learning", "tensorflow"},
	}
)

// matches reports whether any skill is one of the keywords or the title
// contains the domain's marker word.
func (d domainKeywords) matches(skills map[string]struct{}, title string) bool {
	if strings.Contains(title, d.titleWord) {
		return true
	}
	for _, kw := range d.keywords {
		if _, ok := skills[kw]; ok {
			return true
		}
	}
	return false
}

// ClassifyDomain picks the engineering domain from the extracted skills and
// the title. Frontend plus backend evidence is Full-Stack; no evidence
// defaults to Backend.
func ClassifyDomain(skills []string, title string) crawler.Domain {
	set := make(map[string]struct{}, len(skills))
	for _, s := range skills {
		set[strings.ToLower(s)] = struct{}{}
	}
	lowerTitle := strings.ToLower(title)

	frontend := frontendKeywords.matches(set, lowerTitle)
	backend := backendKeywords.matches(set, lowerTitle)
	switch {
	case frontend && backend:
		return crawler.DomainFullStack
	case frontend:
		return crawler.DomainFrontend
	case backend:
		return crawler.DomainBackend
	case devopsKeywords.matches(set, lowerTitle):
		return crawler.DomainDevOps
	case dataKeywords.matches(set, lowerTitle):
		return crawler.DomainData
	default:
		return crawler.DomainBackend
	}
}
