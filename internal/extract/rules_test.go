package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/JakeFAU/careers-crawler/internal/crawler"
)

func TestExtractYears(t *testing.T) {
	t.Parallel()

	tests := []struct {
		text string
		want string
	}{
		{text: "5+ years of Go", want: "5+"},
		{text: "3-5 years experience", want: "3-5"},
		{text: "2 to 4 years", want: "2-4"},
		{text: "3–6 years in industry", want: "3-6"},
		{text: "At least 7 years building systems", want: "7+"},
		{text: "4 years of experience", want: "4"},
		{text: "Entry level position", want: "0"},
		{text: "Junior role, 1 year mentoring", want: "1"},
		{text: "Open to new grad applicants", want: "0"},
		{text: "We value curiosity", want: "0"},
		{text: "", want: "0"},
		{text: "10 + years, or 2-3 years with a PhD", want: "2-3"},
	}
	for _, tc := range tests {
		t.Run(tc.text, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, ExtractYears(tc.text))
		})
	}
}

func TestClassifySeniority(t *testing.T) {
	t.Parallel()

	tests := []struct {
		title string
		years string
		want  crawler.Seniority
	}{
		{title: "Senior Backend Engineer", years: "0", want: crawler.SenioritySenior},
		{title: "Principal Engineer", years: "2", want: crawler.SeniorityPrincipal},
		{title: "Staff Software Engineer", years: "", want: crawler.SenioritySenior},
		{title: "Tech Lead, Payments", years: "", want: crawler.SenioritySenior},
		{title: "Associate Developer", years: "9+", want: crawler.SeniorityMid},
		{title: "Software Engineering Intern", years: "5+", want: crawler.SeniorityEntry},
		{title: "Software Engineer", years: "0", want: crawler.SeniorityEntry},
		{title: "Software Engineer", years: "2", want: crawler.SeniorityEntry},
		{title: "Software Engineer", years: "3-5", want: crawler.SeniorityMid},
		{title: "Software Engineer", years: "5+", want: crawler.SenioritySenior},
		{title: "Software Engineer", years: "7", want: crawler.SenioritySenior},
		{title: "Software Engineer", years: "8+", want: crawler.SeniorityPrincipal},
		{title: "Software Engineer", years: "lots", want: crawler.SeniorityEntry},
		{title: "Software Engineer", years: "99999999999999999999", want: crawler.SeniorityPrincipal},
		{title: "Software Engineer", years: "99999999999999999999+", want: crawler.SeniorityPrincipal},
		{title: "Seniors Club Organizer", years: "1", want: crawler.SeniorityEntry},
	}
	for _, tc := range tests {
		t.Run(tc.title+"/"+tc.years, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, ClassifySeniority(tc.title, tc.years))
		})
	}
}

func TestClassifyDomain(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		skills []string
		title  string
		want   crawler.Domain
	}{
		{name: "full stack", skills: []string{"React", "Node.js"}, title: "Software Engineer", want: crawler.DomainFullStack},
		{name: "devops", skills: []string{"Terraform", "AWS"}, title: "Platform Engineer", want: crawler.DomainDevOps},
		{name: "frontend", skills: []string{"Vue", "CSS"}, want: crawler.DomainFrontend},
		{name: "backend", skills: []string{"Go", "PostgreSQL"}, want: crawler.DomainBackend},
		{name: "data", skills: []string{"Spark", "SQL"}, want: crawler.DomainData},
		{name: "title marker", title: "Frontend Engineer", want: crawler.DomainFrontend},
		{name: "title plus skills", skills: []string{"Python"}, title: "Frontend Engineer", want: crawler.DomainFullStack},
		{name: "backend outranks devops", skills: []string{"Java", "Docker"}, want: crawler.DomainBackend},
		{name: "no evidence", want: crawler.DomainBackend},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, ClassifyDomain(tc.skills, tc.title))
		})
	}
}
