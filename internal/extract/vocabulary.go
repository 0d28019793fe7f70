package extract

import (
	"regexp"
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// defaultTerms is the skill vocabulary in reporting order.
var defaultTerms = []string{
	// frontend
	"react", "vue", "angular", "typescript", "javascript", "html", "css", "scss",
	"webpack", "next.js", "gatsby", "redux", "graphql", "jest",
	// backend
	"node", "nodejs", "python", "django", "flask", "java", "spring boot", "golang", "go",
	"rust", "c++", "c#", "dotnet", "php", "laravel", "ruby", "rails", "express",
	"fastify", "nestjs",
	// databases
	"postgresql", "postgres", "mysql", "mongodb", "redis", "elasticsearch",
	"dynamodb", "firebase", "cassandra", "sql",
	// devops and cloud
	"docker", "kubernetes", "aws", "gcp", "azure", "terraform", "jenkins",
	"github actions", "gitlab ci", "circleci",
	// data and ml
	"spark", "hadoop", "tensorflow", "pytorch", "ml", "machine learning",
}

// defaultNormalization maps a matched term to its display name. Terms not
// listed are title-cased.
var defaultNormalization = map[string]string{
	"aws":            "AWS",
	"gcp":            "GCP",
	"sql":            "SQL",
	"ml":             "ML",
	"api":            "API",
	"js":             "JavaScript",
	"javascript":     "JavaScript",
	"node":           "Node.js",
	"nodejs":         "Node.js",
	"python":         "Python",
	"typescript":     "TypeScript",
	"golang":         "Go",
	"go":             "Go",
	"graphql":        "GraphQL",
	"react":          "React",
	"vue":            "Vue",
	"angular":        "Angular",
	"postgresql":     "PostgreSQL",
	"postgres":       "PostgreSQL",
	"mongodb":        "MongoDB",
	"mysql":          "MySQL",
	"dynamodb":       "DynamoDB",
	"docker":         "Docker",
	"kubernetes":     "Kubernetes",
	"html":           "HTML",
	"css":            "CSS",
	"scss":           "SCSS",
	"next.js":        "Next.js",
	"c++":            "C++",
	"c#":             "C#",
	"dotnet":         ".NET",
	"php":            "PHP",
	"nestjs":         "NestJS",
	"tensorflow":     "TensorFlow",
	"pytorch":        "PyTorch",
	"github actions": "GitHub Actions",
	"gitlab ci":      "GitLab CI",
	"circleci":       "CircleCI",
}

type vocabTerm struct {
	term      string
	canonical string
	pattern   *regexp.Regexp
}

// Vocabulary matches known skill terms as whole words and reports them by
// canonical name. It is immutable after construction.
type Vocabulary struct {
	terms []vocabTerm
}

var defaultVocabulary = sync.OnceValue(func() *Vocabulary {
	return NewVocabulary(defaultTerms, defaultNormalization)
})

// DefaultVocabulary returns the shared built-in vocabulary.
func DefaultVocabulary() *Vocabulary {
	return defaultVocabulary()
}

// NewVocabulary compiles terms in the given order. Terms are lower-cased and
// blank or repeated terms are dropped.
func NewVocabulary(terms []string, normalization map[string]string) *Vocabulary {
	caser := cases.Title(language.English)
	seen := make(map[string]struct{}, len(terms))
	v := &Vocabulary{terms: make([]vocabTerm, 0, len(terms))}
	for _, raw := range terms {
		term := strings.ToLower(strings.TrimSpace(raw))
		if term == "" {
			continue
		}
		if _, dup := seen[term]; dup {
			continue
		}
		seen[term] = struct{}{}
		canonical, ok := normalization[term]
		if !ok {
			canonical = caser.String(term)
		}
		v.terms = append(v.terms, vocabTerm{
			term:      term,
			canonical: canonical,
			pattern:   wholeWord(term),
		})
	}
	return v
}

// wholeWord matches term when it is not flanked by a letter, digit, or
// underscore. Plain \b would reject terms ending in punctuation such as c++.
func wholeWord(term string) *regexp.Regexp {
	return regexp.MustCompile(`(?:^|[^a-z0-9_])` + regexp.QuoteMeta(term) + `(?:[^a-z0-9_]|$)`)
}

// Skills returns the distinct canonical names the vocabulary can report, in
// matching order.
func (v *Vocabulary) Skills() []string {
	out := make([]string, 0, len(v.terms))
	seen := make(map[string]struct{}, len(v.terms))
	for _, t := range v.terms {
		if _, ok := seen[t.canonical]; ok {
			continue
		}
		seen[t.canonical] = struct{}{}
		out = append(out, t.canonical)
	}
	return out
}

// Match returns the canonical names of every term present in text, in
// vocabulary order, each at most once.
func (v *Vocabulary) Match(text string) []string {
	lower := strings.ToLower(text)
	skills := []string{}
	seen := make(map[string]struct{})
	for _, t := range v.terms {
		if !t.pattern.MatchString(lower) {
			continue
		}
		if _, dup := seen[t.canonical]; dup {
			continue
		}
		seen[t.canonical] = struct{}{}
		skills = append(skills, t.canonical)
	}
	return skills
}
