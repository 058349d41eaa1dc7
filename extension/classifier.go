package extension

import (
	"strings"

	"github.com/signoffhq/signoff/model"
)

// Classifier maps a task context and its proposed actions onto a change
// category. The boolean reports whether the classifier produced a match.
type Classifier interface {
	Name() string
	Classify(context *model.TaskContext, actions []model.ProposedAction) (model.Category, bool)
}

// KeywordClassifier is the built-in classifier: it counts keyword hits per
// category over the intent, action descriptions and paths, and returns the
// category with the most hits.
type KeywordClassifier struct {
	keywords map[model.Category][]string
}

// NewKeywordClassifier creates the classifier with the default keyword table.
func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{
		keywords: map[model.Category][]string{
			model.CategorySecurity:      {"auth", "security", "credential", "secret", "token", "permission"},
			model.CategoryDatabase:      {"schema", "migration", "database", "sql", "table"},
			model.CategoryAPI:           {"api", "endpoint", "route", "handler", "contract"},
			model.CategoryDependency:    {"dependency", "upgrade", "package", "module", "vendor"},
			model.CategoryDocumentation: {"docs", "readme", "documentation", "changelog", "comment"},
			model.CategoryArchitecture:  {"architecture", "refactor", "redesign", "restructure", "layering"},
		},
	}
}

func (c *KeywordClassifier) Name() string { return "keyword" }

func (c *KeywordClassifier) Classify(context *model.TaskContext, actions []model.ProposedAction) (model.Category, bool) {
	var corpus strings.Builder
	if context != nil {
		corpus.WriteString(strings.ToLower(context.Intent))
		corpus.WriteByte(' ')
	}
	for _, action := range actions {
		corpus.WriteString(strings.ToLower(action.Description))
		corpus.WriteByte(' ')
		corpus.WriteString(strings.ToLower(strings.Join(action.Paths, " ")))
		corpus.WriteByte(' ')
	}
	text := corpus.String()

	best, bestHits := model.CategoryGeneral, 0
	for category, words := range c.keywords {
		hits := 0
		for _, word := range words {
			hits += strings.Count(text, word)
		}
		if hits > bestHits || (hits == bestHits && hits > 0 && category < best) {
			best, bestHits = category, hits
		}
	}
	return best, bestHits > 0
}
