package extension

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/signoffhq/signoff/model"
)

func TestKeywordClassifier(t *testing.T) {
	testCases := []struct {
		name     string
		context  *model.TaskContext
		actions  []model.ProposedAction
		expected model.Category
		matched  bool
	}{
		{
			name:     "security keywords dominate",
			context:  &model.TaskContext{Intent: "rotate the auth token and update credential storage"},
			expected: model.CategorySecurity,
			matched:  true,
		},
		{
			name: "database paths",
			actions: []model.ProposedAction{
				{Description: "apply schema migration", Paths: []string{"db/migrations/0004_add_index.sql"}},
			},
			expected: model.CategoryDatabase,
			matched:  true,
		},
		{
			name:     "documentation",
			context:  &model.TaskContext{Intent: "update the readme"},
			expected: model.CategoryDocumentation,
			matched:  true,
		},
		{
			name:     "no keywords",
			context:  &model.TaskContext{Intent: "tidy up whitespace"},
			expected: model.CategoryGeneral,
			matched:  false,
		},
	}

	classifier := NewKeywordClassifier()
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			category, ok := classifier.Classify(tc.context, tc.actions)
			assert.Equal(t, tc.matched, ok)
			if tc.matched {
				assert.Equal(t, tc.expected, category)
			}
		})
	}
}

type staticClassifier struct {
	name     string
	category model.Category
	matched  bool
}

func (s *staticClassifier) Name() string { return s.name }
func (s *staticClassifier) Classify(*model.TaskContext, []model.ProposedAction) (model.Category, bool) {
	return s.category, s.matched
}

func TestRegistryOrder(t *testing.T) {
	registry := NewRegistry()
	assert.NotNil(t, registry.Lookup("keyword"))

	// A non-matching custom classifier falls through to the keyword one.
	registry = NewRegistry()
	registry.Register(&staticClassifier{name: "custom", matched: false})
	category := registry.Classify(&model.TaskContext{Intent: "auth change"}, nil)
	assert.Equal(t, model.CategorySecurity, category)

	// Replacing the keyword classifier keeps its position but changes the outcome.
	registry.Register(&staticClassifier{name: "keyword", category: model.CategoryArchitecture, matched: true})
	category = registry.Classify(&model.TaskContext{Intent: "auth change"}, nil)
	assert.Equal(t, model.CategoryArchitecture, category)

	// No classifier matches.
	registry = NewRegistry()
	category = registry.Classify(&model.TaskContext{Intent: "tidy whitespace"}, nil)
	assert.Equal(t, model.CategoryGeneral, category)
}
