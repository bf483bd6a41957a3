// ABOUTME: FAQ fixture loading for the fake answering service
// ABOUTME: YAML catalogue of question/answer pairs plus optional canned query results

package fakefaq

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default_fixture.yaml
var defaultFixture []byte

// FAQ is one catalogue entry. The JSON names match the answering service.
type FAQ struct {
	Question string `yaml:"question" json:"Question,omitempty"`
	Answer   string `yaml:"answer" json:"Answer"`
}

// Fixture is the data the fake service answers from.
type Fixture struct {
	// FAQs is the catalogue served by /data and searched by /ask.
	FAQs []FAQ `yaml:"faqs"`
	// Queries maps a normalized query to a canned /ask result. It wins over
	// catalogue search.
	Queries map[string][]FAQ `yaml:"queries"`
}

// LoadFixture reads a YAML fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading fixture: %w", err)
	}
	return ParseFixture(data)
}

// ParseFixture decodes YAML fixture data. Query keys are normalized.
func ParseFixture(data []byte) (*Fixture, error) {
	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing fixture: %w", err)
	}
	if len(f.FAQs) == 0 && len(f.Queries) == 0 {
		return nil, fmt.Errorf("fixture has no faqs or queries")
	}

	for i, faq := range f.FAQs {
		if strings.TrimSpace(faq.Question) == "" {
			return nil, fmt.Errorf("faqs[%d]: question is required", i)
		}
	}

	queries := make(map[string][]FAQ, len(f.Queries))
	for q, results := range f.Queries {
		key := normalizeQuery(q)
		if key == "" {
			return nil, fmt.Errorf("queries: empty query key")
		}
		if results == nil {
			results = []FAQ{}
		}
		queries[key] = results
	}
	f.Queries = queries

	return &f, nil
}

// DefaultFixture returns the built-in sample catalogue.
func DefaultFixture() *Fixture {
	f, err := ParseFixture(defaultFixture)
	if err != nil {
		panic(fmt.Sprintf("built-in fixture is invalid: %v", err))
	}
	return f
}

func normalizeQuery(q string) string {
	return strings.ToLower(strings.TrimSpace(q))
}
