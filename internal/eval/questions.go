// Package eval scores the ask pipeline against a golden question set.
// Each question declares the class it should route to and the keywords a
// correct answer must surface; the runner turns those expectations into a
// 0-5 score per question and writes the full run as a JSON report.
package eval

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Question is one golden evaluation case
type Question struct {
	ID             string   `yaml:"id" json:"id"`
	Category       string   `yaml:"category" json:"category"`
	Text           string   `yaml:"text" json:"text"`
	ExpectClass    string   `yaml:"expect_class" json:"expect_class"`
	ExpectKeywords []string `yaml:"expect_keywords" json:"expect_keywords"`
}

// DefaultQuestions returns the built-in golden set. Expected classes follow
// the decision table, procedural precedence included: a "how do I register"
// question is procedural even when it is really about a threshold.
func DefaultQuestions() []Question {
	return []Question{
		{
			ID:             "gst-rate",
			Category:       "gst",
			Text:           "What is the current GST rate in New Zealand?",
			ExpectClass:    "established_law",
			ExpectKeywords: []string{"15%"},
		},
		{
			ID:             "gst-threshold",
			Category:       "gst",
			Text:           "What is the GST registration threshold?",
			ExpectClass:    "established_law",
			ExpectKeywords: []string{"60,000"},
		},
		{
			ID:             "gst-return-file",
			Category:       "gst",
			Text:           "How do I file my GST return?",
			ExpectClass:    "procedural",
			ExpectKeywords: []string{"GST", "filed"},
		},
		{
			ID:             "paye-latest",
			Category:       "paye",
			Text:           "Latest PAYE changes announced this month",
			ExpectClass:    "recent_changes",
			ExpectKeywords: []string{"PAYE"},
		},
		{
			ID:             "paye-deadline",
			Category:       "paye",
			Text:           "When is PAYE due for small employers?",
			ExpectClass:    "established_law",
			ExpectKeywords: []string{"20th"},
		},
		{
			ID:             "provisional-dates",
			Category:       "provisional-tax",
			Text:           "When are provisional tax instalments due?",
			ExpectClass:    "established_law",
			ExpectKeywords: []string{"28 August"},
		},
		{
			ID:             "provisional-latest",
			Category:       "provisional-tax",
			Text:           "Any recent updates to provisional tax rules?",
			ExpectClass:    "hybrid",
			ExpectKeywords: []string{"provisional"},
		},
		{
			ID:             "company-incorporate",
			Category:       "registration",
			Text:           "What forms do I need to incorporate a company?",
			ExpectClass:    "procedural",
			ExpectKeywords: []string{"Companies Office"},
		},
		{
			ID:             "gst-register-how",
			Category:       "registration",
			Text:           "How do I register for GST with Inland Revenue?",
			ExpectClass:    "procedural",
			ExpectKeywords: []string{"registration"},
		},
		{
			ID:             "ir3-due",
			Category:       "deadlines",
			Text:           "When is the IR3 individual tax return due?",
			ExpectClass:    "established_law",
			ExpectKeywords: []string{"7 April"},
		},
		{
			ID:             "financial-statements-due",
			Category:       "deadlines",
			Text:           "When are financial statements due after balance date?",
			ExpectClass:    "established_law",
			ExpectKeywords: []string{"5 months"},
		},
	}
}

// LoadQuestions reads a golden set from a YAML file. An empty path returns
// the built-in set.
func LoadQuestions(path string) ([]Question, error) {
	if path == "" {
		return DefaultQuestions(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read questions file: %w", err)
	}

	var doc struct {
		Questions []Question `yaml:"questions"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse questions file: %w", err)
	}

	for i, q := range doc.Questions {
		if q.ID == "" || q.Text == "" {
			return nil, fmt.Errorf("question %d: id and text are required", i)
		}
	}

	return doc.Questions, nil
}

// FilterByCategory keeps only questions in the given category. An empty
// filter keeps everything.
func FilterByCategory(questions []Question, category string) []Question {
	if category == "" {
		return questions
	}

	var out []Question
	for _, q := range questions {
		if q.Category == category {
			out = append(out, q)
		}
	}
	return out
}
