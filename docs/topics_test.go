package docs

import (
	"bufio"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"testing"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// TestTopics keeps readme.md and the topic files in sync: every topic the
// readme lists must load, and every .md file must be listed.
func TestTopics(t *testing.T) {
	file, err := os.Open("readme.md")
	if err != nil {
		t.Fatalf("failed to open readme.md: %v", err)
	}
	defer file.Close()

	var topicsInReadme []string
	topicRegex := regexp.MustCompile(`^\*\s+([^:]+):.*$`)
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if matches := topicRegex.FindStringSubmatch(scanner.Text()); len(matches) > 1 {
			topicsInReadme = append(topicsInReadme, strings.TrimSpace(matches[1]))
		}
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("error scanning readme.md: %v", err)
	}
	if len(topicsInReadme) == 0 {
		t.Fatal("readme.md lists no topics")
	}

	for _, topic := range topicsInReadme {
		t.Run("load_"+topic, func(t *testing.T) {
			if _, err := GetTopic(topic); err != nil {
				t.Errorf("failed to get topic %q: %v", topic, err)
			}
		})
	}

	files, err := filepath.Glob("*.md")
	if err != nil {
		t.Fatalf("failed to glob *.md: %v", err)
	}
	for _, f := range files {
		topic := strings.TrimSuffix(filepath.Base(f), ".md")
		if topic == "readme" {
			continue
		}
		if !slices.Contains(topicsInReadme, topic) {
			t.Errorf("topic %q is not listed in readme.md", topic)
		}
	}
}

// TestTopicsAreWellFormed parses every topic as markdown and requires a
// single top-level heading, so `invest topic "*"` concatenates cleanly.
func TestTopicsAreWellFormed(t *testing.T) {
	topics, err := GetAllTopics()
	if err != nil {
		t.Fatal(err)
	}

	for _, topic := range topics {
		t.Run(topic, func(t *testing.T) {
			content, err := GetTopic(topic)
			if err != nil {
				t.Fatal(err)
			}

			source := []byte(content)
			root := goldmark.DefaultParser().Parse(text.NewReader(source))

			var h1 int
			ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
				if !entering {
					return ast.WalkContinue, nil
				}
				if heading, ok := n.(*ast.Heading); ok && heading.Level == 1 {
					h1++
				}
				return ast.WalkContinue, nil
			})
			if h1 != 1 {
				t.Errorf("topic %q has %d top-level headings, want exactly one", topic, h1)
			}
		})
	}
}

func TestGetAllTopicsConcatenation(t *testing.T) {
	all, err := GetTopic("*")
	if err != nil {
		t.Fatalf("GetTopic(*) error = %v", err)
	}
	for _, want := range []string{"# Valuation", "# Currency Conversion", "# Look-Through", "# Rebalancing"} {
		if !strings.Contains(all, want) {
			t.Errorf("GetTopic(*) missing section %q", want)
		}
	}
}

func TestGetTopicUnknown(t *testing.T) {
	if _, err := GetTopic("no-such-topic"); err == nil {
		t.Error("GetTopic() accepted an unknown topic")
	}
}
