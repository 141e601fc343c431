// Package prompt composes the system instructions sent to the model.
package prompt

import (
	"fmt"
	"os"
	"strings"

	"github.com/MikeSquared-Agency/doorstep/internal/domain"
)

// MaxDocumentChars is how much of each knowledge document reaches the prompt.
const MaxDocumentChars = 3000

const (
	knowledgeHeader = "## TRAINING MATERIALS\nThe company has provided the following reference materials. Use them to shape realistic objections, questions and pushback:"
	truncatedMarker = "\n[truncated]"
)

// Build appends the knowledge documents to the base script. With no documents
// the base script is returned unchanged.
func Build(baseScript string, docs []domain.PromptDocument) string {
	if len(docs) == 0 {
		return baseScript
	}

	blocks := make([]string, 0, len(docs))
	for _, d := range docs {
		blocks = append(blocks, fmt.Sprintf("--- %s ---\n%s", d.Filename, Truncate(d.Content, MaxDocumentChars)))
	}

	return baseScript + "\n\n" + knowledgeHeader + "\n\n" + strings.Join(blocks, "\n\n")
}

// Truncate cuts s to at most max characters and marks the cut.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	n := 0
	for i := range s {
		if n == max {
			return s[:i] + truncatedMarker
		}
		n++
	}
	return s
}

// LoadPersona returns the persona script from path, or the built-in homeowner
// persona when path is empty.
func LoadPersona(path string) (string, error) {
	if path == "" {
		return HomeownerPersona, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read persona file: %w", err)
	}
	script := strings.TrimSpace(string(data))
	if script == "" {
		return "", fmt.Errorf("persona file %s is empty", path)
	}
	return script, nil
}
