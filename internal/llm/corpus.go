package llm

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// BuildCorpus concatenates the given source files into a single blob
// for the model. Each file is prefixed with a path header so the model
// can tell local modules apart from third-party imports. Unreadable
// files are skipped with a warning.
func BuildCorpus(root string, files []string) (string, error) {
	var sections []string
	for _, path := range files {
		content, err := os.ReadFile(path)
		if err != nil {
			logrus.Warnf("could not read %s: %v", path, err)
			continue
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = path
		}
		sections = append(sections, fmt.Sprintf("--- FILE: %s ---\n\n%s", filepath.ToSlash(rel), content))
	}
	if len(sections) == 0 {
		return "", fmt.Errorf("no readable Python source files to analyze")
	}
	return strings.Join(sections, "\n\n"), nil
}

// ParseReply splits the model's comma-separated answer into package
// name candidates. Surrounding whitespace and stray code fences are
// tolerated even though the prompt forbids them.
func ParseReply(reply string) []string {
	reply = strings.TrimSpace(reply)
	reply = strings.Trim(reply, "`")
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return nil
	}
	var names []string
	for _, token := range strings.Split(reply, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		names = append(names, token)
	}
	return names
}
