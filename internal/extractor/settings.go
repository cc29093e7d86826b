package extractor

import (
	"fmt"
	"os"
	"path/filepath"

	sitter "github.com/smacker/go-tree-sitter"
)

// settingsLists are the Django settings whose entries name installable
// components.
var settingsLists = []string{"INSTALLED_APPS", "MIDDLEWARE"}

// FindDjangoSettings locates the Django settings module among the
// walked files: a settings.py whose enclosing project root, two levels
// up, contains manage.py. The first match in walk order wins.
func FindDjangoSettings(files []string) string {
	for _, path := range files {
		if filepath.Base(path) != "settings.py" {
			continue
		}
		project := filepath.Dir(filepath.Dir(path))
		if _, err := os.Stat(filepath.Join(project, "manage.py")); err == nil {
			return path
		}
	}
	return ""
}

// ScanSettings extracts the top-level package names listed in the
// INSTALLED_APPS and MIDDLEWARE assignments of a Django settings
// module. Only module-level assignments are considered. Dotted paths
// such as "rest_framework.authtoken" reduce to their first segment.
func (e *Extractor) ScanSettings(path string) ([]string, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	tree := e.parser.Parse(nil, source)
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return nil, fmt.Errorf("parsing %s: source contains syntax errors", path)
	}

	seen := make(map[string]bool)
	var modules []string
	for i := 0; i < int(root.NamedChildCount()); i++ {
		stmt := root.NamedChild(i)
		if stmt.Type() != "expression_statement" {
			continue
		}
		assign := firstChildOfType(stmt, "assignment")
		if assign == nil {
			continue
		}
		left := assign.ChildByFieldName("left")
		if left == nil || left.Type() != "identifier" || !isSettingsList(nodeText(source, left)) {
			continue
		}
		right := assign.ChildByFieldName("right")
		if right == nil {
			continue
		}
		for _, entry := range stringElements(source, right) {
			segment := rootSegment(entry)
			if segment == "" || seen[segment] {
				continue
			}
			seen[segment] = true
			modules = append(modules, segment)
		}
	}

	return modules, nil
}

func isSettingsList(name string) bool {
	for _, candidate := range settingsLists {
		if name == candidate {
			return true
		}
	}
	return false
}

// stringElements collects the string literals under a list or tuple
// node, with their quotes stripped.
func stringElements(source []byte, node *sitter.Node) []string {
	var elements []string
	walk(node, func(n *sitter.Node) {
		if n.Type() != "string" {
			return
		}
		text := trimQuotes(nodeText(source, n))
		if text != "" {
			elements = append(elements, text)
		}
	})
	return elements
}

func trimQuotes(text string) string {
	for _, quote := range []string{`"""`, `'''`, `"`, `'`} {
		if len(text) >= 2*len(quote) &&
			text[:len(quote)] == quote && text[len(text)-len(quote):] == quote {
			return text[len(quote) : len(text)-len(quote)]
		}
	}
	return text
}

func firstChildOfType(node *sitter.Node, nodeType string) *sitter.Node {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child.Type() == nodeType {
			return child
		}
	}
	return nil
}
