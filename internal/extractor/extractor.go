package extractor

import (
	"fmt"
	"os"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// Extractor pulls imported module names out of Python sources using
// the tree-sitter Python grammar.
type Extractor struct {
	parser *sitter.Parser
}

// NewExtractor creates a new import extractor.
func NewExtractor() *Extractor {
	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())
	return &Extractor{parser: parser}
}

// ExtractFile parses one source file and returns the top-level modules
// it imports.
func (e *Extractor) ExtractFile(path string) ([]string, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	modules, err := e.Extract(source)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return modules, nil
}

// Extract returns the distinct top-level modules imported by the given
// source, in first-seen order. Imports nested in functions and
// conditionals count the same as module-level ones; relative imports
// reference the project itself and are ignored.
func (e *Extractor) Extract(source []byte) ([]string, error) {
	tree := e.parser.Parse(nil, source)
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return nil, fmt.Errorf("source contains syntax errors")
	}

	seen := make(map[string]bool)
	var modules []string
	add := func(module string) {
		segment := rootSegment(module)
		if segment == "" || seen[segment] {
			return
		}
		seen[segment] = true
		modules = append(modules, segment)
	}

	walk(root, func(n *sitter.Node) {
		switch n.Type() {
		case "import_statement":
			// import a.b, numpy as np
			for i := 0; i < int(n.ChildCount()); i++ {
				child := n.Child(i)
				switch child.Type() {
				case "dotted_name":
					add(nodeText(source, child))
				case "aliased_import":
					if name := child.ChildByFieldName("name"); name != nil {
						add(nodeText(source, name))
					}
				}
			}
		case "import_from_statement":
			// from a.b import c; the module_name field is a
			// relative_import node for "from . import c" forms.
			if module := n.ChildByFieldName("module_name"); module != nil && module.Type() == "dotted_name" {
				add(nodeText(source, module))
			}
		case "future_import_statement":
			// from __future__ import annotations; the grammar fixes
			// the module, so there is no module_name field to read.
			add("__future__")
		}
	})

	return modules, nil
}

// rootSegment reduces a dotted module path to its first segment, the
// name a distribution is imported under.
func rootSegment(module string) string {
	module = strings.TrimSpace(module)
	if module == "" || strings.HasPrefix(module, ".") {
		return ""
	}
	segment, _, _ := strings.Cut(module, ".")
	return segment
}

func nodeText(source []byte, node *sitter.Node) string {
	return string(source[node.StartByte():node.EndByte()])
}

func walk(node *sitter.Node, fn func(*sitter.Node)) {
	if node == nil {
		return
	}
	fn(node)
	for i := 0; i < int(node.ChildCount()); i++ {
		walk(node.Child(i), fn)
	}
}
