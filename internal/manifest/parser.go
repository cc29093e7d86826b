package manifest

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/inevitablegs/ReqTxtGenerator/internal/pypi"
)

// requirementRe matches one requirement line: a name, an optional
// extras bracket and an optional version specifier. Markers and
// trailing comments terminate the version.
var requirementRe = regexp.MustCompile(`^([A-Za-z0-9][A-Za-z0-9._-]*)\s*(?:\[[^\]]*\])?\s*(?:(===|==|~=|!=|>=|<=|>|<)\s*([^\s;#]+))?`)

// Parser reads requirements.txt files.
type Parser struct {
	r io.Reader
}

// NewParser creates a new manifest parser.
func NewParser(r io.Reader) *Parser {
	return &Parser{r: r}
}

// Parse reads the requirements, keeping the version for entries pinned
// with == and leaving it empty otherwise. Comments, blank lines and
// pip option lines such as -r or --hash are skipped.
func (p *Parser) Parse() ([]pypi.Requirement, error) {
	var reqs []pypi.Requirement

	scanner := bufio.NewScanner(p.r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "-") {
			continue
		}

		matches := requirementRe.FindStringSubmatch(line)
		if matches == nil {
			continue
		}

		req := pypi.Requirement{Name: matches[1]}
		if matches[2] == "==" || matches[2] == "===" {
			req.Version = matches[3]
		}
		reqs = append(reqs, req)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading requirements: %w", err)
	}

	return reqs, nil
}
