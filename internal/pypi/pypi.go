package pypi

import (
	"regexp"
	"strings"
)

// Requirement is one resolved dependency destined for the manifest.
// An empty Version renders as a bare name line.
type Requirement struct {
	Name    string // canonical distribution name as reported by the metadata index
	Version string // version installed in the scanned environment
}

// Distribution describes one installed distribution found in a
// site-packages metadata directory.
type Distribution struct {
	Name     string // canonical name from METADATA/PKG-INFO, casing preserved
	Version  string
	Location string // path of the .dist-info or .egg-info directory
}

var normalizeRe = regexp.MustCompile(`[-_.]+`)

// NormalizeName applies the PyPI name normalization rule: runs of
// hyphens, underscores and dots collapse to a single hyphen, lowercased.
// Normalized names are the lookup keys of the installed index.
func NormalizeName(name string) string {
	return strings.ToLower(normalizeRe.ReplaceAllString(name, "-"))
}

// ImportToPyPI maps non-obvious import names to the distribution names
// they are installed under. Names absent from the map resolve to
// themselves.
var ImportToPyPI = map[string]string{
	// Django ecosystem
	"corsheaders":              "django-cors-headers",
	"rest_framework":           "djangorestframework",
	"rest_framework_simplejwt": "djangorestframework-simplejwt",
	"django_filters":           "django-filter",
	"crispy_forms":             "django-crispy-forms",
	"cloudinary_storage":       "django-cloudinary-storage",

	// Web and APIs
	"bs4":      "beautifulsoup4",
	"dateutil": "python-dateutil",
	"dotenv":   "python-dotenv",
	"jose":     "python-jose",
	"jwt":      "PyJWT",
	"PIL":      "Pillow",
	"werkzeug": "Werkzeug",
	"jinja2":   "Jinja2",

	// Data science and AI
	"cv2":     "opencv-python",
	"faiss":   "faiss-cpu",
	"sklearn": "scikit-learn",
	"tavily":  "tavily-python",
	"yaml":    "PyYAML",

	// Database drivers
	"psycopg2": "psycopg2-binary",
	"MySQLdb":  "mysqlclient",

	// Utilities
	"Crypto":         "pycryptodome",
	"pkg_resources":  "setuptools",
	"youtube_search": "youtube-search",
}

// KnownTools are distributions commonly invoked from the command line or
// referenced only in configuration strings, so import scanning never sees
// them. They are looked up opportunistically after the import pass.
var KnownTools = []string{
	"gunicorn",
	"uvicorn",
	"daphne",
	"whitenoise",
	"black",
	"isort",
	"flake8",
	"mypy",
	"pytest",
	"pip-tools",
}

// MergedNameMap returns a copy of ImportToPyPI overlaid with extra
// entries, so projects can extend the table without touching resolution
// logic.
func MergedNameMap(extra map[string]string) map[string]string {
	merged := make(map[string]string, len(ImportToPyPI)+len(extra))
	for imp, name := range ImportToPyPI {
		merged[imp] = name
	}
	for imp, name := range extra {
		merged[imp] = name
	}
	return merged
}
