package pyenv

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/sirupsen/logrus"
)

// StdlibModules returns the standard-library module names for the given
// interpreter. Interpreters from 3.10 on report the set themselves
// (sys.stdlib_module_names); older interpreters and probe failures fall
// back to the bundled table.
func StdlibModules(python string) map[string]bool {
	if python != "" {
		if modules, err := probeStdlib(python); err == nil {
			return modules
		} else {
			logrus.Warnf("probing %s for standard-library modules failed (%v), using the bundled table", python, err)
		}
	}
	modules := make(map[string]bool, len(stdlibModules))
	for name := range stdlibModules {
		modules[name] = true
	}
	return modules
}

func probeStdlib(python string) (map[string]bool, error) {
	out, err := exec.Command(python, "-c",
		`import sys; print("\n".join(sorted(sys.stdlib_module_names)))`).Output()
	if err != nil {
		return nil, fmt.Errorf("querying stdlib module names: %w", err)
	}
	modules := make(map[string]bool)
	for _, line := range strings.Split(string(out), "\n") {
		if name := strings.TrimSpace(line); name != "" {
			modules[name] = true
		}
	}
	if len(modules) == 0 {
		return nil, fmt.Errorf("interpreter reported no stdlib modules")
	}
	return modules, nil
}

var stdlibModules = map[string]bool{
	// Language services and runtime
	"__future__": true, "_thread": true, "abc": true, "ast": true,
	"atexit": true, "builtins": true, "code": true, "codeop": true,
	"compileall": true, "contextvars": true, "dis": true, "gc": true,
	"inspect": true, "keyword": true, "marshal": true, "pickletools": true,
	"py_compile": true, "symtable": true, "sys": true, "sysconfig": true,
	"token": true, "tokenize": true, "traceback": true, "tracemalloc": true,
	"types": true, "typing": true, "warnings": true, "weakref": true,

	// Text processing
	"codecs": true, "difflib": true, "re": true, "readline": true,
	"rlcompleter": true, "string": true, "stringprep": true,
	"textwrap": true, "unicodedata": true,

	// Data types
	"array": true, "bisect": true, "calendar": true, "collections": true,
	"copy": true, "copyreg": true, "dataclasses": true, "datetime": true,
	"enum": true, "graphlib": true, "heapq": true, "pprint": true,
	"queue": true, "reprlib": true, "zoneinfo": true,

	// Numeric and mathematical
	"cmath": true, "decimal": true, "fractions": true, "math": true,
	"numbers": true, "random": true, "statistics": true,

	// Functional programming
	"functools": true, "itertools": true, "operator": true,

	// File and directory access
	"filecmp": true, "fileinput": true, "fnmatch": true, "glob": true,
	"linecache": true, "ntpath": true, "os": true, "pathlib": true,
	"posixpath": true, "shutil": true, "stat": true, "tempfile": true,

	// Data persistence
	"dbm": true, "pickle": true, "shelve": true, "sqlite3": true,

	// Compression and archiving
	"bz2": true, "gzip": true, "lzma": true, "tarfile": true,
	"zipfile": true, "zlib": true,

	// File formats
	"configparser": true, "csv": true, "json": true, "netrc": true,
	"plistlib": true, "tomllib": true,

	// Cryptographic services
	"hashlib": true, "hmac": true, "secrets": true,

	// Operating system services
	"argparse": true, "ctypes": true, "curses": true, "errno": true,
	"fcntl": true, "getopt": true, "getpass": true, "grp": true,
	"io": true, "locale": true, "logging": true, "mmap": true,
	"msvcrt": true, "optparse": true, "platform": true, "posix": true,
	"pty": true, "pwd": true, "resource": true, "select": true,
	"signal": true, "syslog": true, "termios": true, "time": true,
	"tty": true, "winreg": true, "winsound": true,

	// Concurrent execution
	"concurrent": true, "contextlib": true, "multiprocessing": true,
	"sched": true, "selectors": true, "subprocess": true,
	"threading": true, "timeit": true,

	// Networking and IPC
	"asyncio": true, "socket": true, "socketserver": true, "ssl": true,

	// Internet data handling
	"base64": true, "binascii": true, "email": true, "encodings": true,
	"mailbox": true, "mimetypes": true, "quopri": true, "uu": true,

	// Internet protocols
	"ftplib": true, "http": true, "imaplib": true, "ipaddress": true,
	"poplib": true, "smtplib": true, "urllib": true, "uuid": true,
	"webbrowser": true, "wsgiref": true, "xmlrpc": true,

	// Structured markup
	"html": true, "xml": true,

	// Multimedia
	"colorsys": true, "sndhdr": true, "wave": true,

	// Graphical user interfaces
	"idlelib": true, "tkinter": true, "turtle": true, "turtledemo": true,

	// Development and debugging
	"bdb": true, "cProfile": true, "doctest": true, "faulthandler": true,
	"pdb": true, "profile": true, "pstats": true, "pyclbr": true,
	"pydoc": true, "tabnanny": true, "test": true, "trace": true,
	"unittest": true,

	// Software packaging and distribution
	"ensurepip": true, "modulefinder": true, "pkgutil": true,
	"runpy": true, "site": true, "venv": true, "zipapp": true,
	"zipimport": true,

	// Importing
	"importlib": true,

	// Superseded but still shipped
	"aifc": true, "audioop": true, "cgi": true, "cgitb": true,
	"chunk": true, "crypt": true, "imghdr": true, "lib2to3": true,
	"mailcap": true, "nis": true, "nntplib": true, "ossaudiodev": true,
	"pipes": true, "smtpd": true, "spwd": true, "sunau": true,
	"telnetlib": true, "xdrlib": true,

	// Low-level helpers that still appear in imports
	"cmd": true, "gettext": true, "shlex": true, "struct": true,
	"opcode": true, "nturl2path": true,
}
