package module

import (
	"os"
	"path/filepath"
	"strings"

	pkgerrors "github.com/pkg/errors"
)

// Loader resolves import paths to module sources. Search order: the
// literal path, then each search directory. The default search path
// covers the importing program's directory, any NOVA_PATH entries,
// and the bundled std/ directory.
type Loader struct {
	searchPath []string
}

// NewLoader creates a loader rooted at baseDir, usually the directory
// of the script being run.
func NewLoader(baseDir string) *Loader {
	return &Loader{searchPath: defaultSearchPath(baseDir)}
}

func defaultSearchPath(baseDir string) []string {
	paths := []string{baseDir}
	if env := os.Getenv("NOVA_PATH"); env != "" {
		paths = append(paths, filepath.SplitList(env)...)
	}
	paths = append(paths, filepath.Join(baseDir, "std"), "std")
	return paths
}

// AddSearchPath appends a directory to the search path.
func (l *Loader) AddSearchPath(dir string) {
	l.searchPath = append(l.searchPath, dir)
}

// Resolve locates a module and returns its source along with the
// resolved file path used as the cache key.
func (l *Loader) Resolve(path string) (string, string, error) {
	file := path
	if !strings.HasSuffix(file, ".nova") {
		file += ".nova"
	}

	candidates := make([]string, 0, len(l.searchPath)+1)
	if filepath.IsAbs(file) {
		candidates = append(candidates, file)
	} else {
		candidates = append(candidates, file)
		for _, dir := range l.searchPath {
			candidates = append(candidates, filepath.Join(dir, file))
		}
	}

	for _, candidate := range candidates {
		data, err := os.ReadFile(candidate)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return "", "", pkgerrors.Wrapf(err, "cannot read module '%s'", path)
		}
		resolved, err := filepath.Abs(candidate)
		if err != nil {
			resolved = candidate
		}
		return string(data), resolved, nil
	}
	return "", "", pkgerrors.Errorf("Module not found: %s", path)
}
