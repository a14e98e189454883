// Package scanner walks an extracted archive tree and classifies its
// files as descriptors or data files for a rule.
package scanner

import (
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/nishad/tcgaimport/internal/rules"
)

var descriptorSuffixes = []string{".sdrf.txt", ".idf.txt", "DESCRIPTION.txt"}

// IsDescriptor reports whether path names an SDRF, IDF or DESCRIPTION file.
func IsDescriptor(path string) bool {
	for _, s := range descriptorSuffixes {
		if strings.HasSuffix(path, s) {
			return true
		}
	}
	return false
}

// Excluded reports whether a basename hits the global exclusion list.
func Excluded(basename string) bool {
	for _, re := range rules.GlobalExcludes {
		if re.MatchString(basename) {
			return true
		}
	}
	return false
}

// Scanner walks one tree.
type Scanner struct {
	Root string
}

// New returns a scanner rooted at root.
func New(root string) *Scanner {
	return &Scanner{Root: root}
}

// Files returns every regular file under the root, depth first, in
// lexical order within each directory. Hidden entries are skipped.
func (s *Scanner) Files() ([]string, error) {
	var out []string
	err := filepath.WalkDir(s.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path != s.Root && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() {
			out = append(out, path)
		}
		return nil
	})
	return out, err
}

// Descriptors returns the descriptor files of the tree.
func (s *Scanner) Descriptors() ([]string, error) {
	files, err := s.Files()
	if err != nil {
		return nil, err
	}
	var out []string
	for _, f := range files {
		if IsDescriptor(f) {
			out = append(out, f)
		}
	}
	return out, nil
}

// DataFiles returns the files routed to extraction for rule:
// descriptors and globally excluded names are dropped, then the rule's
// include and exclude patterns apply.
func (s *Scanner) DataFiles(rule *rules.Rule) ([]string, error) {
	files, err := s.Files()
	if err != nil {
		return nil, err
	}
	var out []string
	for _, f := range files {
		if IsDescriptor(f) {
			continue
		}
		name := filepath.Base(f)
		if Excluded(name) {
			continue
		}
		if rule.Accepts(name, f) {
			out = append(out, f)
		}
	}
	return out, nil
}
