// Package checksum verifies mirrored archives against the .md5 files
// published next to them.
package checksum

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/nishad/tcgaimport/internal/emit"
	"github.com/nishad/tcgaimport/internal/errors"
	"github.com/nishad/tcgaimport/internal/models"
	"go.uber.org/zap"
)

// Status is the outcome of checking one archive.
type Status string

const (
	StatusOK          Status = "OK"
	StatusCorrupt     Status = "CORRUPT"
	StatusNotFound    Status = "NOT_FOUND"
	StatusMD5NotFound Status = "MD5_NOT_FOUND"
)

// Result describes one checked archive.
type Result struct {
	URL      string
	Path     string
	Status   Status
	Expected string
	Actual   string
	Deleted  bool
}

// Locator maps a provenance URL to its mirror path.
type Locator interface {
	Path(rawURL string) (string, error)
}

// Checker verifies mirror files.
type Checker struct {
	locator Locator
	delete  bool
	logger  *zap.Logger
}

// New returns a checker. With remove set, corrupt archives and their
// .md5 files are deleted from the mirror.
func New(locator Locator, remove bool, logger *zap.Logger) *Checker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Checker{locator: locator, delete: remove, logger: logger}
}

// Request checks every archive a request's provenance names.
func (c *Checker) Request(ctx context.Context, req *models.ArchiveRequest) ([]Result, error) {
	results := make([]Result, 0, len(req.Provenance.Used))
	for _, u := range req.Provenance.Used {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		r, err := c.Check(u.URL)
		if err != nil {
			return results, err
		}
		results = append(results, *r)
	}
	return results, nil
}

// Check verifies one archive. Missing files are reported in the result.
func (c *Checker) Check(rawURL string) (*Result, error) {
	const op errors.Op = "checksum.Check"

	path, err := c.locator.Path(rawURL)
	if err != nil {
		return nil, errors.E(op, errors.KindConfig, err)
	}
	r := &Result{URL: rawURL, Path: path}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		r.Status = StatusNotFound
		return r, nil
	}
	expected, err := readSum(path + ".md5")
	if os.IsNotExist(err) {
		r.Status = StatusMD5NotFound
		return r, nil
	}
	if err != nil {
		return nil, errors.E(op, errors.KindIO, err)
	}
	r.Expected = expected

	if r.Actual, err = emit.Digest(path); err != nil {
		return nil, errors.E(op, errors.KindIO, err)
	}
	if r.Actual == r.Expected {
		r.Status = StatusOK
		return r, nil
	}

	r.Status = StatusCorrupt
	c.logger.Warn("checksum mismatch",
		zap.String("path", path),
		zap.String("expected", r.Expected),
		zap.String("actual", r.Actual))
	if c.delete {
		if err := os.Remove(path); err != nil {
			return nil, errors.E(op, errors.KindIO, err)
		}
		if err := os.Remove(path + ".md5"); err != nil && !os.IsNotExist(err) {
			return nil, errors.E(op, errors.KindIO, err)
		}
		r.Deleted = true
	}
	return r, nil
}

// readSum returns the first whitespace separated token of the file's
// first line, the md5sum output format.
func readSum(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return "", err
		}
		return "", nil
	}
	fields := strings.Fields(sc.Text())
	if len(fields) == 0 {
		return "", nil
	}
	return strings.ToLower(fields[0]), nil
}

// String renders a result the way the checksum command prints it.
func (r Result) String() string {
	s := fmt.Sprintf("%s: %s", r.Status, r.Path)
	if r.Deleted {
		s += " (deleted)"
	}
	return s
}
