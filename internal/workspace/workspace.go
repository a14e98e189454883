// Package workspace manages the scratch directory a run owns: the
// extracted archive tree and the staged port files.
package workspace

import (
	"archive/tar"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/nishad/tcgaimport/internal/errors"
)

const (
	treeDir  = "archive"
	stageDir = "stage"
)

// Workspace is a uniquely named directory under a base directory.
type Workspace struct {
	Dir   string
	RunID string
}

// New creates a fresh workspace under base for the given run.
func New(base, runID string) (*Workspace, error) {
	const op errors.Op = "workspace.New"

	if err := os.MkdirAll(base, 0755); err != nil {
		return nil, errors.E(op, errors.KindIO, err, "failed to create work base")
	}

	prefix := "tcgaimport-"
	if len(runID) >= 8 {
		prefix += runID[:8] + "-"
	}
	dir, err := os.MkdirTemp(base, prefix)
	if err != nil {
		return nil, errors.E(op, errors.KindIO, err, "failed to create workspace")
	}

	w := &Workspace{Dir: dir, RunID: runID}
	for _, sub := range []string{w.TreeDir(), w.StageDir()} {
		if err := os.MkdirAll(sub, 0755); err != nil {
			return nil, errors.E(op, errors.KindIO, err, "failed to create workspace layout")
		}
	}
	return w, nil
}

// TreeDir is where archives are extracted.
func (w *Workspace) TreeDir() string {
	return filepath.Join(w.Dir, treeDir)
}

// StageDir holds the staged port files.
func (w *Workspace) StageDir() string {
	return filepath.Join(w.Dir, stageDir)
}

// Extract unpacks a .tar.gz archive into the tree directory.
// Only directories and regular files are materialized.
func (w *Workspace) Extract(ctx context.Context, archive string) error {
	const op errors.Op = "workspace.Extract"

	f, err := os.Open(archive)
	if err != nil {
		return errors.E(op, errors.KindIO, err, "failed to open archive")
	}
	defer f.Close()

	// Chain: file -> gzip reader -> tar reader
	gzipReader, err := gzip.NewReader(f)
	if err != nil {
		return errors.E(op, errors.KindIO, err, fmt.Sprintf("failed to create gzip reader for %s", archive))
	}
	defer gzipReader.Close()

	tarReader := tar.NewReader(gzipReader)
	root := w.TreeDir()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		header, err := tarReader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return errors.E(op, errors.KindIO, err, "failed to read tar header")
		}

		target, err := safeJoin(root, header.Name)
		if err != nil {
			return errors.E(op, errors.KindIO, err)
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0755); err != nil {
				return errors.E(op, errors.KindIO, err, "failed to create directory")
			}
		case tar.TypeReg:
			if err := writeFile(target, tarReader, header.FileInfo().Mode().Perm()|0600); err != nil {
				return errors.E(op, errors.KindIO, err, fmt.Sprintf("failed to extract %s", header.Name))
			}
		default:
			// Skip links and special files
		}
	}

	return nil
}

// Remove deletes the workspace and everything under it.
func (w *Workspace) Remove() error {
	if err := os.RemoveAll(w.Dir); err != nil {
		return errors.E(errors.Op("workspace.Remove"), errors.KindIO, err)
	}
	return nil
}

func safeJoin(root, name string) (string, error) {
	target := filepath.Join(root, filepath.FromSlash(name))
	rel, err := filepath.Rel(root, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("archive entry %q escapes the workspace", name)
	}
	return target, nil
}

func writeFile(path string, r io.Reader, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	out, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
