// Package static embeds example rule and task files into the binary and
// copies them to the data directory
package static

import (
	"embed"
	"errors"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/ayoisaiah/autotrack/internal/osutil"
)

const (
	filesDir = "files"
)

//go:embed files/*
var embeddedFiles embed.FS

// Names lists the embedded example files.
func Names() ([]string, error) {
	entries, err := fs.ReadDir(embeddedFiles, filesDir)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}

	return names, nil
}

// Read returns the contents of the named example file.
func Read(name string) ([]byte, error) {
	return embeddedFiles.ReadFile(path.Join(filesDir, name))
}

// CopyExamples writes the embedded example files into dir. Existing files
// are left untouched. It returns the paths that were written.
func CopyExamples(dir string) ([]string, error) {
	var written []string

	err := fs.WalkDir(
		embeddedFiles,
		filesDir,
		func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			if d.IsDir() {
				return nil
			}

			b, err := embeddedFiles.ReadFile(p)
			if err != nil {
				return err
			}

			destPath := filepath.Join(
				dir,
				filepath.FromSlash(strings.TrimPrefix(p, filesDir+"/")),
			)

			// Only write if file does not already exist
			if _, err := os.Stat(destPath); !errors.Is(err, fs.ErrNotExist) {
				return err
			}

			if err := os.MkdirAll(filepath.Dir(destPath), osutil.DirPermission); err != nil {
				return err
			}

			if err := os.WriteFile(destPath, b, osutil.FilePermission); err != nil {
				return err
			}

			written = append(written, destPath)

			return nil
		},
	)

	return written, err
}
