package sink

import (
	"io"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
)

// WriteAtomic runs write against a temp file in the directory of path and
// renames it over path only when write and all flushing succeed. On any
// error the temp file is removed and path is left untouched.
//
// Implementation details:
//   - Ensures the parent directory exists (0700).
//   - Syncs and closes the temp file before chmod/rename.
//   - Applies perm to the temp file before the rename.
func WriteAtomic(path string, perm os.FileMode, write func(w io.Writer) error) error {
	if path == "" {
		return errors.New("output path is empty")
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return errors.Wrap(err, "create output directory")
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return errors.Wrap(err, "create temp file")
	}
	tmpName := tmp.Name()

	// Ensure we clean up temp file on error; after a successful rename this
	// is a no-op.
	defer os.Remove(tmpName)

	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return errors.Wrap(err, "sync temp file")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "close temp file")
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		return errors.Wrap(err, "chmod temp file")
	}
	if err := os.Rename(tmpName, path); err != nil {
		return errors.Wrap(err, "rename temp file into place")
	}
	return nil
}

// WriteFileAtomic writes data to path through WriteAtomic.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	return WriteAtomic(path, perm, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}
