package credstore

import (
	"os"
	"path/filepath"

	"github.com/telekom/nestctl/pkg/nestctl/errdefs"
)

// WriteSecretFile atomically replaces path with data. The content is staged in
// a sibling temp file that is restricted to 0600 before any byte is written.
func WriteSecretFile(path string, data []byte) error {
	return writeSecret(path, data)
}

func writeSecret(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return errdefs.Wrap(errdefs.ErrIO, err, "failed to create %s", path)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if err := chmod(tmpName, fileMode); err != nil {
		return errdefs.Wrap(errdefs.ErrPermission, err, "failed to restrict %s", path)
	}
	if _, err := tmp.Write(data); err != nil {
		return errdefs.Wrap(errdefs.ErrIO, err, "failed to write %s", path)
	}
	if err := tmp.Sync(); err != nil {
		return errdefs.Wrap(errdefs.ErrIO, err, "failed to sync %s", path)
	}
	if err := tmp.Close(); err != nil {
		return errdefs.Wrap(errdefs.ErrIO, err, "failed to close %s", path)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return errdefs.Wrap(errdefs.ErrIO, err, "failed to replace %s", path)
	}
	committed = true
	return nil
}
