package filesystem

import (
	"io/fs"
	"path/filepath"

	"github.com/arthur-debert/myquest/pkg/errors"
	"github.com/spf13/afero"
)

// writeFileAtomic leaves either the old or the new content at name,
// never a partial write.
func writeFileAtomic(afs afero.Fs, name string, data []byte, perm fs.FileMode) error {
	tmp, err := afero.TempFile(afs, filepath.Dir(name), "."+filepath.Base(name)+".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = afs.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, errors.ErrIO, "write temp file").WithDetail("path", name)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, errors.ErrIO, "sync temp file").WithDetail("path", name)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, errors.ErrIO, "close temp file").WithDetail("path", name)
	}
	if err := afs.Chmod(tmpPath, perm); err != nil {
		return errors.Wrap(err, errors.ErrIO, "chmod temp file").WithDetail("path", name)
	}
	if err := afs.Rename(tmpPath, name); err != nil {
		return errors.Wrap(err, errors.ErrIO, "replace file").WithDetail("path", name)
	}
	committed = true
	return nil
}
