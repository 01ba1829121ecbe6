package backup

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/arthur-debert/myquest/pkg/errors"
	"github.com/arthur-debert/myquest/pkg/logging"
	"github.com/arthur-debert/myquest/pkg/types"
)

const slotSuffix = ".backup"

// Slot describes one backup file on disk
type Slot struct {
	Index   int       `json:"index"`
	Path    string    `json:"path"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
}

// SlotPath returns the path of backup slot n for primary. The primary's
// extension is replaced, so "todos.json" becomes "todos.backup1".
func SlotPath(primary string, n int) string {
	return stem(primary) + slotSuffix + strconv.Itoa(n)
}

func stem(primary string) string {
	return strings.TrimSuffix(primary, filepath.Ext(primary))
}

// Rotate shifts existing slots up by one and copies primary into slot 1.
// Slots numbered above max are removed. It is a no-op when max <= 0 or
// when primary does not exist yet.
func Rotate(fsys types.FS, primary string, max int) error {
	logger := logging.GetLogger("backup").With().Str("path", primary).Logger()

	if max <= 0 {
		return nil
	}

	if _, err := fsys.Stat(primary); err != nil {
		if os.IsNotExist(err) {
			logger.Debug().Msg("No primary file yet, skipping backup rotation")
			return nil
		}
		return errors.Wrapf(err, errors.ErrIO, "failed to stat %s", primary)
	}

	for i := max - 1; i >= 1; i-- {
		current := SlotPath(primary, i)
		next := SlotPath(primary, i+1)
		if _, err := fsys.Stat(current); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return errors.Wrapf(err, errors.ErrIO, "failed to stat backup slot %d", i)
		}
		if err := fsys.Rename(current, next); err != nil {
			return errors.Wrapf(err, errors.ErrIO, "failed to rotate backup slot %d to %d", i, i+1).
				WithDetail("from", current).
				WithDetail("to", next)
		}
	}

	if err := copyFile(fsys, primary, SlotPath(primary, 1)); err != nil {
		return errors.Wrapf(err, errors.ErrIO, "failed to copy %s into backup slot 1", primary)
	}

	if err := Prune(fsys, primary, max); err != nil {
		return err
	}

	logger.Debug().Int("maxBackups", max).Msg("Created backup of data file")
	return nil
}

// Prune removes every slot numbered above max.
func Prune(fsys types.FS, primary string, max int) error {
	slots, err := scan(fsys, primary)
	if err != nil {
		return err
	}
	for _, slot := range slots {
		if slot.Index <= max {
			continue
		}
		if err := fsys.Remove(slot.Path); err != nil && !os.IsNotExist(err) {
			return errors.Wrapf(err, errors.ErrIO, "failed to remove backup slot %d", slot.Index)
		}
	}
	return nil
}

// List returns the slots that exist for primary, ordered newest (slot 1)
// first.
func List(fsys types.FS, primary string) ([]Slot, error) {
	return scan(fsys, primary)
}

// Restore copies slot n back over primary. Any in-memory copy of the
// document must be reloaded afterwards.
func Restore(fsys types.FS, primary string, n int) error {
	slot := SlotPath(primary, n)
	if _, err := fsys.Stat(slot); err != nil {
		if os.IsNotExist(err) {
			return errors.Newf(errors.ErrNotFound, "backup slot %d does not exist", n).
				WithDetail("path", slot)
		}
		return errors.Wrapf(err, errors.ErrIO, "failed to stat backup slot %d", n)
	}
	if err := copyFile(fsys, slot, primary); err != nil {
		return errors.Wrapf(err, errors.ErrIO, "failed to restore backup slot %d", n)
	}
	return nil
}

func scan(fsys types.FS, primary string) ([]Slot, error) {
	dir := filepath.Dir(primary)
	prefix := filepath.Base(stem(primary)) + slotSuffix

	entries, err := fsys.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, errors.ErrIO, "failed to list backups in %s", dir)
	}

	var slots []Slot
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), prefix) {
			continue
		}
		n, err := strconv.Atoi(strings.TrimPrefix(entry.Name(), prefix))
		if err != nil || n < 1 {
			continue
		}
		slot := Slot{Index: n, Path: filepath.Join(dir, entry.Name())}
		if info, err := entry.Info(); err == nil {
			slot.Size = info.Size()
			slot.ModTime = info.ModTime()
		}
		slots = append(slots, slot)
	}

	sort.Slice(slots, func(i, j int) bool { return slots[i].Index < slots[j].Index })
	return slots, nil
}

func copyFile(fsys types.FS, src, dst string) error {
	data, err := fsys.ReadFile(src)
	if err != nil {
		return err
	}
	perm := os.FileMode(0644)
	if info, err := fsys.Stat(src); err == nil {
		perm = info.Mode().Perm()
	}
	return fsys.WriteFile(dst, data, perm)
}
