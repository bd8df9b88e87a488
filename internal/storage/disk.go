package storage

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// sqliteSidecars are the files SQLite keeps next to a WAL-mode database.
var sqliteSidecars = []string{"", "-wal", "-shm"}

// DiskUsageBytes returns the total size in bytes of the given paths.
// A path may be a file or a directory (summed recursively). Empty and
// missing paths count as zero.
func DiskUsageBytes(paths ...string) (int64, error) {
	var total int64
	for _, p := range paths {
		if p == "" {
			continue
		}
		err := filepath.WalkDir(p, func(_ string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			info, err := d.Info()
			if err != nil {
				return err
			}
			total += info.Size()
			return nil
		})
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return 0, err
		}
	}
	return total, nil
}

// DatabaseUsageBytes returns the size of a SQLite database including its WAL and shared-memory files.
func DatabaseUsageBytes(dbPath string) (int64, error) {
	if dbPath == "" {
		return 0, nil
	}
	paths := make([]string, len(sqliteSidecars))
	for i, suffix := range sqliteSidecars {
		paths[i] = dbPath + suffix
	}
	return DiskUsageBytes(paths...)
}

// DiskUsage returns the on-disk size of the vector database.
func (s *SQLiteVectors) DiskUsage() (int64, error) {
	if _, err := os.Stat(s.path); err != nil {
		return 0, nil
	}
	return DatabaseUsageBytes(s.path)
}
