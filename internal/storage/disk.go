package storage

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Files returns the paths that make up the result log of backend, including the
// SQLite write-ahead log files.
func Files(backend, csvPath, sqlitePath string) []string {
	if strings.EqualFold(backend, "sqlite") {
		return []string{sqlitePath, sqlitePath + "-wal", sqlitePath + "-shm"}
	}
	return []string{csvPath}
}

// DiskUsageBytes returns the total size in bytes of the given paths.
// Each path may be a file or a directory (recursively summed).
// Missing paths are skipped; errors during walk are returned.
func DiskUsageBytes(paths ...string) (int64, error) {
	var total int64
	for _, p := range paths {
		if p == "" {
			continue
		}
		info, err := os.Stat(p)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return 0, err
		}
		if !info.IsDir() {
			total += info.Size()
			continue
		}
		err = filepath.WalkDir(p, func(_ string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return err
			}
			fi, err := d.Info()
			if err != nil {
				return err
			}
			total += fi.Size()
			return nil
		})
		if err != nil {
			return 0, err
		}
	}
	return total, nil
}
