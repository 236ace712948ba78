package merger

import (
	"os"
	"path/filepath"

	"github.com/pietwauters/fwmerge/internal/layout"
)

// stage writes data to a temporary file next to dest in sector-sized
// chunks and returns its path. dest itself is not touched.
func stage(dest string, data []byte, progress ProgressCallback) (tmpPath string, err error) {
	tmp, err := os.CreateTemp(filepath.Dir(dest), ".tmp-"+filepath.Base(dest)+"-*")
	if err != nil {
		return "", &IOError{Op: "create", Path: dest, Err: err}
	}
	tmpPath = tmp.Name()

	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	total := len(data)
	progress(0, total)
	for start := 0; start < total; start += layout.FlashSectorSize {
		end := min(start+layout.FlashSectorSize, total)
		if _, err := tmp.Write(data[start:end]); err != nil {
			return "", &IOError{Op: "write", Path: tmpPath, Err: err}
		}
		progress(end, total)
	}

	if err := tmp.Sync(); err != nil {
		return "", &IOError{Op: "sync", Path: tmpPath, Err: err}
	}
	if err := tmp.Chmod(0o644); err != nil {
		return "", &IOError{Op: "chmod", Path: tmpPath, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return "", &IOError{Op: "close", Path: tmpPath, Err: err}
	}

	return tmpPath, nil
}

// commit renames a staged file over dest.
func commit(tmpPath, dest string) error {
	if err := os.Rename(tmpPath, dest); err != nil {
		return &IOError{Op: "rename", Path: dest, Err: err}
	}
	return nil
}

// discard removes staged files that were not committed.
func discard(tmpPaths ...string) {
	for _, p := range tmpPaths {
		if p != "" {
			os.Remove(p)
		}
	}
}

// samePath reports whether a and b name the same file.
func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}
