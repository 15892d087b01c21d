package pkg

import (
	"errors"
	"io/fs"
	"os"
)

// PathExists reports whether path exists and is a directory (isDir) or a regular file.
func PathExists(path string, isDir bool) (bool, error) {
	stat, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return stat.IsDir() == isDir, nil
}
