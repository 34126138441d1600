package fileutil

import (
	"os"
	"path/filepath"
)

// AtomicWriteFile writes data to a temporary file and then renames it to the target file.
// AtomicWriteFile 将数据写入临时文件，然后将其重命名为目标文件。
func AtomicWriteFile(filename string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(filename) // #nosec G703 // Safe: filepath.Dir cleans the path preventing traversal
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	tmpFile, err := os.CreateTemp(dir, "atomic-*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmpFile.Name()) // Clean up if something fails

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return err
	}
	if err := tmpFile.Chmod(perm); err != nil {
		tmpFile.Close()
		return err
	}
	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return err
	}
	if err := tmpFile.Close(); err != nil {
		return err
	}

	return os.Rename(tmpFile.Name(), filename) // #nosec G703 // filename is validated by caller
}

// OpenAppend opens filePath for appending, creating it and its parent directory if needed.
// OpenAppend 以追加模式打开文件，必要时创建文件及其父目录。
func OpenAppend(filePath string) (*os.File, error) {
	safePath := filepath.Clean(filePath) // Sanitize path to prevent directory traversal
	if err := os.MkdirAll(filepath.Dir(safePath), 0755); err != nil {
		return nil, err
	}
	return os.OpenFile(safePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644) // #nosec G304 // filePath is sanitized with filepath.Clean
}

// FirstExisting returns the first regular file named in names inside dir.
// FirstExisting 返回 dir 中 names 列出的第一个存在的普通文件。
func FirstExisting(dir string, names ...string) (string, bool) {
	for _, name := range names {
		p := filepath.Join(dir, name)
		if info, err := os.Stat(p); err == nil && info.Mode().IsRegular() {
			return p, true
		}
	}
	return "", false
}
