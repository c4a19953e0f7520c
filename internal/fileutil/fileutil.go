package fileutil

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"dubline/internal/textutil"
)

// TempPath returns a unique, not-yet-created path inside dir of the form
// dubline-<label>-<uuid><ext>. The directory is created when missing.
func TempPath(dir, label, ext string) (string, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("ensure temp dir %q: %w", dir, err)
	}
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	name := fmt.Sprintf("dubline-%s-%s%s", textutil.SanitizeToken(label), uuid.NewString(), ext)
	return filepath.Join(dir, name), nil
}

// Exists reports whether path names an existing regular file.
func Exists(path string) bool {
	if strings.TrimSpace(path) == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// RemoveQuietly deletes path, treating an already-missing file as success.
func RemoveQuietly(path string) error {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
