package copier

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

type Copier struct {
	logger *zap.Logger
}

func NewCopier(logger *zap.Logger) *Copier {
	return &Copier{logger: logger}
}

// Copy duplicates the source file byte for byte and carries over its
// permissions and modification time. Like the converter, it writes to a
// temp file first so a failed copy never leaves a partial target.
func (c *Copier) Copy(sourcePath, targetPath string) error {
	info, err := os.Stat(sourcePath)
	if err != nil {
		c.logger.Error("Failed to stat source file",
			zap.String("path", sourcePath),
			zap.Error(err),
		)
		return fmt.Errorf("failed to stat source file: %w", err)
	}

	src, err := os.Open(sourcePath)
	if err != nil {
		c.logger.Error("Failed to open source file",
			zap.String("path", sourcePath),
			zap.Error(err),
		)
		return fmt.Errorf("failed to open source file: %w", err)
	}
	defer src.Close()

	if err := os.MkdirAll(filepath.Dir(targetPath), 0o755); err != nil {
		c.logger.Error("Failed to create target directory",
			zap.String("path", targetPath),
			zap.Error(err),
		)
		return fmt.Errorf("failed to create target directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(targetPath), ".copy-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to copy file contents: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Chmod(tmp.Name(), info.Mode().Perm()); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to set file mode: %w", err)
	}
	if err := os.Chtimes(tmp.Name(), info.ModTime(), info.ModTime()); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to set file times: %w", err)
	}

	if err := os.Rename(tmp.Name(), targetPath); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to move temp file into place: %w", err)
	}
	return nil
}
