package capture

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Dir downloads files into a directory, creating it when needed.
type Dir string

// Download writes data to the directory under filename.
func (d Dir) Download(ctx context.Context, filename string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if filename == "" || filepath.Base(filename) != filename {
		return fmt.Errorf("invalid file name %q", filename)
	}
	if err := os.MkdirAll(string(d), 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(string(d), filename), data, 0o644)
}
