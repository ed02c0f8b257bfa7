package internal

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

func CreateDirectories(dirs ...string) error {
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return nil
}

// MoveTo moves a processed file into a dated subdirectory of destRoot,
// renaming on name conflicts. Copy-then-remove works across filesystems.
func MoveTo(filePath, destRoot string) error {
	currentDate := time.Now().Format("2006-01-02")
	destDir := filepath.Join(destRoot, currentDate)

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return fmt.Errorf("error creating directory: %w", err)
	}

	destPath := filepath.Join(destDir, filepath.Base(filePath))

	counter := 1
	for {
		if _, err := os.Stat(destPath); os.IsNotExist(err) {
			break
		}
		ext := filepath.Ext(destPath)
		baseName := strings.TrimSuffix(filepath.Base(filePath), ext)
		destPath = filepath.Join(destDir, fmt.Sprintf("%s_%d%s", baseName, counter, ext))
		counter++
	}

	in, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("error opening file: %w", err)
	}
	defer in.Close()

	out, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("error creating file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("error moving file: %w", err)
	}

	return os.Remove(filePath)
}
