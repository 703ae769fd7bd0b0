// =============================================================================
// Contact Converter - File Manager Utility
// =============================================================================
//
// This module provides the file handling around a conversion run:
//   - Reading inputs, where "-" means standard input
//   - Writing the output, where "-" means standard output
//   - Atomic replacement of output files (temp file + rename), so a failed
//     run never leaves a partially written document behind
//
// =============================================================================

package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// StdStream is the path naming standard input or standard output.
const StdStream = "-"

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager reads inputs and writes outputs for the converter.
type FileManager struct {
	// Stdin is read for the input path "-".
	Stdin io.Reader

	// Stdout receives output written to "-".
	Stdout io.Writer

	// FileMode is the permission of newly created output files.
	FileMode os.FileMode
}

// NewFileManager returns a FileManager bound to the process streams.
func NewFileManager() *FileManager {
	return &FileManager{
		Stdin:    os.Stdin,
		Stdout:   os.Stdout,
		FileMode: 0644,
	}
}

// =============================================================================
// INPUT
// =============================================================================

// ReadInput returns the full content of path, or of standard input for "-".
func (fm *FileManager) ReadInput(path string) ([]byte, error) {
	if path == StdStream {
		data, err := io.ReadAll(fm.Stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read standard input: %w", err)
		}
		return data, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("can't open '%s': %w", path, err)
	}
	return data, nil
}

// =============================================================================
// OUTPUT
// =============================================================================

// WriteOutput writes data to path, or to standard output for "-".
//
// Files are written to a uniquely named temp file in the target directory
// and renamed over the target once complete.
func (fm *FileManager) WriteOutput(path string, data []byte) error {
	if path == StdStream {
		if _, err := fm.Stdout.Write(data); err != nil {
			return fmt.Errorf("failed to write standard output: %w", err)
		}
		return nil
	}

	tmpPath := tempPath(path)
	if err := os.WriteFile(tmpPath, data, fm.FileMode); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write output file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to move output into place: %w", err)
	}

	return nil
}

// tempPath returns a hidden, unique sibling of path.
func tempPath(path string) string {
	dir, base := filepath.Split(path)
	return filepath.Join(dir, fmt.Sprintf(".%s.%s.tmp", base, uuid.New().String()))
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
