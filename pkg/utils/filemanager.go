// =============================================================================
// Settlement Report Enricher - File Manager
// =============================================================================
//
// This module handles the file-system staging around the pipeline:
//   - Ensuring the input/output/archive directories exist
//   - Discovering settlement report files in the input directory
//   - Generating output file names from a configurable pattern
//   - Archiving processed input files
//
// The pipeline itself never touches directories; it is handed concrete input
// and output paths by the command layer, which uses this manager.
//
// =============================================================================

package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager owns the staging directories for one configuration.
type FileManager struct {
	inputDir   string
	outputDir  string
	archiveDir string
}

// NewFileManager creates a FileManager for the given directories.
func NewFileManager(inputDir, outputDir, archiveDir string) *FileManager {
	return &FileManager{
		inputDir:   inputDir,
		outputDir:  outputDir,
		archiveDir: archiveDir,
	}
}

// EnsureDirectories creates any staging directory that does not yet exist.
func (fm *FileManager) EnsureDirectories() error {
	for _, dir := range []string{fm.inputDir, fm.outputDir, fm.archiveDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// DiscoverInputFiles returns the settlement report files staged in the
// input directory, sorted by name. Reports arrive as .csv or .xlsx.
func (fm *FileManager) DiscoverInputFiles() ([]string, error) {
	entries, err := os.ReadDir(fm.inputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read input directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".csv", ".xlsx", ".xlsm":
			files = append(files, filepath.Join(fm.inputDir, entry.Name()))
		}
	}

	sort.Strings(files)
	return files, nil
}

// OutputPath builds the output file path for an input report using the
// configured name format. Supported placeholders:
//
//	{name}      - input base name without extension
//	{timestamp} - current time as YYYYMMDD_HHMMSS
//	{uuid}      - a random UUID
func (fm *FileManager) OutputPath(inputPath, format string) string {
	base := filepath.Base(inputPath)
	name := strings.TrimSuffix(base, filepath.Ext(base))

	replacer := strings.NewReplacer(
		"{name}", name,
		"{timestamp}", time.Now().Format("20060102_150405"),
		"{uuid}", uuid.New().String(),
	)

	return filepath.Join(fm.outputDir, replacer.Replace(format))
}

// ArchiveInputFile moves a processed input file into the archive directory.
// A timestamp suffix is added if a file of the same name is already
// archived. Returns the archived path.
func (fm *FileManager) ArchiveInputFile(path string) (string, error) {
	target := filepath.Join(fm.archiveDir, filepath.Base(path))

	if FileExists(target) {
		ext := filepath.Ext(target)
		stem := strings.TrimSuffix(target, ext)
		target = fmt.Sprintf("%s_%s%s", stem, time.Now().Format("20060102_150405"), ext)
	}

	if err := os.Rename(path, target); err != nil {
		return "", fmt.Errorf("failed to archive %s: %w", path, err)
	}
	return target, nil
}

// =============================================================================
// HELPERS
// =============================================================================

// FileExists reports whether path exists and is not a directory.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
