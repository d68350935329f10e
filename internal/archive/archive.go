package archive

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ErrNothingToArchive is returned when the state directory holds no state files
var ErrNothingToArchive = errors.New("no state files to archive")

// StateFiles are the files the storage backends write into the state directory
var StateFiles = []string{"history.json", "saved.json", "bomdia.db"}

// ArchiveState moves the state files of stateDir into
// <stateDir>/archive/state-<timestamp> and returns that directory.
// The next session starts with empty history and saved lists.
func ArchiveState(stateDir string) (string, error) {
	// Check if state directory exists
	if _, err := os.Stat(stateDir); os.IsNotExist(err) {
		return "", fmt.Errorf("state directory does not exist: %s", stateDir)
	}

	var present []string
	for _, name := range StateFiles {
		if _, err := os.Stat(filepath.Join(stateDir, name)); err == nil {
			present = append(present, name)
		}
	}
	if len(present) == 0 {
		return "", ErrNothingToArchive
	}

	archivePath := newArchivePath(filepath.Join(stateDir, "archive"))
	if err := os.MkdirAll(archivePath, 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	for _, name := range present {
		if err := os.Rename(filepath.Join(stateDir, name), filepath.Join(archivePath, name)); err != nil {
			return "", fmt.Errorf("failed to archive %s: %w", name, err)
		}
	}

	return archivePath, nil
}

func newArchivePath(archiveDir string) string {
	// Generate timestamp
	timestamp := time.Now().Format("20060102-150405")
	archivePath := filepath.Join(archiveDir, "state-"+timestamp)

	// Check if archive already exists (unlikely but possible)
	if _, err := os.Stat(archivePath); err == nil {
		// Add microseconds to make it unique
		timestamp = time.Now().Format("20060102-150405.000000")
		archivePath = filepath.Join(archiveDir, "state-"+timestamp)
	}
	return archivePath
}
