package batch

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// PhraseEntry is one line of a batch file
type PhraseEntry struct {
	Line    int
	English string
	// Expected is the known Portuguese translation, empty if not given
	Expected string
}

// ReadBatchFile reads phrases from a file, or from stdin when filename is "-"
// Supports formats:
// - English only: "good morning"
// - With expected translation: "good morning = bom dia"
// Blank lines and lines starting with '#' are skipped.
func ReadBatchFile(filename string) ([]PhraseEntry, error) {
	if filename == "-" {
		return Parse(os.Stdin)
	}

	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read batch file: %w", err)
	}
	defer file.Close()

	return Parse(file)
}

// Parse reads phrases from r
func Parse(r io.Reader) ([]PhraseEntry, error) {
	var entries []PhraseEntry

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		entry := PhraseEntry{Line: lineNo, English: line}
		if english, expected, ok := strings.Cut(line, "="); ok {
			entry.English = strings.TrimSpace(english)
			entry.Expected = strings.TrimSpace(expected)
		}
		// Ignore lines with an empty English part
		if entry.English == "" {
			continue
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read batch file: %w", err)
	}

	return entries, nil
}
