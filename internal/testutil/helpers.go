package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// CreateTestFile creates a test file with content
func CreateTestFile(t *testing.T, path string, content []byte) {
	t.Helper()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("Failed to create directory for test file: %v", err)
	}

	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("Failed to create test file %s: %v", path, err)
	}
}

// CreateTestStateDirectory creates a state directory with history and saved files
func CreateTestStateDirectory(t *testing.T) string {
	t.Helper()

	dir := filepath.Join(t.TempDir(), "state")
	CreateTestFile(t, filepath.Join(dir, "history.json"),
		[]byte(`[{"source":"good morning","target":"bom dia","timestamp":1000,"fallbackUsed":true,"saved":false}]`))
	CreateTestFile(t, filepath.Join(dir, "saved.json"),
		[]byte(`[{"sourceText":"thank you","translatedText":"obrigado","timestamp":900}]`))
	return dir
}

// AssertFileExists checks if a file exists
func AssertFileExists(t *testing.T, path string) {
	t.Helper()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("Expected file to exist: %s", path)
	}
}

// AssertFileNotExists checks if a file does not exist
func AssertFileNotExists(t *testing.T, path string) {
	t.Helper()

	if _, err := os.Stat(path); err == nil {
		t.Errorf("Expected file to not exist: %s", path)
	}
}

// AssertFileContains checks if a file contains a substring
func AssertFileContains(t *testing.T, path string, substring string) {
	t.Helper()

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}

	if !strings.Contains(string(content), substring) {
		t.Errorf("File %s does not contain expected substring: %q", path, substring)
	}
}

// Eventually polls cond until it holds or timeout elapses
func Eventually(t *testing.T, timeout time.Duration, cond func() bool, msg string) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	if !cond() {
		t.Fatalf("Condition not met within %s: %s", timeout, msg)
	}
}

// FixedClock returns a clock that always reports millis
func FixedClock(millis int64) func() time.Time {
	return func() time.Time {
		return time.UnixMilli(millis)
	}
}
