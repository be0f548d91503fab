// Package testutil loads bank fixtures and selects how scraper tests reach
// the bank.
package testutil

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// FixturePath returns the path of testdata/fixtures/<name>.html inside the
// package directory of the given bank.
func FixturePath(bankDir, name string) string {
	_, filename, _, _ := runtime.Caller(0)
	baseDir := filepath.Dir(filepath.Dir(filename)) // up to bank/

	return filepath.Join(baseDir, bankDir, "testdata", "fixtures", name+".html")
}

// LoadFixture reads an HTML fixture file for the given bank.
func LoadFixture(t *testing.T, bankDir, name string) string {
	t.Helper()

	data, err := os.ReadFile(FixturePath(bankDir, name))
	if err != nil {
		t.Fatalf("Failed to load fixture %s/%s: %v", bankDir, name, err)
	}

	return string(data)
}

// RecordingPath returns the path of testdata/recordings/<name>.har.json
// inside the package directory of the given bank.
func RecordingPath(bankDir, name string) string {
	_, filename, _, _ := runtime.Caller(0)
	baseDir := filepath.Dir(filepath.Dir(filename))

	return filepath.Join(baseDir, bankDir, "testdata", "recordings", name+".har.json")
}

type TestMode string

const (
	TestModeMock   TestMode = "mock"   // Use static fixtures
	TestModeReplay TestMode = "replay" // Replay recorded sessions
	TestModeLive   TestMode = "live"   // Hit real bank (dangerous!)
)

// Mode reads SCRAPER_TEST_MODE, defaulting to mock.
func Mode() TestMode {
	mode := os.Getenv("SCRAPER_TEST_MODE")
	if mode == "" {
		return TestModeMock
	}
	return TestMode(mode)
}

// SkipUnlessMode skips test if not in specified mode
func SkipUnlessMode(t *testing.T, required TestMode) {
	t.Helper()

	if Mode() != required {
		t.Skipf("Skipping: requires SCRAPER_TEST_MODE=%s", required)
	}
}
