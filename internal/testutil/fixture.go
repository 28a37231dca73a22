package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// ReadFixture reads a file under the calling package's testdata directory.
func ReadFixture(t testing.TB, elem ...string) []byte {
	t.Helper()
	path := filepath.Join(append([]string{"testdata"}, elem...)...)
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read fixture %s: %v", path, err)
	}
	return data
}

// FixturePath returns the path of a file under the calling package's
// testdata directory, failing the test if it does not exist.
func FixturePath(t testing.TB, elem ...string) string {
	t.Helper()
	path := filepath.Join(append([]string{"testdata"}, elem...)...)
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("missing fixture %s: %v", path, err)
	}
	return path
}

// Squash collapses every run of whitespace in s to a single space and
// trims the ends, so printed code can be compared without regard to
// indentation and line breaks.
func Squash(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// ContainsCode fails the test if got does not contain want once both
// are squashed.
func ContainsCode(t testing.TB, got, want string, msgAndArgs ...any) {
	t.Helper()
	if !strings.Contains(Squash(got), Squash(want)) {
		t.Fatalf("%s: output does not contain\n%s\n--- output ---\n%s", formatMsg(msgAndArgs), want, got)
	}
}
