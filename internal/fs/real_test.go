package fs

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

// =============================================================================
// Real FS Tests
//
// These tests verify our Real implementation's helper methods work correctly.
// We're NOT testing os.ReadFile, os.OpenFile etc (that's Go's job).
// We ARE testing:
//   - Exists() - our convenience method
//   - WriteFileAtomic() - our atomic write wrapper
// =============================================================================

// TestReal_Exists_ReturnsFalseForNonExistent verifies that Exists() returns
// (false, nil) for files that don't exist - not an error.
func TestReal_Exists_ReturnsFalseForNonExistent(t *testing.T) {
	fs := NewReal()
	dir := t.TempDir()

	exists, err := fs.Exists(filepath.Join(dir, "does-not-exist.txt"))

	if got, want := err, error(nil); !errors.Is(got, want) {
		t.Fatalf("err=%v, want=%v", got, want)
	}

	if got, want := exists, false; got != want {
		t.Fatalf("exists=%v, want=%v", got, want)
	}
}

// TestReal_Exists_ReturnsTrueForFile verifies that Exists() returns
// (true, nil) for files that exist.
func TestReal_Exists_ReturnsTrueForFile(t *testing.T) {
	fs := NewReal()
	dir := t.TempDir()
	path := filepath.Join(dir, "exists.txt")

	if err := os.WriteFile(path, []byte("hello"), 0644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	exists, err := fs.Exists(path)

	if got, want := err, error(nil); !errors.Is(got, want) {
		t.Fatalf("err=%v, want=%v", got, want)
	}

	if got, want := exists, true; got != want {
		t.Fatalf("exists=%v, want=%v", got, want)
	}
}

// TestReal_Exists_ReturnsTrueForDirectory verifies that Exists() works
// for directories too, not just files.
func TestReal_Exists_ReturnsTrueForDirectory(t *testing.T) {
	fs := NewReal()
	dir := t.TempDir()
	subdir := filepath.Join(dir, "subdir")

	if err := os.MkdirAll(subdir, 0755); err != nil {
		t.Fatalf("setup: %v", err)
	}

	exists, err := fs.Exists(subdir)

	if got, want := err, error(nil); !errors.Is(got, want) {
		t.Fatalf("err=%v, want=%v", got, want)
	}

	if got, want := exists, true; got != want {
		t.Fatalf("exists=%v, want=%v", got, want)
	}
}

// TestReal_WriteFileAtomic_CreatesFile verifies basic atomic write creates file.
func TestReal_WriteFileAtomic_CreatesFile(t *testing.T) {
	fs := NewReal()
	dir := t.TempDir()
	path := filepath.Join(dir, "test.txt")

	err := fs.WriteFileAtomic(path, []byte("hello"), 0644)

	if got, want := err, error(nil); !errors.Is(got, want) {
		t.Fatalf("WriteFileAtomic err=%v, want=%v", got, want)
	}

	data, err := os.ReadFile(path)
	if got, want := err, error(nil); !errors.Is(got, want) {
		t.Fatalf("ReadFile err=%v, want=%v", got, want)
	}

	if got, want := string(data), "hello"; got != want {
		t.Fatalf("content=%q, want=%q", got, want)
	}
}

// TestReal_WriteFileAtomic_OverwritesExisting verifies atomic write overwrites.
func TestReal_WriteFileAtomic_OverwritesExisting(t *testing.T) {
	fs := NewReal()
	dir := t.TempDir()
	path := filepath.Join(dir, "test.txt")

	fs.WriteFileAtomic(path, []byte("first"), 0644)

	err := fs.WriteFileAtomic(path, []byte("second"), 0644)

	if got, want := err, error(nil); !errors.Is(got, want) {
		t.Fatalf("WriteFileAtomic err=%v, want=%v", got, want)
	}

	data, _ := os.ReadFile(path)
	if got, want := string(data), "second"; got != want {
		t.Fatalf("content=%q, want=%q", got, want)
	}
}

// TestReal_WriteFileAtomic_NoTempFileLeftOnSuccess verifies no .tmp files
// are left behind after successful write.
func TestReal_WriteFileAtomic_NoTempFileLeftOnSuccess(t *testing.T) {
	fs := NewReal()
	dir := t.TempDir()
	path := filepath.Join(dir, "test.txt")

	fs.WriteFileAtomic(path, []byte("hello"), 0644)

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}

	if got, want := len(entries), 1; got != want {
		t.Fatalf("entryCount=%d, want=%d (entries: %v)", got, want, entries)
	}
}

// TestReal_WriteFileAtomic_ConcurrentWritesSafe verifies concurrent atomic
// writes don't corrupt each other - each write is atomic.
func TestReal_WriteFileAtomic_ConcurrentWritesSafe(t *testing.T) {
	fs := NewReal()
	dir := t.TempDir()
	path := filepath.Join(dir, "test.txt")

	var wg sync.WaitGroup

	writers := 10
	writesPerWriter := 20

	for i := range writers {
		wg.Add(1)

		go func(id int) {
			defer wg.Done()

			for range writesPerWriter {
				content := []byte("writer-" + string(rune('A'+id)) + "-write")
				fs.WriteFileAtomic(path, content, 0644)
			}
		}(i)
	}

	wg.Wait()

	// Final content should be valid (from one of the writers).
	data, err := os.ReadFile(path)
	if got, want := err, error(nil); !errors.Is(got, want) {
		t.Fatalf("ReadFile err=%v, want=%v", got, want)
	}

	// Content should start with "writer-" (not be corrupted/mixed).
	if got, want := len(data) >= 7 && string(data[:7]) == "writer-", true; got != want {
		t.Fatalf("content corrupted: got %q", data)
	}
}

// TestFaulty_FailsArmedOperationsAndDelegatesOthers verifies the fault
// injector returns the configured error for armed operations and passes
// everything else through to the wrapped filesystem.
func TestFaulty_FailsArmedOperationsAndDelegatesOthers(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.txt")

	if err := os.WriteFile(path, []byte("hello"), 0644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	injected := errors.New("injected")
	faulty := &Faulty{FS: NewReal(), WriteFileAtomicErr: injected}

	if got, want := faulty.WriteFileAtomic(path, []byte("x"), 0644), injected; !errors.Is(got, want) {
		t.Fatalf("WriteFileAtomic err=%v, want=%v", got, want)
	}

	// The armed failure must not have touched the file.
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}

	if got, want := string(data), "hello"; got != want {
		t.Fatalf("content=%q, want=%q", got, want)
	}

	// Unarmed operations delegate.
	read, err := faulty.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile via Faulty: %v", err)
	}

	if got, want := string(read), "hello"; got != want {
		t.Fatalf("content=%q, want=%q", got, want)
	}
}
