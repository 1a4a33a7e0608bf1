package task

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"tt/internal/fs"
)

// locksDirName is the subdirectory for lock files.
//
// The lock must live on a path that is never replaced: every save swaps the
// tasks file's inode (temp file + rename), and flock coordinates on inodes,
// so locking the tasks file itself would silently stop guarding it after the
// first write.
const locksDirName = ".locks"

// LockTimeout is the timeout for acquiring the tasks-file lock.
const LockTimeout = 2 * time.Second

const (
	dirPerms  = 0o750
	filePerms = 0o600
)

// Store owns the durable round-trip of the task collection to a single JSON
// file. The whole collection is loaded per invocation and the whole file is
// rewritten after every mutation; there are no incremental writes.
//
// Writers hold an exclusive flock on a sibling lock file, readers a shared
// one, so concurrent invocations serialize instead of losing updates.
type Store struct {
	fs     fs.FS
	locker *fs.Locker
	path   string
	log    *log.Logger
}

// NewStore creates a Store persisting to the file at path.
// path should be absolute; relative paths are resolved by the config layer.
func NewStore(filesystem fs.FS, path string, logger *log.Logger) *Store {
	return &Store{
		fs:     filesystem,
		locker: fs.NewLocker(filesystem),
		path:   path,
		log:    logger,
	}
}

// Path returns the path of the backing file.
func (s *Store) Path() string {
	return s.path
}

// Load reads the collection under a shared lock.
//
// An absent, empty, or whitespace-only file is zero tasks, not an error.
// Content that is not a well-formed array of complete task records fails
// with [ErrTasksFileInvalid]; any other read failure with [ErrTasksFileRead].
// Tasks are returned in stored order.
func (s *Store) Load() ([]Task, error) {
	lock, err := s.locker.RLockWithTimeout(s.lockPath(), LockTimeout)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrTasksFileLock, s.path, err)
	}
	defer lock.Close()

	return s.read()
}

// Save serializes the full collection and atomically replaces the backing
// file, under an exclusive lock. Fails with [ErrTasksFileWrite] on any write
// failure; the previous file contents survive a failed write intact.
func (s *Store) Save(tasks []Task) error {
	lock, err := s.locker.LockWithTimeout(s.lockPath(), LockTimeout)
	if err != nil {
		return fmt.Errorf("%w %s: %w", ErrTasksFileLock, s.path, err)
	}
	defer lock.Close()

	return s.write(tasks)
}

// Mutate runs one locked load→transform→save sequence.
//
// The exclusive lock is held across the whole sequence, so two concurrent
// mutations cannot interleave and lose an update. An error from transform
// aborts before anything is written, leaving the file at its last
// successfully-written version.
func (s *Store) Mutate(transform func([]Task) ([]Task, error)) error {
	lock, err := s.locker.LockWithTimeout(s.lockPath(), LockTimeout)
	if err != nil {
		return fmt.Errorf("%w %s: %w", ErrTasksFileLock, s.path, err)
	}
	defer lock.Close()

	tasks, err := s.read()
	if err != nil {
		return err
	}

	updated, err := transform(tasks)
	if err != nil {
		return err
	}

	return s.write(updated)
}

// read loads and decodes the tasks file. Callers must hold the lock.
func (s *Store) read() ([]Task, error) {
	data, err := s.fs.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.log.Debug("tasks file absent, starting empty", "path", s.path)

			return nil, nil
		}

		return nil, fmt.Errorf("%w %s: %w", ErrTasksFileRead, s.path, err)
	}

	if strings.TrimSpace(string(data)) == "" {
		return nil, nil
	}

	if err := validateTasksDocument(data); err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrTasksFileInvalid, s.path, err)
	}

	var tasks []Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrTasksFileInvalid, s.path, err)
	}

	s.log.Debug("loaded tasks", "count", len(tasks), "path", s.path)

	return tasks, nil
}

// write encodes and atomically persists the collection. Callers must hold
// the lock.
func (s *Store) write(tasks []Task) error {
	if tasks == nil {
		// Keep the file a JSON array even when the collection is empty.
		tasks = []Task{}
	}

	data, err := json.MarshalIndent(tasks, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding tasks: %w", err)
	}

	data = append(data, '\n')

	if err := s.fs.MkdirAll(filepath.Dir(s.path), dirPerms); err != nil {
		return fmt.Errorf("%w %s: %w", ErrTasksFileWrite, s.path, err)
	}

	if err := s.fs.WriteFileAtomic(s.path, data, filePerms); err != nil {
		return fmt.Errorf("%w %s: %w", ErrTasksFileWrite, s.path, err)
	}

	s.log.Debug("saved tasks", "count", len(tasks), "path", s.path)

	return nil
}

func (s *Store) lockPath() string {
	return filepath.Join(filepath.Dir(s.path), locksDirName, filepath.Base(s.path)+".lock")
}
