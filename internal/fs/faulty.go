package fs

import "os"

// Faulty wraps an [FS] and fails selected operations with preset errors.
//
// A zero error field means the operation passes through to the wrapped
// filesystem. Set a field to make every call to that operation fail with
// exactly that error, so tests can drive IO failure paths deterministically:
//
//	faulty := &fs.Faulty{FS: fs.NewReal(), WriteFileAtomicErr: syscall.ENOSPC}
//	store := task.NewStore(faulty, path, logger)
//	// every save now fails with ENOSPC, nothing is written
//
// Faulty is not safe for concurrent mutation of its fields; configure it
// before handing it to the code under test.
type Faulty struct {
	FS

	OpenErr            error
	CreateErr          error
	OpenFileErr        error
	ReadFileErr        error
	WriteFileAtomicErr error
	MkdirAllErr        error
	StatErr            error
	ExistsErr          error
}

func (f *Faulty) Open(path string) (File, error) {
	if f.OpenErr != nil {
		return nil, f.OpenErr
	}

	return f.FS.Open(path)
}

func (f *Faulty) Create(path string) (File, error) {
	if f.CreateErr != nil {
		return nil, f.CreateErr
	}

	return f.FS.Create(path)
}

func (f *Faulty) OpenFile(path string, flag int, perm os.FileMode) (File, error) {
	if f.OpenFileErr != nil {
		return nil, f.OpenFileErr
	}

	return f.FS.OpenFile(path, flag, perm)
}

func (f *Faulty) ReadFile(path string) ([]byte, error) {
	if f.ReadFileErr != nil {
		return nil, f.ReadFileErr
	}

	return f.FS.ReadFile(path)
}

func (f *Faulty) WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	if f.WriteFileAtomicErr != nil {
		return f.WriteFileAtomicErr
	}

	return f.FS.WriteFileAtomic(path, data, perm)
}

func (f *Faulty) MkdirAll(path string, perm os.FileMode) error {
	if f.MkdirAllErr != nil {
		return f.MkdirAllErr
	}

	return f.FS.MkdirAll(path, perm)
}

func (f *Faulty) Stat(path string) (os.FileInfo, error) {
	if f.StatErr != nil {
		return nil, f.StatErr
	}

	return f.FS.Stat(path)
}

func (f *Faulty) Exists(path string) (bool, error) {
	if f.ExistsErr != nil {
		return false, f.ExistsErr
	}

	return f.FS.Exists(path)
}

// Compile-time interface check.
var _ FS = (*Faulty)(nil)
