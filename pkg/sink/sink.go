// Package sink writes the compiler's output artifact. A File is truncated
// as soon as it is created, and any failure leaves it empty, so the file
// on disk is either a complete listing or nothing.
package sink

import (
	"errors"
	"os"
	"sync"
)

var (
	ErrClosed = errors.New("sink already closed")
)

// File is an output artifact that is either committed in full or left empty.
type File struct {
	mu     sync.Mutex
	path   string
	f      *os.File
	closed bool
}

// Create opens path for writing, creating it or truncating it to zero
// length immediately.
func Create(path string) (*File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, err
	}
	return &File{path: path, f: f}, nil
}

func (s *File) Path() string {
	return s.path
}

// Commit writes text as the whole artifact and closes the file. If the
// write fails, the file is truncated before the error is returned.
func (s *File) Commit(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	s.closed = true

	if _, err := s.f.WriteString(text); err != nil {
		return errors.Join(err, s.truncateAndClose())
	}
	if err := s.f.Sync(); err != nil {
		return errors.Join(err, s.truncateAndClose())
	}
	return s.f.Close()
}

// Abort truncates the artifact to zero length and closes it. Aborting a
// closed File is a no-op.
func (s *File) Abort() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.truncateAndClose()
}

func (s *File) truncateAndClose() error {
	return errors.Join(s.f.Truncate(0), s.f.Close())
}

// Write creates path and commits text when genErr is nil; otherwise it
// leaves path empty and returns genErr.
func Write(path, text string, genErr error) error {
	f, err := Create(path)
	if err != nil {
		return errors.Join(genErr, err)
	}
	if genErr != nil {
		return errors.Join(genErr, f.Abort())
	}
	return f.Commit(text)
}
