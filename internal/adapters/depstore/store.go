// Package depstore persists dependency records in the working directory.
package depstore

import (
	"errors"
	"io/fs"
	"os"

	"go.trai.ch/zerr"

	"github.com/remake-build/remake/internal/core/domain"
	"github.com/remake-build/remake/internal/core/ports"
)

// FileStore reads and writes the dependency file next to the rule file.
// A build that has never run simply has no file yet.
type FileStore struct {
	path string
	log  ports.Logger
}

// New returns a store over the conventional dependency file name.
func New(log ports.Logger) *FileStore {
	return &FileStore{path: domain.DepFileName, log: log}
}

// Load parses the dependency file. A missing file is an empty set.
func (s *FileStore) Load() (*domain.DependencySet, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.log.Debug("no dependency file", "path", s.path)
		return domain.NewDependencySet(), nil
	}
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrStoreReadFailed.Error()), "path", s.path)
	}
	defer f.Close()
	deps, err := domain.ReadDependencies(f)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrStoreReadFailed.Error()), "path", s.path)
	}
	s.log.Debug("loaded dependency file", "path", s.path, "records", deps.Len())
	return deps, nil
}

// Save rewrites the dependency file from deps.
func (s *FileStore) Save(deps *domain.DependencySet) error {
	f, err := os.Create(s.path)
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrStoreWriteFailed.Error()), "path", s.path)
	}
	if err := domain.WriteDependencies(f, deps); err != nil {
		_ = f.Close()
		return zerr.With(zerr.Wrap(err, domain.ErrStoreWriteFailed.Error()), "path", s.path)
	}
	if err := f.Close(); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrStoreWriteFailed.Error()), "path", s.path)
	}
	return nil
}
