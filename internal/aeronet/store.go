package aeronet

import (
	"errors"
	"sync/atomic"

	"go.uber.org/zap"
)

// ErrNotLoaded is returned when no dataset has been loaded yet.
var ErrNotLoaded = errors.New("no dataset loaded")

// Store holds the current dataset snapshot. Reload parses the new source
// completely before swapping it in, so readers never observe a partially
// loaded dataset and keep whatever snapshot they already hold.
type Store struct {
	current atomic.Pointer[Dataset]
	opts    LoadOptions
	logger  *zap.SugaredLogger
}

// NewStore creates an empty store.
func NewStore(opts *LoadOptions, logger *zap.SugaredLogger) *Store {
	if opts == nil {
		opts = DefaultLoadOptions()
	}
	return &Store{opts: *opts, logger: logger}
}

// Snapshot returns the current dataset.
func (s *Store) Snapshot() (*Dataset, error) {
	ds := s.current.Load()
	if ds == nil {
		return nil, ErrNotLoaded
	}
	return ds, nil
}

// Reload replaces the current dataset with the contents of path. On error
// the previous snapshot stays current.
func (s *Store) Reload(path string) (*Dataset, error) {
	ds, err := LoadFile(path, &s.opts)
	if err != nil {
		return nil, err
	}

	prev := s.current.Swap(ds)
	if prev != nil {
		s.logger.Debugf("replaced dataset %s (%d records) with %s", prev.Source, prev.Len(), ds.Source)
	}
	s.logger.Infof("loaded %d records with %d fields from %s", ds.Len(), ds.Header.Len(), ds.Source)
	if n := ds.RaggedRecords(); n > 0 {
		s.logger.Warnf("%d records in %s do not match the header field count", n, ds.Source)
	}
	return ds, nil
}
