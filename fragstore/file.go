package fragstore

import (
	"os"

	"github.com/pkg/errors"
)

// FileStore persists fragment bodies to a single file via offset reads
// and writes, syncing after every write so a subsequent Read in the
// same session always observes it — the same durability discipline a
// write-ahead log uses for its data blocks.
type FileStore struct {
	f *os.File
}

// OpenFileStore opens (creating if necessary) path and truncates it to
// size bytes, zero-filling any newly extended region.
func OpenFileStore(path string, size int64) (*FileStore, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, errors.Wrap(err, "fragstore: open file store")
	}
	if err := f.Truncate(size); err != nil {
		f.Close()
		return nil, errors.Wrap(err, "fragstore: truncate file store")
	}
	return &FileStore{f: f}, nil
}

// Write implements Store.
func (s *FileStore) Write(offset uint32, buf []byte) error {
	if _, err := s.f.WriteAt(buf, int64(offset)); err != nil {
		return errors.Wrapf(err, "fragstore: write %d bytes at offset %d", len(buf), offset)
	}
	if err := s.f.Sync(); err != nil {
		return errors.Wrap(err, "fragstore: sync file store")
	}
	return nil
}

// Read implements Store.
func (s *FileStore) Read(offset uint32, buf []byte) error {
	if _, err := s.f.ReadAt(buf, int64(offset)); err != nil {
		return errors.Wrapf(err, "fragstore: read %d bytes at offset %d", len(buf), offset)
	}
	return nil
}

// Close releases the underlying file handle.
func (s *FileStore) Close() error {
	return s.f.Close()
}
