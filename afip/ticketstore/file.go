package ticketstore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/go-faster/errors"
	log "github.com/sirupsen/logrus"

	"github.com/afipar/go-afip-client/afip/model"
)

var logger = log.WithField("component", "afip.ticketstore")

// File stores one JSON file per key under a directory. Writes go to a
// temp file first and are moved into place with a rename, so a
// concurrent reader never observes a half-written entry.
type File struct {
	dir   string
	clock func() time.Time
}

func NewFile(dir string) *File {
	return &File{dir: dir, clock: time.Now}
}

func (f *File) Get(key Key) (*model.AuthTicket, bool) {
	b, err := os.ReadFile(f.path(key))
	if err != nil {
		return nil, false
	}

	var t model.AuthTicket
	if err := json.Unmarshal(b, &t); err != nil {
		// corrupt entry: a miss, never an error
		logger.WithField("key", key.String()).Debugf("discarding unreadable cache entry: %v", err)
		return nil, false
	}
	if !t.ValidAt(f.clock()) {
		return nil, false
	}
	return &t, true
}

func (f *File) Put(key Key, t *model.AuthTicket) error {
	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return errors.Wrap(err, "create cache dir")
	}

	b, err := json.Marshal(t)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(f.dir, key.String()+".*.tmp")
	if err != nil {
		return errors.Wrap(err, "create temp file")
	}
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return errors.Wrap(err, "write cache entry")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), f.path(key))
}

func (f *File) Evict(key Key) error {
	err := os.Remove(f.path(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (f *File) path(key Key) string {
	return filepath.Join(f.dir, key.String()+".json")
}
