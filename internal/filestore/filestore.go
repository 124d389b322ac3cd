package filestore

import (
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"

	"github.com/quickbasket/quickbasket/pkg/common"
)

var bucketFiles = []byte("files")

// Store keeps uploaded binaries in an embedded bbolt database and
// hands out stable URIs. The catalog itself only ever sees the URI.
type Store struct {
	db *bolt.DB
}

func Open(workdir string) (*Store, error) {
	db, err := bolt.Open(filepath.Join(workdir, "filestore.db"), 0o600, &bolt.Options{Timeout: 3 * time.Second})
	if err != nil {
		return nil, errors.Wrap(err, "open file store")
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketFiles)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "init file store bucket")
	}
	return &Store{db: db}, nil
}

// Save stores data and returns its URI. ext keeps the original file
// extension so the content type survives round trips.
func (s *Store) Save(ext string, data []byte) (string, error) {
	name := common.UUIDstring() + strings.ToLower(ext)
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketFiles).Put([]byte(name), data)
	})
	if err != nil {
		return "", errors.Wrap(err, "store file")
	}
	return "/files/" + name, nil
}

// Get returns the stored bytes and a best-effort content type.
func (s *Store) Get(name string) ([]byte, string, error) {
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketFiles).Get([]byte(name))
		if v == nil {
			return errors.Errorf("file %s not found", name)
		}
		data = append([]byte(nil), v...)
		return nil
	})
	if err != nil {
		return nil, "", err
	}
	contentType := mime.TypeByExtension(filepath.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return data, contentType, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
