package database

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

const (
	boltDirPerm  = fs.FileMode(0o700)
	boltFilePerm = fs.FileMode(0o600)
)

// Bolt wraps an embedded bbolt database file.
type Bolt struct {
	DB *bolt.DB
}

// NewBolt opens the database at path, creating the file and its directory
// when missing. buckets are created up front.
func NewBolt(path string, timeout time.Duration, buckets ...[]byte) (*Bolt, error) {
	if err := os.MkdirAll(filepath.Dir(path), boltDirPerm); err != nil {
		return nil, fmt.Errorf("failed to create bolt directory: %w", err)
	}

	db, err := bolt.Open(path, boltFilePerm, &bolt.Options{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range buckets {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("bucket %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize bolt database: %w", err)
	}

	return &Bolt{DB: db}, nil
}

// Close closes the database file.
func (b *Bolt) Close() error {
	return b.DB.Close()
}

// Ping checks that the database file is still open.
func (b *Bolt) Ping() error {
	return b.DB.View(func(*bolt.Tx) error { return nil })
}
