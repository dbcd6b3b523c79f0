// Package kv persists fork choice store commits in a BoltDB key-value store and
// restores a store snapshot from it on startup.
package kv

import (
	"os"
	"path"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prysmaticlabs/ghost/beacon-chain/forkchoice/store"
	prombolt "github.com/prysmaticlabs/prombbolt"
	bolt "go.etcd.io/bbolt"
)

const databaseFileName = "forkchoice.db"

var _ = store.Persister(&Store{})

// Store defines an implementation of the fork choice persistence interface
// using BoltDB as the underlying persistent kv-store.
type Store struct {
	db           *bolt.DB
	databasePath string
}

// NewKVStore initializes a new boltDB key-value store at the directory
// path specified, creates the kv-buckets based on the schema, and stores
// an open connection db object as a property of the Store struct.
func NewKVStore(dirPath string) (*Store, error) {
	if err := os.MkdirAll(dirPath, 0700); err != nil {
		return nil, err
	}
	datafile := path.Join(dirPath, databaseFileName)
	boltDB, err := bolt.Open(datafile, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		if errors.Is(err, bolt.ErrTimeout) {
			return nil, errors.New("cannot obtain database lock, database may be in use by another process")
		}
		return nil, err
	}
	kv := &Store{
		db:           boltDB,
		databasePath: dirPath,
	}

	if err := kv.db.Update(func(tx *bolt.Tx) error {
		return createBuckets(
			tx,
			blocksBucket,
			stateBucket,
			checkpointStateBucket,
			latestMessagesBucket,
			chainMetadataBucket,
			finalizedCheckpointsBucket,
		)
	}); err != nil {
		return nil, multiErr(err, boltDB.Close())
	}
	if err := prometheus.Register(createBoltCollector(kv.db)); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			return nil, multiErr(err, boltDB.Close())
		}
	}
	return kv, nil
}

// ClearDB removes the previously stored database in the data directory.
func (s *Store) ClearDB() error {
	if _, err := os.Stat(s.databasePath); os.IsNotExist(err) {
		return nil
	}
	prometheus.Unregister(createBoltCollector(s.db))
	return os.Remove(path.Join(s.databasePath, databaseFileName))
}

// Close closes the underlying BoltDB database.
func (s *Store) Close() error {
	prometheus.Unregister(createBoltCollector(s.db))
	return s.db.Close()
}

// DatabasePath at which this database writes files.
func (s *Store) DatabasePath() string {
	return s.databasePath
}

func createBuckets(tx *bolt.Tx, buckets ...[]byte) error {
	for _, bucket := range buckets {
		if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
			return err
		}
	}
	return nil
}

// createBoltCollector returns a prometheus collector specifically configured for boltdb.
func createBoltCollector(db *bolt.DB) prometheus.Collector {
	return prombolt.New("boltDB", db)
}
