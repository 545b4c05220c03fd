/*
 * Copyright 2024 the bitbox-torture authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package torture

import (
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"
)

const (
	gigabyte = 1 << 30
	terabyte = 1 << 40

	boltFileName = "torture.db"
	boltPageSize = 4096
)

// mainBucket is the single logical table all writes go to.
var mainBucket = []byte("main")

// boltEngine is the multi-version paged backend. The database is one
// growable file; pages are copied on write and reclaimed through the
// freelist, never returned to the filesystem.
type boltEngine struct {
	db *bolt.DB
}

func openBolt(opts Options) (Engine, error) {
	db, err := bolt.Open(filepath.Join(opts.Dir, boltFileName), 0600, &bolt.Options{
		NoSync:   opts.NoSync,
		ReadOnly: opts.ReadOnly,
		PageSize: boltPageSize,
		// Reserve the full address space up front so the mmap never has to
		// be remapped mid-run. Virtual reservation only.
		InitialMmapSize: 4 * terabyte,
		FreelistType:    bolt.FreelistMapType,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "open bolt database at %s", opts.Dir)
	}
	// Grow the file in 1 GiB steps instead of the 16 MiB default, so file
	// extension cost shows up rarely and visibly in commit latencies.
	db.AllocSize = gigabyte

	if !opts.ReadOnly {
		err = db.Update(func(tx *bolt.Tx) error {
			_, err := tx.CreateBucketIfNotExists(mainBucket)
			return err
		})
		if err != nil {
			_ = db.Close()
			return nil, errors.Wrap(err, "create main bucket")
		}
	}
	return &boltEngine{db: db}, nil
}

func (e *boltEngine) Begin() (Txn, error) {
	tx, err := e.db.Begin(true)
	if err != nil {
		return nil, errors.Wrap(err, "begin bolt transaction")
	}
	b := tx.Bucket(mainBucket)
	if b == nil {
		_ = tx.Rollback()
		return nil, errors.New("main bucket missing")
	}
	return &boltTxn{tx: tx, bucket: b}, nil
}

func (e *boltEngine) Stat() (Stats, error) {
	var st Stats
	err := e.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(mainBucket)
		if b == nil {
			return nil
		}
		bs := b.Stats()
		st.Entries = int64(bs.KeyN)
		st.Pages = int64(bs.BranchPageN + bs.BranchOverflowN + bs.LeafPageN + bs.LeafOverflowN)
		st.Depth = bs.Depth
		st.Size = tx.Size()
		return nil
	})
	if err != nil {
		return Stats{}, errors.Wrap(err, "bolt stat")
	}
	return st, nil
}

func (e *boltEngine) Sync() error {
	return errors.Wrap(e.db.Sync(), "bolt sync")
}

func (e *boltEngine) Close() error {
	return e.db.Close()
}

// boltTxn is a single ACID read-write transaction against the main bucket.
type boltTxn struct {
	tx     *bolt.Tx
	bucket *bolt.Bucket
}

func (t *boltTxn) Put(key, value []byte) error {
	return errors.Wrap(t.bucket.Put(key, value), "bolt put")
}

func (t *boltTxn) Commit() (time.Duration, error) {
	start := time.Now()
	if err := t.tx.Commit(); err != nil {
		return 0, errors.Wrap(err, "bolt commit")
	}
	return time.Since(start), nil
}

func (t *boltTxn) Discard() {
	// Rollback after Commit reports ErrTxClosed, which is exactly the
	// situation Discard is allowed in.
	_ = t.tx.Rollback()
}
