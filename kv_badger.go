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
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/pkg/errors"
)

// badgerEngine is the log-structured merge backend, default tuning. A
// "transaction" here is a write batch: writes are staged in memory and
// atomicity exists only at flush time.
type badgerEngine struct {
	db *badger.DB
}

func openBadger(opts Options) (Engine, error) {
	// Blind overwrites cannot conflict, so SSI conflict detection is pure
	// overhead for this workload.
	bopts := badger.DefaultOptions(opts.Dir).
		WithSyncWrites(!opts.NoSync).
		WithReadOnly(opts.ReadOnly).
		WithDetectConflicts(false).
		WithLogger(nil)
	db, err := badger.Open(bopts)
	if err != nil {
		return nil, errors.Wrapf(err, "open badger database at %s", opts.Dir)
	}
	return &badgerEngine{db: db}, nil
}

func (e *badgerEngine) Begin() (Txn, error) {
	return &badgerTxn{wb: e.db.NewWriteBatch()}, nil
}

func (e *badgerEngine) Stat() (Stats, error) {
	var st Stats
	tables := e.db.Tables()
	for _, t := range tables {
		st.Entries += int64(t.KeyCount)
	}
	st.Tables = len(tables)
	lsm, vlog := e.db.Size()
	st.Size = lsm + vlog
	return st, nil
}

func (e *badgerEngine) Sync() error {
	return errors.Wrap(e.db.Sync(), "badger sync")
}

func (e *badgerEngine) Close() error {
	return e.db.Close()
}

// badgerTxn wraps a write batch. The batch borrows the engine's DB handle;
// it does not own it.
type badgerTxn struct {
	wb *badger.WriteBatch
}

func (t *badgerTxn) Put(key, value []byte) error {
	return errors.Wrap(t.wb.Set(key, value), "badger put")
}

func (t *badgerTxn) Commit() (time.Duration, error) {
	start := time.Now()
	if err := t.wb.Flush(); err != nil {
		return 0, errors.Wrap(err, "badger flush")
	}
	return time.Since(start), nil
}

func (t *badgerTxn) Discard() {
	t.wb.Cancel()
}
