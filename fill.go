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
	"os"
	"time"

	"github.com/pkg/errors"
)

// ExistingPolicy decides what a fill does when the target directory already
// holds a database. Exactly one policy is active per invocation.
type ExistingPolicy int

const (
	// Abort fails the run without modifying anything. The default.
	Abort ExistingPolicy = iota
	// Overwrite deletes the existing state and starts fresh.
	Overwrite
	// Continue reuses the existing state and appends more items.
	Continue
)

// FillOptions configures one fill run.
type FillOptions struct {
	Dir      string
	Kind     Kind
	NoSync   bool
	Existing ExistingPolicy

	N         int64   // total items to insert
	BatchSize int64   // items per transaction
	ValueSize int     // bytes per value, zero is legal
	Cold      float64 // probability of a fresh key per draw, in [0, 1]
}

func (o *FillOptions) validate() error {
	if o.N < 0 {
		return errors.Errorf("item count must be non-negative, got %d", o.N)
	}
	if o.BatchSize <= 0 {
		return errors.Errorf("batch size must be positive, got %d", o.BatchSize)
	}
	if o.ValueSize < 0 {
		return errors.Errorf("value size must be non-negative, got %d", o.ValueSize)
	}
	if o.Cold < 0 || o.Cold > 1 {
		return errors.Errorf("cold probability must be in [0, 1], got %g", o.Cold)
	}
	return nil
}

// BatchResult records one committed batch. Immutable once emitted.
type BatchResult struct {
	Items      int64         // items written in this batch
	PutTime    time.Duration // wall time of the put phase
	CommitTime time.Duration // wall time of the durability operation
	Stats      *Stats        // occupancy snapshot, nil when unavailable
}

// Reporter consumes batch results. Implementations are observational only
// and must never influence control flow.
type Reporter interface {
	// Batch is called after each committed batch except the terminal one,
	// with the cumulative item count and wall time since the run started.
	Batch(res BatchResult, total int64, elapsed time.Duration)
}

// Fill runs the whole fill workload: preflight the existing-database
// policy, open the engine, insert exactly opts.N items in batches, and for
// no-sync runs issue the one final flush. Every failure is terminal; there
// are no retries anywhere.
func Fill(opts FillOptions, r Reporter) error {
	if err := opts.validate(); err != nil {
		return err
	}
	if err := preflight(opts.Dir, opts.Existing); err != nil {
		return err
	}

	eng, err := Open(Options{Dir: opts.Dir, Kind: opts.Kind, NoSync: opts.NoSync})
	if err != nil {
		return err
	}
	defer eng.Close()

	return run(eng, opts, r)
}

// run drives the batch loop against an already-open engine.
func run(eng Engine, opts FillOptions, r Reporter) error {
	gen := NewGenerator()
	var pool KeyPool

	remaining := opts.N
	start := time.Now()
	for remaining > 0 {
		txn, err := eng.Begin()
		if err != nil {
			return errors.Wrap(err, "begin batch")
		}

		n := opts.BatchSize
		if remaining < n {
			n = remaining
		}
		putStart := time.Now()
		for i := int64(0); i < n; i++ {
			key, value := gen.Next(&pool, opts.ValueSize, opts.Cold)
			if err := txn.Put(key[:], value); err != nil {
				txn.Discard()
				return errors.Wrapf(err, "put item %d", opts.N-remaining+i+1)
			}
		}
		putTime := time.Since(putStart)

		commitTime, err := txn.Commit()
		if err != nil {
			return errors.Wrap(err, "commit batch")
		}
		remaining -= n

		// The terminal batch is not reported; completion is the signal.
		if remaining > 0 && r != nil {
			res := BatchResult{Items: n, PutTime: putTime, CommitTime: commitTime}
			if st, err := eng.Stat(); err == nil {
				res.Stats = &st
			}
			r.Batch(res, opts.N-remaining, time.Since(start))
		}
	}

	if opts.NoSync {
		if err := eng.Sync(); err != nil {
			return errors.Wrap(err, "final sync")
		}
	}
	return nil
}

// preflight resolves the existing-database policy before the engine is
// opened. Only Overwrite mutates anything.
func preflight(dir string, policy ExistingPolicy) error {
	exists, err := databaseExists(dir)
	if err != nil {
		return err
	}
	if !exists {
		return nil
	}
	switch policy {
	case Overwrite:
		return errors.Wrapf(os.RemoveAll(dir), "remove existing database at %s", dir)
	case Continue:
		return nil
	default:
		return errors.Wrapf(ErrDatabaseExists, "at %s", dir)
	}
}

// databaseExists reports whether dir holds prior state. An empty directory
// does not count: mount points commonly pre-exist the first run.
func databaseExists(dir string) (bool, error) {
	fi, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrapf(err, "stat %s", dir)
	}
	if !fi.IsDir() {
		return true, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false, errors.Wrapf(err, "read %s", dir)
	}
	return len(entries) > 0, nil
}

// StatDatabase opens an existing database read-only and returns its
// occupancy snapshot. It never creates or mutates state.
func StatDatabase(dir string, kind Kind) (Stats, error) {
	exists, err := databaseExists(dir)
	if err != nil {
		return Stats{}, err
	}
	if !exists {
		return Stats{}, errors.Wrapf(ErrDatabaseMissing, "at %s", dir)
	}
	eng, err := Open(Options{Dir: dir, Kind: kind, ReadOnly: true})
	if err != nil {
		return Stats{}, err
	}
	defer eng.Close()
	return eng.Stat()
}
