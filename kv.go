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
	"fmt"
	"os"
	"time"

	humanize "github.com/dustin/go-humanize"
	"github.com/pkg/errors"
)

// Kind selects one of the supported storage backends.
type Kind string

const (
	// KindBolt is the paged, multi-version, single growable-file engine.
	KindBolt Kind = "bolt"
	// KindBadger is the log-structured merge engine.
	KindBadger Kind = "badger"
)

// ParseKind validates a backend name given on the command line.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindBolt:
		return KindBolt, nil
	case KindBadger:
		return KindBadger, nil
	}
	return "", errors.Errorf("unknown engine kind: %q (want %q or %q)", s, KindBolt, KindBadger)
}

// Options configures how a backend is opened. Dir is the database
// directory; each backend defines its own layout inside it.
type Options struct {
	Dir  string
	Kind Kind

	// NoSync defers durability: commits return without waiting for data to
	// reach stable storage. A run in this mode must call Engine.Sync once
	// before releasing the handle.
	NoSync bool

	// ReadOnly opens an existing database for introspection only.
	ReadOnly bool
}

// Engine is the minimal transactional write surface the fill driver needs.
// Exactly one Engine is open per run and it owns all transactions derived
// from it.
type Engine interface {
	// Begin starts a writable transaction. At most one transaction is in
	// flight at a time; the caller must Commit or Discard it before
	// beginning another.
	Begin() (Txn, error)

	// Stat reports a best-effort occupancy snapshot. It is observational
	// only and must never drive control decisions.
	Stat() (Stats, error)

	// Sync forces all previously committed writes to stable storage.
	// Required once at end-of-run when the engine was opened with NoSync.
	Sync() error

	Close() error
}

// Txn is a batch of pending writes. It is committed exactly once or
// abandoned via Discard, and is invalid afterwards.
type Txn interface {
	// Put stages a write. Staged writes need not be visible or durable
	// until Commit. Writing an existing key replaces its value.
	Put(key, value []byte) error

	// Commit applies the staged writes per the handle's durability mode and
	// returns the wall-clock duration the durability operation took.
	Commit() (time.Duration, error)

	// Discard abandons the transaction. Safe to call after Commit.
	Discard()
}

// Stats is a backend-reported occupancy snapshot. Backends fill in what
// they can introspect and leave the rest zero.
type Stats struct {
	Entries int64 // stored key count
	Pages   int64 // allocated tree pages (paged engines)
	Tables  int   // on-disk tables (LSM engines)
	Depth   int   // tree depth (paged engines)
	Size    int64 // on-disk bytes
}

func (s Stats) String() string {
	out := fmt.Sprintf("entries=%s", humanize.Comma(s.Entries))
	if s.Pages > 0 {
		out += fmt.Sprintf(" pages=%s depth=%d", humanize.Comma(s.Pages), s.Depth)
	}
	if s.Tables > 0 {
		out += fmt.Sprintf(" tables=%d", s.Tables)
	}
	if s.Size > 0 {
		out += fmt.Sprintf(" size=%s", humanize.IBytes(uint64(s.Size)))
	}
	return out
}

// Open initializes the backend selected by opts.Kind at opts.Dir, creating
// the directory and the default namespace if absent. The returned handle is
// exclusively owned by the caller for the duration of the run.
func Open(opts Options) (Engine, error) {
	if !opts.ReadOnly {
		if err := os.MkdirAll(opts.Dir, 0755); err != nil {
			return nil, errors.Wrapf(err, "create database directory %s", opts.Dir)
		}
	}
	switch opts.Kind {
	case KindBolt:
		return openBolt(opts)
	case KindBadger:
		return openBadger(opts)
	}
	return nil, errors.Errorf("unknown engine kind: %q", opts.Kind)
}
