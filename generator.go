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
	"encoding/binary"
	"math/rand/v2"
)

// KeySize is the fixed length of every generated key.
const KeySize = 32

// Key is a fixed-length key. Identity is the byte value; the generator does
// not enforce uniqueness, duplicate writes overwrite.
type Key [KeySize]byte

// Fixed PCG seeds. Runs with the same parameters produce bit-for-bit
// identical key sequences, so latency differences between runs reflect only
// backend effects, never differing input data.
const (
	seedLo uint64 = 0xcafef00dd15ea5e5
	seedHi uint64 = 0x60e11a7bf9cb2545
)

// KeyPool holds every key generated so far, in insertion order. It only
// grows; reuse draws index into it, so a valid index stays valid for the
// rest of the run.
type KeyPool struct {
	keys []Key
}

func (p *KeyPool) Len() int { return len(p.keys) }

func (p *KeyPool) Append(k Key) { p.keys = append(p.keys, k) }

// At returns the key at index i. i must be in [0, Len).
func (p *KeyPool) At(i int) Key { return p.keys[i] }

// Generator produces an unbounded, reproducible sequence of key/value pairs
// with tunable temporal locality.
type Generator struct {
	rng *rand.Rand
}

func NewGenerator() *Generator {
	return &Generator{rng: rand.New(rand.NewPCG(seedLo, seedHi))}
}

// Next draws one key/value pair. With probability cold (or always, while
// the pool is empty) it generates a fresh random key and appends it to the
// pool; otherwise it reuses a uniformly chosen existing key. The value is
// freshly generated random bytes either way.
//
// cold must be in [0, 1]: 0 hammers a single hot key forever, 1 is a pure
// cold-write workload with unbounded key-space growth.
func (g *Generator) Next(pool *KeyPool, valueSize int, cold float64) (Key, []byte) {
	var key Key
	if pool.Len() == 0 || g.rng.Float64() < cold {
		g.fill(key[:])
		pool.Append(key)
	} else {
		key = pool.At(g.rng.IntN(pool.Len()))
	}
	value := make([]byte, valueSize)
	g.fill(value)
	return key, value
}

func (g *Generator) fill(b []byte) {
	for len(b) >= 8 {
		binary.LittleEndian.PutUint64(b, g.rng.Uint64())
		b = b[8:]
	}
	if len(b) > 0 {
		var tail [8]byte
		binary.LittleEndian.PutUint64(tail[:], g.rng.Uint64())
		copy(b, tail[:])
	}
}
