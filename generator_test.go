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
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGeneratorDeterminism(t *testing.T) {
	g1, g2 := NewGenerator(), NewGenerator()
	var p1, p2 KeyPool

	for i := 0; i < 1000; i++ {
		k1, v1 := g1.Next(&p1, 32, 0.3)
		k2, v2 := g2.Next(&p2, 32, 0.3)
		require.Equal(t, k1, k2, "keys diverged at draw %d", i)
		require.Equal(t, v1, v2, "values diverged at draw %d", i)
	}
	require.Equal(t, p1.Len(), p2.Len())
}

func TestGeneratorAllCold(t *testing.T) {
	g := NewGenerator()
	var pool KeyPool

	seen := make(map[Key]struct{})
	for i := 0; i < 500; i++ {
		k, _ := g.Next(&pool, 8, 1.0)
		_, dup := seen[k]
		require.False(t, dup, "key reused at draw %d under cold=1", i)
		seen[k] = struct{}{}
	}
	require.Equal(t, 500, pool.Len())
}

func TestGeneratorAllWarm(t *testing.T) {
	g := NewGenerator()
	var pool KeyPool

	first, _ := g.Next(&pool, 8, 0)
	require.Equal(t, 1, pool.Len(), "first draw on an empty pool must append")

	for i := 0; i < 100; i++ {
		k, _ := g.Next(&pool, 8, 0)
		require.Equal(t, first, k, "cold=0 must reuse the single hot key")
	}
	require.Equal(t, 1, pool.Len())
}

func TestGeneratorValuesNeverReused(t *testing.T) {
	g := NewGenerator()
	var pool KeyPool

	// Warm draws reuse keys but must still generate fresh values.
	_, v1 := g.Next(&pool, 32, 0)
	_, v2 := g.Next(&pool, 32, 0)
	require.NotEqual(t, v1, v2)
}

func TestGeneratorZeroValueSize(t *testing.T) {
	g := NewGenerator()
	var pool KeyPool

	_, v := g.Next(&pool, 0, 1.0)
	require.Len(t, v, 0)

	// Odd sizes exercise the partial-word tail of the byte filler.
	_, v = g.Next(&pool, 13, 1.0)
	require.Len(t, v, 13)
}

func TestKeyPoolIndexStability(t *testing.T) {
	var pool KeyPool
	g := NewGenerator()

	for i := 0; i < 10; i++ {
		g.Next(&pool, 0, 1.0)
	}
	want := pool.At(3)
	for i := 0; i < 1000; i++ {
		g.Next(&pool, 0, 1.0)
	}
	require.Equal(t, want, pool.At(3), "pool index must stay valid as the pool grows")
}
