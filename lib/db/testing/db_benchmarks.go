package testing

import (
	"bytes"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/ValentinKolb/seglog/lib/db"
)

// RunLogDBBenchmarks runs all benchmarks for a log database implementation.
// A LogDB is single-owner, so unlike parallel map benchmarks every benchmark drives the
// database from one goroutine. Write benchmarks recreate the database once it is full.
func RunLogDBBenchmarks(b *testing.B, name string, factory DBFactory) {

	b.Run("Put", func(b *testing.B) {
		benchmarkPut(b, factory)
	})

	b.Run("PutExisting", func(b *testing.B) {
		benchmarkPutExisting(b, factory)
	})

	b.Run("PutLargeValue", func(b *testing.B) {
		benchmarkPutLargeValue(b, factory)
	})

	b.Run("Get", func(b *testing.B) {
		benchmarkGet(b, factory())
	})

	b.Run("Get(not)", func(b *testing.B) {
		benchmarkGetNot(b, factory())
	})

	b.Run("MixedUsage", func(b *testing.B) {
		benchmarkMixedUsage(b, factory)
	})
}

// --------------------------------------------------------------------------
// Helper functions
// --------------------------------------------------------------------------

// refillingDB wraps a factory and replaces the database once it rejects a write
type refillingDB struct {
	b        *testing.B
	factory  DBFactory
	database db.LogDB
	resets   int
}

func newRefillingDB(b *testing.B, factory DBFactory) *refillingDB {
	r := &refillingDB{b: b, factory: factory, database: factory()}
	b.Cleanup(func() {
		r.database.Close()
	})
	return r
}

func (r *refillingDB) put(key, value []byte) {
	if r.database.Put(key, value) {
		return
	}

	r.b.StopTimer()
	r.database.Close()
	r.database = r.factory()
	r.resets++
	r.b.StartTimer()

	if !r.database.Put(key, value) {
		r.b.Fatalf("Put into a fresh database failed (key %d bytes, value %d bytes)", len(key), len(value))
	}
}

// --------------------------------------------------------------------------
// Benchmark functions
// --------------------------------------------------------------------------

// Benchmark for Put operation
func benchmarkPut(b *testing.B, factory DBFactory) {
	r := newRefillingDB(b, factory)
	requireFeature(b, r.database, db.FeaturePut)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		key := []byte(fmt.Sprintf("test-key-%d", i))
		value := []byte(fmt.Sprintf("test-value-%d", i))
		r.put(key, value)
	}
	b.ReportMetric(float64(r.resets), "resets")
}

// Benchmark for Put operation with existing keys
func benchmarkPutExisting(b *testing.B, factory DBFactory) {
	r := newRefillingDB(b, factory)
	requireFeature(b, r.database, db.FeaturePut)

	// Prepare data
	numKeys := 1000
	for i := 0; i < numKeys; i++ {
		r.put([]byte(fmt.Sprintf("test-key-%d", i)), []byte(fmt.Sprintf("test-value-%d", i)))
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		key := []byte(fmt.Sprintf("test-key-%d", i%numKeys))
		value := []byte(fmt.Sprintf("test-value-%d", i))
		r.put(key, value)
	}
}

// Benchmark for Put operation with large values
func benchmarkPutLargeValue(b *testing.B, factory DBFactory) {
	r := newRefillingDB(b, factory)
	requireFeature(b, r.database, db.FeaturePut)

	// 16KB value, must fit into a single segment of the benchmarked database
	largeValue := bytes.Repeat([]byte("x"), 16*1024)

	b.SetBytes(int64(len(largeValue)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r.put([]byte(fmt.Sprintf("large-key-%d", i)), largeValue)
	}
}

// Benchmark for Get operation
func benchmarkGet(b *testing.B, database db.LogDB) {
	b.Cleanup(func() {
		database.Close()
	})

	requireFeature(b, database, db.FeaturePut|db.FeatureGet)

	// Prepare data
	numKeys := 10000
	keys := make([][]byte, 0, numKeys)
	for i := 0; i < numKeys; i++ {
		key := []byte(fmt.Sprintf("test-key-%d", i))
		if !database.Put(key, []byte(fmt.Sprintf("test-value-%d", i))) {
			break
		}
		keys = append(keys, key)
	}
	if len(keys) == 0 {
		b.Fatal("database too small for the benchmark")
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		database.Get(keys[i%len(keys)])
	}
}

// Benchmark for Get operation on missing keys
func benchmarkGetNot(b *testing.B, database db.LogDB) {
	b.Cleanup(func() {
		database.Close()
	})

	requireFeature(b, database, db.FeatureGet)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		database.Get([]byte(fmt.Sprintf("missing-key-%d", i)))
	}
}

// Benchmark for a realistic mix of operations
func benchmarkMixedUsage(b *testing.B, factory DBFactory) {
	r := newRefillingDB(b, factory)
	requireFeature(b, r.database, db.FeaturePut|db.FeatureGet)

	numKeys := 10000
	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		key := []byte(fmt.Sprintf("test-mixed-key-%d", rnd.Intn(numKeys)))

		// Random operation: 70% Get, 30% Put
		if rnd.Float32() < .7 {
			r.database.Get(key)
		} else {
			r.put(key, []byte(fmt.Sprintf("test-mixed-value-%d", i)))
		}
	}
}
