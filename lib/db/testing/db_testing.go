package testing

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/ValentinKolb/seglog/lib/db"
	"github.com/ValentinKolb/seglog/lib/db/record"
)

// DBFactory is a function that creates a new instance of a LogDB implementation
type DBFactory func() db.LogDB

// RunLogDBTests runs a comprehensive test suite for a LogDB implementation.
// The factory should create databases with at least a few kilobytes of capacity.
func RunLogDBTests(t *testing.T, name string, factory DBFactory) {
	t.Run(name, func(t *testing.T) {
		t.Run("Put&Get", func(t *testing.T) {
			testPutGet(t, factory())
		})

		t.Run("Update", func(t *testing.T) {
			testUpdate(t, factory())
		})

		t.Run("NotFound", func(t *testing.T) {
			testNotFound(t, factory())
		})

		t.Run("GetReturnsCopy", func(t *testing.T) {
			testGetReturnsCopy(t, factory())
		})

		t.Run("FillUntilFull", func(t *testing.T) {
			testFillUntilFull(t, factory())
		})

		t.Run("OversizedRecord", func(t *testing.T) {
			testOversizedRecord(t, factory())
		})

		t.Run("EdgeCases", func(t *testing.T) {
			testEdgeCases(t, factory())
		})

		t.Run("Info", func(t *testing.T) {
			testInfo(t, factory())
		})

		t.Run("RealisticUsage", func(t *testing.T) {
			testRealisticUsage(t, factory())
		})
	})
}

// --------------------------------------------------------------------------
// Helper functions
// --------------------------------------------------------------------------

// Checks if the database supports the specified feature
// Skip the test if it is not supported
func requireFeature(t testing.TB, database db.LogDB, feature db.Feature) {
	if !database.SupportsFeature(feature) {
		t.Skip()
	}
}

// mustGet fails the test unless key is stored with a decodable record
func mustGet(t *testing.T, database db.LogDB, key []byte) record.KeyValue {
	t.Helper()
	kv, found, err := database.Get(key)
	if !found {
		t.Fatalf("Expected key %s to exist", key)
	}
	if err != nil {
		t.Fatalf("Unexpected error for key %s: %v", key, err)
	}
	return kv
}

// --------------------------------------------------------------------------
// Test functions
// --------------------------------------------------------------------------

func testPutGet(t *testing.T, database db.LogDB) {
	defer database.Close()

	requireFeature(t, database, db.FeaturePut|db.FeatureGet)

	testKey := []byte("test-key")
	testValue1 := []byte("test-value1")
	testValue2 := []byte("test-value2")

	if !database.Put(testKey, testValue1) {
		t.Fatalf("Put into an empty database failed")
	}

	result := mustGet(t, database, testKey)
	if !bytes.Equal(result.Value(), testValue1) {
		t.Errorf("Expected value %s, got %s", testValue1, result.Value())
	}
	if !bytes.Equal(result.Key(), testKey) {
		t.Errorf("Expected key %s, got %s", testKey, result.Key())
	}

	// the newer record shadows the older one
	database.Put(testKey, testValue2)

	result = mustGet(t, database, testKey)
	if !bytes.Equal(result.Value(), testValue2) {
		t.Errorf("Expected value %s, got %s", testValue2, result.Value())
	}
}

func testUpdate(t *testing.T, database db.LogDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureUpdate|db.FeatureGet)

	key := []byte("update-key")

	// update of an unknown key behaves like put
	if !database.Update(key, []byte("v1")) {
		t.Fatalf("Update into an empty database failed")
	}
	if got := mustGet(t, database, key); string(got.Value()) != "v1" {
		t.Errorf("Expected value v1, got %s", got.Value())
	}

	database.Update(key, []byte("v2"))
	if got := mustGet(t, database, key); string(got.Value()) != "v2" {
		t.Errorf("Expected value v2, got %s", got.Value())
	}
}

func testNotFound(t *testing.T, database db.LogDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureGet)

	_, found, err := database.Get([]byte("nonexistent-key"))
	if found {
		t.Errorf("Expected nonexistent key to return found=false")
	}
	if err != nil {
		t.Errorf("Expected no error for a missing key, got %v", err)
	}
}

func testGetReturnsCopy(t *testing.T, database db.LogDB) {
	defer database.Close()

	requireFeature(t, database, db.FeaturePut|db.FeatureGet)

	key := []byte("copy-key")
	value := []byte("copy-value")
	database.Put(key, value)

	// the database must not alias the input
	value[0] = 'X'

	retrieved := mustGet(t, database, key)
	if string(retrieved.Value()) != "copy-value" {
		t.Errorf("Put should copy the value, got %s", retrieved.Value())
	}

	// and must not hand out references to its storage
	retrieved.Value()[0] = 'Y'
	if again := mustGet(t, database, key); string(again.Value()) != "copy-value" {
		t.Errorf("Get should return a copy, not a reference to the stored value")
	}
}

func testFillUntilFull(t *testing.T, database db.LogDB) {
	defer database.Close()

	requireFeature(t, database, db.FeaturePut|db.FeatureGet)

	capacity := database.GetInfo().CapacityBytes
	if capacity > 1<<20 {
		t.Skip("database too large to fill in a test")
	}

	// every record takes at least HeaderSize+2 bytes, so this loop is bounded
	var stored [][]byte
	for i := 0; i <= capacity/(record.HeaderSize+2); i++ {
		key := []byte(fmt.Sprintf("fill-key-%d", i))
		if !database.Put(key, []byte(fmt.Sprintf("fill-value-%d", i))) {
			break
		}
		stored = append(stored, key)
	}

	if len(stored) == 0 {
		t.Fatalf("No record could be stored")
	}

	info := database.GetInfo()
	if info.State != db.StateFull.String() {
		t.Errorf("Expected state %s after a rejected put, got %s", db.StateFull, info.State)
	}
	if info.SizeBytes > info.CapacityBytes {
		t.Errorf("Size %d exceeds capacity %d", info.SizeBytes, info.CapacityBytes)
	}

	// full is terminal, even for the smallest possible record
	if database.Put([]byte("k"), []byte("v")) {
		t.Errorf("Put into a full database succeeded")
	}
	if _, found, _ := database.Get([]byte("k")); found {
		t.Errorf("Rejected record must not be readable")
	}

	// everything accepted before is still readable
	for i, key := range stored {
		got := mustGet(t, database, key)
		if want := fmt.Sprintf("fill-value-%d", i); string(got.Value()) != want {
			t.Errorf("Expected value %s for key %s, got %s", want, key, got.Value())
		}
	}
}

func testOversizedRecord(t *testing.T, database db.LogDB) {
	defer database.Close()

	requireFeature(t, database, db.FeaturePut|db.FeatureGet)

	capacity := database.GetInfo().CapacityBytes
	valueSize := capacity + 1
	if valueSize > record.MaxFieldSize {
		t.Skip("database capacity exceeds the maximum field size")
	}

	key := []byte("oversized")
	if database.Put(key, bytes.Repeat([]byte{'x'}, valueSize)) {
		t.Fatalf("Put of a record larger than the database succeeded")
	}
	if _, found, _ := database.Get(key); found {
		t.Errorf("Rejected record must not be readable")
	}

	// an oversized record does not consume capacity
	if !database.Put([]byte("small"), []byte("value")) {
		t.Errorf("Put after an oversized record failed")
	}
}

func testEdgeCases(t *testing.T, database db.LogDB) {
	defer database.Close()

	requireFeature(t, database, db.FeaturePut|db.FeatureGet)

	t.Run("SingleByte", func(t *testing.T) {
		database.Put([]byte{0}, []byte{0})
		got := mustGet(t, database, []byte{0})
		if !bytes.Equal(got.Value(), []byte{0}) {
			t.Errorf("Expected value [0], got %v", got.Value())
		}
	})

	t.Run("BinaryData", func(t *testing.T) {
		key := []byte{0xFF, 0x00, 0xFE}
		value := []byte{0x00, 0x01, 0x02, 0x03, 0xFF}
		database.Put(key, value)
		got := mustGet(t, database, key)
		if !bytes.Equal(got.Value(), value) {
			t.Errorf("Expected value %v, got %v", value, got.Value())
		}
	})

	t.Run("SimilarKeys", func(t *testing.T) {
		keys := [][]byte{[]byte("key"), []byte("key1"), []byte("key10"), []byte("Key")}
		for i, key := range keys {
			database.Put(key, []byte(fmt.Sprintf("value-%d", i)))
		}
		for i, key := range keys {
			got := mustGet(t, database, key)
			if want := fmt.Sprintf("value-%d", i); string(got.Value()) != want {
				t.Errorf("Expected value %s for key %s, got %s", want, key, got.Value())
			}
		}
	})

	t.Run("EmptyKeyPanics", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Errorf("Put with an empty key should panic")
			}
		}()
		database.Put([]byte{}, []byte("value"))
	})

	t.Run("EmptyValuePanics", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Errorf("Put with an empty value should panic")
			}
		}()
		database.Put([]byte("key"), nil)
	})
}

func testInfo(t *testing.T, database db.LogDB) {
	defer database.Close()

	info := database.GetInfo()
	if info.State != db.StateEmpty.String() {
		t.Errorf("Expected state %s for a new database, got %s", db.StateEmpty, info.State)
	}
	if info.SizeBytes != 0 {
		t.Errorf("Expected size 0 for a new database, got %d", info.SizeBytes)
	}
	if info.CapacityBytes <= 0 {
		t.Errorf("Expected positive capacity, got %d", info.CapacityBytes)
	}
	for _, f := range info.SupportedFeatures {
		if !database.SupportsFeature(f) {
			t.Errorf("Feature %s is listed but not supported", f)
		}
	}

	if !database.SupportsFeature(db.FeaturePut) {
		return
	}

	kv := record.New([]byte("info-key"), []byte("info-value"))
	database.Put(kv.Key(), kv.Value())

	info = database.GetInfo()
	if info.State != db.StateFilling.String() {
		t.Errorf("Expected state %s after a put, got %s", db.StateFilling, info.State)
	}
	if info.SizeBytes != kv.SizeBytes() {
		t.Errorf("Expected size %d, got %d", kv.SizeBytes(), info.SizeBytes)
	}
}

func testRealisticUsage(t *testing.T, database db.LogDB) {
	defer database.Close()

	requireFeature(t, database, db.FeaturePut|db.FeatureGet)

	// latest value per key, as far as the database accepted it
	expected := make(map[string]string)

	for round := 0; round < 5; round++ {
		for i := 0; i < 50; i++ {
			key := fmt.Sprintf("user:%d", i)
			value := fmt.Sprintf("profile-%d-rev-%d", i, round)
			if database.Put([]byte(key), []byte(value)) {
				expected[key] = value
			}
		}
	}

	for key, value := range expected {
		got := mustGet(t, database, []byte(key))
		if string(got.Value()) != value {
			t.Errorf("Expected value %s for key %s, got %s", value, key, got.Value())
		}
	}

	for i := 50; i < 60; i++ {
		if _, found, _ := database.Get([]byte(fmt.Sprintf("user:%d", i))); found {
			t.Errorf("Key user:%d was never written", i)
		}
	}
}
