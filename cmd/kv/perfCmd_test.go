package kv

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	gometrics "github.com/rcrowley/go-metrics"
)

func TestShouldSkip(t *testing.T) {
	perfSkip = []string{"put", " batch"}
	defer func() { perfSkip = nil }()

	if !shouldSkip("put") || !shouldSkip("batch") {
		t.Error("put and batch should be skipped")
	}
	if shouldSkip("get") {
		t.Error("get should not be skipped")
	}
}

func TestGetKeys(t *testing.T) {
	perfKeySpread = 3
	defer func() { perfKeySpread = 1000 }()

	keys := getKeys("get")
	if len(keys) != 3 {
		t.Fatalf("len(keys) = %d, want 3", len(keys))
	}
	if string(keys[2]) != "__perf-get-2" {
		t.Errorf("keys[2] = %q", keys[2])
	}
}

func TestWriteResultsCSV(t *testing.T) {
	timer := gometrics.NewTimer()
	timer.Update(100 * time.Nanosecond)
	timer.Update(300 * time.Nanosecond)

	results := []perfResult{
		{phase: "put", ops: 2, elapsed: time.Second, timer: timer},
		{phase: "batch", skipped: true},
	}

	var buf bytes.Buffer
	if err := writeResultsCSV(&buf, results); err != nil {
		t.Fatal(err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	for i, row := range rows {
		if len(row) != len(rows[0]) {
			t.Errorf("row %d has %d columns, want %d", i, len(row), len(rows[0]))
		}
	}

	put := rows[1]
	if put[0] != "put" || put[1] != "false" || put[2] != "2" || put[4] != "2" {
		t.Errorf("put row = %v", put)
	}
	if put[5] != "2" || put[6] != "200" || put[7] != "100" || put[10] != "300" {
		t.Errorf("put timer columns = %v", put[5:11])
	}
	if rows[2][1] != "true" || rows[2][2] != "" {
		t.Errorf("skipped row = %v", rows[2])
	}
}
