package seglog

import (
	"testing"

	"github.com/ValentinKolb/seglog/lib/db"
	dbtesting "github.com/ValentinKolb/seglog/lib/db/testing"
)

func Test(t *testing.T) {
	dbtesting.RunLogDBTests(t, "SegLog", func() db.LogDB {
		return NewLogDB(NewOptions(4096, 512))
	})

	// a single segment log behaves the same
	dbtesting.RunLogDBTests(t, "SegLogSingleSegment", func() db.LogDB {
		return NewLogDB(NewOptions(2048, 2048))
	})
}

func Benchmark(b *testing.B) {
	dbtesting.RunLogDBBenchmarks(b, "SegLog", func() db.LogDB {
		return NewLogDB(NewOptions(64*1024*1024, 1024*1024))
	})
}
