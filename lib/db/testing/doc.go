// Package testing provides standardised tests and benchmarks for
// database implementations that satisfy the db.LogDB interface.
//
// The package contains:
//   - testing: A test suite for validating conformance to the LogDB interface contract,
//     including the append-only capacity rules (rejected writes, terminal full state)
//   - benchmark: Performance tests for measuring throughput of common database operations
//
// The test suite expects small databases (a few kilobytes) so that it can drive them into the
// full state, while the benchmarks need databases whose segments hold at least 16KB values.
//
// Example usage:
//
//	// Creating a factory function for your implementation
//	factory := func() db.LogDB {
//		return NewMyLog()
//	}
//
//	// Running the standard test suite
//	dbtesting.RunLogDBTests(t, "MyLog", factory)
//
//	// Running performance benchmarks
//	dbtesting.RunLogDBBenchmarks(b, "MyLog", factory)
package testing
