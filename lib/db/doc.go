// Package db provides a standardized interface for append-only key-value database implementations.
// It defines a LogDB interface that allows for consistent interaction with log-structured
// backends while abstracting implementation details.
//
// The package focuses on:
//   - A unified interface for append and lookup operations
//   - Feature discovery through capability flags
//   - Explicit capacity signalling instead of errors for full databases
//   - Comprehensive metadata reporting
//
// Key Components:
//
//   - LogDB Interface: The core interface that all database implementations must satisfy.
//     It provides methods for writes (Put, Update), reads (Get), metadata retrieval (GetInfo)
//     and lifecycle management (Close).
//
//   - Feature Flags: The Feature type defines capability flags that implementations
//     can advertise through the SupportsFeature method. This allows clients to
//     discover supported operations at runtime. Delete, Compact and Save are defined
//     for completeness but the segmented log does not support them.
//
//   - States: A LogDB moves from Empty to Filling with the first accepted write and to Full
//     once its last segment rejects a write. Full is terminal.
//
//   - Database Information: The DatabaseInfo structure provides standardized
//     reporting on database state, including size statistics, implementation type,
//     and implementation-specific metadata.
//
// Note on Ownership:
//   - A LogDB is owned by a single goroutine. Implementations are not required to be safe for
//     concurrent use; the store layer serializes access by pinning each database to one core.
//
// Note on Capacity:
//   - Writes never return an error. A write that can not be stored returns false and leaves the
//     database unchanged, so callers can apply backpressure or route the write elsewhere.
//   - Records are never split across segments and space is never reclaimed, so older records
//     for the same key keep occupying capacity.
//
// Related Packages:
//
// The engines/seglog package (github.com/ValentinKolb/seglog/lib/db/engines/seglog) provides the
// segmented in-memory log implementing LogDB.
//
// The record package (github.com/ValentinKolb/seglog/lib/db/record) defines the key-value record
// and its binary encoding.
//
// The util package (github.com/ValentinKolb/seglog/lib/db/util) provides complementary
// tools:
//   - SizeHistogram: Utilities for analyzing data size distributions
//   - SPSC: A lock-free single-producer single-consumer queue
//   - ... and more
//
// The testing package (github.com/ValentinKolb/seglog/lib/db/testing) provides
// standardized tests and benchmarks for database implementations that satisfy the db.LogDB interface.
//   - RunLogDBTests: Runs a standardized test suite to validate implementations
//   - RunLogDBBenchmarks: Provides performance benchmarks for comparing implementations
package db
