// Package util provides utility components for
// database implementations that satisfy the db.LogDB interface and for the store built on top.
//
// The package contains:
//   - statistics: Utility tools for analyzing database characteristics and a SizeHistogram for tracking data size distribution
//   - functions: Hash functions, key routing and other utility functions
//   - spsc: A bounded lock-free Single-Producer Single-Consumer (SPSC) ring queue, used to hand
//     commands to a core and replies back without locks
//
// This package is particularly useful for:
//   - Database developers implementing the LogDB interface
//   - Passing work between exactly two goroutines with low latency
//   - Monitoring systems that need to track database size and distribution metrics
package util
