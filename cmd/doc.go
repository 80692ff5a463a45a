// Package cmd implements the command-line interface for seglog. It provides a
// hierarchical command structure with operations for running command scripts
// against a local store and for measuring its performance.
//
// The package is organized into several subpackages:
//
//   - kv: Commands for key-value operations (exec, encode, perf)
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// All flags can also be set with environment variables of the form SEGLOG_<FLAG>,
// e.g. SEGLOG_SEGMENT_SIZE=4096. Variables are also read from .env and .env.local.
//
// See seglog -help for a list of all commands.
package cmd
