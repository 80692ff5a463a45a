// Package store provides the high-level interface for executing commands against
// append-only logs, together with unified error handling.
//
// Key Components:
//
//   - IStore Interface: The abstraction for Put, Update, Get and batched command
//     execution. Capacity exhaustion is reported as a value (ok == false), errors are
//     reserved for unsupported operations, corrupt records and internal failures.
//
//   - Error System: A structured error reporting mechanism using typed return codes
//     (RetCode) and descriptive messages.
//
//   - DBFactory: A function type that abstracts the creation of the underlying db.LogDB
//     instances. A store calls the factory once per partition.
//
// Implementations:
//
//	- Local Store (lstore): A thread-per-core implementation. Every core owns one
//	  db.LogDB and runs on its own OS thread. Keys are routed to cores by hash and
//	  commands are handed over through lock-free SPSC queues.
//	  Available in the "github.com/ValentinKolb/seglog/lib/store/lstore" package.
//
// The subpackages command, executor and core contain the wire format of commands,
// the dispatch of a single command onto a database and the per-core runtime.
package store
