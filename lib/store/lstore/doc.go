// Package lstore implements a local, in-memory, single-node key-value store based on the
// store.IStore interface. It partitions keys across a fixed number of cores, each of which
// owns one db.LogDB created by the store.DBFactory. Data is stored entirely in memory and is
// not persisted between process restarts.
//
// Key Features:
//   - Thread-per-core execution: every database is only touched by its own core goroutine
//   - Lock-free hand-off of commands and replies through SPSC queues
//   - Pipelined batch execution across all cores
//   - Feature detection to handle unsupported operations gracefully
//
// Implementation Details:
//
//   - Routing: A key is hashed with a per-store random seed and mapped onto a core with
//     util.Route. The same key always lands on the same core, so the per-core log order is the
//     order in which commands for that key were submitted.
//
//   - Single Producer: The store itself is the only producer of every inbound queue and the
//     only consumer of every outbound queue. This is what allows the queues to be SPSC, and it is
//     why the store must not be shared between goroutines without external synchronization.
//
//   - Backpressure: Put and Update return false once the log of the responsible core is full.
//     Full is terminal for that core, while other cores may still accept writes.
//
//   - Batches: ExecuteBatch submits all commands before waiting for replies. Whenever an inbound
//     queue is full, the store drains the outbound queues of all cores and retries.
//
// Usage Example:
//
//	cfg := common.DefaultEngineConfig()
//	cfg.Cores = 4
//	factory := func() db.LogDB {
//		return seglog.NewLogDB(seglog.NewOptions(cfg.LogSizeBytes, cfg.SegmentSizeBytes))
//	}
//	s := lstore.NewLocalStore(cfg, factory)
//	defer s.Close()
//
//	ok, err := s.Put([]byte("raft"), []byte("consensus"))
//	value, found, err := s.Get([]byte("raft"))
package lstore
