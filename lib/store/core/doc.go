// Package core implements the thread-per-core runtime of the store.
//
// A Core pins one database to one goroutine that is locked to an OS thread. The owner of the
// core talks to it exclusively through two bounded single-producer single-consumer queues
// (util.SPSC): commands go in through the inbound queue and replies come back, in the same
// order, through the outbound queue. Because every database is only ever touched by its core,
// neither the database nor the executor need locks.
//
// The core loop never blocks on a channel or mutex. When there is no work it backs off in
// three stages: it spins, then yields the processor with runtime.Gosched, then sleeps for a
// few microseconds. A full outbound queue is retried with the same backoff.
//
// Lifecycle:
//
//	c := core.New(0, executor.New(log), 1024)
//	c.Start()
//	c.TrySubmit(1, command.Put(key, value))
//	core.Wait(func() bool { reply, ok = c.TryReceive(); return ok })
//	c.Close() // stops the loop and closes the database
//
// Metrics (VictoriaMetrics counters, labelled with the core id):
//   - seglog_core_commands_total: executed commands
//   - seglog_core_inbound_full_total: rejected submissions
//   - seglog_core_outbound_full_total: retries because the owner did not receive replies
package core
