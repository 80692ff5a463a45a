package core

import (
	"fmt"
	"io"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/ValentinKolb/seglog/lib/db"
	"github.com/ValentinKolb/seglog/lib/db/util"
	"github.com/ValentinKolb/seglog/lib/store/command"
	"github.com/ValentinKolb/seglog/lib/store/executor"
	"github.com/VictoriaMetrics/metrics"
	"github.com/lni/dragonboat/v4/logger"
)

var log = logger.GetLogger("core")

// Idle backoff of the core loop: spin first, then yield the processor, then sleep
const (
	spinIterations  = 64
	yieldIterations = 256
	idleSleep       = 50 * time.Microsecond
)

// --------------------------------------------------------------------------
// Messages
// --------------------------------------------------------------------------

// request is a message from the ingestion goroutine to the core
type request struct {
	id   uint64
	cmd  command.Command
	info bool // return database info instead of executing cmd
}

// Reply is a message from the core back to the ingestion goroutine.
// ID is the id the request was submitted with. Info is only set for info requests.
type Reply struct {
	ID       uint64
	Response command.Response
	Info     *db.DatabaseInfo
}

// --------------------------------------------------------------------------
// Core
// --------------------------------------------------------------------------

// Core owns one executor (and thus one database) and runs it on a dedicated goroutine
// locked to an OS thread. Commands are handed to the core through a bounded inbound SPSC
// queue and replies come back through a bounded outbound SPSC queue, in submission order.
//
// Thread-safety: exactly one goroutine may submit to and receive from a core. The database is
// only ever touched by the core goroutine.
type Core struct {
	id       int
	executor *executor.Executor
	inbound  *util.SPSC[request]
	outbound *util.SPSC[Reply]

	started  atomic.Bool
	stopping atomic.Bool
	done     chan struct{}

	metrics *coreMetrics
}

type coreMetrics struct {
	set          *metrics.Set
	executed     *metrics.Counter
	inboundFull  *metrics.Counter
	outboundFull *metrics.Counter
}

func newCoreMetrics(id int) *coreMetrics {
	set := metrics.NewSet()
	return &coreMetrics{
		set:          set,
		executed:     set.NewCounter(fmt.Sprintf(`seglog_core_commands_total{core="%d"}`, id)),
		inboundFull:  set.NewCounter(fmt.Sprintf(`seglog_core_inbound_full_total{core="%d"}`, id)),
		outboundFull: set.NewCounter(fmt.Sprintf(`seglog_core_outbound_full_total{core="%d"}`, id)),
	}
}

// New creates a core with the given id that takes ownership of exec.
// Both queues hold up to queueCapacity messages. The core does not run until Start is called.
func New(id int, exec *executor.Executor, queueCapacity int) *Core {
	return &Core{
		id:       id,
		executor: exec,
		inbound:  util.NewSPSC[request](queueCapacity),
		outbound: util.NewSPSC[Reply](queueCapacity),
		done:     make(chan struct{}),
		metrics:  newCoreMetrics(id),
	}
}

// ID returns the id of the core
func (c *Core) ID() int {
	return c.id
}

// Start runs the core loop in a new goroutine. Panics if the core was already started.
func (c *Core) Start() {
	if !c.started.CompareAndSwap(false, true) {
		panic(fmt.Sprintf("core %d: already started", c.id))
	}
	go c.run()
	log.Debugf("core %d started", c.id)
}

// Stop signals the core loop to exit after the current command and waits for it.
// Requests still queued are discarded. Stop is a no-op for a core that was never started.
func (c *Core) Stop() {
	if !c.started.Load() || !c.stopping.CompareAndSwap(false, true) {
		return
	}
	<-c.done
	log.Debugf("core %d stopped", c.id)
}

// Close stops the core and closes its database
func (c *Core) Close() error {
	c.Stop()
	return c.executor.Close()
}

// --------------------------------------------------------------------------
// Producer / Consumer side (ingestion goroutine)
// --------------------------------------------------------------------------

// TrySubmit hands cmd to the core. Returns false if the inbound queue is full.
func (c *Core) TrySubmit(id uint64, cmd command.Command) bool {
	if !c.inbound.TryEnqueue(request{id: id, cmd: cmd}) {
		c.metrics.inboundFull.Inc()
		return false
	}
	return true
}

// TrySubmitInfo asks the core for information about its database.
// The reply carries the info in Reply.Info. Returns false if the inbound queue is full.
func (c *Core) TrySubmitInfo(id uint64) bool {
	if !c.inbound.TryEnqueue(request{id: id, info: true}) {
		c.metrics.inboundFull.Inc()
		return false
	}
	return true
}

// TryReceive returns the next reply. Returns false if no reply is available.
func (c *Core) TryReceive() (Reply, bool) {
	return c.outbound.TryDequeue()
}

// WriteMetrics writes the metrics of this core in Prometheus text format to w
func (c *Core) WriteMetrics(w io.Writer) {
	c.metrics.set.WritePrometheus(w)
}

// --------------------------------------------------------------------------
// Core loop
// --------------------------------------------------------------------------

func (c *Core) run() {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(c.done)

	idle := 0
	for !c.stopping.Load() {
		req, ok := c.inbound.TryGetFront()
		if !ok {
			backoff(idle)
			idle++
			continue
		}
		idle = 0

		reply := c.handle(req)
		c.inbound.Pop()

		// the outbound queue is full until the ingestion goroutine receives
		for !c.outbound.TryEnqueue(reply) {
			c.metrics.outboundFull.Inc()
			if c.stopping.Load() {
				return
			}
			backoff(idle)
			idle++
		}
		idle = 0
	}
}

// handle executes a single request. The request is only read, its slot is still owned by the queue.
func (c *Core) handle(req *request) Reply {
	if req.info {
		info := c.executor.Info()
		return Reply{ID: req.id, Info: &info}
	}

	resp := c.executor.Execute(req.cmd)
	c.metrics.executed.Inc()
	return Reply{ID: req.id, Response: resp}
}

// backoff waits according to the number of consecutive idle iterations
func backoff(idle int) {
	switch {
	case idle < spinIterations:
		// spin
	case idle < spinIterations+yieldIterations:
		runtime.Gosched()
	default:
		time.Sleep(idleSleep)
	}
}

// Wait blocks the calling goroutine until fn returns true, using the same backoff as the core loop
func Wait(fn func() bool) {
	for idle := 0; !fn(); idle++ {
		backoff(idle)
	}
}
