package lstore

import (
	"fmt"
	"io"

	"github.com/ValentinKolb/seglog/lib/common"
	"github.com/ValentinKolb/seglog/lib/db"
	"github.com/ValentinKolb/seglog/lib/db/util"
	"github.com/ValentinKolb/seglog/lib/store"
	"github.com/ValentinKolb/seglog/lib/store/command"
	"github.com/ValentinKolb/seglog/lib/store/core"
	"github.com/ValentinKolb/seglog/lib/store/executor"
	"github.com/lni/dragonboat/v4/logger"
)

var log = logger.GetLogger("store")

type storeImpl struct {
	cores  []*core.Core
	seed   uint64
	nextID uint64
	closed bool

	// number of keys routed to each core, for distribution statistics
	routed []float64
}

// NewLocalStore creates a new local store instance.
// This store implementation is not distributed and only works on a single node.
// It creates cfg.Cores cores, each owning a database created by factory, and starts them.
// Panics if cfg is invalid, call cfg.Validate first for user input.
//
// Thread-safety: the returned store is not thread-safe. All methods must be called from
// the same goroutine, the single producer of every core queue.
func NewLocalStore(cfg common.EngineConfig, factory store.DBFactory) store.IStore {
	return newStore(cfg, factory)
}

func newStore(cfg common.EngineConfig, factory store.DBFactory) *storeImpl {
	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("lstore: invalid config: %v", err))
	}

	s := &storeImpl{
		cores:  make([]*core.Core, cfg.Cores),
		seed:   util.GenerateSeed(),
		routed: make([]float64, cfg.Cores),
	}
	for i := range s.cores {
		s.cores[i] = core.New(i, executor.New(factory()), cfg.QueueCapacity)
		s.cores[i].Start()
	}

	log.Infof("local store started with %d cores (queue capacity %d)", cfg.Cores, cfg.QueueCapacity)
	return s
}

// coreFor returns the core responsible for key
func (s *storeImpl) coreFor(key []byte) int {
	return util.Route(util.HashBytes(key, s.seed), len(s.cores))
}

func (s *storeImpl) mustBeOpen() {
	if s.closed {
		panic("lstore: use of closed store")
	}
}

// mustBeValid panics for writes the database would reject as programming errors.
// Checking here raises the panic on the calling goroutine instead of on a core.
func mustBeValid(cmd command.Command) {
	if cmd.Type != command.TypeGet && (len(cmd.Key) == 0 || len(cmd.Value) == 0) {
		panic(fmt.Sprintf("lstore: %s with empty key or value", cmd.Type))
	}
}

// --------------------------------------------------------------------------
// Single command execution
// --------------------------------------------------------------------------

// execute submits cmd to its core and waits for the reply.
// Since calls are serialized, the reply is the only one in flight for that core.
func (s *storeImpl) execute(cmd command.Command) command.Response {
	s.mustBeOpen()
	mustBeValid(cmd)

	idx := s.coreFor(cmd.Key)
	s.routed[idx]++
	c := s.cores[idx]
	id := s.nextID
	s.nextID++

	core.Wait(func() bool {
		return c.TrySubmit(id, cmd)
	})

	var reply core.Reply
	core.Wait(func() bool {
		var ok bool
		reply, ok = c.TryReceive()
		return ok
	})

	if reply.ID != id {
		panic(fmt.Sprintf("lstore: core %d replied to %d, expected %d", c.ID(), reply.ID, id))
	}
	return reply.Response
}

// --------------------------------------------------------------------------
// Interface Methods (docu see store/interface.go)
// --------------------------------------------------------------------------

func (s *storeImpl) Put(key, value []byte) (bool, error) {
	resp := s.execute(command.Put(key, value))
	return resp.Ok, resp.Err
}

func (s *storeImpl) Update(key, value []byte) (bool, error) {
	resp := s.execute(command.Update(key, value))
	return resp.Ok, resp.Err
}

func (s *storeImpl) Get(key []byte) ([]byte, bool, error) {
	resp := s.execute(command.Get(key))
	if resp.Err != nil {
		return nil, resp.Found, resp.Err
	}
	if !resp.Found {
		return nil, false, nil
	}
	return resp.Record.Value(), true, nil
}

// ExecuteBatch pipelines the commands across all cores. Commands are submitted in order and
// every key always maps to the same core, so commands for the same key are applied in batch order.
func (s *storeImpl) ExecuteBatch(cmds []command.Command) []command.Response {
	s.mustBeOpen()
	for _, cmd := range cmds {
		mustBeValid(cmd)
	}

	responses := make([]command.Response, len(cmds))
	base := s.nextID
	s.nextID += uint64(len(cmds))

	pending := 0
	receiveAll := func() {
		for _, c := range s.cores {
			for {
				reply, ok := c.TryReceive()
				if !ok {
					break
				}
				responses[reply.ID-base] = reply.Response
				pending--
			}
		}
	}

	for i, cmd := range cmds {
		idx := s.coreFor(cmd.Key)
		s.routed[idx]++
		c := s.cores[idx]

		// a full inbound queue drains once the outbound queues are emptied
		core.Wait(func() bool {
			if c.TrySubmit(base+uint64(i), cmd) {
				return true
			}
			receiveAll()
			return false
		})
		pending++
	}

	core.Wait(func() bool {
		receiveAll()
		return pending == 0
	})

	return responses
}

// GetDBInfo asks every core for information about its database.
// The metadata of every entry additionally carries the routing statistics of the store.
func (s *storeImpl) GetDBInfo() ([]db.DatabaseInfo, error) {
	s.mustBeOpen()

	infos := make([]db.DatabaseInfo, len(s.cores))
	for i, c := range s.cores {
		id := s.nextID
		s.nextID++

		core.Wait(func() bool {
			return c.TrySubmitInfo(id)
		})

		var reply core.Reply
		core.Wait(func() bool {
			var ok bool
			reply, ok = c.TryReceive()
			return ok
		})

		if reply.Info == nil {
			return nil, store.NewError(store.RetCInternalError, fmt.Sprintf("core %d did not return database info", i))
		}
		infos[i] = *reply.Info
		infos[i].Metadata = &struct {
			Core         int                    `json:"core"`
			Routing      util.DistributionStats `json:"routing"`
			DatabaseInfo interface{}            `json:"database"`
		}{
			Core:         i,
			Routing:      util.NewDistributionStats(s.routed),
			DatabaseInfo: reply.Info.Metadata,
		}
	}
	return infos, nil
}

func (s *storeImpl) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	var firstErr error
	for _, c := range s.cores {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	log.Infof("local store closed")
	return firstErr
}

// WriteMetrics writes the metrics of all cores in Prometheus text format to w.
// Engine metrics of the databases are written by the databases themselves.
func (s *storeImpl) WriteMetrics(w io.Writer) {
	for _, c := range s.cores {
		c.WriteMetrics(w)
	}
}
