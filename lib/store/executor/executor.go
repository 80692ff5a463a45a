// Package executor maps commands onto the operations of a db.LogDB.
//
// An Executor owns its database exclusively. It performs no synchronization, so it must be
// driven by a single goroutine, typically the goroutine of a core.
package executor

import (
	"fmt"

	"github.com/ValentinKolb/seglog/lib/db"
	"github.com/ValentinKolb/seglog/lib/store"
	"github.com/ValentinKolb/seglog/lib/store/command"
)

// Executor executes commands against the database it owns
type Executor struct {
	db db.LogDB
}

// New creates an executor that takes ownership of database
func New(database db.LogDB) *Executor {
	return &Executor{db: database}
}

// Execute runs cmd against the database and returns its response.
// A Put or Update with an empty key or value is a programming error and panics,
// so is a command of unknown type.
func (e *Executor) Execute(cmd command.Command) command.Response {
	feature, err := cmd.Type.ToDBFeature()
	if err != nil {
		panic(fmt.Sprintf("executor: %v", err))
	}
	if !e.db.SupportsFeature(feature) {
		return command.Response{
			Type: cmd.Type,
			Err:  store.NewError(store.RetCUnsupportedOperation, fmt.Sprintf("%s operation is not supported", cmd.Type)),
		}
	}

	switch cmd.Type {
	case command.TypeGet:
		kv, found, err := e.db.Get(cmd.Key)
		if err != nil {
			err = store.NewError(store.RetCCorruptRecord, err.Error())
		}
		return command.Response{Type: cmd.Type, Record: kv, Found: found, Err: err}
	case command.TypePut:
		return command.Response{Type: cmd.Type, Ok: e.db.Put(cmd.Key, cmd.Value)}
	case command.TypeUpdate:
		return command.Response{Type: cmd.Type, Ok: e.db.Update(cmd.Key, cmd.Value)}
	default:
		panic(fmt.Sprintf("executor: unhandled command type %s", cmd.Type))
	}
}

// Info returns information about the owned database
func (e *Executor) Info() db.DatabaseInfo {
	return e.db.GetInfo()
}

// Close closes the owned database
func (e *Executor) Close() error {
	return e.db.Close()
}
