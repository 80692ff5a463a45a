package store

import (
	"fmt"

	"github.com/ValentinKolb/seglog/lib/db"
	"github.com/ValentinKolb/seglog/lib/store/command"
)

// --------------------------------------------------------------------------
// Interface Definition
// --------------------------------------------------------------------------

// DBFactory is a function type that creates a new db used by the store.
// This is used to abstract the creation of the db from the store implementation.
// A store may call the factory more than once, e.g. once per core.
type DBFactory func() db.LogDB

// IStore is the generic interface for interacting with an append-only key–value store.
// Capacity exhaustion is not an error: writes report whether they were accepted.
// The returned error (a *Error, nil on success) is reserved for unsupported operations,
// corrupt records and internal failures.
type IStore interface {
	// Put appends a key–value pair. The returned bool is false if there is no capacity left.
	Put(key, value []byte) (ok bool, err error)
	// Update appends a newer value for a key. Semantically identical to Put on an append-only store.
	Update(key, value []byte) (ok bool, err error)
	// Get returns the latest value for a key. The boolean return value indicates whether a value for the key was found.
	// A found key whose record can not be decoded returns loaded == true and an error with code RetCCorruptRecord.
	Get(key []byte) (value []byte, loaded bool, err error)
	// ExecuteBatch executes the commands and returns one response per command, in order.
	// Commands for the same key are applied in the order they appear in the batch.
	ExecuteBatch(cmds []command.Command) (responses []command.Response)
	// GetDBInfo returns metadata about the databases underlying the store, one per partition.
	GetDBInfo() (info []db.DatabaseInfo, err error)
	// Close stops the store and releases all databases. The store must not be used afterward.
	Close() (err error)
}

// --------------------------------------------------------------------------
// Custom Error Type
// --------------------------------------------------------------------------

// Error is a custom error type that wraps a return code (of type RetCode)
// and an error message.
type Error struct {
	Code RetCode // The return code
	Msg  string  // The error message.
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("StoreError (code %s): %s", e.Code, e.Msg)
}

// NewError creates a new store error with the given code and message.
func NewError(code RetCode, msg string) *Error {
	return &Error{
		Code: code,
		Msg:  msg,
	}
}

// --------------------------------------------------------------------------
// Return Codes
// --------------------------------------------------------------------------

type RetCode uint64

const (
	RetCSuccess              RetCode = iota // 0: Command executed successfully.
	RetCInternalError                       // 1: Command failed due to an internal error.
	RetCUnsupportedOperation                // 2: Operation is not supported by underlying database.
	RetCInvalidOperation                    // 3: Invalid operation.
	RetCCorruptRecord                       // 4: The stored record for a key could not be decoded.
)

func (c RetCode) String() string {
	switch c {
	case RetCSuccess:
		return "Success"
	case RetCInternalError:
		return "InternalError"
	case RetCUnsupportedOperation:
		return "UnsupportedOperation"
	case RetCInvalidOperation:
		return "InvalidOperation"
	case RetCCorruptRecord:
		return "CorruptRecord"
	default:
		return "Unknown"
	}
}
