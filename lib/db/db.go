package db

import "github.com/ValentinKolb/seglog/lib/db/record"

// --------------------------------------------------------------------------
// Helper Types
// --------------------------------------------------------------------------

type Implementation string

const (
	ImplSegLog Implementation = "seglog"
)

// Feature represents database features as bit flags
type Feature uint64

const (
	FeaturePut     Feature = 1 << iota // Support for Put operations
	FeatureUpdate                      // Support for Update operations
	FeatureGet                         // Support for Get operations
	FeatureDelete                      // Support for Delete operations
	FeatureCompact                     // Support for reclaiming space of stale records
	FeatureSave                        // Support for persisting the database
)

func (f Feature) String() string {
	switch f {
	case FeaturePut:
		return "Put"
	case FeatureUpdate:
		return "Update"
	case FeatureGet:
		return "Get"
	case FeatureDelete:
		return "Delete"
	case FeatureCompact:
		return "Compact"
	case FeatureSave:
		return "Save"
	default:
		return "Unknown"
	}
}

// State is the lifecycle state of an append-only database
type State uint8

const (
	StateEmpty   State = iota // nothing was appended yet
	StateFilling              // at least one record was appended
	StateFull                 // the last segment rejected a write, terminal
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "Empty"
	case StateFilling:
		return "Filling"
	case StateFull:
		return "Full"
	default:
		return "Unknown"
	}
}

type DatabaseInfo struct {
	SizeBytes         int            `json:"size_bytes"`
	CapacityBytes     int            `json:"capacity_bytes"`
	State             string         `json:"state"`
	DbType            Implementation `json:"db_type"`
	SupportedFeatures []Feature      `json:"supported_features"`
	Metadata          interface{}    `json:"metadata"`
}

// --------------------------------------------------------------------------
// Database Interface
// --------------------------------------------------------------------------

// LogDB defines an interface for append-only key-value database implementations.
// Writes never fail with an error: a database without free capacity reports false and the
// caller is responsible for backpressure. Reads distinguish between a missing key and a
// key whose stored record can not be decoded.
// Implementations can vary in their feature support, which can be queried with SupportsFeature.
type LogDB interface {

	// --------------------------------------------------------------------------
	// Write Operations
	// --------------------------------------------------------------------------

	// Put appends a record for key. If the key already exists, the new record shadows the old one.
	// Returns false if the database has no capacity left for the record.
	// Empty keys or values are a programming error.
	Put(key, value []byte) (ok bool)

	// Update appends a new record for an existing or new key (same semantics as Put).
	// Returns false if the database has no capacity left for the record.
	Update(key, value []byte) (ok bool)

	// --------------------------------------------------------------------------
	// Query Operations
	// --------------------------------------------------------------------------

	// Get retrieves the latest record for key.
	// found is false if the key was never written. If found is true but err is not nil,
	// the record location is known but the stored bytes could not be decoded.
	Get(key []byte) (kv record.KeyValue, found bool, err error)

	// --------------------------------------------------------------------------
	// Feature Support
	// --------------------------------------------------------------------------

	// SupportsFeature checks if the database implementation supports the specified feature.
	// Multiple features can be checked at once using bitwise OR (|) operator.
	SupportsFeature(feature Feature) (ok bool)

	// GetInfo returns information about the database.
	GetInfo() (info DatabaseInfo)

	// Close releases the database. The database must not be used afterward.
	Close() (err error)
}
