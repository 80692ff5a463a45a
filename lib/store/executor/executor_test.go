package executor

import (
	"errors"
	"testing"

	"github.com/ValentinKolb/seglog/lib/db"
	"github.com/ValentinKolb/seglog/lib/db/engines/seglog"
	"github.com/ValentinKolb/seglog/lib/db/record"
	"github.com/ValentinKolb/seglog/lib/store"
	"github.com/ValentinKolb/seglog/lib/store/command"
)

func newExecutor(logSize, segmentSize int) *Executor {
	return New(seglog.NewLogDB(seglog.NewOptions(logSize, segmentSize)))
}

func TestExecutePut(t *testing.T) {
	e := newExecutor(64, 64)

	resp := e.Execute(command.Put([]byte("raft"), []byte("consensus")))
	if !resp.IsPut() {
		t.Errorf("Expected a put response, got %s", resp.Type)
	}
	if !resp.Ok {
		t.Error("Put into an empty log should succeed")
	}
}

func TestExecutePutWithoutSpace(t *testing.T) {
	e := newExecutor(16, 16)

	resp := e.Execute(command.Put([]byte("raft"), []byte("consensus")))
	if !resp.IsPut() {
		t.Errorf("Expected a put response, got %s", resp.Type)
	}
	if resp.Ok {
		t.Error("Put of a 17 byte record into a 16 byte log should fail")
	}
}

func TestExecuteUpdate(t *testing.T) {
	e := newExecutor(64, 64)

	resp := e.Execute(command.Update([]byte("raft"), []byte("consensus")))
	if !resp.IsUpdate() {
		t.Errorf("Expected an update response, got %s", resp.Type)
	}
	if !resp.Ok {
		t.Error("Update into an empty log should succeed")
	}
}

func TestExecuteUpdateWithoutSpace(t *testing.T) {
	e := newExecutor(16, 16)

	resp := e.Execute(command.Update([]byte("raft"), []byte("consensus")))
	if !resp.IsUpdate() {
		t.Errorf("Expected an update response, got %s", resp.Type)
	}
	if resp.Ok {
		t.Error("Update of a 17 byte record into a 16 byte log should fail")
	}
}

func TestExecuteGet(t *testing.T) {
	e := newExecutor(64, 64)

	if resp := e.Execute(command.Put([]byte("raft"), []byte("consensus"))); !resp.Ok {
		t.Fatal("Put should succeed")
	}

	resp := e.Execute(command.Get([]byte("raft")))
	if !resp.IsGet() {
		t.Errorf("Expected a get response, got %s", resp.Type)
	}
	if !resp.Found || resp.Err != nil {
		t.Fatalf("Get() = (found=%v, err=%v)", resp.Found, resp.Err)
	}
	if string(resp.Record.Value()) != "consensus" {
		t.Errorf("Expected value consensus, got %s", resp.Record.Value())
	}
}

func TestExecuteGetNotFound(t *testing.T) {
	e := newExecutor(64, 64)

	resp := e.Execute(command.Get([]byte("raft")))
	if !resp.IsGet() {
		t.Errorf("Expected a get response, got %s", resp.Type)
	}
	if resp.Found || resp.Err != nil {
		t.Errorf("Get() on empty log = (found=%v, err=%v), want (false, nil)", resp.Found, resp.Err)
	}
}

func TestExecuteEmptyValuePanics(t *testing.T) {
	e := newExecutor(64, 64)

	defer func() {
		if recover() == nil {
			t.Error("Put with an empty value should panic")
		}
	}()
	e.Execute(command.Put([]byte("raft"), nil))
}

// --------------------------------------------------------------------------
// Feature and error handling with a stub database
// --------------------------------------------------------------------------

// stubDB supports a configurable set of features and fails every lookup with err
type stubDB struct {
	features db.Feature
	err      error
	closed   bool
}

func (s *stubDB) Put(key, value []byte) bool    { return true }
func (s *stubDB) Update(key, value []byte) bool { return true }
func (s *stubDB) Get(key []byte) (record.KeyValue, bool, error) {
	return record.KeyValue{}, true, s.err
}
func (s *stubDB) SupportsFeature(f db.Feature) bool { return s.features&f == f }
func (s *stubDB) GetInfo() db.DatabaseInfo          { return db.DatabaseInfo{DbType: "stub"} }
func (s *stubDB) Close() error {
	s.closed = true
	return nil
}

func TestExecuteUnsupported(t *testing.T) {
	e := New(&stubDB{features: db.FeatureGet})

	for _, cmd := range []command.Command{
		command.Put([]byte("k"), []byte("v")),
		command.Update([]byte("k"), []byte("v")),
	} {
		resp := e.Execute(cmd)
		var storeErr *store.Error
		if !errors.As(resp.Err, &storeErr) {
			t.Fatalf("%s: expected *store.Error, got %v", cmd.Type, resp.Err)
		}
		if storeErr.Code != store.RetCUnsupportedOperation {
			t.Errorf("%s: code = %s, want %s", cmd.Type, storeErr.Code, store.RetCUnsupportedOperation)
		}
		if resp.Ok {
			t.Errorf("%s: unsupported operation reported ok", cmd.Type)
		}
	}
}

func TestExecuteCorruptRecord(t *testing.T) {
	e := New(&stubDB{features: db.FeatureGet, err: record.ErrShortBuffer})

	resp := e.Execute(command.Get([]byte("k")))
	if !resp.Found {
		t.Error("corrupt record should be reported as found")
	}
	var storeErr *store.Error
	if !errors.As(resp.Err, &storeErr) || storeErr.Code != store.RetCCorruptRecord {
		t.Errorf("expected corrupt record error, got %v", resp.Err)
	}
}

func TestInfoAndClose(t *testing.T) {
	stub := &stubDB{}
	e := New(stub)

	if info := e.Info(); info.DbType != "stub" {
		t.Errorf("Info() = %+v", info)
	}
	if err := e.Close(); err != nil || !stub.closed {
		t.Errorf("Close() = %v, closed = %v", err, stub.closed)
	}
}
