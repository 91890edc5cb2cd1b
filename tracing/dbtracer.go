package tracing

import (
	"sync"

	"github.com/sarchlab/propriosim/datarecording"
	"github.com/sarchlab/propriosim/sim"
)

// Names of the tables written by the DBTracer.
const (
	TransactionTable = "transactions"
	SyncTable        = "syncs"
	MemAccessTable   = "mem_accesses"
	ErrorTable       = "errors"
)

// TransactionEntry is the row form of a TransactionRecord. Times are in
// picoseconds.
type TransactionEntry struct {
	Time          uint64
	Component     string
	ComponentID   uint32
	Process       string
	Phase         string
	TargetID      uint32
	TransactionID string
	Delay         uint64
	Success       bool
	Response      string
}

// SyncEntry is the row form of a SyncRecord.
type SyncEntry struct {
	Time        uint64
	Component   string
	ComponentID uint32
	Process     string
	Phase       string
	Delay       uint64
}

// MemAccessEntry is the row form of a MemAccessRecord.
type MemAccessEntry struct {
	Time        uint64
	Memory      string
	MemoryID    uint32
	Width       uint64
	InitiatorID uint32
	Command     string
	Address     uint64
	Length      uint64
	Delay       uint64
	Response    string
}

// ErrorEntry is the row form of an ErrorRecord.
type ErrorEntry struct {
	Time      uint64
	Component string
	Process   string
	Kind      string
	Message   string
}

// MapTables maps the tracer tables on a reader so that they can be queried.
func MapTables(reader datarecording.DataReader) {
	reader.MapTable(TransactionTable, TransactionEntry{})
	reader.MapTable(SyncTable, SyncEntry{})
	reader.MapTable(MemAccessTable, MemAccessEntry{})
	reader.MapTable(ErrorTable, ErrorEntry{})
}

// DBTracer is a tracer that stores the records into a DataRecorder.
type DBTracer struct {
	mu         sync.Mutex
	timeTeller sim.TimeTeller
	backend    datarecording.DataRecorder

	startTime, endTime sim.VTime
}

// NewDBTracer creates a new DBTracer and the tables it writes.
func NewDBTracer(
	timeTeller sim.TimeTeller,
	backend datarecording.DataRecorder,
) *DBTracer {
	t := &DBTracer{
		timeTeller: timeTeller,
		backend:    backend,
	}

	backend.CreateTable(TransactionTable, TransactionEntry{})
	backend.CreateTable(SyncTable, SyncEntry{})
	backend.CreateTable(MemAccessTable, MemAccessEntry{})
	backend.CreateTable(ErrorTable, ErrorEntry{})

	return t
}

// SetTimeRange sets the time range of the records to keep. A zero end time
// means no upper bound.
func (t *DBTracer) SetTimeRange(startTime, endTime sim.VTime) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.startTime = startTime
	t.endTime = endTime
}

func (t *DBTracer) now() (sim.VTime, bool) {
	now := t.timeTeller.CurrentTime()

	if now < t.startTime {
		return now, false
	}

	if t.endTime > 0 && now > t.endTime {
		return now, false
	}

	return now, true
}

// TraceTransaction stores a transaction record.
func (t *DBTracer) TraceTransaction(rec TransactionRecord) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now, ok := t.now()
	if !ok {
		return
	}

	t.backend.InsertData(TransactionTable, TransactionEntry{
		Time:          uint64(now),
		Component:     rec.Component,
		ComponentID:   rec.ComponentID,
		Process:       rec.Process,
		Phase:         string(rec.Phase),
		TargetID:      rec.TargetID,
		TransactionID: rec.TransactionID,
		Delay:         uint64(rec.Delay),
		Success:       rec.Success,
		Response:      rec.Response.String(),
	})
}

// TraceSync stores a sync record.
func (t *DBTracer) TraceSync(rec SyncRecord) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now, ok := t.now()
	if !ok {
		return
	}

	t.backend.InsertData(SyncTable, SyncEntry{
		Time:        uint64(now),
		Component:   rec.Component,
		ComponentID: rec.ComponentID,
		Process:     rec.Process,
		Phase:       string(rec.Phase),
		Delay:       uint64(rec.Delay),
	})
}

// TraceMemAccess stores a memory access record.
func (t *DBTracer) TraceMemAccess(rec MemAccessRecord) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now, ok := t.now()
	if !ok {
		return
	}

	t.backend.InsertData(MemAccessTable, MemAccessEntry{
		Time:        uint64(now),
		Memory:      rec.Memory,
		MemoryID:    rec.MemoryID,
		Width:       rec.Width,
		InitiatorID: rec.InitiatorID,
		Command:     rec.Command.String(),
		Address:     rec.Address,
		Length:      rec.Length,
		Delay:       uint64(rec.Delay),
		Response:    rec.Response.String(),
	})
}

// TraceError stores an error record.
func (t *DBTracer) TraceError(rec ErrorRecord) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now, ok := t.now()
	if !ok {
		return
	}

	t.backend.InsertData(ErrorTable, ErrorEntry{
		Time:      uint64(now),
		Component: rec.Component,
		Process:   rec.Process,
		Kind:      string(rec.Kind),
		Message:   rec.Message,
	})
}
