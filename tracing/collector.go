package tracing

import (
	"sync"

	"github.com/sarchlab/propriosim/sim"
)

// Collector keeps every record in memory.
type Collector struct {
	lock       sync.Mutex
	timeTeller sim.TimeTeller

	transactions []TransactionRecord
	syncs        []SyncRecord
	memAccesses  []MemAccessRecord
	errors       []ErrorRecord
}

// NewCollector creates a Collector that stamps records with the time told by
// the time teller.
func NewCollector(timeTeller sim.TimeTeller) *Collector {
	return &Collector{timeTeller: timeTeller}
}

// TraceTransaction stores a transaction record.
func (c *Collector) TraceTransaction(rec TransactionRecord) {
	c.lock.Lock()
	defer c.lock.Unlock()

	rec.Time = c.timeTeller.CurrentTime()
	c.transactions = append(c.transactions, rec)
}

// TraceSync stores a sync record.
func (c *Collector) TraceSync(rec SyncRecord) {
	c.lock.Lock()
	defer c.lock.Unlock()

	rec.Time = c.timeTeller.CurrentTime()
	c.syncs = append(c.syncs, rec)
}

// TraceMemAccess stores a memory access record.
func (c *Collector) TraceMemAccess(rec MemAccessRecord) {
	c.lock.Lock()
	defer c.lock.Unlock()

	rec.Time = c.timeTeller.CurrentTime()
	c.memAccesses = append(c.memAccesses, rec)
}

// TraceError stores an error record.
func (c *Collector) TraceError(rec ErrorRecord) {
	c.lock.Lock()
	defer c.lock.Unlock()

	rec.Time = c.timeTeller.CurrentTime()
	c.errors = append(c.errors, rec)
}

// Transactions returns a copy of the transaction records.
func (c *Collector) Transactions() []TransactionRecord {
	c.lock.Lock()
	defer c.lock.Unlock()

	return append([]TransactionRecord(nil), c.transactions...)
}

// Syncs returns a copy of the sync records.
func (c *Collector) Syncs() []SyncRecord {
	c.lock.Lock()
	defer c.lock.Unlock()

	return append([]SyncRecord(nil), c.syncs...)
}

// MemAccesses returns a copy of the memory access records.
func (c *Collector) MemAccesses() []MemAccessRecord {
	c.lock.Lock()
	defer c.lock.Unlock()

	return append([]MemAccessRecord(nil), c.memAccesses...)
}

// Errors returns a copy of the error records.
func (c *Collector) Errors() []ErrorRecord {
	c.lock.Lock()
	defer c.lock.Unlock()

	return append([]ErrorRecord(nil), c.errors...)
}

// TransactionsOf returns the transaction records of one process of a
// component.
func (c *Collector) TransactionsOf(
	component, process string,
) []TransactionRecord {
	c.lock.Lock()
	defer c.lock.Unlock()

	var out []TransactionRecord

	for _, r := range c.transactions {
		if r.Component == component && r.Process == process {
			out = append(out, r)
		}
	}

	return out
}

// Reset drops every record.
func (c *Collector) Reset() {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.transactions = nil
	c.syncs = nil
	c.memAccesses = nil
	c.errors = nil
}
