package tracing

import (
	"log"

	"github.com/sarchlab/propriosim/sim"
)

// LogTracer prints the records with a logger.
type LogTracer struct {
	logger     *log.Logger
	timeTeller sim.TimeTeller
}

// NewLogTracer creates a new LogTracer.
func NewLogTracer(logger *log.Logger, timeTeller sim.TimeTeller) *LogTracer {
	return &LogTracer{
		logger:     logger,
		timeTeller: timeTeller,
	}
}

// TraceTransaction prints a transaction record. Failed returns carry the
// response string.
func (t *LogTracer) TraceTransaction(rec TransactionRecord) {
	now := t.timeTeller.CurrentTime()

	if rec.Phase == PhaseReturn && !rec.Success {
		t.logger.Printf("%s %s(%d).%s transaction %s -> %d, delay %s, failed: %s",
			now, rec.Component, rec.ComponentID, rec.Process, rec.Phase,
			rec.TargetID, rec.Delay, rec.Response)

		return
	}

	t.logger.Printf("%s %s(%d).%s transaction %s -> %d, delay %s",
		now, rec.Component, rec.ComponentID, rec.Process, rec.Phase,
		rec.TargetID, rec.Delay)
}

// TraceSync prints a sync record.
func (t *LogTracer) TraceSync(rec SyncRecord) {
	t.logger.Printf("%s %s(%d).%s sync %s, delay %s",
		t.timeTeller.CurrentTime(), rec.Component, rec.ComponentID,
		rec.Process, rec.Phase, rec.Delay)
}

// TraceMemAccess prints a memory access record.
func (t *LogTracer) TraceMemAccess(rec MemAccessRecord) {
	t.logger.Printf("%s %s(%d) %s [%d, %d) from %d, delay %s, %s",
		t.timeTeller.CurrentTime(), rec.Memory, rec.MemoryID, rec.Command,
		rec.Address, rec.Address+rec.Length, rec.InitiatorID, rec.Delay,
		rec.Response)
}

// TraceError prints an error record.
func (t *LogTracer) TraceError(rec ErrorRecord) {
	t.logger.Printf("%s %s.%s error %s: %s",
		t.timeTeller.CurrentTime(), rec.Component, rec.Process, rec.Kind,
		rec.Message)
}
