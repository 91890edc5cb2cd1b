package tracing

// Tracer can collect the records emitted by the simulation components.
// Records arrive without a time stamp; tracers stamp them.
type Tracer interface {
	TraceTransaction(rec TransactionRecord)
	TraceSync(rec SyncRecord)
	TraceMemAccess(rec MemAccessRecord)
	TraceError(rec ErrorRecord)
}
