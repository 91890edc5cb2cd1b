// Package tracing defines the observability records emitted by the
// simulation components and the tracers that consume them.
package tracing

import (
	"github.com/sarchlab/propriosim/sim"
	"github.com/sarchlab/propriosim/tlm"
)

// NamedHookable represent something both have a name and can be hooked
type NamedHookable interface {
	sim.Named
	sim.Hookable
	InvokeHook(sim.HookCtx)
}

// A list of hook poses for the hooks to apply to
var (
	HookPosTransaction = &sim.HookPos{Name: "HookPosTransaction"}
	HookPosSync        = &sim.HookPos{Name: "HookPosSync"}
	HookPosMemAccess   = &sim.HookPos{Name: "HookPosMemAccess"}
	HookPosError       = &sim.HookPos{Name: "HookPosError"}
)

// Phase tells which side of a call or a synchronization a record describes.
type Phase string

// Phases of transaction and sync records.
const (
	PhaseCall   Phase = "CALL"
	PhaseReturn Phase = "RETURN"
	PhaseNeed   Phase = "NEED"
)

// ErrorKind classifies the non-transaction errors.
type ErrorKind string

// Kinds of errors reported through ErrorRecord.
const (
	ErrorKindRouting         ErrorKind = "ROUTING"
	ErrorKindDataUnavailable ErrorKind = "DATA_UNAVAILABLE"
	ErrorKindSelfAccess      ErrorKind = "SELF_ACCESS"
	ErrorKindStimulus        ErrorKind = "STIMULUS"
)

// TransactionRecord describes a blocking transport call made by a process.
type TransactionRecord struct {
	Time          sim.VTime
	Component     string
	ComponentID   uint32
	Process       string
	Phase         Phase
	TargetID      uint32
	TransactionID string
	Delay         sim.VTime
	Success       bool
	Response      tlm.ResponseStatus
}

// SyncRecord describes a quantum synchronization of a process.
type SyncRecord struct {
	Time        sim.VTime
	Component   string
	ComponentID uint32
	Process     string
	Phase       Phase
	Delay       sim.VTime
}

// MemAccessRecord describes one transaction served by a memory block.
type MemAccessRecord struct {
	Time        sim.VTime
	Memory      string
	MemoryID    uint32
	Width       uint64
	InitiatorID uint32
	Command     tlm.Command
	Address     uint64
	Length      uint64
	Delay       sim.VTime
	Response    tlm.ResponseStatus
}

// ErrorRecord describes an error that does not travel on a transaction.
type ErrorRecord struct {
	Time      sim.VTime
	Component string
	Process   string
	Kind      ErrorKind
	Message   string
}

// TraceTransaction notifies the hooks of the domain about a transport call.
func TraceTransaction(domain NamedHookable, rec TransactionRecord) {
	rec.Component = domain.Name()

	domain.InvokeHook(sim.HookCtx{
		Domain: domain,
		Pos:    HookPosTransaction,
		Item:   rec,
	})
}

// TraceSync notifies the hooks of the domain about a quantum synchronization.
func TraceSync(domain NamedHookable, rec SyncRecord) {
	rec.Component = domain.Name()

	domain.InvokeHook(sim.HookCtx{
		Domain: domain,
		Pos:    HookPosSync,
		Item:   rec,
	})
}

// TraceMemAccess notifies the hooks of the domain about a memory access.
func TraceMemAccess(domain NamedHookable, rec MemAccessRecord) {
	rec.Memory = domain.Name()

	domain.InvokeHook(sim.HookCtx{
		Domain: domain,
		Pos:    HookPosMemAccess,
		Item:   rec,
	})
}

// TraceError notifies the hooks of the domain about an error.
func TraceError(
	domain NamedHookable,
	process string,
	kind ErrorKind,
	err error,
) {
	rec := ErrorRecord{
		Component: domain.Name(),
		Process:   process,
		Kind:      kind,
		Message:   err.Error(),
	}

	domain.InvokeHook(sim.HookCtx{
		Domain: domain,
		Pos:    HookPosError,
		Item:   rec,
		Detail: err,
	})
}
