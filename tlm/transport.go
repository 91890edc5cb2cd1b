package tlm

import "github.com/sarchlab/propriosim/sim"

// A Target serves blocking transport calls. The delay is the initiator's
// local time offset when the call is made; the returned delay includes the
// time the target consumed.
type Target interface {
	BTransport(txn *Transaction, delay sim.VTime) sim.VTime
}

// A BackwardTarget is notified when a memory range it may have cached direct
// access to becomes invalid.
type BackwardTarget interface {
	InvalidateDirectMemPtr(start, end uint64)
}

// A Router forwards a transaction to one of several targets. The selector
// travels with the call.
type Router interface {
	Transport(selector int, txn *Transaction, delay sim.VTime) (sim.VTime, error)
}

// TargetFunc turns a function into a Target.
type TargetFunc func(txn *Transaction, delay sim.VTime) sim.VTime

// BTransport calls the function.
func (f TargetFunc) BTransport(txn *Transaction, delay sim.VTime) sim.VTime {
	return f(txn, delay)
}
