package interconnect

import (
	"errors"
	"fmt"
	"log"

	"github.com/sarchlab/propriosim/sim"
	"github.com/sarchlab/propriosim/tlm"
	"github.com/sarchlab/propriosim/tracing"
)

// ErrUnknownTarget is returned when a selector does not name a target.
var ErrUnknownTarget = errors.New("unknown target")

// FanOut forwards the transactions of one initiator to one of several
// targets, chosen by the selector passed with each call.
type FanOut struct {
	*sim.ComponentBase

	targets []tlm.Target
}

// NewFanOut creates a FanOut router.
func NewFanOut(name string, targets ...tlm.Target) *FanOut {
	return &FanOut{
		ComponentBase: sim.NewComponentBase(name),
		targets:       targets,
	}
}

// AddTarget appends a target and returns its selector.
func (f *FanOut) AddTarget(t tlm.Target) int {
	f.targets = append(f.targets, t)
	return len(f.targets) - 1
}

// NumTargets returns the number of targets.
func (f *FanOut) NumTargets() int {
	return len(f.targets)
}

// Transport forwards the transaction to the target named by the selector. An
// unknown selector marks the transaction with a generic error and forwards
// nothing.
func (f *FanOut) Transport(
	selector int,
	txn *tlm.Transaction,
	delay sim.VTime,
) (sim.VTime, error) {
	if selector < 0 || selector >= len(f.targets) {
		err := fmt.Errorf("%w: %s has no target %d",
			ErrUnknownTarget, f.Name(), selector)

		txn.Response = tlm.ResponseGenericError

		log.Printf("%v", err)
		tracing.TraceError(f, "", tracing.ErrorKindRouting, err)

		return delay, err
	}

	return f.targets[selector].BTransport(txn, delay), nil
}
