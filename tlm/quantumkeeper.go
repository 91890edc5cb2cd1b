package tlm

import (
	"errors"
	"fmt"

	"github.com/sarchlab/propriosim/sim"
)

var (
	// ErrUnneededSync is returned when Sync is called before the local time
	// reaches the global quantum.
	ErrUnneededSync = errors.New("tlm: sync requested before the quantum is used up")

	// ErrTimeReversal is returned when Set would move local time backwards.
	ErrTimeReversal = errors.New("tlm: local time cannot decrease within a quantum")
)

// A QuantumKeeper tracks how far one process has run ahead of the global
// simulation time. It is owned by exactly one process.
type QuantumKeeper struct {
	globalQuantum sim.VTime
	localTime     sim.VTime
}

// NewQuantumKeeper creates a quantum keeper with the given global quantum and
// zero local time.
func NewQuantumKeeper(globalQuantum sim.VTime) *QuantumKeeper {
	return &QuantumKeeper{globalQuantum: globalQuantum}
}

// SetGlobalQuantum changes the quantum ceiling.
func (q *QuantumKeeper) SetGlobalQuantum(t sim.VTime) {
	q.globalQuantum = t
}

// GlobalQuantum returns the quantum ceiling.
func (q *QuantumKeeper) GlobalQuantum() sim.VTime {
	return q.globalQuantum
}

// Reset sets the local time to zero.
func (q *QuantumKeeper) Reset() {
	q.localTime = 0
}

// LocalTime returns the time consumed since the last synchronization. It is
// the delay to annotate the next transaction with.
func (q *QuantumKeeper) LocalTime() sim.VTime {
	return q.localTime
}

// CurrentTime returns the process's view of time given the global time.
func (q *QuantumKeeper) CurrentTime(now sim.VTime) sim.VTime {
	return now + q.localTime
}

// Inc adds consumed time to the local time.
func (q *QuantumKeeper) Inc(d sim.VTime) {
	q.localTime += d
}

// Set stores the delay returned by a transport call that was annotated with
// LocalTime.
func (q *QuantumKeeper) Set(t sim.VTime) error {
	if t < q.localTime {
		return fmt.Errorf("%w: %s < %s", ErrTimeReversal, t, q.localTime)
	}

	q.localTime = t

	return nil
}

// NeedSync tells if the local time has reached the global quantum.
func (q *QuantumKeeper) NeedSync() bool {
	return q.localTime >= q.globalQuantum
}

// Sync returns how long the process must suspend so that global time catches
// up with its local time, and resets the local time. The process resumes
// after waiting for the returned duration.
func (q *QuantumKeeper) Sync() (sim.VTime, error) {
	if !q.NeedSync() {
		return 0, ErrUnneededSync
	}

	wait := q.localTime
	q.localTime = 0

	return wait, nil
}
