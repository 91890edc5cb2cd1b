package node

import (
	"log"

	"github.com/sarchlab/propriosim/mem"
	"github.com/sarchlab/propriosim/sim"
	"github.com/sarchlab/propriosim/tlm"
)

// An Actuator executes every action written into its memory.
type Actuator struct {
	componentBase

	mem      *mem.Block
	executor Executor
	snapshot []byte

	numExecuted uint64
}

func newActuator(
	name string,
	id uint32,
	latency sim.VTime,
	size, width uint64,
	executor Executor,
) *Actuator {
	a := &Actuator{
		componentBase: newComponentBase(name, id),
		executor:      executor,
	}

	a.mem = mem.MakeBuilder().
		WithID(id).
		WithLatency(latency).
		WithCapacity(size).
		WithWidth(width).
		Build(sim.BuildName(name, "Mem"))

	return a
}

// Memory returns the memory the actions are written into.
func (a *Actuator) Memory() *mem.Block {
	return a.mem
}

// NumExecuted returns the number of actions executed.
func (a *Actuator) NumExecuted() uint64 {
	return a.numExecuted
}

// BTransport serves the action writes of the SEE and executes them.
func (a *Actuator) BTransport(txn *tlm.Transaction, delay sim.VTime) sim.VTime {
	_, ok := a.serve(txn, &delay)
	if ok {
		a.execute()
	}

	return delay
}

// serve runs the memory operation and leaves the written block in the
// snapshot buffer.
func (a *Actuator) serve(txn *tlm.Transaction, delay *sim.VTime) ([]byte, bool) {
	d, ok := a.mem.Operation(txn.InitiatorID, txn, *delay)
	*delay = d

	if !ok || txn.Command != tlm.CommandWrite {
		return nil, false
	}

	if uint64(cap(a.snapshot)) < txn.Length {
		a.snapshot = make([]byte, txn.Length)
	}

	a.snapshot = a.snapshot[:txn.Length]

	if err := a.mem.SelfRead(txn.Address, a.snapshot); err != nil {
		a.numErrors++
		return nil, false
	}

	return a.snapshot, true
}

func (a *Actuator) execute() {
	a.numExecuted++
	a.executor.ExecuteDecision(a.Name(), a.snapshot)
}

// An ExtAction executes the actions that leave the node. After executing one,
// it sends the first byte of the block to the peer node.
type ExtAction struct {
	Actuator

	sink ByteSink
}

func newExtAction(
	name string,
	id uint32,
	latency sim.VTime,
	size, width uint64,
	executor Executor,
	sink ByteSink,
) *ExtAction {
	return &ExtAction{
		Actuator: *newActuator(name, id, latency, size, width, executor),
		sink:     sink,
	}
}

// BTransport serves the action writes of the SEE, executes them, and sends
// them out.
func (e *ExtAction) BTransport(txn *tlm.Transaction, delay sim.VTime) sim.VTime {
	data, ok := e.serve(txn, &delay)
	if !ok {
		return delay
	}

	e.execute()
	e.send(data)

	return delay
}

func (e *ExtAction) send(data []byte) {
	if e.sink == nil || len(data) == 0 {
		return
	}

	if e.sink.NumFree() == 0 || !e.sink.Write(data[0]) {
		log.Printf("%s: no free slots in the outgoing queue", e.Name())
	}
}
