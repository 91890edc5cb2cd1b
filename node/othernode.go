package node

import (
	"log"

	"github.com/sarchlab/propriosim/sim"
	"github.com/sarchlab/propriosim/tlm"
)

// An OtherNode relays the values received from a peer node into its region
// of the SAE memory, one value per cycle.
type OtherNode struct {
	componentBase

	proc   *Process
	queue  ByteSource
	port   tlm.Target
	cursor *AddressCursor
	data   []byte
}

func newOtherNode(
	name string,
	id uint32,
	engine sim.EventScheduler,
	p Params,
	queue ByteSource,
	port tlm.Target,
) *OtherNode {
	n := &OtherNode{
		componentBase: newComponentBase(name, id),
		queue:         queue,
		port:          port,
		cursor:        NewAddressCursor(p.SensorDataLength, p.SensorDatasets),
		data:          make([]byte, p.SensorDataLength),
	}

	n.proc = newProcess("B", n, engine, p.Quantum)
	n.proc.offset = OffsetOtherNode
	n.proc.body = n.cycle
	n.proc.onSync = n.cursor.Reset

	return n
}

// Process returns the relaying process.
func (n *OtherNode) Process() *Process {
	return n.proc
}

func (n *OtherNode) cycle() {
	if n.queue == nil || n.queue.NumAvailable() == 0 {
		reportUnavailable(n, n.proc.name)
	} else if v, ok := n.queue.Read(); ok && len(n.data) > 0 {
		n.data[0] = v
	}

	txn := tlm.NewWriteTransaction(n.cursor.Addr(), n.data)
	if !n.proc.transport(SAEID, txn, n.port) {
		log.Printf("%s: write to SAE at %d failed: %s",
			n.Name(), txn.Address, txn.Response)
	}

	n.cursor.Advance()
	clear(n.data)
}
