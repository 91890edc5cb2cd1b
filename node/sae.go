package node

import (
	"log"

	"github.com/sarchlab/propriosim/mem"
	"github.com/sarchlab/propriosim/sim"
	"github.com/sarchlab/propriosim/tlm"
)

// SAE is the sensed-data memory. Sensors and other nodes write it through
// IC1, and only the LModel reads it.
type SAE struct {
	componentBase

	mem *mem.Block
}

func newSAE(name string, p Params) *SAE {
	s := &SAE{
		componentBase: newComponentBase(name, SAEID),
	}

	s.mem = mem.MakeBuilder().
		WithID(SAEID).
		WithReadLatency(p.SAEReadLatency).
		WithWriteLatency(p.SAEWriteLatency).
		WithCapacity(p.SAESize).
		WithWidth(p.BusWidth).
		Build(sim.BuildName(name, "Mem"))

	return s
}

// Memory returns the memory block of the SAE.
func (s *SAE) Memory() *mem.Block {
	return s.mem
}

// WritePort returns the write-only port bound to IC1.
func (s *SAE) WritePort() tlm.Target {
	return tlm.TargetFunc(s.serveWrite)
}

// ReadPort returns the port the LModel reads through.
func (s *SAE) ReadPort() tlm.Target {
	return tlm.TargetFunc(s.serveRead)
}

func (s *SAE) serveWrite(txn *tlm.Transaction, delay sim.VTime) sim.VTime {
	if txn.Command != tlm.CommandWrite {
		txn.Response = tlm.ResponseCommandError
		log.Printf("%s: %s rejected on the write port", s.Name(), txn.Command)

		return delay
	}

	delay, _ = s.mem.Operation(txn.InitiatorID, txn, delay)

	return delay
}

func (s *SAE) serveRead(txn *tlm.Transaction, delay sim.VTime) sim.VTime {
	delay, _ = s.mem.Operation(txn.InitiatorID, txn, delay)
	return delay
}
