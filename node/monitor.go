package node

import (
	"log"

	"github.com/sarchlab/propriosim/interconnect"
	"github.com/sarchlab/propriosim/mem"
	"github.com/sarchlab/propriosim/notify"
	"github.com/sarchlab/propriosim/sim"
	"github.com/sarchlab/propriosim/tlm"
)

// Selectors of the IC2 router, which the Monitor reads the reports through.
const (
	IC2LModel = 0
	IC2SEE    = 1
)

// Monitor samples the reports of the LModel (E1) and of the SEE (E2) at the
// slow cadence. Its memory receives the GVOC monitor data.
type Monitor struct {
	componentBase

	lmodelReader *Process
	seeReader    *Process

	ic2      *interconnect.FanOut
	events   *notify.EventSet
	reporter Reporter

	mem          *mem.Block
	lmodelReport []byte
	seeReport    []byte
}

func newMonitor(
	name string,
	engine sim.EventScheduler,
	p Params,
	ic2 *interconnect.FanOut,
	events *notify.EventSet,
	reporter Reporter,
) *Monitor {
	m := &Monitor{
		componentBase: newComponentBase(name, MonitorID),
		ic2:           ic2,
		events:        events,
		reporter:      reporter,
		lmodelReport:  make([]byte, p.LModelReportLength),
		seeReport:     make([]byte, p.SEEReportLength),
	}

	m.mem = mem.MakeBuilder().
		WithID(MonitorID).
		WithLatency(p.MonitorLatency).
		WithCapacity(p.MonitorMemSize).
		WithWidth(p.BusWidth).
		Build(sim.BuildName(name, "Mem"))

	m.lmodelReader = newProcess("E1", m, engine, p.Quantum)
	m.lmodelReader.signal = events.LModelToMonitor
	m.lmodelReader.body = m.readLModel

	m.seeReader = newProcess("E2", m, engine, p.Quantum)
	m.seeReader.signal = events.SEEToMonitor
	m.seeReader.body = m.readSEE

	return m
}

// LModelProcess returns E1.
func (m *Monitor) LModelProcess() *Process {
	return m.lmodelReader
}

// SEEProcess returns E2.
func (m *Monitor) SEEProcess() *Process {
	return m.seeReader
}

// Memory returns the memory holding the GVOC monitor data.
func (m *Monitor) Memory() *mem.Block {
	return m.mem
}

// BTransport serves the writes of the GVOC.
func (m *Monitor) BTransport(txn *tlm.Transaction, delay sim.VTime) sim.VTime {
	delay, _ = m.mem.Operation(txn.InitiatorID, txn, delay)
	return delay
}

func (m *Monitor) readLModel() {
	m.read(m.lmodelReader, IC2LModel, LModelID, "LMODEL", m.lmodelReport)
	m.events.MonitorEv.Notify()
}

func (m *Monitor) readSEE() {
	m.read(m.seeReader, IC2SEE, SEEID, "SEE", m.seeReport)
}

func (m *Monitor) read(
	proc *Process,
	selector int,
	targetID uint32,
	source string,
	buf []byte,
) {
	txn := tlm.NewReadTransaction(0, buf)

	ok, err := proc.route(m.ic2, selector, targetID, txn)
	if ok {
		m.reporter.Display(source, buf)
	} else if err == nil {
		log.Printf("%s.%s: read of %s report failed: %s",
			m.Name(), proc.name, source, txn.Response)
	}

	clear(buf)
}
