package node

import (
	"log"

	"github.com/sarchlab/propriosim/interconnect"
	"github.com/sarchlab/propriosim/sim"
	"github.com/sarchlab/propriosim/tlm"
)

// Selectors of the IC3 router, which carries the GVOC data.
const (
	IC3Monitor = 0
	IC3SEE     = 1
)

// GVOC supplies the goals, values, objectives and constraints. One process
// feeds the Monitor memory and another the GVOC memory of the SEE.
type GVOC struct {
	componentBase

	toMonitor *Process
	toSEE     *Process
	ic3       *interconnect.FanOut
	goals     GoalProvider

	monitorCursor *AddressCursor
	seeCursor     *AddressCursor
	monitorData   []byte
	seeData       []byte
}

func newGVOC(
	name string,
	engine sim.EventScheduler,
	p Params,
	ic3 *interconnect.FanOut,
	goals GoalProvider,
) *GVOC {
	g := &GVOC{
		componentBase: newComponentBase(name, GVOCID),
		ic3:           ic3,
		goals:         goals,
		monitorCursor: NewAddressCursor(
			p.GVOCMonitorDataLength, p.GVOCMonitorDatasets),
		seeCursor:   NewAddressCursor(p.GVOCSEEDataLength, p.GVOCSEEDatasets),
		monitorData: make([]byte, p.GVOCMonitorDataLength),
		seeData:     make([]byte, p.GVOCSEEDataLength),
	}

	g.toMonitor = newProcess("A1", g, engine, p.Quantum)
	g.toMonitor.offset = OffsetGVOCMonitor
	g.toMonitor.body = func() {
		g.feed(g.toMonitor, "MONITOR", IC3Monitor, MonitorID,
			g.monitorCursor, g.monitorData)
	}
	g.toMonitor.onSync = g.monitorCursor.Reset

	g.toSEE = newProcess("A2", g, engine, p.Quantum)
	g.toSEE.offset = OffsetGVOCSEE
	g.toSEE.body = func() {
		g.feed(g.toSEE, "SEE", IC3SEE, SEEID, g.seeCursor, g.seeData)
	}
	g.toSEE.onSync = g.seeCursor.Reset

	return g
}

// MonitorProcess returns the process that feeds the Monitor.
func (g *GVOC) MonitorProcess() *Process {
	return g.toMonitor
}

// SEEProcess returns the process that feeds the SEE.
func (g *GVOC) SEEProcess() *Process {
	return g.toSEE
}

func (g *GVOC) feed(
	proc *Process,
	target string,
	selector int,
	targetID uint32,
	cursor *AddressCursor,
	buf []byte,
) {
	clear(buf)
	g.goals.PrepareGoals(target, buf)

	txn := tlm.NewWriteTransaction(cursor.Addr(), buf)

	ok, err := proc.route(g.ic3, selector, targetID, txn)
	if err == nil && !ok {
		log.Printf("%s.%s: write to %s at %d failed: %s",
			g.Name(), proc.name, target, txn.Address, txn.Response)
	}

	cursor.Advance()
}
