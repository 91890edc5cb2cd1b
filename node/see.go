package node

import (
	"log"

	"github.com/sarchlab/propriosim/interconnect"
	"github.com/sarchlab/propriosim/mem"
	"github.com/sarchlab/propriosim/notify"
	"github.com/sarchlab/propriosim/sim"
	"github.com/sarchlab/propriosim/tlm"
)

// SEE decides the actions. Its process D wakes up after the LModel wrote a
// result, combines it with the GVOC data, and dispatches the decision to an
// actuator or an external action through IC4.
type SEE struct {
	componentBase

	proc *Process

	ic4       *interconnect.FanOut
	targetIDs []uint32
	events    *notify.EventSet
	decider   Decider
	trigger   Trigger

	lmodelMem *mem.Block
	gvocMem   *mem.Block
	reportMem *mem.Block
	status    ReportStatus

	cursor     *AddressCursor
	lmodelData []byte
	gvocData   []byte
	action     []byte
	report     []byte
}

func newSEE(
	name string,
	engine sim.EventScheduler,
	p Params,
	ic4 *interconnect.FanOut,
	events *notify.EventSet,
	decider Decider,
) *SEE {
	s := &SEE{
		componentBase: newComponentBase(name, SEEID),
		ic4:           ic4,
		events:        events,
		decider:       decider,
		trigger:       Trigger{Interval: p.TriggerInterval},
		status:        StatusWrite,
		cursor:        NewAddressCursor(p.ActionDataLength, p.ActionDatasets),
		lmodelData:    make([]byte, p.SEELModelMemSize),
		gvocData:      make([]byte, p.SEEGVOCMemSize),
		action:        make([]byte, p.ActionDataLength),
		report:        make([]byte, p.SEEReportLength),
	}

	s.lmodelMem = mem.MakeBuilder().
		WithID(SEEID).
		WithWriteLatency(p.SEELModelWriteLatency).
		WithReadLatency(p.SEEReportReadLatency).
		WithCapacity(p.SEELModelMemSize).
		WithWidth(p.BusWidth).
		Build(sim.BuildName(name, "LModelMem"))
	s.gvocMem = mem.MakeBuilder().
		WithID(SEEID).
		WithWriteLatency(p.SEEGVOCWriteLatency).
		WithReadLatency(p.SEEReportReadLatency).
		WithCapacity(p.SEEGVOCMemSize).
		WithWidth(p.BusWidth).
		Build(sim.BuildName(name, "GVOCMem"))
	s.reportMem = mem.MakeBuilder().
		WithID(SEEID).
		WithLatency(p.SEEReportReadLatency).
		WithCapacity(p.SEEReportMemSize).
		WithWidth(p.BusWidth).
		Build(sim.BuildName(name, "ReportMem"))

	for i := 0; i < p.NumActuators; i++ {
		s.targetIDs = append(s.targetIDs, ActuatorID+uint32(i))
	}

	for i := 0; i < p.NumExtActions; i++ {
		s.targetIDs = append(s.targetIDs, ExtActionID+uint32(i))
	}

	s.proc = newProcess("D", s, engine, p.Quantum)
	s.proc.signal = events.LModelToSEE
	s.proc.body = s.decide
	s.proc.onSync = s.cursor.Reset

	return s
}

// Process returns D.
func (s *SEE) Process() *Process {
	return s.proc
}

// Status returns the outcome of the latest dispatch.
func (s *SEE) Status() ReportStatus {
	return s.status
}

// Memories returns the LModel, GVOC and report memories.
func (s *SEE) Memories() []*mem.Block {
	return []*mem.Block{s.lmodelMem, s.gvocMem, s.reportMem}
}

// LModelPort returns the port the LModel writes its result through.
func (s *SEE) LModelPort() tlm.Target {
	return s.portOf(s.lmodelMem)
}

// GVOCPort returns the port the GVOC writes its data through.
func (s *SEE) GVOCPort() tlm.Target {
	return s.portOf(s.gvocMem)
}

// ReportPort returns the port the Monitor reads the report through.
func (s *SEE) ReportPort() tlm.Target {
	return s.portOf(s.reportMem)
}

func (s *SEE) portOf(m *mem.Block) tlm.Target {
	return tlm.TargetFunc(func(txn *tlm.Transaction, delay sim.VTime) sim.VTime {
		delay, _ = m.Operation(txn.InitiatorID, txn, delay)
		return delay
	})
}

func (s *SEE) decide() {
	s.readOwn(s.lmodelMem, s.lmodelData)
	s.readOwn(s.gvocMem, s.gvocData)

	dec := s.decider.DecideAction(s.lmodelData, s.gvocData)

	clear(s.action)
	copy(s.action, dec.Data)

	clear(s.report)
	copy(s.report, s.action)

	if err := s.reportMem.SelfWrite(0, s.report); err != nil {
		s.numErrors++
	}

	s.dispatch(dec.Target)
	s.cursor.Advance()

	if s.trigger.IsSlow(s.proc.Cycles()) {
		s.events.SEEToMonitor.Notify()
	}
}

func (s *SEE) readOwn(m *mem.Block, buf []byte) {
	if err := m.SelfRead(0, buf); err != nil {
		s.numErrors++
		clear(buf)
	}
}

func (s *SEE) dispatch(selector int) {
	var targetID uint32
	if selector >= 0 && selector < len(s.targetIDs) {
		targetID = s.targetIDs[selector]
	}

	txn := tlm.NewWriteTransaction(s.cursor.Addr(), s.action)

	ok, err := s.proc.route(s.ic4, selector, targetID, txn)
	if ok {
		s.status = StatusWrite
		return
	}

	s.status = StatusActionFailed
	s.numErrors++

	if err == nil {
		log.Printf("%s.%s: dispatch to target %d failed: %s",
			s.Name(), s.proc.name, selector, txn.Response)
	}
}
