package node

import (
	"log"

	"github.com/sarchlab/propriosim/mem"
	"github.com/sarchlab/propriosim/notify"
	"github.com/sarchlab/propriosim/sim"
	"github.com/sarchlab/propriosim/tlm"
)

// LModel evaluates the sensed data. C1 reads the SAE, evaluates what it read
// and stores a report; C2 forwards the evaluation result to the SEE.
type LModel struct {
	componentBase

	reader *Process
	writer *Process

	sae       tlm.Target
	see       tlm.Target
	events    *notify.EventSet
	evaluator Evaluator
	trigger   Trigger

	report *mem.Block
	status ReportStatus

	cursor     *AddressCursor
	sensed     []byte
	reportData []byte
	result     []byte
}

func newLModel(
	name string,
	engine sim.EventScheduler,
	p Params,
	events *notify.EventSet,
	evaluator Evaluator,
) *LModel {
	l := &LModel{
		componentBase: newComponentBase(name, LModelID),
		events:        events,
		evaluator:     evaluator,
		trigger:       Trigger{Interval: p.TriggerInterval},
		status:        StatusRead,
		cursor: NewAddressCursor(p.SensorDataLength,
			p.SensorDatasets*p.NumIC1Initiators()),
		sensed:     make([]byte, p.SensorDataLength),
		reportData: make([]byte, p.LModelReportLength),
		result:     make([]byte, p.LModelResultLength),
	}

	l.report = mem.MakeBuilder().
		WithID(LModelID).
		WithLatency(p.LModelReadLatency).
		WithCapacity(p.LModelReportSize).
		WithWidth(p.BusWidth).
		Build(sim.BuildName(name, "Report"))

	l.reader = newProcess("C1", l, engine, p.Quantum)
	l.reader.offset = OffsetLModel
	l.reader.body = l.evaluate
	l.reader.onSync = l.cursor.Reset

	l.writer = newProcess("C2", l, engine, p.Quantum)
	l.writer.signal = events.MonitorEv
	l.writer.body = l.forward

	return l
}

// ReaderProcess returns C1.
func (l *LModel) ReaderProcess() *Process {
	return l.reader
}

// WriterProcess returns C2.
func (l *LModel) WriterProcess() *Process {
	return l.writer
}

// Status returns the latest report status.
func (l *LModel) Status() ReportStatus {
	return l.status
}

// Cursor returns the SAE address cursor of C1.
func (l *LModel) Cursor() *AddressCursor {
	return l.cursor
}

// ReportMemory returns the memory holding the latest report.
func (l *LModel) ReportMemory() *mem.Block {
	return l.report
}

// BTransport serves the reads of the report memory.
func (l *LModel) BTransport(txn *tlm.Transaction, delay sim.VTime) sim.VTime {
	delay, _ = l.report.Operation(txn.InitiatorID, txn, delay)
	return delay
}

func (l *LModel) evaluate() {
	clear(l.sensed)

	txn := tlm.NewReadTransaction(l.cursor.Addr(), l.sensed)
	if l.reader.transport(SAEID, txn, l.sae) {
		l.status = StatusRead
	} else {
		l.status = StatusActionFailed
		log.Printf("%s.%s: read of SAE at %d failed: %s",
			l.Name(), l.reader.name, txn.Address, txn.Response)
	}

	l.status = l.evaluator.EvaluateSensedData(l.sensed, l.status)
	l.writeReport()

	l.cursor.Advance()

	if l.trigger.IsSlow(l.reader.Cycles()) {
		l.events.LModelToMonitor.Notify()
	} else {
		l.events.MonitorEv.Notify()
	}
}

func (l *LModel) writeReport() {
	clear(l.reportData)

	if len(l.reportData) > 0 {
		l.reportData[0] = PositiveReport
		if l.status == StatusActionNeeded {
			l.reportData[0] = NegativeReport
		}
	}

	if err := l.report.SelfWrite(0, l.reportData); err != nil {
		l.numErrors++
	}
}

func (l *LModel) forward() {
	clear(l.result)

	if l.status == StatusActionNeeded {
		l.evaluator.Result(l.result)
	}

	txn := tlm.NewWriteTransaction(0, l.result)
	if !l.writer.transport(SEEID, txn, l.see) {
		log.Printf("%s.%s: write to SEE failed: %s",
			l.Name(), l.writer.name, txn.Response)
	}

	l.events.LModelToSEE.Notify()
}
