package node

import (
	"log"

	"github.com/sarchlab/propriosim/notify"
	"github.com/sarchlab/propriosim/sim"
	"github.com/sarchlab/propriosim/tlm"
	"github.com/sarchlab/propriosim/tracing"
)

type owner interface {
	tracing.NamedHookable
	ID() uint32
}

type processPhase int

const (
	phaseIdle processPhase = iota
	phaseWaiting
	phaseYielding
	phaseSyncing
)

func (p processPhase) String() string {
	switch p {
	case phaseIdle:
		return "idle"
	case phaseWaiting:
		return "waiting"
	case phaseYielding:
		return "yielding"
	case phaseSyncing:
		return "syncing"
	default:
		return "unknown"
	}
}

type resumeEvent struct {
	*sim.EventBase
}

// A Process is a resumable state machine. Each cycle runs the body between
// two suspension points: an optional wait on a signal before the cycle, and a
// zero-time yield after it. After the yield, the process synchronizes with
// global time if its quantum keeper asks for it.
type Process struct {
	name   string
	owner  owner
	engine sim.EventScheduler
	qk     *tlm.QuantumKeeper

	signal *notify.Signal
	offset sim.VTime
	body   func()
	onSync func()

	phase         processPhase
	cycles        uint64
	progressed    bool
	stallReported bool
}

func newProcess(
	name string,
	o owner,
	engine sim.EventScheduler,
	quantum sim.VTime,
) *Process {
	return &Process{
		name:   name,
		owner:  o,
		engine: engine,
		qk:     tlm.NewQuantumKeeper(quantum),
		onSync: func() {},
	}
}

// Name returns the process name.
func (p *Process) Name() string {
	return p.name
}

// Cycles returns the number of cycles the process has run.
func (p *Process) Cycles() uint64 {
	return p.cycles
}

// LocalTime returns how far the process has run ahead of global time.
func (p *Process) LocalTime() sim.VTime {
	return p.qk.LocalTime()
}

func (p *Process) start() {
	p.phase = phaseIdle
	p.resumeAt(p.engine.CurrentTime() + p.offset)
}

func (p *Process) schedule(t sim.VTime) {
	p.engine.Schedule(resumeEvent{sim.NewEventBase(t, p)})
}

// resumeAt schedules the end of a suspension. A free-running process resumes
// after the signal-driven processes of the same instant, so that those are
// waiting again before it notifies them.
func (p *Process) resumeAt(t sim.VTime) {
	if p.signal != nil {
		p.schedule(t)
		return
	}

	p.engine.Schedule(resumeEvent{sim.NewSecondaryEventBase(t, p)})
}

func (p *Process) Handle(_ sim.Event) error {
	switch p.phase {
	case phaseIdle:
		p.begin()
	case phaseWaiting:
		p.runCycle()
	case phaseYielding:
		p.afterYield()
	case phaseSyncing:
		p.afterSync()
	}

	return nil
}

func (p *Process) begin() {
	if p.signal == nil {
		p.runCycle()
		return
	}

	p.phase = phaseWaiting
	p.signal.Wait(p)
}

func (p *Process) runCycle() {
	p.cycles++

	before := p.qk.LocalTime()
	p.body()
	p.progressed = p.qk.LocalTime() != before

	p.phase = phaseYielding
	p.resumeAt(p.engine.CurrentTime())
}

func (p *Process) afterYield() {
	if p.signal == nil && !p.progressed && !p.qk.NeedSync() {
		p.forceSync()
	}

	if !p.qk.NeedSync() {
		p.begin()
		return
	}

	p.traceSync(tracing.PhaseNeed, p.qk.LocalTime())

	wait, err := p.qk.Sync()
	if err != nil {
		log.Panicf("%s.%s: %v", p.owner.Name(), p.name, err)
	}

	p.onSync()

	p.phase = phaseSyncing
	p.resumeAt(p.engine.CurrentTime() + wait)
}

// forceSync keeps a free-running process from spinning at one instant when
// its cycle did not consume any time.
func (p *Process) forceSync() {
	if !p.stallReported {
		log.Printf("%s.%s consumed no time in cycle %d, synchronizing",
			p.owner.Name(), p.name, p.cycles)

		p.stallReported = true
	}

	p.qk.Inc(p.qk.GlobalQuantum() - p.qk.LocalTime())
}

func (p *Process) afterSync() {
	p.traceSync(tracing.PhaseReturn, p.qk.LocalTime())
	p.begin()
}

func (p *Process) traceSync(phase tracing.Phase, delay sim.VTime) {
	tracing.TraceSync(p.owner, tracing.SyncRecord{
		ComponentID: p.owner.ID(),
		Process:     p.name,
		Phase:       phase,
		Delay:       delay,
	})
}

// transport issues a blocking transport call annotated with the local time of
// the process and commits the returned delay.
func (p *Process) transport(
	targetID uint32,
	txn *tlm.Transaction,
	target tlm.Target,
) bool {
	p.call(targetID, txn, func(d sim.VTime) (sim.VTime, error) {
		return target.BTransport(txn, d), nil
	})

	return txn.IsResponseOK()
}

// route issues a transport call through a fan-out router.
func (p *Process) route(
	router tlm.Router,
	selector int,
	targetID uint32,
	txn *tlm.Transaction,
) (bool, error) {
	err := p.call(targetID, txn, func(d sim.VTime) (sim.VTime, error) {
		return router.Transport(selector, txn, d)
	})

	return txn.IsResponseOK(), err
}

func (p *Process) call(
	targetID uint32,
	txn *tlm.Transaction,
	send func(sim.VTime) (sim.VTime, error),
) error {
	txn.InitiatorID = p.owner.ID()
	delay := p.qk.LocalTime()

	p.traceTransaction(tracing.PhaseCall, targetID, txn, delay)

	delay, err := send(delay)

	if setErr := p.qk.Set(delay); setErr != nil {
		log.Printf("%s.%s: %v", p.owner.Name(), p.name, setErr)
	}

	p.traceTransaction(tracing.PhaseReturn, targetID, txn, p.qk.LocalTime())

	return err
}

func (p *Process) traceTransaction(
	phase tracing.Phase,
	targetID uint32,
	txn *tlm.Transaction,
	delay sim.VTime,
) {
	tracing.TraceTransaction(p.owner, tracing.TransactionRecord{
		ComponentID:   p.owner.ID(),
		Process:       p.name,
		Phase:         phase,
		TargetID:      targetID,
		TransactionID: txn.ID,
		Delay:         delay,
		Success:       txn.IsResponseOK(),
		Response:      txn.Response,
	})
}
