package node

import (
	"log"

	"github.com/sarchlab/propriosim/interconnect"
	"github.com/sarchlab/propriosim/notify"
	"github.com/sarchlab/propriosim/sim"
	"github.com/sarchlab/propriosim/tracing"
)

// Node is an assembled proprioceptive node.
type Node struct {
	*sim.ComponentBase

	id        uint32
	params    Params
	events    *notify.EventSet
	heartbeat *Process

	GVOC       *GVOC
	Sensors    []*Sensor
	OtherNodes []*OtherNode
	SAE        *SAE
	LModel     *LModel
	Monitor    *Monitor
	SEE        *SEE
	Actuators  []*Actuator
	ExtActions []*ExtAction

	IC1 *interconnect.FanIn
	IC2 *interconnect.FanOut
	IC3 *interconnect.FanOut
	IC4 *interconnect.FanOut
}

// ID returns the numeric identifier of the node.
func (n *Node) ID() uint32 {
	return n.id
}

// Params returns the parameters the node was built with.
func (n *Node) Params() Params {
	return n.params
}

// Events returns the event set of the node.
func (n *Node) Events() *notify.EventSet {
	return n.events
}

// Heartbeat returns the process that advances the node one quantum per cycle.
func (n *Node) Heartbeat() *Process {
	return n.heartbeat
}

// Processes returns every process of the node in start order.
func (n *Node) Processes() []*Process {
	procs := []*Process{n.GVOC.toMonitor, n.GVOC.toSEE}

	for _, s := range n.Sensors {
		procs = append(procs, s.proc)
	}

	for _, o := range n.OtherNodes {
		procs = append(procs, o.proc)
	}

	procs = append(procs,
		n.LModel.reader,
		n.LModel.writer,
		n.Monitor.lmodelReader,
		n.Monitor.seeReader,
		n.SEE.proc,
		n.heartbeat,
	)

	return procs
}

// Start schedules the first resumption of every process.
func (n *Node) Start() {
	for _, p := range n.Processes() {
		p.start()
	}
}

// Components returns every hookable element of the node, memories and
// routers included.
func (n *Node) Components() []tracing.NamedHookable {
	comps := []tracing.NamedHookable{n, n.GVOC}

	for _, s := range n.Sensors {
		comps = append(comps, s)
	}

	for _, o := range n.OtherNodes {
		comps = append(comps, o)
	}

	comps = append(comps,
		n.IC1, n.SAE, n.SAE.mem,
		n.LModel, n.LModel.report,
		n.Monitor, n.Monitor.mem,
		n.SEE, n.SEE.lmodelMem, n.SEE.gvocMem, n.SEE.reportMem,
		n.IC2, n.IC3, n.IC4,
	)

	for _, a := range n.Actuators {
		comps = append(comps, a, a.mem)
	}

	for _, e := range n.ExtActions {
		comps = append(comps, e, e.mem)
	}

	return comps
}

// AcceptHookOnAll attaches the hook to every component of the node.
func (n *Node) AcceptHookOnAll(hook sim.Hook) {
	for _, c := range n.Components() {
		c.AcceptHook(hook)
	}
}

func (n *Node) beat() {
	if err := n.heartbeat.qk.Set(n.params.Quantum); err != nil {
		log.Printf("%s: %v", n.Name(), err)
	}
}
