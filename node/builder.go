package node

import (
	"log"

	"github.com/sarchlab/propriosim/interconnect"
	"github.com/sarchlab/propriosim/notify"
	"github.com/sarchlab/propriosim/sim"
)

// Builder can build nodes.
type Builder struct {
	engine   sim.EventScheduler
	registry *notify.Registry
	id       uint32
	params   Params
	hooks    Hooks

	sensorSources    []ByteSource
	otherNodeSources []ByteSource
	extActionSinks   []ByteSink
}

// MakeBuilder returns a new Builder.
func MakeBuilder() Builder {
	return Builder{
		hooks: DefaultHooks(),
	}
}

// WithEngine sets the engine that drives the processes.
func (b Builder) WithEngine(engine sim.EventScheduler) Builder {
	b.engine = engine
	return b
}

// WithRegistry sets the registry the event set of the node is added to.
func (b Builder) WithRegistry(r *notify.Registry) Builder {
	b.registry = r
	return b
}

// WithID sets the numeric identifier of the node.
func (b Builder) WithID(id uint32) Builder {
	b.id = id
	return b
}

// WithParams sets the construction parameters.
func (b Builder) WithParams(p Params) Builder {
	b.params = p
	return b
}

// WithHooks sets all the pluggable logic at once. Nil hooks keep the
// defaults.
func (b Builder) WithHooks(h Hooks) Builder {
	b.hooks = h.withDefaults()
	return b
}

// WithEvaluator sets the evaluator of the LModel.
func (b Builder) WithEvaluator(e Evaluator) Builder {
	b.hooks.Evaluator = e
	return b
}

// WithDecider sets the decider of the SEE.
func (b Builder) WithDecider(d Decider) Builder {
	b.hooks.Decider = d
	return b
}

// WithExecutor sets the executor of the actuators and external actions.
func (b Builder) WithExecutor(e Executor) Builder {
	b.hooks.Executor = e
	return b
}

// WithReporter sets the reporter of the Monitor.
func (b Builder) WithReporter(r Reporter) Builder {
	b.hooks.Reporter = r
	return b
}

// WithGoalProvider sets the goal provider of the GVOC.
func (b Builder) WithGoalProvider(g GoalProvider) Builder {
	b.hooks.GoalProvider = g
	return b
}

// WithSensorSources sets the stimulus source of each sensor.
func (b Builder) WithSensorSources(sources ...ByteSource) Builder {
	b.sensorSources = sources
	return b
}

// WithOtherNodeSources sets the incoming queue of each other node.
func (b Builder) WithOtherNodeSources(sources ...ByteSource) Builder {
	b.otherNodeSources = sources
	return b
}

// WithExtActionSinks sets the outgoing queue of each external action.
func (b Builder) WithExtActionSinks(sinks ...ByteSink) Builder {
	b.extActionSinks = sinks
	return b
}

// Build creates a node and registers its event set. It panics if the engine
// is missing or the parameters are not valid.
func (b Builder) Build(name string) *Node {
	if b.engine == nil {
		log.Panicf("node %s has no engine", name)
	}

	p := b.params
	if err := p.Validate(); err != nil {
		log.Panicf("node %s: %v", name, err)
	}

	if b.registry == nil {
		b.registry = notify.NewRegistry()
	}

	hooks := b.hooks.withDefaults()

	n := &Node{
		ComponentBase: sim.NewComponentBase(name),
		id:            b.id,
		params:        p,
		events:        b.registry.Create(name, b.engine),
	}

	b.buildSensing(n)
	b.buildActing(n, hooks)
	b.buildBridges(n, hooks)

	n.heartbeat = newProcess("NODE", n, b.engine, p.Quantum)
	n.heartbeat.offset = OffsetHeartbeat
	n.heartbeat.body = n.beat

	return n
}

func (b Builder) buildSensing(n *Node) {
	p := n.params
	name := n.Name()

	n.SAE = newSAE(sim.BuildName(name, "SAE"), p)
	n.IC1 = interconnect.NewFanIn(sim.BuildName(name, "IC1"),
		p.NumIC1Initiators(), p.SAESize, n.SAE.WritePort())

	for i := 0; i < p.NumSensors; i++ {
		s := newSensor(sim.BuildNameWithIndex(name, "Sensor", i),
			SensorID+uint32(i), b.engine, p,
			sourceAt(b.sensorSources, i), n.IC1.Port(i))
		n.IC1.BindBackward(i, s)
		n.Sensors = append(n.Sensors, s)
	}

	for i := 0; i < p.NumOtherNodes; i++ {
		o := newOtherNode(sim.BuildNameWithIndex(name, "OtherNode", i),
			OtherNodeID+uint32(i), b.engine, p,
			sourceAt(b.otherNodeSources, i), n.IC1.Port(p.NumSensors+i))
		n.OtherNodes = append(n.OtherNodes, o)
	}
}

func (b Builder) buildActing(n *Node, hooks Hooks) {
	p := n.params
	name := n.Name()

	n.IC4 = interconnect.NewFanOut(sim.BuildName(name, "IC4"))

	for i := 0; i < p.NumActuators; i++ {
		a := newActuator(sim.BuildNameWithIndex(name, "Actuator", i),
			ActuatorID+uint32(i), p.ActuatorWriteLatency,
			p.ActuatorMemSize, p.BusWidth, hooks.Executor)
		n.IC4.AddTarget(a)
		n.Actuators = append(n.Actuators, a)
	}

	for i := 0; i < p.NumExtActions; i++ {
		var sink ByteSink
		if i < len(b.extActionSinks) {
			sink = b.extActionSinks[i]
		}

		e := newExtAction(sim.BuildNameWithIndex(name, "ExtAction", i),
			ExtActionID+uint32(i), p.ExtActionWriteLatency,
			p.ExtActionMemSize, p.BusWidth, hooks.Executor, sink)
		n.IC4.AddTarget(e)
		n.ExtActions = append(n.ExtActions, e)
	}
}

func (b Builder) buildBridges(n *Node, hooks Hooks) {
	p := n.params
	name := n.Name()

	n.SEE = newSEE(sim.BuildName(name, "SEE"), b.engine, p, n.IC4,
		n.events, hooks.Decider)

	n.LModel = newLModel(sim.BuildName(name, "LModel"), b.engine, p,
		n.events, hooks.Evaluator)
	n.LModel.sae = n.SAE.ReadPort()
	n.LModel.see = n.SEE.LModelPort()

	n.IC2 = interconnect.NewFanOut(sim.BuildName(name, "IC2"),
		n.LModel, n.SEE.ReportPort())
	n.Monitor = newMonitor(sim.BuildName(name, "Monitor"), b.engine, p,
		n.IC2, n.events, hooks.Reporter)

	n.IC3 = interconnect.NewFanOut(sim.BuildName(name, "IC3"),
		n.Monitor, n.SEE.GVOCPort())
	n.GVOC = newGVOC(sim.BuildName(name, "GVOC"), b.engine, p, n.IC3,
		hooks.GoalProvider)
}

func sourceAt(sources []ByteSource, i int) ByteSource {
	if i < len(sources) {
		return sources[i]
	}

	return nil
}
