package config

import (
	"github.com/pkg/errors"

	"github.com/sarchlab/propriosim/node"
	"github.com/sarchlab/propriosim/sim"
	"github.com/sarchlab/propriosim/simulation"
	"github.com/sarchlab/propriosim/stimulus"
)

// StimulusName is the name of the feeder created by Assemble.
const StimulusName = "Stimulus"

// An Assembly is a simulation populated from a configuration.
type Assembly struct {
	Simulation *simulation.Simulation
	Nodes      []*node.Node
	Feeder     *stimulus.Feeder
	Queues     map[string]*stimulus.FIFO
	Until      sim.VTime
}

// Queue returns the FIFO with the given name, or nil.
func (a *Assembly) Queue(name string) *stimulus.FIFO {
	return a.Queues[name]
}

// Run starts the nodes and the feeder and runs until the stimulus is
// exhausted, the time limit is reached, or the simulation deadlocks.
func (a *Assembly) Run() error {
	a.Simulation.Start()

	if a.Until > 0 {
		return a.Simulation.RunUntil(a.Until)
	}

	return a.Simulation.Run()
}

// Assemble builds the nodes, their queues, the links between them, and the
// stimulus feeder, and registers everything with the simulation. All nodes
// share the hooks.
func (c *Config) Assemble(
	s *simulation.Simulation,
	hooks node.Hooks,
) (*Assembly, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	values, err := c.stimulusValues()
	if err != nil {
		return nil, err
	}

	a := &Assembly{
		Simulation: s,
		Queues:     make(map[string]*stimulus.FIFO),
	}
	a.Until, _ = c.UntilTime()

	c.buildLinks(a)

	var sensorQueues []stimulus.Channel

	for i, nc := range c.Nodes {
		p, err := c.Derive(nc)
		if err != nil {
			return nil, errors.Wrap(err, nc.Name)
		}

		n, sensors := c.buildNode(a, s, nc, uint32(i), p, hooks)
		sensorQueues = append(sensorQueues, sensors...)

		s.RegisterNode(n)
		a.Nodes = append(a.Nodes, n)
	}

	if len(values) > 0 {
		q, _ := c.QuantumTime()

		a.Feeder = stimulus.MakeBuilder().
			WithEngine(s.GetEngine()).
			WithQuantum(q).
			WithValues(values).
			WithChannels(sensorQueues...).
			Build(StimulusName)

		s.RegisterFeeder(a.Feeder)
	}

	return a, nil
}

func (c *Config) stimulusValues() ([]byte, error) {
	if c.Stimulus.File != "" {
		format, err := stimulus.ParseFormat(c.Stimulus.Format)
		if err != nil {
			return nil, err
		}

		return stimulus.LoadFile(c.StimulusPath(), format)
	}

	values := make([]byte, len(c.Stimulus.Values))
	for i, v := range c.Stimulus.Values {
		values[i] = byte(v)
	}

	return values, nil
}

// buildLinks creates one queue per link. The external action writes into it
// and the other-node input of the linked node reads from it.
func (c *Config) buildLinks(a *Assembly) {
	for _, l := range c.Links {
		name := sim.BuildName(
			sim.BuildNameWithIndex(l.From, "ExtAction", l.ExtAction), "Queue")
		q := stimulus.NewFIFO(name, c.FIFOCapacity)

		a.Queues[name] = q
		a.Queues[otherNodeQueueName(l.To, l.OtherNode)] = q
	}
}

func otherNodeQueueName(nodeName string, i int) string {
	return sim.BuildName(
		sim.BuildNameWithIndex(nodeName, "OtherNode", i), "Queue")
}

func (c *Config) queue(a *Assembly, name string) *stimulus.FIFO {
	if q, found := a.Queues[name]; found {
		return q
	}

	q := stimulus.NewFIFO(name, c.FIFOCapacity)
	a.Queues[name] = q

	return q
}

func (c *Config) buildNode(
	a *Assembly,
	s *simulation.Simulation,
	nc Node,
	id uint32,
	p node.Params,
	hooks node.Hooks,
) (*node.Node, []stimulus.Channel) {
	var (
		sensorSources []node.ByteSource
		sensorQueues  []stimulus.Channel
		otherSources  []node.ByteSource
		extSinks      []node.ByteSink
	)

	for i := 0; i < p.NumSensors; i++ {
		q := c.queue(a, sim.BuildName(
			sim.BuildNameWithIndex(nc.Name, "Sensor", i), "Queue"))
		sensorSources = append(sensorSources, q)
		sensorQueues = append(sensorQueues, q)
	}

	for i := 0; i < p.NumOtherNodes; i++ {
		otherSources = append(otherSources,
			c.queue(a, otherNodeQueueName(nc.Name, i)))
	}

	for i := 0; i < p.NumExtActions; i++ {
		extSinks = append(extSinks, c.queue(a, sim.BuildName(
			sim.BuildNameWithIndex(nc.Name, "ExtAction", i), "Queue")))
	}

	n := node.MakeBuilder().
		WithEngine(s.GetEngine()).
		WithRegistry(s.GetRegistry()).
		WithID(id).
		WithParams(p).
		WithHooks(hooks).
		WithSensorSources(sensorSources...).
		WithOtherNodeSources(otherSources...).
		WithExtActionSinks(extSinks...).
		Build(nc.Name)

	return n, sensorQueues
}
