// Package simulation puts together the services a simulation run needs: the
// engine, the event registry, the trace recorder, and the monitor.
package simulation

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/sarchlab/propriosim/datarecording"
	"github.com/sarchlab/propriosim/monitoring"
	"github.com/sarchlab/propriosim/node"
	"github.com/sarchlab/propriosim/notify"
	"github.com/sarchlab/propriosim/sim"
	"github.com/sarchlab/propriosim/stimulus"
	"github.com/sarchlab/propriosim/tracing"
)

// ErrDeadlock is returned by Run when the engine runs out of events while
// processes are still waiting on named events.
var ErrDeadlock = errors.New("deadlock")

// A Simulation provides the service requires to define a simulation.
type Simulation struct {
	id       string
	engine   sim.Engine
	registry *notify.Registry

	dataRecorder datarecording.DataRecorder
	dbTracer     *tracing.DBTracer
	monitor      *monitoring.Monitor
	tracers      []tracing.Tracer

	components    []tracing.NamedHookable
	compNameIndex map[string]int
	nodes         []*node.Node
	feeders       []*stimulus.Feeder
}

// ID returns the unique identifier of the run.
func (s *Simulation) ID() string {
	return s.id
}

// GetEngine returns the engine used in the simulation.
func (s *Simulation) GetEngine() sim.Engine {
	return s.engine
}

// GetRegistry returns the event registry shared by the nodes.
func (s *Simulation) GetRegistry() *notify.Registry {
	return s.registry
}

// GetDataRecorder returns the data recorder used in the simulation. It is nil
// when recording is disabled.
func (s *Simulation) GetDataRecorder() datarecording.DataRecorder {
	return s.dataRecorder
}

// GetMonitor returns the monitor used in the simulation. It is nil when
// monitoring is disabled.
func (s *Simulation) GetMonitor() *monitoring.Monitor {
	return s.monitor
}

// GetDBTracer returns the tracer that writes into the recorder.
func (s *Simulation) GetDBTracer() *tracing.DBTracer {
	return s.dbTracer
}

// AddTracer attaches a tracer to every component registered so far and to
// every component registered later.
func (s *Simulation) AddTracer(t tracing.Tracer) {
	s.tracers = append(s.tracers, t)

	for _, c := range s.components {
		tracing.CollectTrace(c, t)
	}
}

// RegisterComponent registers a component with the simulation.
func (s *Simulation) RegisterComponent(c tracing.NamedHookable) {
	compName := c.Name()
	if _, found := s.compNameIndex[compName]; found {
		panic("component " + compName + " already registered")
	}

	s.components = append(s.components, c)
	s.compNameIndex[compName] = len(s.components) - 1

	for _, t := range s.tracers {
		tracing.CollectTrace(c, t)
	}

	if s.monitor != nil {
		s.monitor.RegisterComponent(c)
	}
}

// RegisterNode registers a node and all its parts.
func (s *Simulation) RegisterNode(n *node.Node) {
	for _, c := range n.Components() {
		s.RegisterComponent(c)
	}

	s.nodes = append(s.nodes, n)
}

// RegisterFeeder registers a stimulus feeder. Its consumption is shown as a
// progress bar when monitoring is on.
func (s *Simulation) RegisterFeeder(f *stimulus.Feeder) {
	s.RegisterComponent(f)
	s.feeders = append(s.feeders, f)

	if s.monitor == nil {
		return
	}

	bar := s.monitor.CreateProgressBar(f.Name(), uint64(f.NumValues()))
	monitoring.TrackProgress(s.engine, bar, func() uint64 {
		return uint64(f.NumFed())
	})
}

// GetComponentByName returns the component with the given name.
func (s *Simulation) GetComponentByName(name string) tracing.NamedHookable {
	i, found := s.compNameIndex[name]
	if !found {
		return nil
	}

	return s.components[i]
}

// Components returns all the registered components.
func (s *Simulation) Components() []tracing.NamedHookable {
	return s.components
}

// Nodes returns the registered nodes.
func (s *Simulation) Nodes() []*node.Node {
	return s.nodes
}

// Start schedules the first events of the registered nodes and feeders.
func (s *Simulation) Start() {
	for _, f := range s.feeders {
		f.Start()
	}

	for _, n := range s.nodes {
		n.Start()
	}
}

// StopReason returns why the engine was stopped, if a feeder stopped it.
func (s *Simulation) StopReason() error {
	for _, f := range s.feeders {
		if err := f.Err(); err != nil {
			return fmt.Errorf("%s: %w", f.Name(), err)
		}
	}

	return nil
}

// Run runs the engine until it is stopped or runs out of events. Running
// out of events while processes still wait on named events is a deadlock.
func (s *Simulation) Run() error {
	defer s.engine.Finished()

	if err := s.engine.Run(); err != nil {
		return err
	}

	if s.engine.Stopped() {
		return nil
	}

	pending := s.registry.PendingWaiters()
	if len(pending) > 0 {
		return fmt.Errorf("%w at %s: %s",
			ErrDeadlock, s.engine.CurrentTime(), describePending(pending))
	}

	return nil
}

// RunUntil runs the engine up to the given time.
func (s *Simulation) RunUntil(t sim.VTime) error {
	return s.engine.RunUntil(t)
}

func describePending(pending map[string]int) string {
	names := make([]string, 0, len(pending))
	for name := range pending {
		names = append(names, name)
	}

	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s (%d waiting)", name, pending[name]))
	}

	return strings.Join(parts, ", ")
}

// Terminate terminates the simulation.
func (s *Simulation) Terminate() {
	if s.dataRecorder == nil {
		return
	}

	if err := s.dataRecorder.Close(); err != nil {
		log.Printf("closing recorder: %v", err)
	}
}
