package stimulus

import (
	"errors"
	"log"

	"github.com/sarchlab/propriosim/sim"
	"github.com/sarchlab/propriosim/tracing"
)

// ErrExhausted is the reason the feeder stops the simulation.
var ErrExhausted = errors.New("stimulus exhausted")

// A Channel is what the feeder writes into.
type Channel interface {
	Name() string
	NumFree() int
	Write(v byte) bool
}

type tickEvent struct {
	*sim.EventBase
}

// Feeder writes one stimulus value into each of its channels every quantum,
// starting at time zero. When it runs out of values it stops the engine.
type Feeder struct {
	*sim.ComponentBase

	engine   sim.Engine
	quantum  sim.VTime
	values   []byte
	channels []Channel

	counter   int
	exhausted bool
	numFull   uint64
}

// Start schedules the first tick at the current time.
func (f *Feeder) Start() {
	f.engine.Schedule(tickEvent{sim.NewEventBase(f.engine.CurrentTime(), f)})
}

// Handle processes a tick.
func (f *Feeder) Handle(e sim.Event) error {
	if f.counter >= len(f.values) {
		f.exhaust()
		return nil
	}

	v := f.values[f.counter]
	f.counter++

	for _, c := range f.channels {
		if c.NumFree() == 0 || !c.Write(v) {
			f.numFull++
			log.Printf("%s: no free slots in %s", f.Name(), c.Name())
		}
	}

	f.engine.Schedule(tickEvent{sim.NewEventBase(e.Time()+f.quantum, f)})

	return nil
}

func (f *Feeder) exhaust() {
	f.exhausted = true

	log.Printf("%s: %v after %d values, stopping", f.Name(), ErrExhausted,
		f.counter)
	tracing.TraceError(f, "", tracing.ErrorKindStimulus, ErrExhausted)

	f.engine.Stop()
}

// Exhausted tells if the feeder has stopped the simulation.
func (f *Feeder) Exhausted() bool {
	return f.exhausted
}

// Err returns ErrExhausted once the feeder has stopped the simulation.
func (f *Feeder) Err() error {
	if f.exhausted {
		return ErrExhausted
	}

	return nil
}

// NumFed returns the number of values consumed so far.
func (f *Feeder) NumFed() int {
	return f.counter
}

// NumValues returns the number of values the feeder holds.
func (f *Feeder) NumValues() int {
	return len(f.values)
}

// NumFull returns how many writes were dropped because a channel was full.
func (f *Feeder) NumFull() uint64 {
	return f.numFull
}

// Builder can build feeders.
type Builder struct {
	engine   sim.Engine
	quantum  sim.VTime
	values   []byte
	channels []Channel
}

// MakeBuilder returns a new Builder.
func MakeBuilder() Builder {
	return Builder{
		quantum: 10 * sim.Ms,
	}
}

// WithEngine sets the engine the feeder schedules on and stops.
func (b Builder) WithEngine(e sim.Engine) Builder {
	b.engine = e
	return b
}

// WithQuantum sets the time between two ticks.
func (b Builder) WithQuantum(q sim.VTime) Builder {
	b.quantum = q
	return b
}

// WithValues sets the values to feed.
func (b Builder) WithValues(values []byte) Builder {
	b.values = values
	return b
}

// WithChannels sets the channels to write into.
func (b Builder) WithChannels(channels ...Channel) Builder {
	b.channels = channels
	return b
}

// Build creates a Feeder.
func (b Builder) Build(name string) *Feeder {
	if b.engine == nil {
		log.Panicf("feeder %s has no engine", name)
	}

	if b.quantum == 0 {
		log.Panicf("feeder %s has a zero quantum", name)
	}

	return &Feeder{
		ComponentBase: sim.NewComponentBase(name),
		engine:        b.engine,
		quantum:       b.quantum,
		values:        b.values,
		channels:      b.channels,
	}
}
