package notify

import (
	"fmt"
	"sort"
	"sync"

	"github.com/sarchlab/propriosim/sim"
)

// An EventSet holds the signals that connect the processes of one node.
type EventSet struct {
	LModelToMonitor *Signal
	LModelToSEE     *Signal
	SEEToMonitor    *Signal
	MonitorEv       *Signal
}

// NewEventSet creates the signals of a node.
func NewEventSet(node string, scheduler sim.EventScheduler) *EventSet {
	return &EventSet{
		LModelToMonitor: NewSignal(node+".LModelToMonitor", scheduler),
		LModelToSEE:     NewSignal(node+".LModelToSEE", scheduler),
		SEEToMonitor:    NewSignal(node+".SEEToMonitor", scheduler),
		MonitorEv:       NewSignal(node+".MonitorEv", scheduler),
	}
}

// Signals returns the signals of the set.
func (s *EventSet) Signals() []*Signal {
	return []*Signal{
		s.LModelToMonitor,
		s.LModelToSEE,
		s.SEEToMonitor,
		s.MonitorEv,
	}
}

// A Registry maps node names to their event sets.
type Registry struct {
	lock sync.Mutex
	sets map[string]*EventSet
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		sets: make(map[string]*EventSet),
	}
}

// Register adds the event set of a node. It panics if the node already has
// one.
func (r *Registry) Register(node string, set *EventSet) {
	r.lock.Lock()
	defer r.lock.Unlock()

	if _, found := r.sets[node]; found {
		panic(fmt.Sprintf("node %s already has an event set", node))
	}

	r.sets[node] = set
}

// Create builds and registers the event set of a node.
func (r *Registry) Create(node string, scheduler sim.EventScheduler) *EventSet {
	set := NewEventSet(node, scheduler)
	r.Register(node, set)

	return set
}

// Get returns the event set of a node.
func (r *Registry) Get(node string) (*EventSet, bool) {
	r.lock.Lock()
	defer r.lock.Unlock()

	set, found := r.sets[node]

	return set, found
}

// MustGet returns the event set of a node and panics if there is none.
func (r *Registry) MustGet(node string) *EventSet {
	set, found := r.Get(node)
	if !found {
		panic(fmt.Sprintf("node %s has no event set", node))
	}

	return set
}

// Nodes returns the registered node names in order.
func (r *Registry) Nodes() []string {
	r.lock.Lock()
	defer r.lock.Unlock()

	nodes := make([]string, 0, len(r.sets))
	for n := range r.sets {
		nodes = append(nodes, n)
	}

	sort.Strings(nodes)

	return nodes
}

// PendingWaiters returns, per signal name, the number of handlers still
// waiting. Signals without waiters are omitted.
func (r *Registry) PendingWaiters() map[string]int {
	r.lock.Lock()
	defer r.lock.Unlock()

	pending := make(map[string]int)

	for _, set := range r.sets {
		for _, s := range set.Signals() {
			if n := s.NumWaiters(); n > 0 {
				pending[s.Name()] = n
			}
		}
	}

	return pending
}
