// Package interconnect provides the routers that forward transactions between
// initiators and targets.
package interconnect

import (
	"errors"
	"fmt"
	"log"

	"github.com/sarchlab/propriosim/mem"
	"github.com/sarchlab/propriosim/sim"
	"github.com/sarchlab/propriosim/tlm"
	"github.com/sarchlab/propriosim/tracing"
)

// ErrOutsideRegion is reported when an initiator addresses bytes beyond its
// own region.
var ErrOutsideRegion = errors.New("access outside the initiator region")

// FanIn forwards the transactions of N initiators to one target. Each
// initiator owns an equal, contiguous region of the target address space.
type FanIn struct {
	*sim.ComponentBase

	target   tlm.Target
	mapper   mem.RegionMapper
	ports    []*fanInPort
	backward []tlm.BackwardTarget
}

type fanInPort struct {
	router *FanIn
	index  int
}

func (p *fanInPort) BTransport(
	txn *tlm.Transaction,
	delay sim.VTime,
) sim.VTime {
	return p.router.TransportFrom(p.index, txn, delay)
}

// NewFanIn creates a FanIn router in front of a target of targetSize bytes.
func NewFanIn(
	name string,
	numInitiators int,
	targetSize uint64,
	target tlm.Target,
) *FanIn {
	f := &FanIn{
		ComponentBase: sim.NewComponentBase(name),
		target:        target,
		mapper:        mem.NewRegionMapper(targetSize, numInitiators),
		backward:      make([]tlm.BackwardTarget, numInitiators),
	}

	for i := 0; i < numInitiators; i++ {
		f.ports = append(f.ports, &fanInPort{router: f, index: i})
	}

	return f
}

// NumInitiators returns the number of initiator ports.
func (f *FanIn) NumInitiators() int {
	return len(f.ports)
}

// Port returns the target that initiator i should call.
func (f *FanIn) Port(i int) tlm.Target {
	f.initiatorMustExist(i)
	return f.ports[i]
}

// ForwardMap converts an address of initiator i to a target address.
func (f *FanIn) ForwardMap(i int, addr uint64) uint64 {
	return f.mapper.Forward(i, addr)
}

// ReverseMap converts a target address back to an address of initiator i.
func (f *FanIn) ReverseMap(i int, addr uint64) uint64 {
	return f.mapper.Reverse(i, addr)
}

// RegionSize returns the size of the region each initiator owns.
func (f *FanIn) RegionSize() uint64 {
	return f.mapper.RegionSize()
}

// TransportFrom forwards a transaction issued by initiator i. The address of
// the transaction is restored before returning. A transaction that does not
// fit in the region of the initiator is marked with an address error and not
// forwarded.
func (f *FanIn) TransportFrom(
	i int,
	txn *tlm.Transaction,
	delay sim.VTime,
) sim.VTime {
	f.initiatorMustExist(i)

	if !f.inRegion(txn.Address, txn.Length) {
		f.rejectOutsideRegion(i, txn)
		return delay
	}

	local := txn.Address
	txn.Address = f.ForwardMap(i, local)

	delay = f.target.BTransport(txn, delay)

	txn.Address = f.ReverseMap(i, txn.Address)

	return delay
}

func (f *FanIn) inRegion(addr, length uint64) bool {
	size := f.RegionSize()
	return addr <= size && length <= size-addr
}

func (f *FanIn) rejectOutsideRegion(i int, txn *tlm.Transaction) {
	txn.Response = tlm.ResponseAddressError

	err := fmt.Errorf("%w: %s initiator %d, address %d, length %d, region size %d",
		ErrOutsideRegion, f.Name(), i, txn.Address, txn.Length, f.RegionSize())

	global := f.ForwardMap(i, txn.Address)
	if owner := f.mapper.Find(global); owner != i {
		err = fmt.Errorf("%w, reaches the region of initiator %d", err, owner)
	}

	log.Printf("%v", err)
	tracing.TraceError(f, "", tracing.ErrorKindRouting, err)
}

// BindBackward sets the handler that receives the invalidations for
// initiator i.
func (f *FanIn) BindBackward(i int, bt tlm.BackwardTarget) {
	f.initiatorMustExist(i)
	f.backward[i] = bt
}

// InvalidateDirectMemPtr forwards an invalidation of the target range
// [start, end) to initiator i, in the initiator's address space.
func (f *FanIn) InvalidateDirectMemPtr(i int, start, end uint64) {
	f.initiatorMustExist(i)

	bt := f.backward[i]
	if bt == nil {
		return
	}

	bt.InvalidateDirectMemPtr(f.ReverseMap(i, start), f.ReverseMap(i, end))
}

func (f *FanIn) initiatorMustExist(i int) {
	if i < 0 || i >= len(f.ports) {
		panic(fmt.Sprintf("%s has no initiator %d", f.Name(), i))
	}
}
