package node

import (
	"log"

	"github.com/sarchlab/propriosim/sim"
	"github.com/sarchlab/propriosim/tlm"
	"github.com/sarchlab/propriosim/tracing"
)

// A Sensor samples its stimulus source and writes the latest value into its
// region of the SAE memory.
type Sensor struct {
	componentBase

	proc   *Process
	source ByteSource
	port   tlm.Target
	cursor *AddressCursor
	data   []byte

	numInvalidations uint64
}

func newSensor(
	name string,
	id uint32,
	engine sim.EventScheduler,
	p Params,
	source ByteSource,
	port tlm.Target,
) *Sensor {
	s := &Sensor{
		componentBase: newComponentBase(name, id),
		source:        source,
		port:          port,
		cursor:        NewAddressCursor(p.SensorDataLength, p.SensorDatasets),
		data:          make([]byte, p.SensorDataLength),
	}

	s.proc = newProcess("B", s, engine, p.Quantum)
	s.proc.offset = OffsetSensor
	s.proc.body = s.cycle
	s.proc.onSync = s.cursor.Reset

	return s
}

// Process returns the sampling process.
func (s *Sensor) Process() *Process {
	return s.proc
}

// Cursor returns the address cursor of the sampling process.
func (s *Sensor) Cursor() *AddressCursor {
	return s.cursor
}

// NumInvalidations returns the number of invalidations received on the
// backward path.
func (s *Sensor) NumInvalidations() uint64 {
	return s.numInvalidations
}

func (s *Sensor) cycle() {
	s.sample()

	txn := tlm.NewWriteTransaction(s.cursor.Addr(), s.data)
	if !s.proc.transport(SAEID, txn, s.port) {
		log.Printf("%s: write to SAE at %d failed: %s",
			s.Name(), txn.Address, txn.Response)
	}

	s.cursor.Advance()
	clear(s.data)
}

// sample drains the source and keeps the most recent value.
func (s *Sensor) sample() {
	if s.source == nil || s.source.NumAvailable() == 0 {
		reportUnavailable(s, s.proc.name)
		return
	}

	for s.source.NumAvailable() > 0 {
		v, ok := s.source.Read()
		if !ok {
			break
		}

		if len(s.data) > 0 {
			s.data[0] = v
		}
	}
}

// InvalidateDirectMemPtr receives the invalidations of the SAE region.
func (s *Sensor) InvalidateDirectMemPtr(start, end uint64) {
	s.numInvalidations++
	log.Printf("%s: SAE range [%d, %d) invalidated", s.Name(), start, end)
}

func reportUnavailable(c tracing.NamedHookable, process string) {
	log.Printf("%s.%s: %v", c.Name(), process, ErrDataUnavailable)
	tracing.TraceError(c, process, tracing.ErrorKindDataUnavailable,
		ErrDataUnavailable)
}
