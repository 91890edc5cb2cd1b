// Package node models a proprioceptive node: sensors and other nodes feed the
// SAE memory, the LModel evaluates what was sensed, the SEE decides on actions
// for the actuators, and the Monitor samples the reports of both. A GVOC
// source supplies goals, values, objectives and constraints.
package node

import (
	"errors"

	"github.com/sarchlab/propriosim/sim"
)

// Numeric identifiers of the components. Sensors, other nodes, actuators and
// external actions add their index to the base.
const (
	GVOCID      uint32 = 100
	SensorID    uint32 = 200
	OtherNodeID uint32 = 300
	IC1ID       uint32 = 400
	SAEID       uint32 = 500
	LModelID    uint32 = 600
	MonitorID   uint32 = 700
	SEEID       uint32 = 800
	ActuatorID  uint32 = 900
	ExtActionID uint32 = 1000
)

// Start offsets of the free-running processes.
var (
	OffsetGVOCMonitor = sim.FromMs(0)
	OffsetGVOCSEE     = sim.FromMs(0.1)
	OffsetSensor      = sim.FromMs(0.2)
	OffsetOtherNode   = sim.FromMs(0.3)
	OffsetLModel      = sim.FromMs(0.4)
	OffsetHeartbeat   = sim.FromMs(0.5)
)

// ErrDataUnavailable is reported when a producer has nothing queued at the
// time a cycle fires. The cycle proceeds with a zeroed buffer.
var ErrDataUnavailable = errors.New("no data available")

// ReportStatus is the outcome of the latest evaluation or dispatch.
type ReportStatus int

// Report statuses.
const (
	StatusRead         ReportStatus = 11
	StatusWrite        ReportStatus = 22
	StatusActionNeeded ReportStatus = 33
	StatusNotify       ReportStatus = 44
	StatusActionFailed ReportStatus = 55
)

func (s ReportStatus) String() string {
	switch s {
	case StatusRead:
		return "READ"
	case StatusWrite:
		return "WRITE"
	case StatusActionNeeded:
		return "ACTION_NEEDED"
	case StatusNotify:
		return "NOTIFY"
	case StatusActionFailed:
		return "ACTION_FAILED"
	default:
		return "UNKNOWN"
	}
}

// Report bytes written by the LModel into its report memory.
const (
	PositiveReport byte = 'A'
	NegativeReport byte = 'F'
)

// A ByteSource provides the values a sensor or an other-node input consumes.
type ByteSource interface {
	NumAvailable() int
	Read() (byte, bool)
}

// A ByteSink receives the values an external action sends out.
type ByteSink interface {
	NumFree() int
	Write(b byte) bool
}

// componentBase is the common part of every node component.
type componentBase struct {
	*sim.ComponentBase

	id        uint32
	numErrors uint64
}

func newComponentBase(name string, id uint32) componentBase {
	return componentBase{
		ComponentBase: sim.NewComponentBase(name),
		id:            id,
	}
}

// ID returns the numeric identifier of the component.
func (c *componentBase) ID() uint32 {
	return c.id
}

// NumErrors returns the number of failed self accesses and dispatches.
func (c *componentBase) NumErrors() uint64 {
	return c.numErrors
}

// Trigger decides the cadence of the notifications. Cycle k, counted from 1,
// is slow iff the interval is positive and divides k.
type Trigger struct {
	Interval uint64
}

// IsSlow tells if the slow-cadence follower is notified in the cycle.
func (t Trigger) IsSlow(cycle uint64) bool {
	return t.Interval > 0 && cycle%t.Interval == 0
}

// An AddressCursor walks the data blocks of a process within one quantum. It
// only moves when more than one dataset is handled per cycle and goes back to
// zero at quantum synchronization.
type AddressCursor struct {
	step     uint64
	datasets int
	addr     uint64
}

// NewAddressCursor creates an AddressCursor.
func NewAddressCursor(step uint64, datasets int) *AddressCursor {
	return &AddressCursor{step: step, datasets: datasets}
}

// Addr returns the current address.
func (c *AddressCursor) Addr() uint64 {
	return c.addr
}

// Advance moves to the next block.
func (c *AddressCursor) Advance() {
	if c.datasets > 1 {
		c.addr += c.step
	}
}

// Reset goes back to the first block.
func (c *AddressCursor) Reset() {
	c.addr = 0
}
