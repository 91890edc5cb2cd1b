package mem

import (
	"github.com/sarchlab/propriosim/sim"
)

// Builder can build memory blocks.
type Builder struct {
	id           uint32
	readLatency  sim.VTime
	writeLatency sim.VTime
	capacity     uint64
	width        uint64
}

// MakeBuilder returns a new Builder
func MakeBuilder() Builder {
	return Builder{
		capacity: 32,
		width:    4,
	}
}

// WithID sets the numeric identifier of the block.
func (b Builder) WithID(id uint32) Builder {
	b.id = id
	return b
}

// WithReadLatency sets the latency of one read beat.
func (b Builder) WithReadLatency(latency sim.VTime) Builder {
	b.readLatency = latency
	return b
}

// WithWriteLatency sets the latency of one write beat.
func (b Builder) WithWriteLatency(latency sim.VTime) Builder {
	b.writeLatency = latency
	return b
}

// WithLatency sets both the read and the write latency.
func (b Builder) WithLatency(latency sim.VTime) Builder {
	b.readLatency = latency
	b.writeLatency = latency

	return b
}

// WithCapacity sets the number of bytes of the block.
func (b Builder) WithCapacity(capacity uint64) Builder {
	b.capacity = capacity
	return b
}

// WithWidth sets the number of bytes transferred per beat.
func (b Builder) WithWidth(width uint64) Builder {
	b.width = width
	return b
}

// Build creates a zero-filled block.
func (b Builder) Build(name string) *Block {
	if b.width == 0 {
		panic("memory width must be positive")
	}

	return &Block{
		ComponentBase: sim.NewComponentBase(name),
		id:            b.id,
		readLatency:   b.readLatency,
		writeLatency:  b.writeLatency,
		width:         b.width,
		data:          make([]byte, b.capacity),
	}
}
