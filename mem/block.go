// Package mem provides the memory blocks owned by the simulated components.
package mem

import (
	"errors"
	"fmt"
	"log"

	"github.com/sarchlab/propriosim/sim"
	"github.com/sarchlab/propriosim/tlm"
	"github.com/sarchlab/propriosim/tracing"
)

// ErrOutOfBounds is returned by the self-access functions when the accessed
// range does not fit in the block.
var ErrOutOfBounds = errors.New("access out of bounds")

// A Block is a fixed-size byte-addressable store owned by one component. Other
// components reach it only through Operation.
type Block struct {
	*sim.ComponentBase

	id           uint32
	readLatency  sim.VTime
	writeLatency sim.VTime
	width        uint64
	data         []byte
}

// ID returns the numeric identifier of the block.
func (b *Block) ID() uint32 {
	return b.id
}

// Capacity returns the number of bytes the block holds.
func (b *Block) Capacity() uint64 {
	return uint64(len(b.data))
}

// Width returns the number of bytes transferred per beat.
func (b *Block) Width() uint64 {
	return b.width
}

// ReadLatency returns the latency of one read beat.
func (b *Block) ReadLatency() sim.VTime {
	return b.readLatency
}

// WriteLatency returns the latency of one write beat.
func (b *Block) WriteLatency() sim.VTime {
	return b.writeLatency
}

// BurstLength returns the number of beats needed to move length bytes.
func (b *Block) BurstLength(length uint64) uint64 {
	return (length + b.width - 1) / b.width
}

// CheckAddress tells if [addr, addr+length) lies within the block.
func (b *Block) CheckAddress(addr, length uint64) bool {
	capacity := b.Capacity()

	if addr >= capacity {
		return false
	}

	return length <= capacity-addr
}

// Operation serves a transaction on behalf of the initiator with the given
// ID. It returns the delay advanced by the access latency and whether the
// access succeeded. The response status of the transaction is always set.
func (b *Block) Operation(
	initiatorID uint32,
	txn *tlm.Transaction,
	delay sim.VTime,
) (sim.VTime, bool) {
	newDelay, ok := b.operate(txn, delay)

	tracing.TraceMemAccess(b, tracing.MemAccessRecord{
		MemoryID:    b.id,
		Width:       b.width,
		InitiatorID: initiatorID,
		Command:     txn.Command,
		Address:     txn.Address,
		Length:      txn.Length,
		Delay:       newDelay,
		Response:    txn.Response,
	})

	return newDelay, ok
}

func (b *Block) operate(
	txn *tlm.Transaction,
	delay sim.VTime,
) (sim.VTime, bool) {
	if txn.ByteEnable != nil {
		txn.Response = tlm.ResponseByteEnableError
		return 0, false
	}

	if txn.StreamingWidth != txn.Length {
		txn.Response = tlm.ResponseBurstError
		return 0, false
	}

	var latency sim.VTime

	switch txn.Command {
	case tlm.CommandRead:
		latency = b.readLatency
	case tlm.CommandWrite:
		latency = b.writeLatency
	default:
		txn.Response = tlm.ResponseCommandError
		return delay, false
	}

	if !b.CheckAddress(txn.Address, txn.Length) ||
		uint64(len(txn.Data)) < txn.Length {
		txn.Response = tlm.ResponseAddressError
		return delay, false
	}

	start := txn.Address
	end := txn.Address + txn.Length

	if txn.Command == tlm.CommandRead {
		copy(txn.Data[:txn.Length], b.data[start:end])
	} else {
		copy(b.data[start:end], txn.Data[:txn.Length])
	}

	txn.Response = tlm.ResponseOK

	return delay + latency*sim.VTime(b.BurstLength(txn.Length)), true
}

// SelfWrite lets the owner write its own block without a transaction. A
// failed write leaves the block untouched; the error is logged and returned.
func (b *Block) SelfWrite(addr uint64, data []byte) error {
	if !b.CheckAddress(addr, uint64(len(data))) {
		return b.selfAccessFailed("write", addr, uint64(len(data)))
	}

	copy(b.data[addr:], data)

	return nil
}

// SelfRead lets the owner read its own block into buf without a transaction.
func (b *Block) SelfRead(addr uint64, buf []byte) error {
	if !b.CheckAddress(addr, uint64(len(buf))) {
		return b.selfAccessFailed("read", addr, uint64(len(buf)))
	}

	copy(buf, b.data[addr:])

	return nil
}

func (b *Block) selfAccessFailed(what string, addr, length uint64) error {
	err := fmt.Errorf("%w: self %s of [%d, %d) in %s of %d bytes",
		ErrOutOfBounds, what, addr, addr+length, b.Name(), b.Capacity())

	log.Printf("%s: %v", b.Name(), err)
	tracing.TraceError(b, "", tracing.ErrorKindSelfAccess, err)

	return err
}
