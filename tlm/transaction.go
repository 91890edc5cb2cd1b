// Package tlm provides the transaction-level modeling primitives: the
// generic payload that moves between initiators and targets, the transport
// interfaces, and the quantum keeper used for temporal decoupling.
package tlm

import (
	"fmt"

	"github.com/sarchlab/propriosim/sim"
)

// Command is the kind of access a transaction performs.
type Command int

// Commands supported by the transaction layer.
const (
	CommandIgnore Command = iota
	CommandRead
	CommandWrite
)

func (c Command) String() string {
	switch c {
	case CommandRead:
		return "READ"
	case CommandWrite:
		return "WRITE"
	case CommandIgnore:
		return "IGNORE"
	default:
		return fmt.Sprintf("Command(%d)", int(c))
	}
}

// ResponseStatus is the outcome a target reports on a transaction.
type ResponseStatus int

// Response statuses. Every status other than ResponseOK and
// ResponseIncomplete is an error.
const (
	ResponseIncomplete ResponseStatus = iota
	ResponseOK
	ResponseGenericError
	ResponseAddressError
	ResponseCommandError
	ResponseBurstError
	ResponseByteEnableError
)

var responseStrings = map[ResponseStatus]string{
	ResponseIncomplete:      "INCOMPLETE_RESPONSE",
	ResponseOK:              "OK_RESPONSE",
	ResponseGenericError:    "GENERIC_ERROR_RESPONSE",
	ResponseAddressError:    "ADDRESS_ERROR_RESPONSE",
	ResponseCommandError:    "COMMAND_ERROR_RESPONSE",
	ResponseBurstError:      "BURST_ERROR_RESPONSE",
	ResponseByteEnableError: "BYTE_ENABLE_ERROR_RESPONSE",
}

func (s ResponseStatus) String() string {
	str, ok := responseStrings[s]
	if !ok {
		return fmt.Sprintf("ResponseStatus(%d)", int(s))
	}

	return str
}

// IsError tells if the status reports a failure.
func (s ResponseStatus) IsError() bool {
	return s != ResponseOK && s != ResponseIncomplete
}

// A Transaction is a single read or write request. It is created by an
// initiator right before a transport call and consumed synchronously by one
// target. The data buffer is owned by the initiator.
type Transaction struct {
	ID             string
	InitiatorID    uint32
	Command        Command
	Address        uint64
	Data           []byte
	Length         uint64
	StreamingWidth uint64
	ByteEnable     []byte
	Response       ResponseStatus
}

// NewReadTransaction creates a transaction that reads len(buf) bytes at addr
// into buf.
func NewReadTransaction(addr uint64, buf []byte) *Transaction {
	return newTransaction(CommandRead, addr, buf)
}

// NewWriteTransaction creates a transaction that writes data at addr.
func NewWriteTransaction(addr uint64, data []byte) *Transaction {
	return newTransaction(CommandWrite, addr, data)
}

func newTransaction(cmd Command, addr uint64, buf []byte) *Transaction {
	return &Transaction{
		ID:             sim.GetIDGenerator().Generate(),
		Command:        cmd,
		Address:        addr,
		Data:           buf,
		Length:         uint64(len(buf)),
		StreamingWidth: uint64(len(buf)),
		Response:       ResponseIncomplete,
	}
}

// IsResponseOK tells if the target completed the transaction.
func (t *Transaction) IsResponseOK() bool {
	return t.Response == ResponseOK
}

// IsResponseError tells if the target rejected the transaction.
func (t *Transaction) IsResponseError() bool {
	return t.Response.IsError()
}

// ResponseString returns the printable response status.
func (t *Transaction) ResponseString() string {
	return t.Response.String()
}
