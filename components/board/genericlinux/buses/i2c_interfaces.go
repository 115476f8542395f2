// Package buses offers the I2C transport primitives and the register transaction engine
// used by the sensor drivers.
package buses

import (
	"fmt"
)

// Address is a 7-bit I2C device address.
type Address byte

func (a Address) String() string {
	return fmt.Sprintf("0x%02X", byte(a))
}

// Status is the state reported by a Controller for the transfer in flight.
type Status int

// Controller statuses.
const (
	StatusOK Status = iota
	// StatusBusy means the current phase has not finished yet; poll again.
	StatusBusy
	// StatusAddressNack means the device did not acknowledge its address. Devices do this
	// while they finish an internal conversion cycle.
	StatusAddressNack
	StatusDataNack
	StatusBusError
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusBusy:
		return "busy"
	case StatusAddressNack:
		return "address nack"
	case StatusDataNack:
		return "data nack"
	case StatusBusError:
		return "bus error"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Controller is a two-wire bus master. Every call returns immediately: a phase is started
// by Write, Continue or RestartRead and its outcome is observed by polling Status.
type Controller interface {
	// Open tries to take exclusive ownership of the bus for addr. It reports false while
	// another transaction owns the bus.
	Open(addr Address) bool

	// Write starts a master write of p: the address phase of a register access.
	Write(p []byte)
	// Continue writes p after the previous phase without a stop condition.
	Continue(p []byte)
	// RestartRead issues a repeated start and reads len(p) bytes into p.
	RestartRead(p []byte)

	// Status reports the outcome of the phase in flight, StatusBusy until it ends.
	Status() Status

	// Close issues a stop and releases the bus. It reports StatusBusy while the transfer
	// is still running and must be polled until it returns anything else, which is the
	// final status of the transaction.
	Close() Status
	// Abort terminates any transfer in flight and releases the bus unconditionally.
	Abort()
}
