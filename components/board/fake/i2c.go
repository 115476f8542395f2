// Package fake implements a fake I2C bus populated with simulated register devices.
package fake

import (
	"sync"

	"go.viam.com/lsm303/components/board/genericlinux/buses"
)

// RegisterWrite records one register overwritten on a fake device.
type RegisterWrite struct {
	Register byte
	Value    byte
}

// ReadFault makes one read fail: Value is left in the caller's buffer and Status ends the
// data phase.
type ReadFault struct {
	Status buses.Status
	Value  byte
}

// I2CDevice is a simulated device: a 256 entry register file.
type I2CDevice struct {
	Registers [256]byte
	// AddressNacks is how many address phases the device refuses before acknowledging.
	AddressNacks int
	// ReadFaults are consumed, oldest first, by upcoming reads.
	ReadFaults []ReadFault
	// WriteStatus, when not StatusOK, fails every write data phase and leaves the register
	// untouched.
	WriteStatus buses.Status
	Writes      []RegisterWrite
}

// I2C implements buses.Controller over a set of simulated devices.
type I2C struct {
	mu      sync.Mutex
	devices map[buses.Address]*I2CDevice

	// BusyPolls is how many polls of Status or Close report StatusBusy before a phase ends.
	BusyPolls int
	// OnPoll runs on every Status and Close call; tests use it to advance a mock clock.
	OnPoll func()
	// Stuck keeps every phase busy forever.
	Stuck bool

	owned   bool
	held    bool
	addr    buses.Address
	pointer byte
	pending int
	status  buses.Status

	Opens  int
	Aborts int
}

// NewI2C returns an empty fake bus.
func NewI2C() *I2C {
	return &I2C{devices: map[buses.Address]*I2CDevice{}}
}

// AddDevice attaches a device at addr and returns it.
func (b *I2C) AddDevice(addr buses.Address) *I2CDevice {
	b.mu.Lock()
	defer b.mu.Unlock()
	dev := &I2CDevice{}
	b.devices[addr] = dev
	return dev
}

// Device returns the device at addr, or nil.
func (b *I2C) Device(addr buses.Address) *I2CDevice {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.devices[addr]
}

// Hold simulates another bus owner until Release is called.
func (b *I2C) Hold() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.held = true
}

// Release ends a Hold.
func (b *I2C) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.held = false
}

// Owned reports whether a transaction currently owns the bus.
func (b *I2C) Owned() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.owned
}

// Open takes the bus.
func (b *I2C) Open(addr buses.Address) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.owned || b.held {
		return false
	}
	b.owned = true
	b.addr = addr
	b.status = buses.StatusOK
	b.Opens++
	return true
}

// Write runs the address phase: p[0] becomes the register pointer.
func (b *I2C) Write(p []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.startPhase()
	dev := b.devices[b.addr]
	switch {
	case dev == nil:
		b.status = buses.StatusAddressNack
	case dev.AddressNacks > 0:
		dev.AddressNacks--
		b.status = buses.StatusAddressNack
	case len(p) == 0:
		b.status = buses.StatusBusError
	default:
		b.pointer = p[0]
		b.status = buses.StatusOK
	}
}

// Continue writes p[0] into the register pointed at.
func (b *I2C) Continue(p []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.startPhase()
	dev := b.devices[b.addr]
	if dev == nil || len(p) == 0 {
		b.status = buses.StatusBusError
		return
	}
	if dev.WriteStatus != buses.StatusOK {
		b.status = dev.WriteStatus
		return
	}
	dev.Registers[b.pointer] = p[0]
	dev.Writes = append(dev.Writes, RegisterWrite{Register: b.pointer, Value: p[0]})
	b.status = buses.StatusOK
}

// RestartRead copies the register pointed at into p[0].
func (b *I2C) RestartRead(p []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.startPhase()
	dev := b.devices[b.addr]
	if dev == nil || len(p) == 0 {
		b.status = buses.StatusBusError
		return
	}
	if len(dev.ReadFaults) > 0 {
		fault := dev.ReadFaults[0]
		dev.ReadFaults = dev.ReadFaults[1:]
		if fault.Status != buses.StatusOK {
			p[0] = fault.Value
			b.status = fault.Status
			return
		}
	}
	p[0] = dev.Registers[b.pointer]
	b.status = buses.StatusOK
}

func (b *I2C) startPhase() {
	b.pending = b.BusyPolls
}

func (b *I2C) poll() bool {
	if b.OnPoll != nil {
		b.OnPoll()
	}
	if b.Stuck {
		return true
	}
	if b.pending > 0 {
		b.pending--
		return true
	}
	return false
}

// Status reports the phase outcome.
func (b *I2C) Status() buses.Status {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.poll() {
		return buses.StatusBusy
	}
	return b.status
}

// Close releases the bus once the last phase has finished.
func (b *I2C) Close() buses.Status {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.poll() {
		return buses.StatusBusy
	}
	b.owned = false
	return b.status
}

// Abort releases the bus immediately.
func (b *I2C) Abort() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.owned = false
	b.pending = 0
	b.Aborts++
}
