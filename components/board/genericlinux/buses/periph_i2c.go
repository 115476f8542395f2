package buses

import (
	"sync"

	"github.com/pkg/errors"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

// PeriphController implements Controller on top of a periph.io bus. periph performs a
// whole write-then-read exchange in one synchronous Tx call, so the address phase is only
// staged and the Tx runs when the final phase is armed.
type PeriphController struct {
	bus i2c.Bus
	// owner is held from a successful Open until Close or Abort.
	owner sync.Mutex

	mu      sync.Mutex
	held    bool
	addr    Address
	staged  []byte
	status  Status
	lastErr error
}

// NewPeriphController wraps bus.
func NewPeriphController(bus i2c.Bus) *PeriphController {
	return &PeriphController{bus: bus}
}

// OpenPeriphBus initializes the host drivers and opens the named bus ("" picks the first
// one available, "1" is /dev/i2c-1 on most boards).
func OpenPeriphBus(name string) (*PeriphController, error) {
	if _, err := host.Init(); err != nil {
		return nil, errors.Wrap(err, "periph host init failed")
	}
	bus, err := i2creg.Open(name)
	if err != nil {
		return nil, errors.Wrapf(err, "can't open I2C bus %q", name)
	}
	return NewPeriphController(bus), nil
}

// Open takes the bus for addr.
func (c *PeriphController) Open(addr Address) bool {
	if !c.owner.TryLock() {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.held = true
	c.addr = addr
	c.staged = c.staged[:0]
	c.status = StatusOK
	c.lastErr = nil
	return true
}

// Write stages p as the register address.
func (c *PeriphController) Write(p []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.staged = append(c.staged[:0], p...)
	c.status = StatusOK
}

// Continue sends the staged bytes followed by p.
func (c *PeriphController) Continue(p []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	w := make([]byte, 0, len(c.staged)+len(p))
	w = append(w, c.staged...)
	w = append(w, p...)
	c.tx(w, nil)
}

// RestartRead sends the staged bytes and reads len(p) bytes back into p.
func (c *PeriphController) RestartRead(p []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tx(c.staged, p)
}

func (c *PeriphController) tx(w, r []byte) {
	if err := c.bus.Tx(uint16(c.addr), w, r); err != nil {
		c.lastErr = err
		c.status = StatusBusError
		return
	}
	c.status = StatusOK
}

// Status reports the outcome of the last Tx. periph calls are synchronous so it is never
// StatusBusy.
func (c *PeriphController) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Close releases the bus and returns the final status.
func (c *PeriphController) Close() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.release()
	return c.status
}

// Abort releases the bus.
func (c *PeriphController) Abort() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.release()
}

func (c *PeriphController) release() {
	if c.held {
		c.held = false
		c.owner.Unlock()
	}
}

// LastError returns the periph error behind the most recent StatusBusError.
func (c *PeriphController) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// String names the underlying bus.
func (c *PeriphController) String() string {
	return c.bus.String()
}

// CloseBus aborts any transaction and closes the underlying bus when it can be closed.
func (c *PeriphController) CloseBus() error {
	c.Abort()
	if closer, ok := c.bus.(i2c.BusCloser); ok {
		return closer.Close()
	}
	return nil
}
