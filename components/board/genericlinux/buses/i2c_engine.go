package buses

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"

	"go.viam.com/lsm303/logging"
)

const (
	// DefaultTimeout bounds a single transaction attempt, bus acquisition included.
	DefaultTimeout = 100 * time.Millisecond
	// DefaultReadAttempts absorbs one transient NACK from a device that is busy finishing a
	// conversion cycle.
	DefaultReadAttempts = 2
)

// EngineConfig tunes an Engine. Zero values select the defaults.
type EngineConfig struct {
	Timeout time.Duration
	// PollInterval is how long to sleep between status polls. Zero spins.
	PollInterval time.Duration
	ReadAttempts int
	Clock        clock.Clock
}

// Engine performs single register reads and writes through a Controller. It assumes a
// single outstanding transaction: callers must not use one Engine from several goroutines
// at once.
type Engine struct {
	ctrl         Controller
	clock        clock.Clock
	timeout      time.Duration
	pollInterval time.Duration
	readAttempts int
	logger       logging.Logger
}

// NewEngine returns an Engine driving ctrl.
func NewEngine(ctrl Controller, cfg EngineConfig, logger logging.Logger) *Engine {
	e := &Engine{
		ctrl:         ctrl,
		clock:        cfg.Clock,
		timeout:      cfg.Timeout,
		pollInterval: cfg.PollInterval,
		readAttempts: cfg.ReadAttempts,
		logger:       logger,
	}
	if e.clock == nil {
		e.clock = clock.New()
	}
	if e.timeout <= 0 {
		e.timeout = DefaultTimeout
	}
	if e.readAttempts <= 0 {
		e.readAttempts = DefaultReadAttempts
	}
	return e
}

type txState int

const (
	stateIdle txState = iota
	stateBusAcquired
	stateAddressPhaseSent
	// stateDataPhase covers both the data byte going out on a write and the byte coming
	// back on a read.
	stateDataPhase
	stateClosed
)

func (s txState) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case stateBusAcquired:
		return "bus acquired"
	case stateAddressPhaseSent:
		return "address phase sent"
	case stateDataPhase:
		return "data phase"
	case stateClosed:
		return "closed"
	default:
		return fmt.Sprintf("txState(%d)", int(s))
	}
}

type txKind int

const (
	txWrite txKind = iota
	txRead
)

type transaction struct {
	kind  txKind
	addr  Address
	reg   byte
	state txState
	// status is the first non-OK status observed; StatusOK until then.
	status Status
	// buf holds the outgoing data byte of a write or the received byte of a read. It is not
	// cleared between read attempts.
	buf [1]byte
}

// WriteByteData overwrites one register. It makes a single attempt; a failure is reported
// as a *TransportError, a timeout as ErrTransportTimeout.
func (e *Engine) WriteByteData(ctx context.Context, addr Address, register, value byte) error {
	tx := &transaction{kind: txWrite, addr: addr, reg: register}
	tx.buf[0] = value
	return e.run(ctx, tx)
}

// ReadByteData reads one register, retrying failed attempts up to the configured number of
// attempts. When every attempt fails it returns the byte left behind by the last attempt
// together with an error matching ErrReadRetriesExhausted and the last failure.
func (e *Engine) ReadByteData(ctx context.Context, addr Address, register byte) (byte, error) {
	tx := &transaction{kind: txRead, addr: addr, reg: register}
	var err error
	for attempt := 1; attempt <= e.readAttempts; attempt++ {
		tx.state = stateIdle
		tx.status = StatusOK
		if err = e.run(ctx, tx); err == nil {
			return tx.buf[0], nil
		}
		if ctx.Err() != nil {
			return tx.buf[0], err
		}
		e.logger.Debugw("i2c read attempt failed",
			"address", addr, "register", register, "attempt", attempt, "error", err)
	}
	return tx.buf[0], fmt.Errorf("%w after %d attempts: %w", ErrReadRetriesExhausted, e.readAttempts, err)
}

// run drives tx from idle to closed.
func (e *Engine) run(ctx context.Context, tx *transaction) error {
	deadline := e.clock.Now().Add(e.timeout)
	regBuf := []byte{tx.reg}
	for {
		switch tx.state {
		case stateIdle:
			if e.ctrl.Open(tx.addr) {
				tx.state = stateBusAcquired
				continue
			}
		case stateBusAcquired:
			e.ctrl.Write(regBuf)
			tx.state = stateAddressPhaseSent
			continue
		case stateAddressPhaseSent:
			switch st := e.ctrl.Status(); st {
			case StatusBusy:
			case StatusOK:
				if tx.kind == txRead {
					e.ctrl.RestartRead(tx.buf[:])
				} else {
					e.ctrl.Continue(tx.buf[:])
				}
				tx.state = stateDataPhase
				continue
			case StatusAddressNack:
				// The device is busy; keep polling it with the address phase.
				e.ctrl.Write(regBuf)
			default:
				tx.status = st
				tx.state = stateClosed
				continue
			}
		case stateDataPhase:
			if st := e.ctrl.Status(); st != StatusBusy {
				tx.status = st
				tx.state = stateClosed
				continue
			}
		case stateClosed:
			st := e.ctrl.Close()
			if st == StatusBusy {
				break
			}
			if tx.status == StatusOK {
				tx.status = st
			}
			if tx.status != StatusOK {
				return &TransportError{Status: tx.status, Address: tx.addr, Register: tx.reg}
			}
			return nil
		}

		if err := e.wait(ctx, deadline); err != nil {
			if tx.state != stateIdle {
				e.ctrl.Abort()
			}
			return errors.Wrapf(err, "%s register 0x%02X stopped in state %q", tx.addr, tx.reg, tx.state)
		}
	}
}

func (e *Engine) wait(ctx context.Context, deadline time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !e.clock.Now().Before(deadline) {
		return ErrTransportTimeout
	}
	if e.pollInterval > 0 {
		e.clock.Sleep(e.pollInterval)
	} else {
		runtime.Gosched()
	}
	return nil
}

// An I2CRegister is a lightweight wrapper around an engine for a particular register.
type I2CRegister struct {
	Engine   *Engine
	Address  Address
	Register byte
}

// ReadByteData reads a byte from the register.
func (reg *I2CRegister) ReadByteData(ctx context.Context) (byte, error) {
	return reg.Engine.ReadByteData(ctx, reg.Address, reg.Register)
}

// WriteByteData writes a byte to the register.
func (reg *I2CRegister) WriteByteData(ctx context.Context, data byte) error {
	return reg.Engine.WriteByteData(ctx, reg.Address, reg.Register, data)
}
