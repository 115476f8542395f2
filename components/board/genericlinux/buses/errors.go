package buses

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrTransportFailure is matched by every *TransportError.
	ErrTransportFailure = errors.New("i2c transport failure")
	// ErrTransportTimeout is returned when a transaction does not finish within the
	// engine's timeout budget.
	ErrTransportTimeout = errors.New("i2c transaction timed out")
	// ErrReadRetriesExhausted is returned when every read attempt failed. The byte returned
	// alongside it is whatever the last attempt left in the receive buffer.
	ErrReadRetriesExhausted = errors.New("i2c read retries exhausted")
)

// TransportError carries the controller status that ended a transaction.
type TransportError struct {
	Status   Status
	Address  Address
	Register byte
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("i2c transaction with %s register 0x%02X failed: %s",
		e.Address, e.Register, e.Status)
}

// Is lets errors.Is(err, ErrTransportFailure) match any transport error.
func (e *TransportError) Is(target error) bool {
	return target == ErrTransportFailure
}

// StatusOf returns the controller status carried by err, StatusOK for a nil error and
// StatusBusError for errors that carry no status.
func StatusOf(err error) Status {
	if err == nil {
		return StatusOK
	}
	var te *TransportError
	if errors.As(err, &te) {
		return te.Status
	}
	return StatusBusError
}
