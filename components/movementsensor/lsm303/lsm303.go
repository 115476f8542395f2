// Package lsm303 implements a driver for the LSM303A combined 3-axis accelerometer and
// magnetometer. The chip answers on two I2C addresses, one per device, and every access
// is a single-register read or write.
//
// We support configuring both devices, checking that they are present, and reading
// acceleration and temperature. We do not support the FIFO, the interrupt generators or
// click detection, although their registers are listed in the register map.
//
// Accelerometer resolution and output data rate are coupled: 10-bit and 14-bit samples
// are available up to 800Hz, 12-bit samples only at 1600Hz and above.
package lsm303

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/lsm303/components/board/genericlinux/buses"
	"go.viam.com/lsm303/logging"
)

// LSM303 is a connected chip.
type LSM303 struct {
	engine    *buses.Engine
	accelAddr buses.Address
	magAddr   buses.Address
	logger    logging.Logger

	// Serializes transactions: the engine handles one at a time.
	mu sync.Mutex
	// scale is valid once scaleKnown is set, by programming CTRL1_A or reading it back.
	scale      Scale
	scaleKnown bool
}

// New constructs an LSM303 on ctrl. When cfg names accelerometer or magnetometer settings
// the corresponding device must answer with its identity byte and is then programmed.
func New(ctx context.Context, ctrl buses.Controller, cfg *Config, logger logging.Logger) (*LSM303, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	if err := cfg.checkAddresses(); err != nil {
		return nil, err
	}
	accel, mag, err := cfg.Settings()
	if err != nil {
		return nil, err
	}

	accelAddr, magAddr := cfg.Addresses()
	logger.Debugf("using accelerometer address %s and magnetometer address %s", accelAddr, magAddr)

	sensor := &LSM303{
		engine:    buses.NewEngine(ctrl, cfg.EngineConfig(), logger.Sublogger("i2c")),
		accelAddr: accelAddr,
		magAddr:   magAddr,
		logger:    logger,
	}

	if accel != nil {
		if err := sensor.requirePresent(ctx, Accelerometer); err != nil {
			return nil, err
		}
		if err := sensor.ConfigureAccelerometer(ctx, *accel); err != nil {
			return nil, errors.Wrap(err, "unable to configure accelerometer")
		}
	}
	if mag != nil {
		if err := sensor.requirePresent(ctx, Magnetometer); err != nil {
			return nil, err
		}
		if err := sensor.ConfigureMagnetometer(ctx, *mag); err != nil {
			return nil, errors.Wrap(err, "unable to configure magnetometer")
		}
	}
	return sensor, nil
}

func (s *LSM303) requirePresent(ctx context.Context, dev Device) error {
	var present bool
	var err error
	if dev == Magnetometer {
		present, err = s.MagnetometerPresent(ctx)
	} else {
		present, err = s.AccelerometerPresent(ctx)
	}
	if err != nil {
		return errors.Wrapf(err, "can't read %s identity at %s", dev, s.address(dev))
	}
	if !present {
		return errors.Errorf("unexpected non-LSM303 %s at address %s", dev, s.address(dev))
	}
	return nil
}

func (s *LSM303) address(dev Device) buses.Address {
	if dev == Magnetometer {
		return s.magAddr
	}
	return s.accelAddr
}

func (s *LSM303) apply(ctx context.Context, w RegisterWrite) error {
	s.logger.Debugf("writing %s", w)
	return s.engine.WriteByteData(ctx, w.Address(), byte(w.Register()), w.Value())
}

func (s *LSM303) read(ctx context.Context, dev Device, reg Register) (byte, error) {
	return s.engine.ReadByteData(ctx, s.address(dev), byte(reg))
}

// ConfigureAccelerometer programs CTRL1_A. An unsupported resolution and rate pair fails
// with ErrInvalidConfiguration before the bus is touched.
func (s *LSM303) ConfigureAccelerometer(ctx context.Context, cfg AccelConfig) error {
	w, err := cfg.RegisterWrite(s.accelAddr)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.apply(ctx, w); err != nil {
		return err
	}
	s.scale, s.scaleKnown = cfg.Scale, true
	return nil
}

// ConfigureMagnetometer programs CFG_REG_A_M.
func (s *LSM303) ConfigureMagnetometer(ctx context.Context, cfg MagConfig) error {
	w, err := cfg.RegisterWrite(s.magAddr)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.apply(ctx, w)
}

// AccelerometerPresent reports whether WHO_AM_I_A holds the accelerometer identity. A
// transport failure reports false along with the error.
func (s *LSM303) AccelerometerPresent(ctx context.Context) (bool, error) {
	return s.identify(ctx, Accelerometer, WhoAmIA, AccelWhoAmIValue)
}

// MagnetometerPresent reports whether WHO_AM_I_M holds the magnetometer identity.
func (s *LSM303) MagnetometerPresent(ctx context.Context) (bool, error) {
	return s.identify(ctx, Magnetometer, WhoAmIM, MagWhoAmIValue)
}

func (s *LSM303) identify(ctx context.Context, dev Device, reg Register, want byte) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	got, err := s.read(ctx, dev, reg)
	if err != nil {
		return false, err
	}
	if got != want {
		s.logger.Debugf("%s identity mismatch: read 0x%02X, want 0x%02X", dev, got, want)
		return false, nil
	}
	return true, nil
}

// ReadTemperature returns the die temperature in whole degrees Celsius.
func (s *LSM303) ReadTemperature(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, err := s.read(ctx, Accelerometer, OutTA)
	if err != nil {
		return 0, err
	}
	return DecodeTemperature(raw), nil
}

// ReadRawAcceleration reads the six axis output registers.
func (s *LSM303) ReadRawAcceleration(ctx context.Context) (RawSample, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var data [6]byte
	for i, reg := range accelOutputs {
		val, err := s.read(ctx, Accelerometer, reg)
		if err != nil {
			return RawSample{}, errors.Wrapf(err, "can't read %s", reg)
		}
		data[i] = val
	}
	return RawSampleFromBytes(data), nil
}

// ReadAcceleration reads the three axes and scales them with the sensitivity of scale,
// which should be the scale the accelerometer was configured with.
func (s *LSM303) ReadAcceleration(ctx context.Context, scale Scale) (AccelSample, error) {
	if _, ok := sensitivity[scale]; !ok {
		return AccelSample{}, errors.Wrapf(ErrInvalidConfiguration, "unknown scale %d", scale)
	}
	raw, err := s.ReadRawAcceleration(ctx)
	if err != nil {
		return AccelSample{}, err
	}
	return raw.Scaled(scale), nil
}

// ReadRegister reads any register of either device.
func (s *LSM303) ReadRegister(ctx context.Context, dev Device, reg Register) (byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read(ctx, dev, reg)
}

// WriteRegister writes any register of either device. Writing CTRL1_A also updates the
// scale used by Readings.
func (s *LSM303) WriteRegister(ctx context.Context, dev Device, reg Register, value byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.apply(ctx, NewRegisterWrite(s.address(dev), reg, value)); err != nil {
		return err
	}
	if dev == Accelerometer && reg == Ctrl1A {
		s.scale, s.scaleKnown = DecodeScale(value), true
	}
	return nil
}

// A RegisterValue is one entry of a register dump.
type RegisterValue struct {
	RegisterInfo
	Value byte
	Err   error
}

// DumpRegisters reads every documented register. A failed read is recorded in its entry
// and does not stop the dump.
func (s *LSM303) DumpRegisters(ctx context.Context) []RegisterValue {
	s.mu.Lock()
	defer s.mu.Unlock()
	values := make([]RegisterValue, 0, len(DocumentedRegisters))
	for _, info := range DocumentedRegisters {
		val, err := s.read(ctx, info.Device, info.Register)
		values = append(values, RegisterValue{RegisterInfo: info, Value: val, Err: err})
		if ctx.Err() != nil {
			break
		}
	}
	return values
}

// Scale returns the accelerometer full scale. Unless this LSM303 programmed CTRL1_A
// itself, the scale is read back from the chip the first time it is needed.
func (s *LSM303) Scale(ctx context.Context) (Scale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.scaleKnown {
		return s.scale, nil
	}
	ctrl1, err := s.read(ctx, Accelerometer, Ctrl1A)
	if err != nil {
		return 0, errors.Wrap(err, "can't read accelerometer scale")
	}
	s.scale, s.scaleKnown = DecodeScale(ctrl1), true
	s.logger.Debugf("accelerometer scale read back as %s", s.scale)
	return s.scale, nil
}

// Readings returns the acceleration, scaled with the chip's full scale, and the
// temperature.
func (s *LSM303) Readings(ctx context.Context, extra map[string]interface{}) (map[string]interface{}, error) {
	scale, err := s.Scale(ctx)
	if err != nil {
		return nil, err
	}
	accel, err := s.ReadAcceleration(ctx, scale)
	if err != nil {
		return nil, err
	}
	temp, err := s.ReadTemperature(ctx)
	if err != nil {
		return nil, err
	}

	readings := make(map[string]interface{})
	readings["acceleration_g"] = accel.Vector()
	readings["temperature_celsius"] = temp
	return readings, nil
}

// Close puts the accelerometer in power-down (ODR code 0) and the magnetometer in idle.
func (s *LSM303) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var errs []error
	if err := s.apply(ctx, NewRegisterWrite(s.accelAddr, Ctrl1A, 0)); err != nil {
		errs = append(errs, errors.Wrap(err, "can't power down accelerometer"))
	} else {
		s.scale, s.scaleKnown = DecodeScale(0), true
	}
	if err := s.apply(ctx, NewRegisterWrite(s.magAddr, CfgRegAM, MagIdleValue)); err != nil {
		errs = append(errs, errors.Wrap(err, "can't idle magnetometer"))
	}
	return multierr.Combine(errs...)
}
