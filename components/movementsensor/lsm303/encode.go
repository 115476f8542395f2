package lsm303

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"go.viam.com/lsm303/components/board/genericlinux/buses"
)

// ErrInvalidConfiguration is returned for settings the chip cannot be programmed with. No
// register is written when it is returned.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// Scale is the accelerometer full-scale range. The values are the CTRL1_A FS bits, which
// the chip does not order by range.
type Scale byte

// Accelerometer full scales.
const (
	Scale2G Scale = iota
	Scale16G
	Scale4G
	Scale8G
)

// Resolution is the number of significant bits in an accelerometer sample.
type Resolution byte

// Accelerometer resolutions.
const (
	Resolution10Bit Resolution = iota
	Resolution12Bit
	Resolution14Bit
)

// AccelODR is the accelerometer output data rate.
type AccelODR byte

// Accelerometer output data rates.
const (
	AccelODR1Hz AccelODR = iota
	AccelODR12Hz5
	AccelODR25Hz
	AccelODR50Hz
	AccelODR100Hz
	AccelODR200Hz
	AccelODR400Hz
	AccelODR800Hz
	AccelODR1600Hz
	AccelODR3200Hz
	AccelODR6400Hz
)

// MagMode is the magnetometer operating mode.
type MagMode byte

// Magnetometer modes.
const (
	MagModeContinuous MagMode = iota
	MagModeSingle
	MagModeIdle
)

// MagODR is the magnetometer output data rate.
type MagODR byte

// Magnetometer output data rates.
const (
	MagODR10Hz MagODR = iota
	MagODR20Hz
	MagODR50Hz
	MagODR100Hz
)

var (
	scaleNames      = map[Scale]string{Scale2G: "2g", Scale4G: "4g", Scale8G: "8g", Scale16G: "16g"}
	resolutionNames = map[Resolution]string{
		Resolution10Bit: "10bit",
		Resolution12Bit: "12bit",
		Resolution14Bit: "14bit",
	}
	accelODRNames = map[AccelODR]string{
		AccelODR1Hz:    "1hz",
		AccelODR12Hz5:  "12.5hz",
		AccelODR25Hz:   "25hz",
		AccelODR50Hz:   "50hz",
		AccelODR100Hz:  "100hz",
		AccelODR200Hz:  "200hz",
		AccelODR400Hz:  "400hz",
		AccelODR800Hz:  "800hz",
		AccelODR1600Hz: "1600hz",
		AccelODR3200Hz: "3200hz",
		AccelODR6400Hz: "6400hz",
	}
	magModeNames = map[MagMode]string{
		MagModeContinuous: "continuous",
		MagModeSingle:     "single",
		MagModeIdle:       "idle",
	}
	magODRNames = map[MagODR]string{MagODR10Hz: "10hz", MagODR20Hz: "20hz", MagODR50Hz: "50hz", MagODR100Hz: "100hz"}
)

func (s Scale) String() string { return enumName(scaleNames, s) }
func (r Resolution) String() string { return enumName(resolutionNames, r) }
func (o AccelODR) String() string { return enumName(accelODRNames, o) }
func (m MagMode) String() string { return enumName(magModeNames, m) }
func (o MagODR) String() string { return enumName(magODRNames, o) }

func enumName[T ~byte](names map[T]string, v T) string {
	if name, ok := names[v]; ok {
		return name
	}
	return fmt.Sprintf("%T(%d)", v, byte(v))
}

func parseEnum[T ~byte](names map[T]string, kind, s string) (T, error) {
	want := strings.ToLower(strings.TrimSpace(s))
	for v, name := range names {
		if name == want {
			return v, nil
		}
	}
	var zero T
	return zero, errors.Wrapf(ErrInvalidConfiguration, "unknown %s %q", kind, s)
}

// ParseScale parses names such as "2g" or "16g".
func ParseScale(s string) (Scale, error) { return parseEnum(scaleNames, "scale", s) }

// ParseResolution parses "10bit", "12bit" or "14bit".
func ParseResolution(s string) (Resolution, error) {
	return parseEnum(resolutionNames, "resolution", s)
}

// ParseAccelODR parses accelerometer rates such as "12.5hz" or "400hz".
func ParseAccelODR(s string) (AccelODR, error) { return parseEnum(accelODRNames, "accelerometer rate", s) }

// ParseMagMode parses "continuous", "single" or "idle".
func ParseMagMode(s string) (MagMode, error) { return parseEnum(magModeNames, "magnetometer mode", s) }

// ParseMagODR parses magnetometer rates such as "10hz".
func ParseMagODR(s string) (MagODR, error) { return parseEnum(magODRNames, "magnetometer rate", s) }

// AccelConfig is an accelerometer setting.
type AccelConfig struct {
	Scale      Scale
	Resolution Resolution
	ODR        AccelODR
}

// MagConfig is a magnetometer setting.
type MagConfig struct {
	Mode MagMode
	ODR  MagODR
}

// CTRL1_A layout: ODR[7:4] FS[3:2] HF_ODR[1] BDU[0].
const (
	accelODRShift   = 4
	accelScaleShift = 2
	accelScaleMask  = 0x3 << accelScaleShift
	accelHFODRBit   = 1 << 1
)

// DecodeScale returns the full scale programmed in a CTRL1_A value.
func DecodeScale(ctrl1 byte) Scale {
	return Scale((ctrl1 & accelScaleMask) >> accelScaleShift)
}

// CFG_REG_A_M layout: COMP_TEMP_EN[7] REBOOT[6] SOFT_RST[5] LP[4] ODR[3:2] MD[1:0].
const (
	magTempCompBit = 1 << 7
	magODRShift    = 2

	// MagIdleValue is CFG_REG_A_M in idle mode at 10Hz.
	MagIdleValue = magTempCompBit | byte(MagODR10Hz)<<magODRShift | byte(MagModeIdle)
)

// EncodeAccel returns the CTRL1_A value for cfg. 10-bit and 14-bit resolutions only run
// up to 800Hz, 12-bit only from 1600Hz up.
func EncodeAccel(cfg AccelConfig) (byte, error) {
	if _, ok := scaleNames[cfg.Scale]; !ok {
		return 0, errors.Wrapf(ErrInvalidConfiguration, "unknown scale %d", cfg.Scale)
	}
	if _, ok := accelODRNames[cfg.ODR]; !ok {
		return 0, errors.Wrapf(ErrInvalidConfiguration, "unknown accelerometer rate %d", cfg.ODR)
	}

	var odrCode, hfODR byte
	switch cfg.Resolution {
	case Resolution10Bit:
		if cfg.ODR > AccelODR800Hz {
			return 0, rateError(cfg)
		}
		odrCode = 0x8 | byte(cfg.ODR)
	case Resolution12Bit:
		if cfg.ODR < AccelODR1600Hz {
			return 0, rateError(cfg)
		}
		odrCode = byte(cfg.ODR) - 3
		hfODR = accelHFODRBit
	case Resolution14Bit:
		if cfg.ODR > AccelODR800Hz {
			return 0, rateError(cfg)
		}
		odrCode = byte(cfg.ODR)
	default:
		return 0, errors.Wrapf(ErrInvalidConfiguration, "unknown resolution %d", cfg.Resolution)
	}
	return odrCode<<accelODRShift | byte(cfg.Scale)<<accelScaleShift | hfODR, nil
}

func rateError(cfg AccelConfig) error {
	return errors.Wrapf(ErrInvalidConfiguration, "%s resolution does not support %s", cfg.Resolution, cfg.ODR)
}

// EncodeMag returns the CFG_REG_A_M value for cfg: temperature compensation on, low
// power off.
func EncodeMag(cfg MagConfig) (byte, error) {
	if _, ok := magModeNames[cfg.Mode]; !ok {
		return 0, errors.Wrapf(ErrInvalidConfiguration, "unknown magnetometer mode %d", cfg.Mode)
	}
	if _, ok := magODRNames[cfg.ODR]; !ok {
		return 0, errors.Wrapf(ErrInvalidConfiguration, "unknown magnetometer rate %d", cfg.ODR)
	}
	return magTempCompBit | byte(cfg.ODR)<<magODRShift | byte(cfg.Mode), nil
}

// RegisterWrite is a single register assignment ready to go on the bus.
type RegisterWrite struct {
	address  buses.Address
	register Register
	value    byte
}

// NewRegisterWrite builds a RegisterWrite.
func NewRegisterWrite(address buses.Address, register Register, value byte) RegisterWrite {
	return RegisterWrite{address: address, register: register, value: value}
}

// Address is the target device address.
func (w RegisterWrite) Address() buses.Address { return w.address }

// Register is the target register.
func (w RegisterWrite) Register() Register { return w.register }

// Value is the byte to write.
func (w RegisterWrite) Value() byte { return w.value }

func (w RegisterWrite) String() string {
	return fmt.Sprintf("%s %s <- 0x%02X", w.address, w.register, w.value)
}

// RegisterWrite encodes cfg for the accelerometer at addr.
func (cfg AccelConfig) RegisterWrite(addr buses.Address) (RegisterWrite, error) {
	val, err := EncodeAccel(cfg)
	if err != nil {
		return RegisterWrite{}, err
	}
	return NewRegisterWrite(addr, Ctrl1A, val), nil
}

// RegisterWrite encodes cfg for the magnetometer at addr.
func (cfg MagConfig) RegisterWrite(addr buses.Address) (RegisterWrite, error) {
	val, err := EncodeMag(cfg)
	if err != nil {
		return RegisterWrite{}, err
	}
	return NewRegisterWrite(addr, CfgRegAM, val), nil
}
