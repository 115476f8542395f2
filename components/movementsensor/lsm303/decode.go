package lsm303

import (
	"math"

	"github.com/golang/geo/r3"
)

// temperatureOffset is the reading of OUT_T_A when it contains zero.
const temperatureOffset = 25

// sensitivity is mg per LSB for each full scale.
var sensitivity = map[Scale]float64{
	Scale2G:  0.061,
	Scale4G:  0.122,
	Scale8G:  0.244,
	Scale16G: 0.488,
}

// Sensitivity returns the mg per LSB of s.
func (s Scale) Sensitivity() float64 {
	return sensitivity[s]
}

// SignExtend interprets the low bits of raw as a two's complement number.
func SignExtend(raw uint16, bits uint) int {
	msb := 1 << (bits - 1)
	if int(raw)&msb != 0 {
		return int(raw) | ^(msb - 1)
	}
	return int(raw)
}

// DecodeTemperature converts OUT_T_A to degrees Celsius.
func DecodeTemperature(raw byte) int {
	return SignExtend(uint16(raw), 8) + temperatureOffset
}

// RawSample is one accelerometer reading in LSBs.
type RawSample struct {
	X, Y, Z int16
}

// RawSampleFromBytes assembles a sample from the six output registers, low byte first for
// each of X, Y and Z.
func RawSampleFromBytes(data [6]byte) RawSample {
	axis := func(i int) int16 {
		return int16(SignExtend(uint16(data[i+1])<<8|uint16(data[i]), 16))
	}
	return RawSample{X: axis(0), Y: axis(2), Z: axis(4)}
}

// AccelSample is an acceleration in g, rounded to hundredths.
type AccelSample struct {
	X, Y, Z float64
}

// scaleAxis converts raw LSBs to mg with the scale's sensitivity, then rounds to tens of
// mg and reports g. The two roundings must stay separate to reproduce existing readings.
func scaleAxis(raw int16, s Scale) float64 {
	return math.Round(float64(raw)*s.Sensitivity()/10.0) / 100.0
}

// Scaled converts s using the sensitivity of scale.
func (s RawSample) Scaled(scale Scale) AccelSample {
	return AccelSample{
		X: scaleAxis(s.X, scale),
		Y: scaleAxis(s.Y, scale),
		Z: scaleAxis(s.Z, scale),
	}
}

// Vector returns the sample as an r3.Vector.
func (s AccelSample) Vector() r3.Vector {
	return r3.Vector{X: s.X, Y: s.Y, Z: s.Z}
}
