package lsm303

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
)

func TestSignExtend(t *testing.T) {
	test.That(t, SignExtend(0x8000, 16), test.ShouldEqual, -32768)
	test.That(t, SignExtend(0x7FFF, 16), test.ShouldEqual, 32767)
	test.That(t, SignExtend(0xFFFF, 16), test.ShouldEqual, -1)
	test.That(t, SignExtend(0, 16), test.ShouldEqual, 0)
	test.That(t, SignExtend(0x80, 8), test.ShouldEqual, -128)
	test.That(t, SignExtend(0x3FF, 10), test.ShouldEqual, -1)

	for v := 0; v <= math.MaxUint16; v++ {
		got := SignExtend(uint16(v), 16)
		if got != int(int16(v)) {
			t.Fatalf("SignExtend(0x%04X, 16) = %d", v, got)
		}
	}
}

func TestDecodeTemperature(t *testing.T) {
	test.That(t, DecodeTemperature(0x00), test.ShouldEqual, 25)
	test.That(t, DecodeTemperature(0xF6), test.ShouldEqual, 15)
	test.That(t, DecodeTemperature(0x7F), test.ShouldEqual, 152)
	test.That(t, DecodeTemperature(0x80), test.ShouldEqual, -103)
}

func TestRawSampleFromBytes(t *testing.T) {
	raw := RawSampleFromBytes([6]byte{0x34, 0x12, 0x00, 0x80, 0xFF, 0x7F})
	test.That(t, raw, test.ShouldResemble, RawSample{X: 0x1234, Y: -32768, Z: 32767})
}

func TestScaled(t *testing.T) {
	sample := RawSample{X: 1000, Y: 16384, Z: -16384}.Scaled(Scale2G)
	test.That(t, sample, test.ShouldResemble, AccelSample{X: 0.06, Y: 1.0, Z: -1.0})

	sample = RawSample{X: 4096, Y: 2048, Z: 0}.Scaled(Scale8G)
	test.That(t, sample, test.ShouldResemble, AccelSample{X: 1.0, Y: 0.5, Z: 0})

	sample = RawSample{X: 2048}.Scaled(Scale16G)
	test.That(t, sample.X, test.ShouldEqual, 1.0)

	test.That(t, sample.Vector(), test.ShouldResemble, r3.Vector{X: 1.0})
	test.That(t, Scale4G.Sensitivity(), test.ShouldEqual, 0.122)
}
