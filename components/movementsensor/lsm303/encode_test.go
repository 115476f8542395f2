package lsm303

import (
	"errors"
	"testing"

	"go.viam.com/test"
)

func TestEncodeAccel(t *testing.T) {
	t.Run("known values", func(t *testing.T) {
		for _, tc := range []struct {
			cfg  AccelConfig
			want byte
		}{
			{AccelConfig{Scale8G, Resolution14Bit, AccelODR400Hz}, 0x6C},
			{AccelConfig{Scale2G, Resolution14Bit, AccelODR1Hz}, 0x00},
			{AccelConfig{Scale2G, Resolution10Bit, AccelODR800Hz}, 0xF0},
			{AccelConfig{Scale4G, Resolution10Bit, AccelODR1Hz}, 0x88},
			{AccelConfig{Scale16G, Resolution12Bit, AccelODR1600Hz}, 0x56},
			{AccelConfig{Scale2G, Resolution12Bit, AccelODR6400Hz}, 0x72},
		} {
			got, err := EncodeAccel(tc.cfg)
			test.That(t, err, test.ShouldBeNil)
			test.That(t, got, test.ShouldEqual, tc.want)
		}
	})

	t.Run("resolution and rate coupling", func(t *testing.T) {
		for res := Resolution10Bit; res <= Resolution14Bit; res++ {
			for odr := AccelODR1Hz; odr <= AccelODR6400Hz; odr++ {
				cfg := AccelConfig{Scale: Scale2G, Resolution: res, ODR: odr}
				val, err := EncodeAccel(cfg)
				supported := odr <= AccelODR800Hz
				if res == Resolution12Bit {
					supported = odr >= AccelODR1600Hz
				}
				if !supported {
					test.That(t, errors.Is(err, ErrInvalidConfiguration), test.ShouldBeTrue)
					test.That(t, err.Error(), test.ShouldContainSubstring, "does not support")
					continue
				}
				test.That(t, err, test.ShouldBeNil)
				test.That(t, val&accelHFODRBit != 0, test.ShouldEqual, res == Resolution12Bit)
				test.That(t, val&0x01, test.ShouldEqual, byte(0))
			}
		}
	})

	t.Run("scale bits", func(t *testing.T) {
		for _, scale := range []Scale{Scale2G, Scale4G, Scale8G, Scale16G} {
			val, err := EncodeAccel(AccelConfig{Scale: scale, Resolution: Resolution14Bit, ODR: AccelODR100Hz})
			test.That(t, err, test.ShouldBeNil)
			test.That(t, Scale((val>>2)&0x3), test.ShouldEqual, scale)
		}
	})

	t.Run("out of range values", func(t *testing.T) {
		_, err := EncodeAccel(AccelConfig{Scale: 4, Resolution: Resolution14Bit, ODR: AccelODR100Hz})
		test.That(t, errors.Is(err, ErrInvalidConfiguration), test.ShouldBeTrue)
		_, err = EncodeAccel(AccelConfig{Scale: Scale2G, Resolution: 3, ODR: AccelODR100Hz})
		test.That(t, errors.Is(err, ErrInvalidConfiguration), test.ShouldBeTrue)
		_, err = EncodeAccel(AccelConfig{Scale: Scale2G, Resolution: Resolution14Bit, ODR: 11})
		test.That(t, errors.Is(err, ErrInvalidConfiguration), test.ShouldBeTrue)
	})
}

func TestEncodeMag(t *testing.T) {
	for _, tc := range []struct {
		cfg  MagConfig
		want byte
	}{
		{MagConfig{MagModeContinuous, MagODR10Hz}, 0x80},
		{MagConfig{MagModeSingle, MagODR100Hz}, 0x8D},
		{MagConfig{MagModeIdle, MagODR50Hz}, 0x8A},
		{MagConfig{MagModeContinuous, MagODR20Hz}, 0x84},
	} {
		got, err := EncodeMag(tc.cfg)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, got, test.ShouldEqual, tc.want)
		test.That(t, got&0x10, test.ShouldEqual, byte(0))
	}

	_, err := EncodeMag(MagConfig{Mode: 3, ODR: MagODR10Hz})
	test.That(t, errors.Is(err, ErrInvalidConfiguration), test.ShouldBeTrue)
	_, err = EncodeMag(MagConfig{Mode: MagModeIdle, ODR: 4})
	test.That(t, errors.Is(err, ErrInvalidConfiguration), test.ShouldBeTrue)
}

func TestDecodeScale(t *testing.T) {
	for _, scale := range []Scale{Scale2G, Scale4G, Scale8G, Scale16G} {
		val, err := EncodeAccel(AccelConfig{Scale: scale, Resolution: Resolution14Bit, ODR: AccelODR400Hz})
		test.That(t, err, test.ShouldBeNil)
		test.That(t, DecodeScale(val), test.ShouldEqual, scale)
	}
	test.That(t, DecodeScale(0x6C), test.ShouldEqual, Scale8G)

	idle, err := EncodeMag(MagConfig{Mode: MagModeIdle, ODR: MagODR10Hz})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, idle, test.ShouldEqual, MagIdleValue)
	test.That(t, MagIdleValue, test.ShouldEqual, byte(0x82))
}

func TestParse(t *testing.T) {
	scale, err := ParseScale(" 16G ")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, scale, test.ShouldEqual, Scale16G)

	res, err := ParseResolution("12bit")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, res, test.ShouldEqual, Resolution12Bit)

	odr, err := ParseAccelODR("12.5Hz")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, odr, test.ShouldEqual, AccelODR12Hz5)

	mode, err := ParseMagMode("single")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, mode, test.ShouldEqual, MagModeSingle)

	magODR, err := ParseMagODR("100hz")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, magODR, test.ShouldEqual, MagODR100Hz)

	_, err = ParseScale("3g")
	test.That(t, errors.Is(err, ErrInvalidConfiguration), test.ShouldBeTrue)
	test.That(t, err.Error(), test.ShouldContainSubstring, `unknown scale "3g"`)

	test.That(t, Scale8G.String(), test.ShouldEqual, "8g")
	test.That(t, AccelODR3200Hz.String(), test.ShouldEqual, "3200hz")
	test.That(t, Scale(9).String(), test.ShouldEqual, "lsm303.Scale(9)")
}

func TestRegisterWrite(t *testing.T) {
	w, err := AccelConfig{Scale8G, Resolution14Bit, AccelODR400Hz}.RegisterWrite(DefaultAccelAddress)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, w.Address(), test.ShouldEqual, DefaultAccelAddress)
	test.That(t, w.Register(), test.ShouldEqual, Ctrl1A)
	test.That(t, w.Value(), test.ShouldEqual, byte(0x6C))
	test.That(t, w.String(), test.ShouldEqual, "0x19 CTRL1_A <- 0x6C")

	w, err = MagConfig{MagModeContinuous, MagODR10Hz}.RegisterWrite(DefaultMagAddress)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, w, test.ShouldResemble, NewRegisterWrite(DefaultMagAddress, CfgRegAM, 0x80))

	_, err = AccelConfig{Scale2G, Resolution12Bit, AccelODR100Hz}.RegisterWrite(DefaultAccelAddress)
	test.That(t, errors.Is(err, ErrInvalidConfiguration), test.ShouldBeTrue)
}
