package lsm303

import (
	"fmt"

	"go.viam.com/lsm303/components/board/genericlinux/buses"
)

// Default 7-bit device addresses.
const (
	DefaultAccelAddress buses.Address = 0x19
	DefaultMagAddress   buses.Address = 0x1E
)

// Identity values read back from the WHO_AM_I registers.
const (
	AccelWhoAmIValue byte = 0x43
	MagWhoAmIValue   byte = 0x40
)

// Register is a register offset within one of the two devices.
type Register byte

func (r Register) String() string {
	if name, ok := registerNames[r]; ok {
		return name
	}
	return fmt.Sprintf("0x%02X", byte(r))
}

// Accelerometer registers.
const (
	WhoAmIA      Register = 0x0F
	Ctrl1A       Register = 0x20
	Ctrl2A       Register = 0x21
	Ctrl3A       Register = 0x22
	Ctrl4A       Register = 0x23
	Ctrl5A       Register = 0x24
	FifoCtrlA    Register = 0x25
	OutTA        Register = 0x26
	StatusA      Register = 0x27
	OutXLA       Register = 0x28
	OutXHA       Register = 0x29
	OutYLA       Register = 0x2A
	OutYHA       Register = 0x2B
	OutZLA       Register = 0x2C
	OutZHA       Register = 0x2D
	FifoCtrlRegA Register = 0x2E
	FifoSrcRegA  Register = 0x2F
	Int1CfgA     Register = 0x30
	Int1SourceA  Register = 0x31
	Int1ThsA     Register = 0x32
	Int1DurA     Register = 0x33
	Int2CfgA     Register = 0x34
	Int2SourceA  Register = 0x35
	Int2ThsA     Register = 0x36
	Int2DurA     Register = 0x37
	ClickCfgA    Register = 0x38
	ClickSrcA    Register = 0x39
	ClickThsA    Register = 0x3A
	TimeLimitA   Register = 0x3B
	TimeLatencyA Register = 0x3C
	TimeWindowA  Register = 0x3D
	ActThsA      Register = 0x3E
	ActDurA      Register = 0x3F
)

// Magnetometer registers.
const (
	OffsetXLM   Register = 0x45
	OffsetXHM   Register = 0x46
	OffsetYLM   Register = 0x47
	OffsetYHM   Register = 0x48
	OffsetZLM   Register = 0x49
	OffsetZHM   Register = 0x4A
	WhoAmIM     Register = 0x4F
	CfgRegAM    Register = 0x60
	CfgRegBM    Register = 0x61
	CfgRegCM    Register = 0x62
	IntCtrlRegM Register = 0x63
	IntSourceM  Register = 0x64
	IntThsLM    Register = 0x65
	IntThsHM    Register = 0x66
	StatusRegM  Register = 0x67
	OutXLM      Register = 0x68
	OutXHM      Register = 0x69
	OutYLM      Register = 0x6A
	OutYHM      Register = 0x6B
	OutZLM      Register = 0x6C
	OutZHM      Register = 0x6D
)

// accelOutputs are the axis output registers in X, Y, Z order, low byte first.
var accelOutputs = [6]Register{OutXLA, OutXHA, OutYLA, OutYHA, OutZLA, OutZHA}

// Device selects which of the two devices a register belongs to.
type Device int

// The two devices in the package.
const (
	Accelerometer Device = iota
	Magnetometer
)

func (d Device) String() string {
	if d == Magnetometer {
		return "magnetometer"
	}
	return "accelerometer"
}

// A RegisterInfo names a documented register.
type RegisterInfo struct {
	Device   Device
	Register Register
	Name     string
}

// DocumentedRegisters lists every register in the map, accelerometer first, in address
// order.
var DocumentedRegisters = []RegisterInfo{
	{Accelerometer, WhoAmIA, "WHO_AM_I_A"},
	{Accelerometer, Ctrl1A, "CTRL1_A"},
	{Accelerometer, Ctrl2A, "CTRL2_A"},
	{Accelerometer, Ctrl3A, "CTRL3_A"},
	{Accelerometer, Ctrl4A, "CTRL4_A"},
	{Accelerometer, Ctrl5A, "CTRL5_A"},
	{Accelerometer, FifoCtrlA, "FIFO_CTRL_A"},
	{Accelerometer, OutTA, "OUT_T_A"},
	{Accelerometer, StatusA, "STATUS_A"},
	{Accelerometer, OutXLA, "OUT_X_L_A"},
	{Accelerometer, OutXHA, "OUT_X_H_A"},
	{Accelerometer, OutYLA, "OUT_Y_L_A"},
	{Accelerometer, OutYHA, "OUT_Y_H_A"},
	{Accelerometer, OutZLA, "OUT_Z_L_A"},
	{Accelerometer, OutZHA, "OUT_Z_H_A"},
	{Accelerometer, FifoCtrlRegA, "FIFO_CTRL_REG_A"},
	{Accelerometer, FifoSrcRegA, "FIFO_SRC_REG_A"},
	{Accelerometer, Int1CfgA, "INT1_CFG_A"},
	{Accelerometer, Int1SourceA, "INT1_SOURCE_A"},
	{Accelerometer, Int1ThsA, "INT1_THS_A"},
	{Accelerometer, Int1DurA, "INT1_DURATION_A"},
	{Accelerometer, Int2CfgA, "INT2_CFG_A"},
	{Accelerometer, Int2SourceA, "INT2_SOURCE_A"},
	{Accelerometer, Int2ThsA, "INT2_THS_A"},
	{Accelerometer, Int2DurA, "INT2_DURATION_A"},
	{Accelerometer, ClickCfgA, "CLICK_CFG_A"},
	{Accelerometer, ClickSrcA, "CLICK_SRC_A"},
	{Accelerometer, ClickThsA, "CLICK_THS_A"},
	{Accelerometer, TimeLimitA, "TIME_LIMIT_A"},
	{Accelerometer, TimeLatencyA, "TIME_LATENCY_A"},
	{Accelerometer, TimeWindowA, "TIME_WINDOW_A"},
	{Accelerometer, ActThsA, "ACT_THS_A"},
	{Accelerometer, ActDurA, "ACT_DUR_A"},
	{Magnetometer, OffsetXLM, "OFFSET_X_REG_L_M"},
	{Magnetometer, OffsetXHM, "OFFSET_X_REG_H_M"},
	{Magnetometer, OffsetYLM, "OFFSET_Y_REG_L_M"},
	{Magnetometer, OffsetYHM, "OFFSET_Y_REG_H_M"},
	{Magnetometer, OffsetZLM, "OFFSET_Z_REG_L_M"},
	{Magnetometer, OffsetZHM, "OFFSET_Z_REG_H_M"},
	{Magnetometer, WhoAmIM, "WHO_AM_I_M"},
	{Magnetometer, CfgRegAM, "CFG_REG_A_M"},
	{Magnetometer, CfgRegBM, "CFG_REG_B_M"},
	{Magnetometer, CfgRegCM, "CFG_REG_C_M"},
	{Magnetometer, IntCtrlRegM, "INT_CTRL_REG_M"},
	{Magnetometer, IntSourceM, "INT_SOURCE_REG_M"},
	{Magnetometer, IntThsLM, "INT_THS_L_REG_M"},
	{Magnetometer, IntThsHM, "INT_THS_H_REG_M"},
	{Magnetometer, StatusRegM, "STATUS_REG_M"},
	{Magnetometer, OutXLM, "OUTX_L_REG_M"},
	{Magnetometer, OutXHM, "OUTX_H_REG_M"},
	{Magnetometer, OutYLM, "OUTY_L_REG_M"},
	{Magnetometer, OutYHM, "OUTY_H_REG_M"},
	{Magnetometer, OutZLM, "OUTZ_L_REG_M"},
	{Magnetometer, OutZHM, "OUTZ_H_REG_M"},
}

var registerNames = map[Register]string{}

func init() {
	for _, info := range DocumentedRegisters {
		registerNames[info.Register] = info.Name
	}
}
