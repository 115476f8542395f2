package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.viam.com/test"
)

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	err := NewApp(&out, &errOut).Run(append([]string{"lsm303"}, args...))
	return out.String(), err
}

func TestStatusAction(t *testing.T) {
	out, err := runApp(t, "--fake", "status")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, "accelerometer at 0x19: present")
	test.That(t, out, test.ShouldContainSubstring, "magnetometer at 0x1E: present")
}

func TestConfigureAction(t *testing.T) {
	out, err := runApp(t, "--fake", "configure",
		"--accel-scale", "8g", "--accel-resolution", "14bit", "--accel-odr", "400hz")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, "accelerometer 8g 14bit 400hz: 0x19 CTRL1_A <- 0x6C")
	test.That(t, out, test.ShouldNotContainSubstring, "magnetometer")

	out, err = runApp(t, "--fake", "configure", "--mag-mode", "single", "--mag-odr", "100hz")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, "magnetometer single 100hz: 0x1E CFG_REG_A_M <- 0x8D")

	_, err = runApp(t, "--fake", "configure", "--accel-resolution", "12bit", "--accel-odr", "400hz")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "12bit resolution does not support 400hz")

	_, err = runApp(t, "--fake", "configure")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "nothing to configure")
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "lsm303.yaml")
	yamlCfg := "i2c_bus: \"1\"\naccel_scale: 16g\nmag_mode: idle\ntimeout_ms: 20\n"
	test.That(t, os.WriteFile(yamlPath, []byte(yamlCfg), 0o600), test.ShouldBeNil)
	out, err := runApp(t, "--fake", "--config", yamlPath, "configure")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, "accelerometer 16g 10bit 100hz: 0x19 CTRL1_A <- 0xC4")
	test.That(t, out, test.ShouldContainSubstring, "magnetometer idle 10hz: 0x1E CFG_REG_A_M <- 0x82")

	jsonPath := filepath.Join(dir, "lsm303.json")
	test.That(t, os.WriteFile(jsonPath, []byte(`{"i2c_bus": "1", "gyro": true}`), 0o600), test.ShouldBeNil)
	_, err = runApp(t, "--fake", "--config", jsonPath, "status")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "gyro")

	_, err = runApp(t, "--fake", "--config", filepath.Join(dir, "missing.json"), "status")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "can't read config")
}

func TestReadActions(t *testing.T) {
	out, err := runApp(t, "--fake", "temperature")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldEqual, "25 C\n")

	out, err = runApp(t, "--fake", "accel", "--count", "2", "--interval", "1ms")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldEqual, "x=0.00 y=0.00 z=1.00 g\nx=0.00 y=0.00 z=1.00 g\n")

	out, err = runApp(t, "--fake", "accel", "--scale", "4g")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldEqual, "x=0.00 y=0.00 z=2.00 g\n")

	_, err = runApp(t, "--fake", "accel", "--scale", "3g")
	test.That(t, err, test.ShouldNotBeNil)

	_, err = runApp(t, "--fake", "accel", "--count", "0")
	test.That(t, err, test.ShouldNotBeNil)
}

func TestTimeoutFlag(t *testing.T) {
	_, err := runApp(t, "--fake", "--timeout", "500us", "status")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "--timeout must be at least 1ms")

	_, err = runApp(t, "--fake", "--timeout", "0s", "status")
	test.That(t, err, test.ShouldNotBeNil)

	out, err := runApp(t, "--fake", "--timeout", "2ms", "status")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, "accelerometer at 0x19: present")
}

func TestDumpAction(t *testing.T) {
	out, err := runApp(t, "--fake", "dump", "--device", "mag")
	test.That(t, err, test.ShouldBeNil)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	test.That(t, lines, test.ShouldHaveLength, 21)
	test.That(t, out, test.ShouldNotContainSubstring, "accelerometer")
	test.That(t, out, test.ShouldContainSubstring, "WHO_AM_I_M")

	out, err = runApp(t, "--fake", "dump")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, strings.Split(strings.TrimSpace(out), "\n"), test.ShouldHaveLength, 54)

	_, err = runApp(t, "--fake", "dump", "--device", "gyro")
	test.That(t, err, test.ShouldNotBeNil)
}

func TestRegisterActions(t *testing.T) {
	out, err := runApp(t, "--fake", "register", "read", "accel", "who_am_i_a")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldEqual, "accelerometer WHO_AM_I_A = 0x43\n")

	out, err = runApp(t, "--fake", "register", "read", "magnetometer", "0x4f")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldEqual, "magnetometer WHO_AM_I_M = 0x40\n")

	out, err = runApp(t, "--fake", "register", "write", "mag", "OFFSET_X_REG_L_M", "0x12")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldEqual, "magnetometer OFFSET_X_REG_L_M <- 0x12\n")

	_, err = runApp(t, "--fake", "register", "read", "accel")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "expected 2 arguments")

	_, err = runApp(t, "--fake", "register", "read", "accel", "CTRL9_A")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, `unknown accelerometer register "CTRL9_A"`)

	_, err = runApp(t, "--fake", "register", "write", "accel", "CTRL1_A", "0x100")
	test.That(t, err, test.ShouldNotBeNil)
}
