package cli

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"
	"go.viam.com/utils"
	"gopkg.in/yaml.v3"

	"go.viam.com/lsm303/components/board/fake"
	"go.viam.com/lsm303/components/board/genericlinux/buses"
	"go.viam.com/lsm303/components/movementsensor/lsm303"
	"go.viam.com/lsm303/logging"
)

const defaultSampleInterval = 100 * time.Millisecond

func joinNames[T interface{ String() string }](values []T) string {
	return strings.Join(lo.Map(values, func(v T, _ int) string { return v.String() }), ", ")
}

func scaleOptions() string {
	return joinNames([]lsm303.Scale{lsm303.Scale2G, lsm303.Scale4G, lsm303.Scale8G, lsm303.Scale16G})
}

func resolutionOptions() string {
	return joinNames([]lsm303.Resolution{lsm303.Resolution10Bit, lsm303.Resolution12Bit, lsm303.Resolution14Bit})
}

func accelODROptions() string {
	var odrs []lsm303.AccelODR
	for odr := lsm303.AccelODR1Hz; odr <= lsm303.AccelODR6400Hz; odr++ {
		odrs = append(odrs, odr)
	}
	return joinNames(odrs)
}

func magModeOptions() string {
	return joinNames([]lsm303.MagMode{lsm303.MagModeContinuous, lsm303.MagModeSingle, lsm303.MagModeIdle})
}

func magODROptions() string {
	return joinNames([]lsm303.MagODR{lsm303.MagODR10Hz, lsm303.MagODR20Hz, lsm303.MagODR50Hz, lsm303.MagODR100Hz})
}

// loadConfig reads the --config file, if any, and applies the global overrides.
func loadConfig(c *cli.Context) (*lsm303.Config, error) {
	cfg := &lsm303.Config{}
	if path := c.String(flagConfig); path != "" {
		//nolint:gosec
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(err, "can't read config")
		}
		attrs := map[string]interface{}{}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			err = yaml.Unmarshal(data, &attrs)
		default:
			err = json.Unmarshal(data, &attrs)
		}
		if err != nil {
			return nil, errors.Wrapf(err, "can't parse config %q", path)
		}
		if cfg, err = lsm303.ConfigFromAttributes(attrs); err != nil {
			return nil, errors.Wrapf(err, "invalid config %q", path)
		}
	}
	if bus := c.String(flagBus); bus != "" {
		cfg.I2CBus = bus
	}
	if c.IsSet(flagTimeout) {
		timeout := c.Duration(flagTimeout)
		if timeout < time.Millisecond {
			return nil, errors.Errorf("--%s must be at least 1ms, got %s", flagTimeout, timeout)
		}
		cfg.TimeoutMs = int(timeout / time.Millisecond)
	}
	if c.Bool(flagFake) && cfg.I2CBus == "" {
		cfg.I2CBus = "fake"
	}
	if _, err := cfg.Validate("lsm303"); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(c *cli.Context) logging.Logger {
	if c.Bool(flagDebug) {
		return logging.NewDebugLogger("lsm303")
	}
	return logging.NewLogger("lsm303")
}

// newFakeChip returns a simulated chip at rest: 1g on Z and 25C.
func newFakeChip(cfg *lsm303.Config) *fake.I2C {
	accelAddr, magAddr := cfg.Addresses()
	bus := fake.NewI2C()
	accel := bus.AddDevice(accelAddr)
	accel.Registers[lsm303.WhoAmIA] = lsm303.AccelWhoAmIValue
	accel.Registers[lsm303.OutZHA] = 0x40
	mag := bus.AddDevice(magAddr)
	mag.Registers[lsm303.WhoAmIM] = lsm303.MagWhoAmIValue
	return bus
}

// session is an open chip for the duration of one command.
type session struct {
	sensor *lsm303.LSM303
	close  func() error
}

func (s *session) Close() error {
	return s.close()
}

// openSession opens the bus and constructs the driver, programming cfg's settings.
func openSession(c *cli.Context, cfg *lsm303.Config) (*session, error) {
	logger := newLogger(c)

	var ctrl buses.Controller
	closeBus := func() error { return nil }
	if c.Bool(flagFake) {
		ctrl = newFakeChip(cfg)
	} else {
		bus, err := buses.OpenPeriphBus(cfg.I2CBus)
		if err != nil {
			return nil, err
		}
		ctrl = bus
		closeBus = bus.CloseBus
	}

	sensor, err := lsm303.New(c.Context, ctrl, cfg, logger)
	if err != nil {
		return nil, multierr.Combine(err, closeBus())
	}
	return &session{sensor: sensor, close: closeBus}, nil
}

func withSession(c *cli.Context, cfg *lsm303.Config, f func(ctx context.Context, s *session) error) (err error) {
	s, err := openSession(c, cfg)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Combine(err, s.Close())
	}()
	return f(c.Context, s)
}

// StatusAction is the corresponding Action for 'status'.
func StatusAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	return withSession(c, cfg, func(ctx context.Context, s *session) error {
		accelAddr, magAddr := cfg.Addresses()
		accel, accelErr := s.sensor.AccelerometerPresent(ctx)
		mag, magErr := s.sensor.MagnetometerPresent(ctx)
		printf(c.App.Writer, "accelerometer at %s: %s", accelAddr, presence(accel, accelErr))
		printf(c.App.Writer, "magnetometer at %s: %s", magAddr, presence(mag, magErr))
		if !accel || !mag {
			return multierr.Combine(errors.New("LSM303 not detected"), accelErr, magErr)
		}
		return nil
	})
}

func presence(present bool, err error) string {
	switch {
	case err != nil:
		return "error: " + err.Error()
	case present:
		return "present"
	default:
		return "unexpected identity"
	}
}

// ConfigureAction is the corresponding Action for 'configure'.
func ConfigureAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	overrides := map[string]*string{
		flagAccelScale:      &cfg.AccelScale,
		flagAccelResolution: &cfg.AccelResolution,
		flagAccelODR:        &cfg.AccelODR,
		flagMagMode:         &cfg.MagMode,
		flagMagODR:          &cfg.MagODR,
	}
	for flag, field := range overrides {
		if c.IsSet(flag) {
			*field = c.String(flag)
		}
	}
	accel, mag, err := cfg.Settings()
	if err != nil {
		return err
	}
	if accel == nil && mag == nil {
		return errors.New("nothing to configure: set accelerometer or magnetometer settings")
	}

	return withSession(c, cfg, func(ctx context.Context, s *session) error {
		accelAddr, magAddr := cfg.Addresses()
		if accel != nil {
			w, err := accel.RegisterWrite(accelAddr)
			if err != nil {
				return err
			}
			printf(c.App.Writer, "accelerometer %s %s %s: %s", accel.Scale, accel.Resolution, accel.ODR, w)
		}
		if mag != nil {
			w, err := mag.RegisterWrite(magAddr)
			if err != nil {
				return err
			}
			printf(c.App.Writer, "magnetometer %s %s: %s", mag.Mode, mag.ODR, w)
		}
		return nil
	})
}

// TemperatureAction is the corresponding Action for 'temperature'.
func TemperatureAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	return withSession(c, cfg, func(ctx context.Context, s *session) error {
		temp, err := s.sensor.ReadTemperature(ctx)
		if err != nil {
			return errors.Wrap(err, "can't read temperature")
		}
		printf(c.App.Writer, "%d C", temp)
		return nil
	})
}

// AccelAction is the corresponding Action for 'accel'.
func AccelAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	count := c.Int(flagCount)
	if count < 1 {
		return errors.Errorf("--%s must be at least 1", flagCount)
	}
	interval := c.Duration(flagInterval)
	return withSession(c, cfg, func(ctx context.Context, s *session) error {
		var scale lsm303.Scale
		if name := c.String(flagScale); name != "" {
			if scale, err = lsm303.ParseScale(name); err != nil {
				return err
			}
		} else if scale, err = s.sensor.Scale(ctx); err != nil {
			return err
		}
		for i := 0; i < count; i++ {
			if i > 0 && !utils.SelectContextOrWait(ctx, interval) {
				return ctx.Err()
			}
			sample, err := s.sensor.ReadAcceleration(ctx, scale)
			if err != nil {
				return errors.Wrap(err, "can't read acceleration")
			}
			printf(c.App.Writer, "x=%.2f y=%.2f z=%.2f g", sample.X, sample.Y, sample.Z)
		}
		return nil
	})
}

// DumpAction is the corresponding Action for 'dump'.
func DumpAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	var only *lsm303.Device
	if name := c.String(flagDevice); name != "" {
		dev, err := parseDevice(name)
		if err != nil {
			return err
		}
		only = &dev
	}
	return withSession(c, cfg, func(ctx context.Context, s *session) error {
		values := s.sensor.DumpRegisters(ctx)
		if only != nil {
			values = lo.Filter(values, func(v lsm303.RegisterValue, _ int) bool { return v.Device == *only })
		}
		var errs []error
		for _, v := range values {
			if v.Err != nil {
				printf(c.App.Writer, "%-13s 0x%02X %-18s error", v.Device, byte(v.Register), v.Name)
				errs = append(errs, errors.Wrapf(v.Err, "%s", v.Name))
				continue
			}
			printf(c.App.Writer, "%-13s 0x%02X %-18s 0x%02X", v.Device, byte(v.Register), v.Name, v.Value)
		}
		return multierr.Combine(errs...)
	})
}

func parseDevice(name string) (lsm303.Device, error) {
	switch strings.ToLower(name) {
	case "accelerometer", "accel", "a":
		return lsm303.Accelerometer, nil
	case "magnetometer", "mag", "m":
		return lsm303.Magnetometer, nil
	default:
		return 0, errors.Errorf("unknown device %q", name)
	}
}

// parseRegister accepts a documented register name such as CTRL1_A or a number such as
// 0x20.
func parseRegister(dev lsm303.Device, s string) (lsm303.Register, error) {
	if info, ok := lo.Find(lsm303.DocumentedRegisters, func(info lsm303.RegisterInfo) bool {
		return info.Device == dev && strings.EqualFold(info.Name, s)
	}); ok {
		return info.Register, nil
	}
	val, err := strconv.ParseUint(s, 0, 8)
	if err != nil {
		return 0, errors.Errorf("unknown %s register %q", dev, s)
	}
	return lsm303.Register(val), nil
}

func registerArgs(c *cli.Context, n int) (lsm303.Device, lsm303.Register, error) {
	if c.Args().Len() != n {
		return 0, 0, errors.Errorf("expected %d arguments, got %d", n, c.Args().Len())
	}
	dev, err := parseDevice(c.Args().Get(0))
	if err != nil {
		return 0, 0, err
	}
	reg, err := parseRegister(dev, c.Args().Get(1))
	if err != nil {
		return 0, 0, err
	}
	return dev, reg, nil
}

// RegisterReadAction is the corresponding Action for 'register read'.
func RegisterReadAction(c *cli.Context) error {
	dev, reg, err := registerArgs(c, 2)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	return withSession(c, cfg, func(ctx context.Context, s *session) error {
		val, err := s.sensor.ReadRegister(ctx, dev, reg)
		if err != nil {
			return err
		}
		printf(c.App.Writer, "%s %s = 0x%02X", dev, reg, val)
		return nil
	})
}

// RegisterWriteAction is the corresponding Action for 'register write'.
func RegisterWriteAction(c *cli.Context) error {
	dev, reg, err := registerArgs(c, 3)
	if err != nil {
		return err
	}
	val, err := strconv.ParseUint(c.Args().Get(2), 0, 8)
	if err != nil {
		return errors.Wrapf(err, "invalid register value %q", c.Args().Get(2))
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	return withSession(c, cfg, func(ctx context.Context, s *session) error {
		if err := s.sensor.WriteRegister(ctx, dev, reg, byte(val)); err != nil {
			return err
		}
		printf(c.App.Writer, "%s %s <- 0x%02X", dev, reg, val)
		return nil
	})
}
