package lsm303

import (
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"
	"go.viam.com/utils"

	"go.viam.com/lsm303/components/board/genericlinux/buses"
)

// Config is the user-facing description of a chip. Device settings left empty leave that
// device untouched.
type Config struct {
	I2CBus          string `json:"i2c_bus"`
	AccelAddress    int    `json:"accel_address,omitempty"`
	MagAddress      int    `json:"mag_address,omitempty"`
	AccelScale      string `json:"accel_scale,omitempty"`
	AccelResolution string `json:"accel_resolution,omitempty"`
	AccelODR        string `json:"accel_odr,omitempty"`
	MagMode         string `json:"mag_mode,omitempty"`
	MagODR          string `json:"mag_odr,omitempty"`
	TimeoutMs       int    `json:"timeout_ms,omitempty"`
	PollIntervalUs  int    `json:"poll_interval_us,omitempty"`
	ReadAttempts    int    `json:"read_attempts,omitempty"`
}

// ConfigFromAttributes decodes a loosely typed attribute map, such as a parsed JSON or YAML
// document. Unknown keys are rejected.
func ConfigFromAttributes(attributes map[string]interface{}) (*Config, error) {
	var cfg Config
	var md mapstructure.Metadata
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		Result:           &cfg,
		Metadata:         &md,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(attributes); err != nil {
		return nil, err
	}
	if len(md.Unused) > 0 {
		return nil, errors.Errorf("unknown attributes %v", md.Unused)
	}
	return &cfg, nil
}

// Validate ensures all parts of the config are valid.
func (cfg *Config) Validate(path string) ([]string, error) {
	if cfg.I2CBus == "" {
		return nil, utils.NewConfigValidationFieldRequiredError(path, "i2c_bus")
	}
	if err := cfg.checkAddresses(); err != nil {
		return nil, utils.NewConfigValidationError(path, err)
	}
	if cfg.TimeoutMs < 0 {
		return nil, utils.NewConfigValidationError(path, errors.New("timeout_ms cannot be negative"))
	}
	if cfg.PollIntervalUs < 0 {
		return nil, utils.NewConfigValidationError(path, errors.New("poll_interval_us cannot be negative"))
	}
	if cfg.ReadAttempts < 0 {
		return nil, utils.NewConfigValidationError(path, errors.New("read_attempts cannot be negative"))
	}
	if _, _, err := cfg.Settings(); err != nil {
		return nil, utils.NewConfigValidationError(path, err)
	}
	return nil, nil
}

func (cfg *Config) checkAddresses() error {
	for name, addr := range map[string]int{"accel_address": cfg.AccelAddress, "mag_address": cfg.MagAddress} {
		if addr < 0 || addr > 0x7F {
			return errors.Errorf("%s 0x%X is not a 7-bit address", name, addr)
		}
	}
	return nil
}

// Addresses returns the device addresses, falling back to the defaults.
func (cfg *Config) Addresses() (accel, mag buses.Address) {
	accel, mag = DefaultAccelAddress, DefaultMagAddress
	if cfg.AccelAddress != 0 {
		accel = buses.Address(cfg.AccelAddress)
	}
	if cfg.MagAddress != 0 {
		mag = buses.Address(cfg.MagAddress)
	}
	return accel, mag
}

// Settings parses the device settings. A device whose fields are all empty yields nil.
// Within a device, empty fields take the power-on friendly defaults of 2g, 10-bit, 100Hz
// and continuous at 10Hz.
func (cfg *Config) Settings() (*AccelConfig, *MagConfig, error) {
	var accel *AccelConfig
	if cfg.AccelScale != "" || cfg.AccelResolution != "" || cfg.AccelODR != "" {
		accel = &AccelConfig{Scale: Scale2G, Resolution: Resolution10Bit, ODR: AccelODR100Hz}
		var err error
		if cfg.AccelScale != "" {
			if accel.Scale, err = ParseScale(cfg.AccelScale); err != nil {
				return nil, nil, err
			}
		}
		if cfg.AccelResolution != "" {
			if accel.Resolution, err = ParseResolution(cfg.AccelResolution); err != nil {
				return nil, nil, err
			}
		}
		if cfg.AccelODR != "" {
			if accel.ODR, err = ParseAccelODR(cfg.AccelODR); err != nil {
				return nil, nil, err
			}
		}
		if _, err := EncodeAccel(*accel); err != nil {
			return nil, nil, err
		}
	}

	var mag *MagConfig
	if cfg.MagMode != "" || cfg.MagODR != "" {
		mag = &MagConfig{Mode: MagModeContinuous, ODR: MagODR10Hz}
		var err error
		if cfg.MagMode != "" {
			if mag.Mode, err = ParseMagMode(cfg.MagMode); err != nil {
				return nil, nil, err
			}
		}
		if cfg.MagODR != "" {
			if mag.ODR, err = ParseMagODR(cfg.MagODR); err != nil {
				return nil, nil, err
			}
		}
	}
	return accel, mag, nil
}

// EngineConfig returns the transaction settings. Zero fields select the engine defaults.
func (cfg *Config) EngineConfig() buses.EngineConfig {
	return buses.EngineConfig{
		Timeout:      time.Duration(cfg.TimeoutMs) * time.Millisecond,
		PollInterval: time.Duration(cfg.PollIntervalUs) * time.Microsecond,
		ReadAttempts: cfg.ReadAttempts,
	}
}
