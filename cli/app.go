// Package cli contains the lsm303 command line tool.
package cli

import (
	"fmt"
	"io"

	"github.com/urfave/cli/v2"
)

const (
	// Global flags.
	flagConfig  = "config"
	flagBus     = "bus"
	flagFake    = "fake"
	flagDebug   = "debug"
	flagTimeout = "timeout"

	// Configure flags.
	flagAccelScale      = "accel-scale"
	flagAccelResolution = "accel-resolution"
	flagAccelODR        = "accel-odr"
	flagMagMode         = "mag-mode"
	flagMagODR          = "mag-odr"

	// Accel flags.
	flagCount    = "count"
	flagInterval = "interval"
	flagScale    = "scale"

	// Dump flags.
	flagDevice = "device"
)

var app = &cli.App{
	Name:            "lsm303",
	Usage:           "configure and read an LSM303 accelerometer and magnetometer",
	HideHelpCommand: true,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    flagConfig,
			Aliases: []string{"c"},
			Usage:   "load configuration from `FILE` (.json, .yaml or .yml)",
		},
		&cli.StringFlag{
			Name:  flagBus,
			Usage: "I2C bus name, overriding the configuration",
		},
		&cli.BoolFlag{
			Name:  flagFake,
			Usage: "use a simulated chip instead of a real bus",
		},
		&cli.BoolFlag{
			Name:    flagDebug,
			Aliases: []string{"vvv"},
			Usage:   "enable debug logging",
		},
		&cli.DurationFlag{
			Name:  flagTimeout,
			Usage: "per-transaction timeout, overriding the configuration",
		},
	},
	Commands: []*cli.Command{
		{
			Name:   "status",
			Usage:  "check that both devices answer with their identity",
			Action: StatusAction,
		},
		{
			Name:  "configure",
			Usage: "program the accelerometer and magnetometer",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  flagAccelScale,
					Usage: "accelerometer full scale: " + scaleOptions(),
				},
				&cli.StringFlag{
					Name:  flagAccelResolution,
					Usage: "accelerometer resolution: " + resolutionOptions(),
				},
				&cli.StringFlag{
					Name:  flagAccelODR,
					Usage: "accelerometer output data rate: " + accelODROptions(),
				},
				&cli.StringFlag{
					Name:  flagMagMode,
					Usage: "magnetometer mode: " + magModeOptions(),
				},
				&cli.StringFlag{
					Name:  flagMagODR,
					Usage: "magnetometer output data rate: " + magODROptions(),
				},
			},
			Action: ConfigureAction,
		},
		{
			Name:   "temperature",
			Usage:  "read the die temperature",
			Action: TemperatureAction,
		},
		{
			Name:  "accel",
			Usage: "read acceleration samples",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:  flagCount,
					Value: 1,
					Usage: "number of samples to read",
				},
				&cli.DurationFlag{
					Name:  flagInterval,
					Value: defaultSampleInterval,
					Usage: "time between samples",
				},
				&cli.StringFlag{
					Name:  flagScale,
					Usage: "full scale to convert samples with, instead of the chip's: " + scaleOptions(),
				},
			},
			Action: AccelAction,
		},
		{
			Name:  "dump",
			Usage: "print every documented register",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  flagDevice,
					Usage: "only dump registers of this device: accelerometer or magnetometer",
				},
			},
			Action: DumpAction,
		},
		{
			Name:            "register",
			Usage:           "access single registers",
			HideHelpCommand: true,
			Subcommands: []*cli.Command{
				{
					Name:      "read",
					Usage:     "read one register",
					ArgsUsage: "<accelerometer|magnetometer> <register>",
					Action:    RegisterReadAction,
				},
				{
					Name:      "write",
					Usage:     "write one register",
					ArgsUsage: "<accelerometer|magnetometer> <register> <value>",
					Action:    RegisterWriteAction,
				},
			},
		},
	},
}

// NewApp returns a new app with the CLI API, Writer set to out, and ErrWriter
// set to errOut.
func NewApp(out, errOut io.Writer) *cli.App {
	app.Writer = out
	app.ErrWriter = errOut
	return app
}

func printf(w io.Writer, format string, a ...interface{}) {
	//nolint:errcheck
	fmt.Fprintf(w, format+"\n", a...)
}
