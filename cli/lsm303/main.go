// Package main is the lsm303 command itself.
package main

import (
	"log"
	"os"

	"go.viam.com/lsm303/cli"
)

func main() {
	app := cli.NewApp(os.Stdout, os.Stderr)
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
