// thermal-transform - convert radiometric thermal images to calibrated rasters
//  Copyright (C) 2021, The Cacophony Project
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	arg "github.com/alexflint/go-arg"
	"github.com/maruel/interrupt"

	"github.com/TheCacophonyProject/thermal-transform/output"
)

var version = "<not set>"

type Args struct {
	ConfigFile string   `arg:"-c,--config" help:"path to configuration file"`
	Output     string   `arg:"-o,--output" help:"directory to write converted images to"`
	Distance   *float64 `arg:"-d,--distance" help:"distance to the subject in metres"`
	Min        *float64 `arg:"--min" help:"temperature (°C) mapped to black"`
	Max        *float64 `arg:"--max" help:"temperature (°C) mapped to white"`
	Format     string   `arg:"-f,--format" help:"output format: tiff or png"`
	PNG        bool     `arg:"--png" help:"write PNG images (same as --format png)"`
	Workers    int      `arg:"-j,--workers" help:"number of files to convert concurrently"`
	NoMetadata bool     `arg:"--no-metadata" help:"don't copy EXIF and XMP metadata to converted images"`
	Watch      string   `arg:"-w,--watch" help:"convert images as they appear in this directory"`
	Timestamps bool     `arg:"-t,--timestamps" help:"include timestamps in log output"`
	Inputs     []string `arg:"positional" help:"images, recordings or directories to convert"`
}

func (Args) Version() string {
	return version
}

func procArgs() Args {
	var args Args
	args.ConfigFile = "/etc/thermal-transform.yaml"
	arg.MustParse(&args)
	return args
}

// applyArgs overrides the configuration with anything given on the
// command line.
func applyArgs(conf *Config, args Args) {
	if args.Output != "" {
		conf.OutputDir = args.Output
	}
	if args.Distance != nil {
		conf.Distance = *args.Distance
	}
	if args.Min != nil {
		conf.MinTemp = *args.Min
	}
	if args.Max != nil {
		conf.MaxTemp = *args.Max
	}
	if args.Format != "" {
		conf.Format = args.Format
	}
	if args.PNG {
		conf.Format = output.FormatPNG
	}
	if args.Workers > 0 {
		conf.Workers = args.Workers
	}
	if args.NoMetadata {
		conf.CopyMetadata = false
	}
	if args.Watch != "" {
		conf.WatchDir = args.Watch
	}
}

func main() {
	err := runMain()
	if err != nil {
		log.Fatal(err)
	}
}

func runMain() error {
	args := procArgs()

	if !args.Timestamps {
		log.SetFlags(0) // Removes default timestamp flag
	}

	log.Printf("running version: %s", version)
	conf, err := ParseConfigFile(args.ConfigFile)
	if err != nil {
		return err
	}
	applyArgs(conf, args)
	if err := conf.Validate(); err != nil {
		return err
	}

	logConfig(conf)

	if err := os.MkdirAll(conf.OutputDir, 0755); err != nil {
		return err
	}
	if conf.AtomicWrite {
		log.Println("deleting temp files")
		if err := output.DeleteTempFiles(conf.OutputDir); err != nil {
			return err
		}
	}

	proc, err := newProcessor(conf)
	if err != nil {
		return err
	}

	interrupt.HandleCtrlC()

	if conf.WatchDir != "" {
		return runWatch(conf, proc)
	}

	if len(args.Inputs) == 0 {
		return errors.New("no input files given")
	}
	files, err := collectInputs(args.Inputs)
	if err != nil {
		return err
	}
	result := runBatch(proc, files, conf.Workers)
	log.Printf("converted %d of %d files", result.converted, len(files))
	if result.skipped > 0 {
		log.Printf("%d files skipped after interrupt", result.skipped)
	}
	if result.failed > 0 {
		return fmt.Errorf("%d files failed", result.failed)
	}
	return nil
}

func logConfig(conf *Config) {
	log.Printf("output dir: %s", conf.OutputDir)
	log.Printf("output format: %s", conf.Format)
	log.Printf("temperature range: %.2f°C to %.2f°C", conf.MinTemp, conf.MaxTemp)
	log.Printf("distance: %.2fm", conf.Distance)
	log.Printf("workers: %d", conf.Workers)
	log.Printf("copy metadata: %t", conf.CopyMetadata)
	log.Printf("atomic write: %t", conf.AtomicWrite)
	log.Printf("cptv frame: %d", conf.CPTVFrame)
	if conf.WatchDir != "" {
		log.Printf("watch dir: %s", conf.WatchDir)
		log.Printf("throttler: %+v", conf.Throttler)
	}
}
