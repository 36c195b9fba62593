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
	"io/ioutil"
	"os"
	"path/filepath"

	yaml "gopkg.in/yaml.v2"

	"github.com/TheCacophonyProject/thermal-transform/output"
	"github.com/TheCacophonyProject/thermal-transform/throttle"
)

type Config struct {
	OutputDir    string                   `yaml:"output-dir"`
	Distance     float64                  `yaml:"distance"`
	MinTemp      float64                  `yaml:"min-temp"`
	MaxTemp      float64                  `yaml:"max-temp"`
	Format       string                   `yaml:"format"`
	Workers      int                      `yaml:"workers"`
	CopyMetadata bool                     `yaml:"copy-metadata"`
	AtomicWrite  bool                     `yaml:"atomic-write"`
	Exiv2Path    string                   `yaml:"exiv2-path"`
	ExiftoolPath string                   `yaml:"exiftool-path"`
	DJIIRPPath   string                   `yaml:"dji-irp-path"`
	CPTVFrame    int                      `yaml:"cptv-frame"`
	WatchDir     string                   `yaml:"watch-dir"`
	Throttler    throttle.ThrottlerConfig `yaml:"throttle"`
}

var defaultConfig = Config{
	OutputDir:    ".",
	Distance:     1,
	MinTemp:      -20,
	MaxTemp:      120,
	Format:       output.FormatTIFF,
	Workers:      1,
	CopyMetadata: true,
	AtomicWrite:  true,
	Exiv2Path:    "exiv2",
	ExiftoolPath: "exiftool",
	DJIIRPPath:   "dji_irp",
	Throttler:    throttle.DefaultThrottlerConfig(),
}

func (conf *Config) Validate() error {
	if conf.MaxTemp <= conf.MinTemp {
		return errors.New("max-temp should be larger than min-temp")
	}
	if conf.Distance < 0 {
		return errors.New("distance can't be negative")
	}
	if conf.Format != output.FormatTIFF && conf.Format != output.FormatPNG {
		return fmt.Errorf("unknown format %q (should be %s or %s)", conf.Format, output.FormatTIFF, output.FormatPNG)
	}
	if conf.Workers < 1 {
		return errors.New("workers should be at least 1")
	}
	if conf.CPTVFrame < 0 {
		return errors.New("cptv-frame can't be negative")
	}
	if conf.OutputDir == "" {
		return errors.New("output-dir is required")
	}
	if conf.WatchDir != "" && samePath(conf.WatchDir, conf.OutputDir) {
		return errors.New("watch-dir and output-dir should be different")
	}
	return nil
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}

// ParseConfigFile reads the configuration at filename. A missing file
// gives the default configuration.
func ParseConfigFile(filename string) (*Config, error) {
	buf, err := ioutil.ReadFile(filename)
	if os.IsNotExist(err) {
		buf = nil
	} else if err != nil {
		return nil, err
	}
	return ParseConfig(buf)
}

// ParseConfig applies buf over the defaults. It doesn't validate the
// result since command line options may still change it.
func ParseConfig(buf []byte) (*Config, error) {
	conf := defaultConfig
	if err := yaml.Unmarshal(buf, &conf); err != nil {
		return nil, err
	}
	return &conf, nil
}
