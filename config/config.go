/*
Copyright (c) Facebook, Inc. and its affiliates.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package config

import (
	"fmt"
	"os"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/facebook/uwbdrift/drift"
	"github.com/facebook/uwbdrift/uwb"
	log "github.com/sirupsen/logrus"
	yaml "gopkg.in/yaml.v2"
)

// Config specifies uwbdrift run options
type Config struct {
	PortA         string        `yaml:"porta"`       // serial device of chip A
	PortB         string        `yaml:"portb"`       // serial device of chip B, the reference
	BaudRate      int           `yaml:"baud"`        // console speed of both chips
	Wait          time.Duration `yaml:"wait"`        // wall-clock time between the two rounds
	TickFrequency float64       `yaml:"frequency"`   // nominal tick frequency in Hz
	CounterWidth  uint          `yaml:"width"`       // tick counter width in bits
	MaxLines      int           `yaml:"maxlines"`    // console lines read per sample before giving up
	ReadTimeout   time.Duration `yaml:"readtimeout"` // single serial read timeout
	Settle        time.Duration `yaml:"settle"`      // pause after flushing the consoles
}

// DefaultConfig returns Config initialized with default values
func DefaultConfig() *Config {
	return &Config{
		PortA:         "/dev/ttyACM0",
		PortB:         "/dev/ttyACM1",
		BaudRate:      uwb.DefaultBaudRate,
		Wait:          5 * time.Second,
		TickFrequency: drift.DefaultTickFrequency,
		CounterWidth:  drift.DefaultCounterWidth,
		MaxLines:      uwb.DefaultMaxLines,
		ReadTimeout:   uwb.DefaultReadTimeout,
		Settle:        drift.DefaultSettle,
	}
}

// Estimator returns the measurement part of the config
func (c *Config) Estimator() drift.Config {
	return drift.Config{
		Wait:          c.Wait,
		TickFrequency: c.TickFrequency,
		CounterWidth:  c.CounterWidth,
		Settle:        c.Settle,
	}
}

// Validate config is sane
func (c *Config) Validate() error {
	if c.PortA == "" || c.PortB == "" {
		return fmt.Errorf("both porta and portb must be specified")
	}
	if c.PortA == c.PortB {
		return fmt.Errorf("porta and portb must be different devices, both are %q", c.PortA)
	}
	if c.BaudRate <= 0 {
		return fmt.Errorf("baud must be greater than zero")
	}
	if c.MaxLines <= 0 {
		return fmt.Errorf("maxlines must be greater than zero")
	}
	if c.ReadTimeout <= 0 {
		return fmt.Errorf("readtimeout must be greater than zero")
	}
	est := c.Estimator()
	if err := est.Validate(); err != nil {
		return err
	}
	return nil
}

// ReadConfig reads config from the file
func ReadConfig(path string) (*Config, error) {
	c := DefaultConfig()
	cData, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	err = yaml.Unmarshal(cData, &c)
	if err != nil {
		return nil, err
	}

	return c, nil
}

// MergeConfig builds config from defaults, on-disk config and CLI flags without validating it.
// Only values of flags present in setFlags override the file.
func MergeConfig(cfgPath string, flags *Config, setFlags map[string]bool) (*Config, error) {
	cfg := DefaultConfig()
	var err error
	warn := func(name string) {
		log.Warningf("overriding %s from CLI flag", name)
	}
	if cfgPath != "" {
		cfg, err = ReadConfig(cfgPath)
		if err != nil {
			return nil, fmt.Errorf("reading config from %q: %w", cfgPath, err)
		}
	}
	if setFlags["porta"] {
		warn("porta")
		cfg.PortA = flags.PortA
	}
	if setFlags["portb"] {
		warn("portb")
		cfg.PortB = flags.PortB
	}
	if setFlags["baud"] {
		warn("baud")
		cfg.BaudRate = flags.BaudRate
	}
	if setFlags["wait"] {
		warn("wait")
		cfg.Wait = flags.Wait
	}
	if setFlags["frequency"] {
		warn("frequency")
		cfg.TickFrequency = flags.TickFrequency
	}
	if setFlags["width"] {
		warn("width")
		cfg.CounterWidth = flags.CounterWidth
	}
	if setFlags["maxlines"] {
		warn("maxlines")
		cfg.MaxLines = flags.MaxLines
	}
	if setFlags["readtimeout"] {
		warn("readtimeout")
		cfg.ReadTimeout = flags.ReadTimeout
	}
	if setFlags["settle"] {
		warn("settle")
		cfg.Settle = flags.Settle
	}
	return cfg, nil
}

// PrepareConfig prepares final version of config based on defaults, CLI flags and on-disk config, and validates resulting config
func PrepareConfig(cfgPath string, flags *Config, setFlags map[string]bool) (*Config, error) {
	cfg, err := MergeConfig(cfgPath, flags, setFlags)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	log.Debugf("config: %s", spew.Sdump(cfg))
	return cfg, nil
}
