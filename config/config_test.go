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
	"os"
	"testing"
	"time"

	"github.com/facebook/uwbdrift/drift"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, data string) string {
	f, err := os.CreateTemp("", "uwbdrift")
	require.NoError(t, err)
	t.Cleanup(func() { os.Remove(f.Name()) })
	_, err = f.Write([]byte(data))
	require.NoError(t, err)
	require.NoError(t, f.Close())
	return f.Name()
}

func TestReadConfigMissing(t *testing.T) {
	_, err := ReadConfig("/does/not/exist")
	require.Error(t, err)
}

func TestReadConfigDefaults(t *testing.T) {
	cfg, err := ReadConfig(writeConfig(t, ""))
	require.NoError(t, err)
	require.Equal(t, DefaultConfig(), cfg)
}

func TestReadConfig(t *testing.T) {
	path := writeConfig(t, `porta: /dev/ttyUSB0
portb: /dev/ttyUSB1
baud: 921600
wait: 2s
frequency: 63.8976e9
width: 40
maxlines: 50
readtimeout: 500ms
settle: 1s
`)
	cfg, err := ReadConfig(path)
	require.NoError(t, err)
	want := &Config{
		PortA:         "/dev/ttyUSB0",
		PortB:         "/dev/ttyUSB1",
		BaudRate:      921600,
		Wait:          2 * time.Second,
		TickFrequency: 63.8976e9,
		CounterWidth:  40,
		MaxLines:      50,
		ReadTimeout:   500 * time.Millisecond,
		Settle:        time.Second,
	}
	require.Equal(t, want, cfg)
}

func TestReadConfigBroken(t *testing.T) {
	_, err := ReadConfig(writeConfig(t, "wait: [1, 2"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(c *Config)
		wantErr string
	}{
		{name: "defaults", modify: func(_ *Config) {}},
		{name: "no porta", modify: func(c *Config) { c.PortA = "" }, wantErr: "both porta and portb"},
		{name: "same ports", modify: func(c *Config) { c.PortB = c.PortA }, wantErr: "must be different"},
		{name: "zero baud", modify: func(c *Config) { c.BaudRate = 0 }, wantErr: "baud"},
		{name: "zero maxlines", modify: func(c *Config) { c.MaxLines = 0 }, wantErr: "maxlines"},
		{name: "zero readtimeout", modify: func(c *Config) { c.ReadTimeout = 0 }, wantErr: "readtimeout"},
		{name: "wait too long", modify: func(c *Config) { c.Wait = time.Minute }, wantErr: "wrap more than once"},
		{name: "wide counter", modify: func(c *Config) { c.CounterWidth = 64 }, wantErr: "counter width"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultConfig()
			tt.modify(c)
			err := c.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestValidateMeasurementErrors(t *testing.T) {
	c := DefaultConfig()
	c.TickFrequency = -1
	require.ErrorIs(t, c.Validate(), drift.ErrConfig)
}

func TestEstimator(t *testing.T) {
	c := DefaultConfig()
	want := drift.Config{
		Wait:          5 * time.Second,
		TickFrequency: drift.DefaultTickFrequency,
		CounterWidth:  40,
		Settle:        200 * time.Millisecond,
	}
	require.Equal(t, want, c.Estimator())
}

func TestPrepareConfigDefaults(t *testing.T) {
	cfg, err := PrepareConfig("", &Config{}, map[string]bool{})
	require.NoError(t, err)
	require.Equal(t, DefaultConfig(), cfg)
}

func TestPrepareConfigFlagsOverrideFile(t *testing.T) {
	path := writeConfig(t, `porta: /dev/ttyUSB0
portb: /dev/ttyUSB1
wait: 2s
maxlines: 50
`)
	flags := &Config{
		PortB:    "/dev/ttyUSB7",
		Wait:     10 * time.Second,
		MaxLines: 1,
	}
	cfg, err := PrepareConfig(path, flags, map[string]bool{"portb": true, "wait": true})
	require.NoError(t, err)
	require.Equal(t, "/dev/ttyUSB0", cfg.PortA)
	require.Equal(t, "/dev/ttyUSB7", cfg.PortB)
	require.Equal(t, 10*time.Second, cfg.Wait)
	// not set on the command line
	require.Equal(t, 50, cfg.MaxLines)
}

func TestPrepareConfigAllFlags(t *testing.T) {
	flags := &Config{
		PortA:         "/dev/a",
		PortB:         "/dev/b",
		BaudRate:      9600,
		Wait:          time.Second,
		TickFrequency: 1e9,
		CounterWidth:  48,
		MaxLines:      10,
		ReadTimeout:   time.Second,
		Settle:        0,
	}
	set := map[string]bool{}
	for _, f := range []string{"porta", "portb", "baud", "wait", "frequency", "width", "maxlines", "readtimeout", "settle"} {
		set[f] = true
	}
	cfg, err := PrepareConfig("", flags, set)
	require.NoError(t, err)
	require.Equal(t, flags, cfg)
}

func TestPrepareConfigInvalid(t *testing.T) {
	_, err := PrepareConfig("", &Config{Wait: 0}, map[string]bool{"wait": true})
	require.ErrorContains(t, err, "validating config")
	require.ErrorIs(t, err, drift.ErrConfig)

	_, err = PrepareConfig("/does/not/exist", &Config{}, map[string]bool{})
	require.ErrorContains(t, err, "reading config from")
}

func TestMergeConfigDoesNotValidate(t *testing.T) {
	cfg, err := MergeConfig("", &Config{Wait: 0, PortA: "/dev/x"}, map[string]bool{"wait": true, "porta": true})
	require.NoError(t, err)
	require.Equal(t, time.Duration(0), cfg.Wait)
	require.Equal(t, "/dev/x", cfg.PortA)
	require.Equal(t, "/dev/ttyACM1", cfg.PortB)
}
