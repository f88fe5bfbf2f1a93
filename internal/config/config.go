// Copyright 2021 Clayton Craft <clayton@craftyguy.net>
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	toml "github.com/pelletier/go-toml"

	"gitlab.com/postmarketOS/nmeaterm/internal/port"
)

const DefaultPollIntervalMs = 10

type Config struct {
	Port           string `toml:"port"`
	BaudRate       int    `toml:"baud_rate"`
	DataBits       int    `toml:"data_bits"`
	ReadTimeoutMs  int    `toml:"read_timeout_ms"`
	WriteTimeoutMs int    `toml:"write_timeout_ms"`
	PollIntervalMs int    `toml:"poll_interval_ms"`

	// Track logging is off when LogFile is empty.
	LogFile string `toml:"log_file"`

	Socket     string `toml:"socket"`
	OwnerGroup string `toml:"group"`

	MQTTBroker   string `toml:"mqtt_broker"`
	MQTTTopic    string `toml:"mqtt_topic"`
	MQTTClientID string `toml:"mqtt_client_id"`

	MetricsAddr string `toml:"metrics_addr"`
	LogLevel    string `toml:"log_level"`
}

func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

func (c *Config) applyDefaults() {
	if c.BaudRate == 0 {
		c.BaudRate = port.DefaultBaudRate
	}
	if c.DataBits == 0 {
		c.DataBits = port.DefaultDataBits
	}
	if c.ReadTimeoutMs == 0 {
		c.ReadTimeoutMs = int(port.DefaultReadTimeout / time.Millisecond)
	}
	if c.WriteTimeoutMs == 0 {
		c.WriteTimeoutMs = int(port.DefaultWriteTimeout / time.Millisecond)
	}
	if c.PollIntervalMs == 0 {
		c.PollIntervalMs = DefaultPollIntervalMs
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

func Parse(file string) (c *Config, err error) {
	contents, err := os.ReadFile(file)
	if err != nil {
		err = fmt.Errorf("config.Parse(): %w", err)
		return
	}

	c = &Config{}

	if err = toml.Unmarshal(contents, c); err != nil {
		err = fmt.Errorf("config.Parse(): %w", err)
		return
	}
	c.applyDefaults()

	return
}

// Load is Parse, except that a missing file yields the defaults when
// optional is set.
func Load(file string, optional bool) (*Config, error) {
	c, err := Parse(file)
	if optional && errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return c, err
}

func (c *Config) Validate() error {
	if c.BaudRate <= 0 {
		return fmt.Errorf("config.Validate(): invalid baud rate %d", c.BaudRate)
	}
	if c.DataBits < 5 || c.DataBits > 8 {
		return fmt.Errorf("config.Validate(): data bits must be 5-8, got %d", c.DataBits)
	}
	if c.ReadTimeoutMs <= 0 || c.WriteTimeoutMs <= 0 {
		return fmt.Errorf("config.Validate(): timeouts must be positive")
	}
	if c.PollIntervalMs <= 0 {
		return fmt.Errorf("config.Validate(): poll interval must be positive")
	}
	return nil
}

// PortConfig is the serial setup for the port called name.
func (c *Config) PortConfig(name string) port.Config {
	return port.Config{
		Name:         name,
		BaudRate:     c.BaudRate,
		DataBits:     c.DataBits,
		ReadTimeout:  time.Duration(c.ReadTimeoutMs) * time.Millisecond,
		WriteTimeout: time.Duration(c.WriteTimeoutMs) * time.Millisecond,
	}
}

func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMs) * time.Millisecond
}
