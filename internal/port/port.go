// Copyright 2021 Clayton Craft <clayton@craftyguy.net>
// SPDX-License-Identifier: GPL-3.0-or-later

// Package port owns the serial connection to the GNSS device: port
// selection, timeout bounded line reads and writes, and release.
package port

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"go.bug.st/serial"
)

var (
	ErrPortUnavailable  = errors.New("serial port unavailable")
	ErrNoPortsAvailable = errors.New("no serial ports available")
	ErrReadTimeout      = errors.New("serial read timed out")
	ErrWriteTimeout     = errors.New("serial write timed out")
	ErrPortLost         = errors.New("serial port lost")
)

const (
	DefaultBaudRate     = 4800
	DefaultDataBits     = 8
	DefaultReadTimeout  = 500 * time.Millisecond
	DefaultWriteTimeout = 500 * time.Millisecond

	// NMEA sentences are at most 82 characters, anything this long without
	// a line feed is handed up as is.
	maxLineLength = 1024
)

// Config is fixed for the lifetime of a Channel. Parity is always none and
// there is always one stop bit.
type Config struct {
	Name         string
	BaudRate     int
	DataBits     int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

func (c Config) mode() *serial.Mode {
	return &serial.Mode{
		BaudRate: c.BaudRate,
		DataBits: c.DataBits,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
}

// Port is the part of go.bug.st/serial.Port a Channel needs.
type Port interface {
	io.ReadWriteCloser
	SetReadTimeout(t time.Duration) error
}

type Channel struct {
	conf Config
	port Port

	buf  []byte
	read []byte

	lost      error
	closeOnce sync.Once
	closeErr  error
	closed    bool

	// set while a timed out write is still in flight
	pending chan error
}

// Open acquires the named port exclusively.
func Open(conf Config) (*Channel, error) {
	p, err := serial.Open(conf.Name, conf.mode())
	if err != nil {
		return nil, fmt.Errorf("port.Open(): %q: %w: %v", conf.Name, ErrPortUnavailable, err)
	}

	return New(p, conf), nil
}

// New wraps an already open port.
func New(p Port, conf Config) *Channel {
	if conf.ReadTimeout <= 0 {
		conf.ReadTimeout = DefaultReadTimeout
	}
	if conf.WriteTimeout <= 0 {
		conf.WriteTimeout = DefaultWriteTimeout
	}

	return &Channel{
		conf: conf,
		port: p,
		read: make([]byte, 256),
	}
}

func (c *Channel) Name() string {
	return c.conf.Name
}

// IsOpen is false once the channel was closed or the device went away.
func (c *Channel) IsOpen() bool {
	return !c.closed && c.lost == nil
}

// Err returns the error that made the port unusable, if any.
func (c *Channel) Err() error {
	return c.lost
}

// HasData reports, without blocking, whether received bytes are waiting.
func (c *Channel) HasData() bool {
	if !c.IsOpen() {
		return false
	}
	if len(c.buf) > 0 {
		return true
	}

	if err := c.fill(0); err != nil {
		return false
	}
	return len(c.buf) > 0
}

// ReadLine returns the next line without its CR/LF terminator. If no
// complete line arrives within the read timeout ErrReadTimeout is returned
// and any partial line is kept for the next call.
func (c *Channel) ReadLine() (string, error) {
	if !c.IsOpen() {
		return "", c.unusable("port.ReadLine()")
	}

	deadline := time.Now().Add(c.conf.ReadTimeout)
	for {
		if line, ok := c.nextLine(); ok {
			return line, nil
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return "", fmt.Errorf("port.ReadLine(): %w", ErrReadTimeout)
		}
		if err := c.fill(remaining); err != nil {
			return "", fmt.Errorf("port.ReadLine(): %w", err)
		}
	}
}

func (c *Channel) nextLine() (string, bool) {
	i := bytes.IndexByte(c.buf, '\n')
	if i < 0 {
		if len(c.buf) < maxLineLength {
			return "", false
		}
		i = len(c.buf)
	}

	line := string(bytes.TrimRight(c.buf[:i], "\r"))
	if i < len(c.buf) {
		i++
	}
	c.buf = c.buf[i:]

	return line, true
}

// fill does one read of at most timeout. go.bug.st/serial returns 0 bytes
// and no error when the timeout expires.
func (c *Channel) fill(timeout time.Duration) error {
	if err := c.port.SetReadTimeout(timeout); err != nil {
		return c.lose(err)
	}

	n, err := c.port.Read(c.read)
	if n > 0 {
		c.buf = append(c.buf, c.read[:n]...)
	}
	if err != nil {
		return c.lose(err)
	}
	return nil
}

func (c *Channel) lose(err error) error {
	if c.lost == nil {
		c.lost = fmt.Errorf("%w: %v", ErrPortLost, err)
	}
	return c.lost
}

// Write sends data, giving up with ErrWriteTimeout if the port does not
// accept it within the write timeout. Until a timed out write has finished,
// further writes are refused with ErrWriteTimeout so nothing overtakes it.
func (c *Channel) Write(data []byte) error {
	if !c.IsOpen() {
		return c.unusable("port.Write()")
	}

	if c.pending != nil {
		select {
		case err := <-c.pending:
			c.pending = nil
			if err != nil {
				return fmt.Errorf("port.Write(): %w", c.lose(err))
			}
		default:
			return fmt.Errorf("port.Write(): %w", ErrWriteTimeout)
		}
	}

	done := make(chan error, 1)
	go func() {
		_, err := c.port.Write(data)
		if err == nil {
			if d, ok := c.port.(interface{ Drain() error }); ok {
				err = d.Drain()
			}
		}
		done <- err
	}()

	timer := time.NewTimer(c.conf.WriteTimeout)
	defer timer.Stop()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("port.Write(): %w", c.lose(err))
		}
		return nil
	case <-timer.C:
		c.pending = done
		return fmt.Errorf("port.Write(): %w", ErrWriteTimeout)
	}
}

func (c *Channel) unusable(op string) error {
	if c.lost != nil {
		return fmt.Errorf("%s: %w", op, c.lost)
	}
	return fmt.Errorf("%s: %w", op, ErrPortLost)
}

// Close releases the port. Only the first call does anything.
func (c *Channel) Close() error {
	c.closeOnce.Do(func() {
		c.closed = true
		if err := c.port.Close(); err != nil {
			c.closeErr = fmt.Errorf("port.Close(): %w", err)
		}
	})
	return c.closeErr
}
