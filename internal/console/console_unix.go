// Copyright 2021 Clayton Craft <clayton@craftyguy.net>
// SPDX-License-Identifier: GPL-3.0-or-later

//go:build linux || darwin || freebsd || openbsd || netbsd || dragonfly

package console

import (
	"errors"
	"fmt"
	"io"

	"github.com/pkg/term"

	"gitlab.com/postmarketOS/nmeaterm/internal/keys"
)

type Console struct {
	t   *term.Term
	buf []byte
	dec keys.Decoder
}

// Open puts the terminal at path into cbreak mode: input is delivered per
// key and not echoed, output processing is left alone. Reads never block.
func Open(path string) (c *Console, err error) {
	t, err := term.Open(path, term.CBreakMode)
	if err != nil {
		err = fmt.Errorf("console.Open(): %w", err)
		return
	}

	if err = t.SetReadTimeout(0); err != nil {
		t.Restore()
		t.Close()
		err = fmt.Errorf("console.Open(): %w", err)
		return
	}

	c = &Console{
		t:   t,
		buf: make([]byte, 64),
	}
	return
}

// Poll returns the keys pressed since the last call, if any. An escape
// sequence split across reads is completed on the next call; a lone ESC is
// reported once a poll finds no more input.
func (c *Console) Poll() ([]keys.Event, error) {
	n, err := c.t.Read(c.buf)
	if n > 0 {
		return c.dec.Feed(c.buf[:n]), nil
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("console.Poll(): %w", err)
	}
	return c.dec.Flush(), nil
}

// Close restores the terminal settings found at Open.
func (c *Console) Close() (err error) {
	if err = c.t.Restore(); err != nil {
		err = fmt.Errorf("console.Close(): %w", err)
		c.t.Close()
		return
	}
	if err = c.t.Close(); err != nil {
		err = fmt.Errorf("console.Close(): %w", err)
	}
	return
}
