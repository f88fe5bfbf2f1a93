// Copyright 2021 Clayton Craft <clayton@craftyguy.net>
// SPDX-License-Identifier: GPL-3.0-or-later

//go:build !(linux || darwin || freebsd || openbsd || netbsd || dragonfly)

package console

import (
	"fmt"

	"gitlab.com/postmarketOS/nmeaterm/internal/keys"
)

type Console struct{}

func Open(path string) (*Console, error) {
	return nil, fmt.Errorf("console.Open(): raw console input not supported on this platform")
}

func (c *Console) Poll() ([]keys.Event, error) {
	return nil, nil
}

func (c *Console) Close() error {
	return nil
}
