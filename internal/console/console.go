// Copyright 2021 Clayton Craft <clayton@craftyguy.net>
// SPDX-License-Identifier: GPL-3.0-or-later

// Package console reads key presses from the controlling terminal without
// line buffering or echo.
package console

// DefaultPath is the controlling terminal of the process.
const DefaultPath = "/dev/tty"
