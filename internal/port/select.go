// Copyright 2021 Clayton Craft <clayton@craftyguy.net>
// SPDX-License-Identifier: GPL-3.0-or-later

package port

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"go.bug.st/serial"
)

// Lister returns the names of the serial ports present on the host.
type Lister func() ([]string, error)

// Chooser asks the operator to pick one of several ports.
type Chooser func(ports []string) (string, error)

// List enumerates serial ports through go.bug.st/serial.
func List() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("port.List(): %w", err)
	}
	sort.Strings(ports)
	return ports, nil
}

// Select resolves the port to open. A requested name is used as is,
// otherwise a single present port is picked automatically and several are
// handed to choose.
func Select(requested string, list Lister, choose Chooser) (string, error) {
	if requested != "" {
		return requested, nil
	}

	ports, err := list()
	if err != nil {
		return "", fmt.Errorf("port.Select(): %w", err)
	}

	switch len(ports) {
	case 0:
		return "", fmt.Errorf("port.Select(): %w", ErrNoPortsAvailable)
	case 1:
		return ports[0], nil
	}

	name, err := choose(ports)
	if err != nil {
		return "", fmt.Errorf("port.Select(): %w", err)
	}
	return name, nil
}

// Prompt returns a Chooser that lists the ports on w and reads a 1-based
// selection from r until a valid one is entered.
func Prompt(r io.Reader, w io.Writer) Chooser {
	return func(ports []string) (string, error) {
		scanner := bufio.NewScanner(r)
		for {
			fmt.Fprintln(w, "Available serial ports:")
			for i, p := range ports {
				fmt.Fprintf(w, "  %d) %s\n", i+1, p)
			}
			fmt.Fprintf(w, "Select port [1-%d]: ", len(ports))

			if !scanner.Scan() {
				if err := scanner.Err(); err != nil {
					return "", err
				}
				return "", fmt.Errorf("no port selected")
			}

			n, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
			if err == nil && n >= 1 && n <= len(ports) {
				return ports[n-1], nil
			}
			fmt.Fprintf(w, "Invalid selection %q\n", scanner.Text())
		}
	}
}
