// Copyright 2021 Clayton Craft <clayton@craftyguy.net>
// SPDX-License-Identifier: GPL-3.0-or-later

package port

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func listOf(ports ...string) Lister {
	return func() ([]string, error) {
		return ports, nil
	}
}

func noChoice(t *testing.T) Chooser {
	return func([]string) (string, error) {
		t.Fatal("operator should not be asked")
		return "", nil
	}
}

func TestSelect(t *testing.T) {
	name, err := Select("/dev/ttyUSB3", listOf(), noChoice(t))
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyUSB3", name)

	name, err = Select("", listOf("/dev/ttyACM0"), noChoice(t))
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyACM0", name)

	_, err = Select("", listOf(), noChoice(t))
	assert.True(t, errors.Is(err, ErrNoPortsAvailable), "got: %v", err)

	var offered []string
	name, err = Select("", listOf("/dev/ttyS0", "/dev/ttyUSB0"), func(p []string) (string, error) {
		offered = p
		return p[1], nil
	})
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyUSB0", name)
	assert.Equal(t, []string{"/dev/ttyS0", "/dev/ttyUSB0"}, offered)
}

func TestSelectListError(t *testing.T) {
	boom := errors.New("boom")
	_, err := Select("", func() ([]string, error) { return nil, boom }, noChoice(t))
	assert.True(t, errors.Is(err, boom))
}

func TestPrompt(t *testing.T) {
	var out bytes.Buffer
	choose := Prompt(strings.NewReader("7\nabc\n2\n"), &out)

	name, err := choose([]string{"/dev/ttyS0", "/dev/ttyUSB0"})
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyUSB0", name)
	assert.Contains(t, out.String(), "  2) /dev/ttyUSB0")
	assert.Equal(t, 2, strings.Count(out.String(), "Invalid selection"))
}

func TestPromptNoInput(t *testing.T) {
	var out bytes.Buffer
	_, err := Prompt(strings.NewReader(""), &out)([]string{"a", "b"})
	assert.Error(t, err)
}
