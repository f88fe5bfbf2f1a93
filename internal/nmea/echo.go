// Copyright 2021 Clayton Craft <clayton@craftyguy.net>
// SPDX-License-Identifier: GPL-3.0-or-later

package nmea

import (
	"fmt"
	"io"
	"strings"
)

var fieldEscaper = strings.NewReplacer("\r", `\R`, "\n", `\N`)

// WriteEcho prints a decoded view of s: a heading naming the sentence type,
// then one indexed line per raw field.
func WriteEcho(w io.Writer, s Sentence) error {
	var b strings.Builder

	switch {
	case s.Malformed():
		b.WriteString("Malformed sentence\n")
	case s.Type == Unknown:
		fmt.Fprintf(&b, "%s [%s%s]\n", s.Type.Description(), s.Talker, s.Code)
	default:
		fmt.Fprintf(&b, "%s - %s\n", s.Type, s.Type.Description())
	}

	for i, f := range s.Fields {
		fmt.Fprintf(&b, "  %2d: %s\n", i, fieldEscaper.Replace(f))
	}

	_, err := io.WriteString(w, b.String())
	return err
}
