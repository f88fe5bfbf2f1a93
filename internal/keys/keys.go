// Copyright 2021 Clayton Craft <clayton@craftyguy.net>
// SPDX-License-Identifier: GPL-3.0-or-later

// Package keys turns console key presses into the bytes sent to the device.
package keys

type Special int

const (
	None Special = iota
	Up
	Down
	Left
	Right
	Delete
	Home
	End
	Escape
	Exit
)

func (k Special) String() string {
	switch k {
	case None:
		return "None"
	case Up:
		return "Up"
	case Down:
		return "Down"
	case Left:
		return "Left"
	case Right:
		return "Right"
	case Delete:
		return "Delete"
	case Home:
		return "Home"
	case End:
		return "End"
	case Escape:
		return "Escape"
	case Exit:
		return "Exit"
	}
	return "Special(?)"
}

// ExitChar closes the session locally instead of being sent.
const ExitChar = '!'

const esc = 0x1b

type Event struct {
	Char    byte
	Special Special
}

// Translate returns the bytes to transmit for ev, or exit=true when the
// event closes the session.
func Translate(ev Event) (out []byte, exit bool) {
	switch ev.Special {
	case Exit:
		return nil, true
	case Escape:
		return []byte{0x03}, false
	case Up:
		return []byte{esc, '[', 'A'}, false
	case Down:
		return []byte{esc, '[', 'B'}, false
	case Right:
		return []byte{esc, '[', 'C'}, false
	case Left:
		return []byte{esc, '[', 'D'}, false
	case Delete:
		return []byte{esc, '[', '3', '~'}, false
	case Home:
		return []byte{esc, '[', '7', '~'}, false
	case End:
		return []byte{esc, '[', '8', '~'}, false
	case None:
		if ev.Char == ExitChar {
			return nil, true
		}
		return []byte{ev.Char}, false
	}
	panic("keys.Translate: unhandled key " + ev.Special.String())
}
