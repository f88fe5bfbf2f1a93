// Copyright 2021 Clayton Craft <clayton@craftyguy.net>
// SPDX-License-Identifier: GPL-3.0-or-later

package keys

// csi final bytes and "n~" parameters recognized after ESC [ (or ESC O for
// the application cursor mode some terminals use)
var (
	csiFinal = map[byte]Special{
		'A': Up,
		'B': Down,
		'C': Right,
		'D': Left,
		'H': Home,
		'F': End,
	}
	csiTilde = map[string]Special{
		"1": Home,
		"3": Delete,
		"4": End,
		"7": Home,
		"8": End,
	}
)

// longest incomplete sequence held back between reads; anything longer is
// garbage and dropped
const maxPending = 16

// Decoder turns raw console input into key events. An escape sequence cut
// off at the end of one Feed is completed by the next one.
type Decoder struct {
	pending []byte
}

// Decode splits raw console input into key events. Unrecognized escape
// sequences are dropped, a lone ESC is the Escape key.
func Decode(b []byte) []Event {
	var d Decoder
	events := d.Feed(b)
	if rest := d.Flush(); rest != nil {
		events = append(events, rest...)
	}
	return events
}

// Feed decodes b after whatever was held back by the previous call. A
// trailing ESC or unfinished ESC [ sequence is kept until the next Feed or
// Flush.
func (d *Decoder) Feed(b []byte) (events []Event) {
	if len(d.pending) > 0 {
		b = append(d.pending, b...)
		d.pending = nil
	}

	for i := 0; i < len(b); {
		c := b[i]
		if c != esc {
			if c == ExitChar {
				events = append(events, Event{Char: c, Special: Exit})
			} else {
				events = append(events, Event{Char: c})
			}
			i++
			continue
		}

		if i+1 >= len(b) {
			d.hold(b[i:])
			return
		}
		if b[i+1] != '[' && b[i+1] != 'O' {
			events = append(events, Event{Char: c, Special: Escape})
			i++
			continue
		}

		ev, n := decodeSequence(b[i:])
		if n == 0 {
			d.hold(b[i:])
			return
		}
		if ev.Special != None {
			events = append(events, ev)
		}
		i += n
	}
	return
}

// Flush ends input held back by Feed: a lone ESC is the Escape key, an
// unfinished sequence is dropped. Call it when no more input arrived.
func (d *Decoder) Flush() (events []Event) {
	if len(d.pending) == 1 {
		events = []Event{{Char: esc, Special: Escape}}
	}
	d.pending = nil
	return
}

func (d *Decoder) hold(b []byte) {
	if len(b) > maxPending {
		return
	}
	d.pending = append([]byte(nil), b...)
}

// decodeSequence reads one ESC [ ... or ESC O ... sequence from the start
// of b and returns the key and the number of bytes consumed, or 0 when b
// ends before the sequence does.
func decodeSequence(b []byte) (Event, int) {
	// b[0] is ESC, b[1] is '[' or 'O'
	j := 2
	for j < len(b) && (b[j] >= '0' && b[j] <= '9' || b[j] == ';') {
		j++
	}
	if j >= len(b) {
		return Event{}, 0
	}

	params := string(b[2:j])
	final := b[j]
	n := j + 1

	if final == '~' {
		if k, ok := csiTilde[params]; ok {
			return Event{Char: esc, Special: k}, n
		}
		return Event{}, n
	}
	if k, ok := csiFinal[final]; ok {
		return Event{Char: esc, Special: k}, n
	}
	return Event{}, n
}
