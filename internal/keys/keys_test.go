// Copyright 2021 Clayton Craft <clayton@craftyguy.net>
// SPDX-License-Identifier: GPL-3.0-or-later

package keys

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTranslate(t *testing.T) {
	tables := []struct {
		in       Event
		expected []byte
		exit     bool
	}{
		{Event{Special: Up}, []byte("\x1b[A"), false},
		{Event{Special: Down}, []byte("\x1b[B"), false},
		{Event{Special: Right}, []byte("\x1b[C"), false},
		{Event{Special: Left}, []byte("\x1b[D"), false},
		{Event{Special: Delete}, []byte("\x1b[3~"), false},
		{Event{Special: Home}, []byte("\x1b[7~"), false},
		{Event{Special: End}, []byte("\x1b[8~"), false},
		{Event{Special: Escape}, []byte{0x03}, false},
		{Event{Special: Exit}, nil, true},
		{Event{Char: '!'}, nil, true},
		{Event{Char: 'a'}, []byte("a"), false},
		{Event{Char: '\r'}, []byte("\r"), false},
		{Event{Char: '~'}, []byte("~"), false},
	}

	for _, table := range tables {
		out, exit := Translate(table.in)
		if exit != table.exit {
			t.Errorf("%+v expected exit: %v, got: %v", table.in, table.exit, exit)
		}
		assert.Equal(t, table.expected, out, "%+v", table.in)
	}
}

// Every special key maps to exactly one fixed sequence, and the same key
// always yields the same bytes.
func TestTranslateTotal(t *testing.T) {
	seen := map[string]Special{}
	for k := None; k <= Exit; k++ {
		assert.NotPanics(t, func() { Translate(Event{Special: k}) }, k.String())
		if k == None || k == Exit {
			continue
		}
		out, exit := Translate(Event{Special: k, Char: 'x'})
		again, _ := Translate(Event{Special: k})
		assert.False(t, exit, k.String())
		assert.NotEmpty(t, out, k.String())
		assert.Equal(t, out, again, k.String())

		if other, dup := seen[string(out)]; dup {
			t.Errorf("%s and %s share sequence %q", k, other, out)
		}
		seen[string(out)] = k
	}
}

func TestPrintablePassThrough(t *testing.T) {
	for c := byte(0x20); c < 0x7f; c++ {
		if c == ExitChar {
			continue
		}
		out, exit := Translate(Event{Char: c})
		assert.False(t, exit)
		assert.Equal(t, []byte{c}, out)
	}
}

func TestDecode(t *testing.T) {
	tables := []struct {
		in       string
		expected []Event
	}{
		{"ab", []Event{{Char: 'a'}, {Char: 'b'}}},
		{"!", []Event{{Char: '!', Special: Exit}}},
		{"\x1b", []Event{{Char: esc, Special: Escape}}},
		{"\x1bx", []Event{{Char: esc, Special: Escape}, {Char: 'x'}}},
		{"\x1b[A\x1b[B\x1b[C\x1b[D", []Event{
			{Char: esc, Special: Up}, {Char: esc, Special: Down},
			{Char: esc, Special: Right}, {Char: esc, Special: Left},
		}},
		{"\x1bOA", []Event{{Char: esc, Special: Up}}},
		{"\x1b[3~", []Event{{Char: esc, Special: Delete}}},
		{"\x1b[H\x1b[1~\x1b[7~\x1bOH", []Event{
			{Char: esc, Special: Home}, {Char: esc, Special: Home},
			{Char: esc, Special: Home}, {Char: esc, Special: Home},
		}},
		{"\x1b[F\x1b[4~\x1b[8~", []Event{
			{Char: esc, Special: End}, {Char: esc, Special: End}, {Char: esc, Special: End},
		}},
		{"\x1b[1;5A", []Event{{Char: esc, Special: Up}}},
		// F5 and truncated sequences are dropped
		{"\x1b[15~z", []Event{{Char: 'z'}}},
		{"\x1b[", nil},
	}

	for _, table := range tables {
		assert.Equal(t, table.expected, Decode([]byte(table.in)), "%q", table.in)
	}
}

func TestDecoderSplitSequence(t *testing.T) {
	tables := []struct {
		feeds    []string
		expected []Event
	}{
		{[]string{"\x1b", "[A"}, []Event{{Char: esc, Special: Up}}},
		{[]string{"\x1b[", "3~"}, []Event{{Char: esc, Special: Delete}}},
		{[]string{"a\x1b[1", ";5", "Bb"}, []Event{{Char: 'a'}, {Char: esc, Special: Down}, {Char: 'b'}}},
		{[]string{"\x1b", "O", "H"}, []Event{{Char: esc, Special: Home}}},
		{[]string{"\x1b", "x"}, []Event{{Char: esc, Special: Escape}, {Char: 'x'}}},
	}

	for _, table := range tables {
		var d Decoder
		var got []Event
		for _, f := range table.feeds {
			got = append(got, d.Feed([]byte(f))...)
		}
		assert.Empty(t, d.Flush(), "%q", table.feeds)
		assert.Equal(t, table.expected, got, "%q", table.feeds)
	}
}

func TestDecoderFlush(t *testing.T) {
	var d Decoder
	assert.Empty(t, d.Feed([]byte("\x1b")))
	assert.Equal(t, []Event{{Char: esc, Special: Escape}}, d.Flush())
	assert.Empty(t, d.Flush())

	// an unfinished sequence is dropped, the next key is not swallowed
	assert.Empty(t, d.Feed([]byte("\x1b[12")))
	assert.Empty(t, d.Flush())
	assert.Equal(t, []Event{{Char: 'q'}}, d.Feed([]byte("q")))
}
