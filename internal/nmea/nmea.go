// Copyright 2021 Clayton Craft <clayton@craftyguy.net>
// SPDX-License-Identifier: GPL-3.0-or-later

package nmea

import (
	"errors"
	"strings"

	gonmea "github.com/adrianmo/go-nmea"
)

var (
	ErrMalformedSentence  = errors.New("sentence too short to classify")
	ErrIncompleteFieldSet = errors.New("not enough fields for a fix")
	ErrNoFix              = errors.New("sentence type carries no fix")
)

type SentenceType int

const (
	Unknown SentenceType = iota
	GGA
	GLL
	GSA
	GSV
	RMC
	VTG
)

var sentenceTypes = map[string]SentenceType{
	gonmea.TypeGGA: GGA,
	gonmea.TypeGLL: GLL,
	gonmea.TypeGSA: GSA,
	gonmea.TypeGSV: GSV,
	gonmea.TypeRMC: RMC,
	gonmea.TypeVTG: VTG,
}

func (t SentenceType) String() string {
	switch t {
	case GGA:
		return gonmea.TypeGGA
	case GLL:
		return gonmea.TypeGLL
	case GSA:
		return gonmea.TypeGSA
	case GSV:
		return gonmea.TypeGSV
	case RMC:
		return gonmea.TypeRMC
	case VTG:
		return gonmea.TypeVTG
	}
	return "Unknown"
}

func (t SentenceType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// Description is the human readable name printed in the console echo.
func (t SentenceType) Description() string {
	switch t {
	case GGA:
		return "Global Positioning System Fix Data"
	case GLL:
		return "Geographic Position - Latitude/Longitude"
	case GSA:
		return "GNSS DOP and Active Satellites"
	case GSV:
		return "GNSS Satellites in View"
	case RMC:
		return "Recommended Minimum Specific GNSS Data"
	case VTG:
		return "Course Over Ground and Ground Speed"
	}
	return "Unrecognized sentence"
}

type Sentence struct {
	Talker string
	Type   SentenceType
	// Code is the literal 3 character id, kept for sentences that did not
	// resolve to a known Type.
	Code   string
	Fields []string
	Raw    string
}

// Malformed reports whether the first field was too short to carry a
// talker id and sentence code.
func (s Sentence) Malformed() bool {
	return len(s.Fields) == 0 || len(s.Fields[0]) < 6
}

// Parse splits a raw line into its comma separated fields and classifies it
// by the characters at [3,6) of the first field, e.g. "$GPGGA" -> GGA. The
// checksum is not verified.
func Parse(line string) Sentence {
	s := Sentence{
		Raw:    line,
		Fields: strings.Split(line, ","),
	}
	if s.Malformed() {
		return s
	}

	id := s.Fields[0]
	s.Talker = id[1:3]
	s.Code = id[3:6]
	s.Type = sentenceTypes[s.Code]

	return s
}
