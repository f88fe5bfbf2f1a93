// Copyright 2021 Clayton Craft <clayton@craftyguy.net>
// SPDX-License-Identifier: GPL-3.0-or-later

package nmea

import (
	"fmt"
	"time"
)

const (
	ggaMinFields = 15
	rmcMinFields = 12
)

// Fix is one position report taken from a GGA or RMC sentence. Numeric
// values are kept as the raw strings the receiver sent, only the
// coordinates are converted to decimal degrees.
type Fix struct {
	Timestamp  time.Time    `json:"timestamp"`
	Type       SentenceType `json:"type"`
	Latitude   string       `json:"lat"`
	Longitude  string       `json:"lon"`
	Altitude   string       `json:"altitude,omitempty"`
	SpeedKnots string       `json:"speed_knots,omitempty"`
	Course     string       `json:"course_deg,omitempty"`
	Satellites string       `json:"satellites,omitempty"`
	Quality    string       `json:"quality,omitempty"`
	HDOP       string       `json:"hdop,omitempty"`
}

// HasPosition reports whether both coordinates are present.
func (f Fix) HasPosition() bool {
	return f.Latitude != "" && f.Longitude != ""
}

// MessageType is the sentence type as written to the track log.
func (f Fix) MessageType() string {
	return f.Type.String()
}

// ExtractFix builds a Fix from a GGA or RMC sentence, stamped with the local
// capture time now. The RMC status flag is not consulted.
func ExtractFix(s Sentence, now time.Time) (Fix, error) {
	if s.Malformed() {
		return Fix{}, fmt.Errorf("nmea.ExtractFix: %w", ErrMalformedSentence)
	}

	var f Fix
	switch s.Type {
	case GGA:
		if len(s.Fields) < ggaMinFields {
			return Fix{}, fmt.Errorf("nmea.ExtractFix: GGA has %d fields: %w", len(s.Fields), ErrIncompleteFieldSet)
		}
		fl := s.Fields
		f = Fix{
			Latitude:   ToDecimal(fl[2], fl[3]),
			Longitude:  ToDecimal(fl[4], fl[5]),
			Quality:    fl[6],
			Satellites: fl[7],
			HDOP:       fl[8],
			Altitude:   fl[9],
		}
	case RMC:
		if len(s.Fields) < rmcMinFields {
			return Fix{}, fmt.Errorf("nmea.ExtractFix: RMC has %d fields: %w", len(s.Fields), ErrIncompleteFieldSet)
		}
		fl := s.Fields
		f = Fix{
			Latitude:   ToDecimal(fl[3], fl[4]),
			Longitude:  ToDecimal(fl[5], fl[6]),
			SpeedKnots: fl[7],
			Course:     fl[8],
		}
	case GLL, GSA, GSV, VTG, Unknown:
		return Fix{}, fmt.Errorf("nmea.ExtractFix: %s: %w", s.Type, ErrNoFix)
	default:
		panic(fmt.Sprintf("nmea.ExtractFix: unhandled sentence type %d", s.Type))
	}

	// a half position is no position
	if !f.HasPosition() {
		f.Latitude, f.Longitude = "", ""
	}
	f.Type = s.Type
	f.Timestamp = now

	return f, nil
}
