// Copyright 2021 Clayton Craft <clayton@craftyguy.net>
// SPDX-License-Identifier: GPL-3.0-or-later

package nmea

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var captured = time.Date(2024, 5, 1, 10, 30, 0, 0, time.Local)

func TestExtractFixGGA(t *testing.T) {
	s := Parse("$GPGGA,123519,4807.038,N,01131.000,E,1,08,0.9,545.4,M,46.9,M,,*47")

	f, err := ExtractFix(s, captured)
	require.NoError(t, err)

	assert.Equal(t, Fix{
		Timestamp:  captured,
		Type:       GGA,
		Latitude:   "48.117300",
		Longitude:  "11.516667",
		Altitude:   "545.4",
		Satellites: "08",
		Quality:    "1",
		HDOP:       "0.9",
	}, f)
	assert.Equal(t, "GGA", f.MessageType())
}

func TestExtractFixRMC(t *testing.T) {
	// status V is not checked
	s := Parse("$GPRMC,123519,V,4807.038,S,01131.000,W,022.4,084.4,230394,003.1,W*6A")

	f, err := ExtractFix(s, captured)
	require.NoError(t, err)

	assert.Equal(t, Fix{
		Timestamp:  captured,
		Type:       RMC,
		Latitude:   "-48.117300",
		Longitude:  "-11.516667",
		SpeedKnots: "022.4",
		Course:     "084.4",
	}, f)
}

func TestExtractFixErrors(t *testing.T) {
	tables := []struct {
		in       string
		expected error
	}{
		{"$GPGG,123519", ErrMalformedSentence},
		{"", ErrMalformedSentence},
		{"$GPGGA,123519,4807.038,N,01131.000,E,1,08,0.9,545.4,M,46.9,M*47", ErrIncompleteFieldSet},
		{"$GPRMC,123519,A,4807.038,N,01131.000,E,022.4,084.4,230394*6A", ErrIncompleteFieldSet},
		{"$GPVTG,054.7,T,034.4,M,005.5,N,010.2,K*48", ErrNoFix},
		{"$GPGLL,4916.45,N,12311.12,W,225444,A*31", ErrNoFix},
		{"$GPGSA,A,3,04,05,,09,12,,,24,,,,,2.5,1.3,2.1*39", ErrNoFix},
		{"$GPGSV,1,1,00*79", ErrNoFix},
		{"$PSTMVER,GNSSLIB_8.4.18.25_ARM*4B", ErrNoFix},
	}

	for _, table := range tables {
		_, err := ExtractFix(Parse(table.in), captured)
		if !errors.Is(err, table.expected) {
			t.Errorf("%q expected: %v, got: %v", table.in, table.expected, err)
		}
	}
}

// A fix with only one usable coordinate carries neither.
func TestExtractFixHalfPosition(t *testing.T) {
	tables := []string{
		"$GPGGA,123519,4807.038,N,,,1,08,0.9,545.4,M,46.9,M,,*47",
		"$GPGGA,123519,,,01131.000,E,1,08,0.9,545.4,M,46.9,M,,*47",
		"$GPRMC,123519,V,,,,,,,230394,,,N*6A",
	}

	for _, in := range tables {
		f, err := ExtractFix(Parse(in), captured)
		require.NoError(t, err, in)
		assert.False(t, f.HasPosition(), in)
		assert.Empty(t, f.Latitude, in)
		assert.Empty(t, f.Longitude, in)
	}
}

func TestFixJSON(t *testing.T) {
	f, err := ExtractFix(Parse("$GPGGA,123519,4807.038,N,01131.000,E,1,08,0.9,545.4,M,46.9,M,,*47"), captured)
	require.NoError(t, err)

	out, err := json.Marshal(f)
	require.NoError(t, err)

	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(out, &m))
	assert.Equal(t, "GGA", m["type"])
	assert.Equal(t, "48.117300", m["lat"])
	assert.Equal(t, "11.516667", m["lon"])
	assert.NotContains(t, m, "speed_knots")
}

func TestWriteEcho(t *testing.T) {
	tables := []struct {
		in       string
		expected string
	}{
		{
			"$GPGSV,1,1,00*79",
			"GSV - GNSS Satellites in View\n   0: $GPGSV\n   1: 1\n   2: 1\n   3: 00*79\n",
		},
		{
			"$GPTXT,ANT\rOK\n*3B",
			"Unrecognized sentence [GPTXT]\n   0: $GPTXT\n   1: ANT\\ROK\\N*3B\n",
		},
		{
			"$GP,x",
			"Malformed sentence\n   0: $GP\n   1: x\n",
		},
	}

	for _, table := range tables {
		var b bytes.Buffer
		require.NoError(t, WriteEcho(&b, Parse(table.in)))
		assert.Equal(t, table.expected, b.String(), table.in)
	}
}
