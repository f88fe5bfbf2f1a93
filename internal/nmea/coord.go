// Copyright 2021 Clayton Craft <clayton@craftyguy.net>
// SPDX-License-Identifier: GPL-3.0-or-later

package nmea

import (
	"strconv"
	"strings"
)

// ToDecimal converts an NMEA angle (DDMM.MMMM or DDDMM.MMMM) and its
// hemisphere into signed decimal degrees with 6 fractional digits. An empty
// string is returned for empty or malformed input.
func ToDecimal(value string, hemisphere string) string {
	value = strings.TrimSpace(value)
	if len(value) < 7 {
		return ""
	}

	// the two digits before the decimal point are whole minutes, whatever
	// precedes them is degrees
	dot := strings.IndexByte(value, '.')
	if dot < 3 || !digits(value[:dot]) || !digits(value[dot+1:]) {
		return ""
	}

	deg, err := strconv.ParseUint(value[:dot-2], 10, 16)
	if err != nil {
		return ""
	}
	min, err := strconv.ParseFloat(value[dot-2:], 64)
	if err != nil {
		return ""
	}

	out := strconv.FormatFloat(float64(deg)+min/60, 'f', 6, 64)
	switch strings.TrimSpace(hemisphere) {
	case "S", "W":
		if strings.Trim(out, "0.") != "" {
			out = "-" + out
		}
	}

	return out
}

func digits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
