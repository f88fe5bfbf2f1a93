// Copyright 2021 Clayton Craft <clayton@craftyguy.net>
// SPDX-License-Identifier: GPL-3.0-or-later

// Package tracklog appends position fixes to a CSV track file.
package tracklog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"

	"gitlab.com/postmarketOS/nmeaterm/internal/nmea"
)

const TimeFormat = "2006-01-02 15:04:05"

var ErrLogWrite = errors.New("track log write failed")

var Header = []string{
	"Timestamp",
	"MessageType",
	"Latitude",
	"Longitude",
	"Altitude",
	"Speed",
	"Course",
	"Satellites",
	"Quality",
	"HDOP",
}

type Logger struct {
	path string
}

// New returns a Logger for path. Nothing is created until the first fix
// with a position is logged.
func New(path string) *Logger {
	return &Logger{path: path}
}

func (l *Logger) Path() string {
	return l.path
}

// LogIfComplete appends f as one row. Fixes without both coordinates are
// ignored. The header is written first when the file does not exist yet or
// is empty. This is decided from the file on every call, so reopening an
// existing log never repeats the header and a log rotated away underneath
// the session gets a new one.
func (l *Logger) LogIfComplete(f nmea.Fix) (logged bool, err error) {
	if !f.HasPosition() {
		return
	}

	fd, err := os.OpenFile(l.path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0644)
	if err != nil {
		err = fmt.Errorf("tracklog.LogIfComplete: %w: %v", ErrLogWrite, err)
		return
	}
	defer fd.Close()

	info, err := fd.Stat()
	if err != nil {
		err = fmt.Errorf("tracklog.LogIfComplete: %w: %v", ErrLogWrite, err)
		return
	}

	w := csv.NewWriter(fd)
	if info.Size() == 0 {
		w.Write(Header)
	}
	w.Write(row(f))
	w.Flush()
	if err = w.Error(); err != nil {
		err = fmt.Errorf("tracklog.LogIfComplete: %w: %v", ErrLogWrite, err)
		return
	}
	if err = fd.Close(); err != nil {
		err = fmt.Errorf("tracklog.LogIfComplete: %w: %v", ErrLogWrite, err)
		return
	}

	return true, nil
}

func row(f nmea.Fix) []string {
	return []string{
		f.Timestamp.Local().Format(TimeFormat),
		f.MessageType(),
		f.Latitude,
		f.Longitude,
		f.Altitude,
		f.SpeedKnots,
		f.Course,
		f.Satellites,
		f.Quality,
		f.HDOP,
	}
}
