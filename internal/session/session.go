// Copyright 2021 Clayton Craft <clayton@craftyguy.net>
// SPDX-License-Identifier: GPL-3.0-or-later

// Package session runs the terminal: NMEA lines from the device are decoded,
// echoed and logged while key presses are forwarded to the device.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"gitlab.com/postmarketOS/nmeaterm/internal/keys"
	"gitlab.com/postmarketOS/nmeaterm/internal/metrics"
	"gitlab.com/postmarketOS/nmeaterm/internal/nmea"
	"gitlab.com/postmarketOS/nmeaterm/internal/port"
	"gitlab.com/postmarketOS/nmeaterm/internal/tracklog"
)

type State int

const (
	Starting State = iota
	Running
	Closing
	Closed
)

func (s State) String() string {
	switch s {
	case Starting:
		return "starting"
	case Running:
		return "running"
	case Closing:
		return "closing"
	case Closed:
		return "closed"
	}
	return "invalid"
}

// Channel is the serial side, see port.Channel.
type Channel interface {
	IsOpen() bool
	Err() error
	HasData() bool
	ReadLine() (string, error)
	Write(data []byte) error
	Close() error
}

// KeySource returns pending key presses without blocking.
type KeySource interface {
	Poll() ([]keys.Event, error)
}

// FixPublisher receives every fix that has a position.
type FixPublisher interface {
	Publish(f nmea.Fix) error
}

// LineSharer receives every raw line read from the device.
type LineSharer interface {
	Share(line []byte)
}

type Options struct {
	// Echo receives the decoded view of each sentence.
	Echo         io.Writer
	Log          zerolog.Logger
	PollInterval time.Duration
	// Track is optional.
	Track      *tracklog.Logger
	Publishers []FixPublisher
	Sharers    []LineSharer
	// Now stamps fixes, time.Now when nil.
	Now func() time.Time
}

type Session struct {
	ch    Channel
	keys  KeySource
	opts  Options
	state State
}

func New(ch Channel, keys KeySource, opts Options) *Session {
	if opts.Echo == nil {
		opts.Echo = io.Discard
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 10 * time.Millisecond
	}

	return &Session{
		ch:   ch,
		keys: keys,
		opts: opts,
	}
}

func (s *Session) State() State {
	return s.state
}

// Run polls the device and the console until the operator exits, ctx is
// cancelled or the device goes away. The channel is closed exactly once
// before Run returns. Losing the device is reported as an error.
func (s *Session) Run(ctx context.Context) (err error) {
	log := s.opts.Log
	s.state = Running

	defer func() {
		s.state = Closing
		if cerr := s.ch.Close(); cerr != nil {
			log.Warn().Err(cerr).Msg("closing serial port")
		}
		s.state = Closed
		log.Debug().Msg("session closed")
	}()

	for s.ch.IsOpen() {
		if s.step() {
			log.Info().Msg("exit requested")
			return nil
		}

		select {
		case <-ctx.Done():
			log.Info().Msg("interrupted")
			return nil
		case <-time.After(s.opts.PollInterval):
		}
	}

	if lost := s.ch.Err(); lost != nil {
		return fmt.Errorf("session.Run(): %w", lost)
	}
	return nil
}

// step is one poll iteration. It returns true when the operator asked to
// exit.
func (s *Session) step() (exit bool) {
	log := s.opts.Log

	if s.ch.HasData() {
		line, err := s.ch.ReadLine()
		switch {
		case err == nil:
			s.handleLine(line)
		case errors.Is(err, port.ErrReadTimeout):
			// partial line, the rest comes with a later poll
		default:
			log.Error().Err(err).Msg("serial read failed")
		}
	}

	events, err := s.keys.Poll()
	if err != nil {
		log.Warn().Err(err).Msg("console read failed")
	}

	for _, ev := range events {
		out, exit := keys.Translate(ev)
		if exit {
			return true
		}

		err := s.ch.Write(out)
		switch {
		case err == nil:
			metrics.KeysSent.Inc()
		case errors.Is(err, port.ErrWriteTimeout):
			metrics.WriteTimeouts.Inc()
			log.Warn().Err(err).Str("key", ev.Special.String()).Msg("keystroke dropped")
		default:
			log.Error().Err(err).Msg("serial write failed")
			return false
		}
	}

	return false
}

func (s *Session) handleLine(line string) {
	log := s.opts.Log
	metrics.LinesRead.Inc()

	for _, sh := range s.opts.Sharers {
		sh.Share([]byte(line))
	}

	sentence := nmea.Parse(line)
	metrics.Sentences.WithLabelValues(typeLabel(sentence)).Inc()

	if err := nmea.WriteEcho(s.opts.Echo, sentence); err != nil {
		log.Warn().Err(err).Msg("console echo failed")
	}

	f, err := nmea.ExtractFix(sentence, s.opts.Now())
	if err != nil {
		if !errors.Is(err, nmea.ErrNoFix) {
			log.Debug().Err(err).Str("line", line).Msg("no fix")
		}
		return
	}
	if !f.HasPosition() {
		return
	}
	metrics.Fixes.Inc()

	if t := s.opts.Track; t != nil {
		if _, err := t.LogIfComplete(f); err != nil {
			metrics.LogWriteFailures.Inc()
			log.Error().Err(err).Str("path", t.Path()).Msg("track log write failed")
		} else {
			metrics.RowsLogged.Inc()
		}
	}

	for _, p := range s.opts.Publishers {
		if err := p.Publish(f); err != nil {
			log.Warn().Err(err).Msg("publishing fix failed")
		}
	}
}

func typeLabel(s nmea.Sentence) string {
	if s.Malformed() {
		return "malformed"
	}
	if s.Type == nmea.Unknown {
		return "unknown"
	}
	return s.Type.String()
}
