// Copyright 2021 Clayton Craft <clayton@craftyguy.net>
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"gitlab.com/postmarketOS/nmeaterm/internal/config"
	"gitlab.com/postmarketOS/nmeaterm/internal/console"
	"gitlab.com/postmarketOS/nmeaterm/internal/metrics"
	"gitlab.com/postmarketOS/nmeaterm/internal/pool"
	"gitlab.com/postmarketOS/nmeaterm/internal/port"
	"gitlab.com/postmarketOS/nmeaterm/internal/publish"
	"gitlab.com/postmarketOS/nmeaterm/internal/server"
	"gitlab.com/postmarketOS/nmeaterm/internal/session"
	"gitlab.com/postmarketOS/nmeaterm/internal/tracklog"
)

const defaultConfFile = "/etc/nmeaterm.conf"

func usage() {
	flag.CommandLine.Usage()
}

func main() {
	var confFile string
	flag.StringVar(&confFile, "c", defaultConfFile, "Configuration file to use.")
	var portName string
	flag.StringVar(&portName, "p", "", "Serial port, e.g. /dev/ttyUSB0. Picked automatically when only one port exists.")
	var baud int
	flag.IntVar(&baud, "b", 0, fmt.Sprintf("Baud rate (default %d).", port.DefaultBaudRate))
	var dataBits int
	flag.IntVar(&dataBits, "d", 0, fmt.Sprintf("Data bits (default %d). Parity is none, one stop bit.", port.DefaultDataBits))
	var logFile string
	flag.StringVar(&logFile, "l", "", "Append GGA/RMC fixes to this CSV file.")
	var verbose bool
	flag.BoolVar(&verbose, "v", false, "Print debug diagnostics.")
	var help bool
	flag.BoolVar(&help, "h", false, "Print help and quit.")

	flag.Usage = func() {
		fmt.Println("usage: nmeaterm [OPTION...]")
		fmt.Println("Interactive serial terminal for NMEA 0183 GNSS receivers.")
		fmt.Println("Keys are sent to the device, '!' quits.")
		fmt.Println("Options:")
		flag.PrintDefaults()
	}

	flag.Parse()

	if help {
		usage()
		return
	}

	conf, err := config.Load(confFile, confFile == defaultConfFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "p":
			conf.Port = portName
		case "b":
			conf.BaudRate = baud
		case "d":
			conf.DataBits = dataBits
		case "l":
			conf.LogFile = logFile
		case "v":
			if verbose {
				conf.LogLevel = "debug"
			}
		}
	})

	log := newLogger(conf.LogLevel)

	if err := conf.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	if err := run(conf, log); err != nil {
		log.Fatal().Err(err).Msg("session ended")
	}
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		Level(lvl).
		With().
		Timestamp().
		Logger()
}

func run(conf *config.Config, log zerolog.Logger) error {
	name, err := port.Select(conf.Port, port.List, port.Prompt(os.Stdin, os.Stdout))
	if err != nil {
		return err
	}

	ch, err := port.Open(conf.PortConfig(name))
	if err != nil {
		return err
	}
	// the session closes the port, this covers failures before it runs
	defer ch.Close()

	cons, err := console.Open(console.DefaultPath)
	if err != nil {
		return err
	}
	defer func() {
		if err := cons.Close(); err != nil {
			log.Warn().Err(err).Msg("restoring terminal")
		}
	}()

	opts := session.Options{
		Echo:         os.Stdout,
		Log:          log,
		PollInterval: conf.PollInterval(),
	}

	if conf.LogFile != "" {
		opts.Track = tracklog.New(conf.LogFile)
		log.Info().Str("path", conf.LogFile).Msg("track logging enabled")
	}

	if conf.MQTTBroker != "" {
		pub, err := publish.Connect(conf.MQTTBroker, conf.MQTTClientID, conf.MQTTTopic)
		if err != nil {
			return err
		}
		defer pub.Close()
		opts.Publishers = append(opts.Publishers, pub)
		log.Info().Str("broker", conf.MQTTBroker).Str("topic", pub.Topic()).Msg("publishing fixes")
	}

	if conf.Socket != "" {
		connPool := pool.New()
		go connPool.Start()
		defer connPool.Stop()

		srv := server.New(conf.Socket, conf.OwnerGroup, connPool, log)
		if err := srv.Start(); err != nil {
			return err
		}
		defer srv.Close()
		opts.Sharers = append(opts.Sharers, connPool)
	}

	if conf.MetricsAddr != "" {
		ms := &http.Server{Addr: conf.MetricsAddr, Handler: metrics.Handler()}
		go func() {
			if err := ms.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("metrics server failed")
			}
		}()
		defer ms.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().
		Str("port", name).
		Int("baud", conf.BaudRate).
		Int("data_bits", conf.DataBits).
		Msg("connected, press '!' to quit")

	return session.New(ch, cons, opts).Run(ctx)
}
