// Copyright 2021 Clayton Craft <clayton@craftyguy.net>
// SPDX-License-Identifier: GPL-3.0-or-later

package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	LinesRead = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nmeaterm_lines_read_total",
		Help: "Lines read from the serial device",
	})
	Sentences = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nmeaterm_sentences_total",
		Help: "Decoded sentences by type",
	}, []string{"type"})
	Fixes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nmeaterm_fixes_total",
		Help: "GGA/RMC sentences with both coordinates",
	})
	RowsLogged = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nmeaterm_track_rows_total",
		Help: "Rows appended to the track log",
	})
	LogWriteFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nmeaterm_track_write_failures_total",
		Help: "Failed track log writes",
	})
	KeysSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nmeaterm_keys_sent_total",
		Help: "Key presses forwarded to the device",
	})
	WriteTimeouts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nmeaterm_write_timeouts_total",
		Help: "Key presses dropped because the device did not accept them in time",
	})
)

// Handler serves /metrics and /healthz.
func Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}
