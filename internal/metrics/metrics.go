// Copyright 2024 Google Inc. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package metrics exposes furumi's Prometheus instrumentation: counters
// for remote calls, a gauge for the live inode count, and a histogram of
// per-operation dispatcher latency.
package metrics

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/house-of-vanity/furumi/internal/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ListRequestsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "furumi",
		Name:      "list_requests_total",
		Help:      "Number of remote LIST calls issued.",
	})

	ListErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "furumi",
		Name:      "list_errors_total",
		Help:      "Number of remote LIST calls that failed.",
	})

	ReadRequestsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "furumi",
		Name:      "read_requests_total",
		Help:      "Number of remote ranged-read calls issued.",
	})

	ReadBytesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "furumi",
		Name:      "read_bytes_total",
		Help:      "Total bytes returned by remote ranged-read calls.",
	})

	ReadErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "furumi",
		Name:      "read_errors_total",
		Help:      "Number of remote ranged-read calls that failed.",
	})

	InodeCount = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "furumi",
		Name:      "inode_count",
		Help:      "Number of inodes currently held in the inode table.",
	})

	DispatcherOpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "furumi",
		Name:      "dispatcher_op_duration_seconds",
		Help:      "Latency of each FUSE operation handled by the dispatcher.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"op"})
)

// Timer starts a latency measurement for the named op, to be stopped with
// the returned func when the operation completes.
func Timer(op string) func() {
	start := time.Now()
	return func() {
		DispatcherOpDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	}
}

// Serve runs an HTTP server exposing /metrics on addr, blocking until ctx is
// cancelled or the server fails. An error from shutting the listener down
// is logged rather than returned.
func Serve(ctx context.Context, addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Handler: mux}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warnf("metrics: shutdown: %v", err)
		}
	}()

	logger.Infof("metrics: serving on %s", addr)
	err = srv.Serve(lis)
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}
