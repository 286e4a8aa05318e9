/*
 * MIT License
 *
 * Copyright (c) 2026 rbroemeling/udplogger contributors
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 */

// Package metrics exposes prometheus instrumentation for the publisher
// daemon: target-table size, fan-out throughput, and beacon intake.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Publisher groups every metric the publisher daemon updates. Each
// instance gets its own prometheus.Registry so multiple Publisher values
// (e.g. in tests) never collide on global metric registration.
type Publisher struct {
	Registry *prometheus.Registry

	TargetsCurrent   prometheus.Gauge
	BeaconsReceived  prometheus.Counter
	FramesSent       prometheus.Counter
	FramesSendErrors prometheus.Counter
	LinesSkipped     prometheus.Counter
	SerialCurrent    prometheus.Gauge
}

// NewPublisher registers and returns the publisher's metric set.
func NewPublisher() *Publisher {
	reg := prometheus.NewRegistry()

	p := &Publisher{
		Registry: reg,
		TargetsCurrent: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "udplogger",
			Subsystem: "publisher",
			Name:      "targets_current",
			Help:      "Number of receiver endpoints currently in the target table.",
		}),
		BeaconsReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "udplogger",
			Subsystem: "publisher",
			Name:      "beacons_received_total",
			Help:      "Number of well-formed beacon datagrams received.",
		}),
		FramesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "udplogger",
			Subsystem: "publisher",
			Name:      "frames_sent_total",
			Help:      "Number of framed log datagrams successfully sent to a target.",
		}),
		FramesSendErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "udplogger",
			Subsystem: "publisher",
			Name:      "frames_send_errors_total",
			Help:      "Number of sendto failures for an individual target (non-fatal).",
		}),
		LinesSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "udplogger",
			Subsystem: "publisher",
			Name:      "lines_skipped_total",
			Help:      "Number of stdin lines skipped because the target table appeared empty.",
		}),
		SerialCurrent: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "udplogger",
			Subsystem: "publisher",
			Name:      "serial_current",
			Help:      "The most recently assigned frame serial number.",
		}),
	}

	reg.MustRegister(
		p.TargetsCurrent,
		p.BeaconsReceived,
		p.FramesSent,
		p.FramesSendErrors,
		p.LinesSkipped,
		p.SerialCurrent,
	)

	return p
}
