// metrics.go
//
// Project portal and backup/restore service for VEX
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of vexpm.
// vexpm is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// vexpm is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with vexpm.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

// Package metrics holds the prometheus collectors for the backup pipeline.
// HTTP request metrics come from fiberprometheus; both register on the default registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	BackupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vexpm_backups_total",
			Help: "Total number of backups by trigger and result",
		},
		[]string{"trigger", "result"}, // manual|scheduled, success|failure
	)

	BackupDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vexpm_backup_duration_seconds",
			Help:    "Time spent capturing and archiving a snapshot",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"trigger"},
	)

	BackupSizeBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vexpm_backup_last_size_bytes",
			Help: "Size of the most recent backup archive",
		},
	)

	CloudUploads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vexpm_cloud_uploads_total",
			Help: "Cloud upload outcomes",
		},
		[]string{"outcome"}, // uploaded|skipped|failed
	)

	RestoresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vexpm_restores_total",
			Help: "Total number of restores by result",
		},
		[]string{"source", "result"}, // upload|cloud|cli, success|mismatch|rejected|failure
	)

	RestoreDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vexpm_restore_duration_seconds",
			Help:    "Time spent loading a snapshot into the database",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "vexpm_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vexpm_circuit_breaker_requests_total",
			Help: "Requests through a circuit breaker by result",
		},
		[]string{"name", "result"}, // success|failure|rejected
	)
)
