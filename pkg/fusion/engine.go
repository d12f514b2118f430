/*-
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package fusion pkg/fusion/engine.go
package fusion

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/carverauto/fusiond/pkg/models"
)

// Engine combines sequences of sensor readings into one representative value
// and keeps running statistics about its own use. Counters are independent
// atomics; a Stats snapshot may mix values from slightly different moments.
// Engines are independent of each other and of the transport layer, so tests
// can build as many as they need.
type Engine struct {
	mu     sync.RWMutex
	config models.Config

	totalRequests      uint64
	successfulRequests uint64
	failedRequests     uint64
	sumFusedValues     int64 // fused value x1000, rounded
	fusedCount         uint64
	confidenceBits     uint64 // math.Float64bits of the last confidence

	startTime time.Time
}

func NewEngine() *Engine {
	return &Engine{
		config:    models.DefaultConfig(),
		startTime: time.Now(),
	}
}

// HealthCheck is a constant liveness probe.
func (e *Engine) HealthCheck() string {
	return "ok"
}

// Fuse combines readings into a single value. An empty input returns 0 as a
// sentinel without touching any counter; callers that need at least one
// reading must check before calling. Non-finite readings are an internal
// failure: failed_requests increments and the error propagates.
func (e *Engine) Fuse(readings []float64) (float64, error) {
	if len(readings) == 0 {
		return 0, nil
	}

	atomic.AddUint64(&e.totalRequests, 1)

	for _, v := range readings {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			atomic.AddUint64(&e.failedRequests, 1)
			return 0, fmt.Errorf("%w: %v", errNonFiniteReading, v)
		}
	}

	cfg := e.Config()

	filtered := readings

	if cfg.EnableOutlierDetection && len(readings) > 2 {
		if outliers := detectOutliers(readings, cfg.OutlierThreshold); len(outliers) > 0 {
			filtered = removeValues(readings, outliers)
			if len(filtered) == 0 {
				// Everything was flagged; keep the original readings.
				filtered = readings
			}
		}
	}

	// Advisory telemetry only; confidence never gates the result.
	confidence := confidenceScore(readings, filtered)
	atomic.StoreUint64(&e.confidenceBits, math.Float64bits(confidence))

	var fused float64
	if len(filtered) >= 3 {
		fused = median(filtered)
	} else {
		fused = weightedAverage(filtered)
	}

	atomic.AddInt64(&e.sumFusedValues, int64(math.Round(fused*1000)))
	atomic.AddUint64(&e.fusedCount, 1)
	atomic.AddUint64(&e.successfulRequests, 1)

	return fused, nil
}

// Stats returns a best-effort snapshot of the running statistics.
func (e *Engine) Stats() models.StatsSnapshot {
	snap := models.StatsSnapshot{
		TotalRequests:      atomic.LoadUint64(&e.totalRequests),
		SuccessfulRequests: atomic.LoadUint64(&e.successfulRequests),
		FailedRequests:     atomic.LoadUint64(&e.failedRequests),
		LastConfidence:     math.Float64frombits(atomic.LoadUint64(&e.confidenceBits)),
		StartTime:          e.startTime,
	}

	if count := atomic.LoadUint64(&e.fusedCount); count > 0 {
		snap.AverageFusedValue = float64(atomic.LoadInt64(&e.sumFusedValues)) / (float64(count) * 1000)
	}

	return snap
}

// ResetStats zeroes every counter. The start time is fixed at construction
// and survives the reset.
func (e *Engine) ResetStats() {
	atomic.StoreUint64(&e.totalRequests, 0)
	atomic.StoreUint64(&e.successfulRequests, 0)
	atomic.StoreUint64(&e.failedRequests, 0)
	atomic.StoreInt64(&e.sumFusedValues, 0)
	atomic.StoreUint64(&e.fusedCount, 0)
	atomic.StoreUint64(&e.confidenceBits, 0)
}

// Config returns a copy of the active configuration.
func (e *Engine) Config() models.Config {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.config
}

// SetConfig validates cfg and swaps it in wholesale.
func (e *Engine) SetConfig(cfg models.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	e.mu.Lock()
	e.config = cfg
	e.mu.Unlock()

	return nil
}

// SetConfigJSON parses data into a fresh config (starting from defaults, not
// from the active config) and applies it. Unknown fields are rejected.
func (e *Engine) SetConfigJSON(data []byte) error {
	cfg := models.DefaultConfig()

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	if err := dec.Decode(&cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	return e.SetConfig(cfg)
}

// ConfigJSON serializes the active configuration.
func (e *Engine) ConfigJSON() ([]byte, error) {
	cfg := e.Config()

	return json.Marshal(cfg)
}

// detectOutliers returns the values whose z-score exceeds threshold. With a
// zero standard deviation nothing is flagged.
func detectOutliers(readings []float64, threshold float64) []float64 {
	m := mean(readings)
	sd := stdDev(readings, m)

	if sd == 0 {
		return nil
	}

	var outliers []float64

	for _, v := range readings {
		if math.Abs(v-m)/sd > threshold {
			outliers = append(outliers, v)
		}
	}

	return outliers
}

// removeValues drops every reading equal to a flagged value, preserving the
// input order. Matching is by value, not by position: duplicates of an
// outlier value all go.
func removeValues(readings, flagged []float64) []float64 {
	drop := make(map[float64]struct{}, len(flagged))
	for _, v := range flagged {
		drop[v] = struct{}{}
	}

	kept := make([]float64, 0, len(readings))

	for _, v := range readings {
		if _, ok := drop[v]; !ok {
			kept = append(kept, v)
		}
	}

	return kept
}

// confidenceScore is retention rate scaled by how consistent the kept
// readings are (inverse of the coefficient of variation).
func confidenceScore(original, filtered []float64) float64 {
	if len(original) == 0 {
		return 0
	}

	retention := float64(len(filtered)) / float64(len(original))

	if len(filtered) > 1 {
		m := mean(filtered)
		cv := math.Abs(stdDev(filtered, m) / m)

		return retention * (1 / (1 + cv))
	}

	return retention
}

func median(readings []float64) float64 {
	sorted := make([]float64, len(readings))
	copy(sorted, readings)
	sort.Float64s(sorted)

	n := len(sorted)
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}

	return sorted[n/2]
}

// weightedAverage weights each reading by the inverse of its squared distance
// from the mean, so values close to the pack dominate.
func weightedAverage(readings []float64) float64 {
	if len(readings) == 0 {
		return 0
	}

	if len(readings) == 1 {
		return readings[0]
	}

	m := mean(readings)

	var totalWeight, weightedSum float64

	for _, v := range readings {
		diff := v - m
		weight := 1 / (1 + diff*diff)
		totalWeight += weight
		weightedSum += v * weight
	}

	if totalWeight == 0 {
		return m
	}

	return weightedSum / totalWeight
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	var sum float64
	for _, v := range values {
		sum += v
	}

	return sum / float64(len(values))
}

// stdDev is the population standard deviation.
func stdDev(values []float64, m float64) float64 {
	if len(values) <= 1 {
		return 0
	}

	var variance float64
	for _, v := range values {
		variance += (v - m) * (v - m)
	}

	variance /= float64(len(values))

	return math.Sqrt(variance)
}
