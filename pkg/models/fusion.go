// Package models pkg/models/fusion.go
package models

import (
	"errors"
	"time"
)

var (
	errInvalidThreshold  = errors.New("outlier_threshold must be positive")
	errInvalidConfidence = errors.New("min_confidence must be between 0 and 1")
)

// Config controls the fusion pipeline. Updates replace the whole struct;
// fields are never merged into an existing config.
type Config struct {
	OutlierThreshold       float64 `json:"outlier_threshold"`
	MinConfidence          float64 `json:"min_confidence"`
	EnableOutlierDetection bool    `json:"enable_outlier_detection"`
}

// DefaultConfig returns the configuration the engine starts with.
func DefaultConfig() Config {
	return Config{
		OutlierThreshold:       3.0,
		MinConfidence:          0.8,
		EnableOutlierDetection: true,
	}
}

// Validate checks field ranges. MinConfidence is validated even though the
// engine treats it as advisory.
func (c Config) Validate() error {
	if c.OutlierThreshold <= 0 {
		return errInvalidThreshold
	}

	if c.MinConfidence < 0 || c.MinConfidence > 1 {
		return errInvalidConfidence
	}

	return nil
}

// StatsSnapshot is a point-in-time copy of the engine's running statistics.
// Fields are read independently, so a snapshot taken under concurrent load
// may mix values from slightly different moments.
type StatsSnapshot struct {
	TotalRequests      uint64  `json:"total_requests"`
	SuccessfulRequests uint64  `json:"successful_requests"`
	FailedRequests     uint64  `json:"failed_requests"`
	AverageFusedValue  float64 `json:"average_fused_value"`
	LastConfidence     float64 `json:"last_confidence"`

	StartTime time.Time `json:"-"`
}
