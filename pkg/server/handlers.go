// Package server pkg/server/handlers.go
package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/carverauto/fusiond/pkg/fusion"
	"github.com/carverauto/fusiond/pkg/metrics"
)

// Version reported by the health endpoint.
const Version = "0.1.0"

// apiResponse is the envelope every JSON endpoint answers with.
type apiResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

type fuseRequest struct {
	Readings []float64 `json:"readings"`
}

type fuseResult struct {
	FusedValue float64 `json:"fused_value"`
	InputCount int     `json:"input_count"`
	Timestamp  int64   `json:"timestamp"`
}

type statsPayload struct {
	Metrics            json.RawMessage `json:"metrics"`
	TotalRequests      uint64          `json:"total_requests"`
	SuccessfulRequests uint64          `json:"successful_requests"`
	FailedRequests     uint64          `json:"failed_requests"`
	AverageFusedValue  float64         `json:"average_fused_value"`
	LastConfidence     float64         `json:"last_confidence"`
	UptimeSeconds      int64           `json:"uptime_seconds"`
}

// Handlers owns the HTTP surface. The registry comes in through its two
// interfaces so tests can substitute either side.
type Handlers struct {
	engine   *fusion.Engine
	recorder metrics.Recorder
	exporter metrics.Exporter
}

func NewHandlers(engine *fusion.Engine, recorder metrics.Recorder, exporter metrics.Exporter) *Handlers {
	return &Handlers{
		engine:   engine,
		recorder: recorder,
		exporter: exporter,
	}
}

// Register installs every route on the router.
func (h *Handlers) Register(r *Router) {
	r.Handle(http.MethodGet, "/health", h.Health)
	r.Handle(http.MethodPost, "/fuse", h.Fuse)
	r.Handle(http.MethodGet, "/metrics", h.Metrics)
	r.Handle(http.MethodGet, "/stats", h.Stats)
	r.Handle(http.MethodGet, "/config", h.GetConfig)
	r.Handle(http.MethodPost, "/config", h.SetConfig)
}

// instrument starts the scoped timer and bumps the request counter for one
// endpoint. Callers must defer the returned observe func.
func (h *Handlers) instrument(endpoint string) func() {
	labels := fmt.Sprintf("endpoint=%q", endpoint)
	timer := metrics.NewTimer(h.recorder, "request_duration_ms", labels)

	h.recorder.IncrementCounter("requests_total", labels)

	return timer.ObserveDuration
}

// clientError writes a 400 envelope and counts the error.
func (h *Handlers) clientError(resp *Response, endpoint, kind, message string) error {
	h.recorder.IncrementCounter("errors_total", fmt.Sprintf("endpoint=%q,error=%q", endpoint, kind))

	resp.StatusCode = http.StatusBadRequest

	return resp.JSON(apiResponse{Status: "error", Message: message})
}

func (h *Handlers) Health(_ *Request, resp *Response) error {
	defer h.instrument("/health")()

	return resp.JSON(apiResponse{
		Status: "success",
		Data: map[string]string{
			"status":  h.engine.HealthCheck(),
			"version": Version,
		},
	})
}

func (h *Handlers) Fuse(req *Request, resp *Response) error {
	defer h.instrument("/fuse")()

	var body fuseRequest

	if err := json.Unmarshal(req.Body, &body); err != nil {
		return h.clientError(resp, "/fuse", "bad_request", "invalid request body: "+err.Error())
	}

	if body.Readings == nil {
		return h.clientError(resp, "/fuse", "bad_request", "missing 'readings' field")
	}

	if len(body.Readings) == 0 {
		return h.clientError(resp, "/fuse", "empty_readings", "readings array cannot be empty")
	}

	fused, err := h.engine.Fuse(body.Readings)
	if err != nil {
		h.recorder.IncrementCounter("errors_total", `endpoint="/fuse",error="internal_error"`)
		return err
	}

	return resp.JSON(apiResponse{
		Status: "success",
		Data: fuseResult{
			FusedValue: fused,
			InputCount: len(body.Readings),
			Timestamp:  time.Now().UnixMilli(),
		},
	})
}

func (h *Handlers) Metrics(_ *Request, resp *Response) error {
	defer h.instrument("/metrics")()

	resp.SetHeader("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
	resp.Text(h.exporter.RenderPrometheus())

	return nil
}

func (h *Handlers) Stats(_ *Request, resp *Response) error {
	defer h.instrument("/stats")()

	stats := h.engine.Stats()

	return resp.JSON(apiResponse{
		Status: "success",
		Data: statsPayload{
			Metrics:            json.RawMessage(h.exporter.RenderJSON()),
			TotalRequests:      stats.TotalRequests,
			SuccessfulRequests: stats.SuccessfulRequests,
			FailedRequests:     stats.FailedRequests,
			AverageFusedValue:  stats.AverageFusedValue,
			LastConfidence:     stats.LastConfidence,
			UptimeSeconds:      int64(time.Since(stats.StartTime).Seconds()),
		},
	})
}

func (h *Handlers) GetConfig(_ *Request, resp *Response) error {
	defer h.instrument("/config")()

	data, err := h.engine.ConfigJSON()
	if err != nil {
		return err
	}

	resp.Headers["Content-Type"] = "application/json"
	resp.Body = data

	return nil
}

func (h *Handlers) SetConfig(req *Request, resp *Response) error {
	defer h.instrument("/config")()

	if err := h.engine.SetConfigJSON(req.Body); err != nil {
		return h.clientError(resp, "/config", "invalid_config", err.Error())
	}

	return resp.JSON(apiResponse{Status: "success", Message: "Configuration updated"})
}
