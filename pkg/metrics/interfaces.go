package metrics

//go:generate mockgen -destination=mock_metrics.go -package=metrics github.com/carverauto/fusiond/pkg/metrics Recorder,Exporter

// Recorder is the write side of the registry. Handlers depend on this
// interface rather than the concrete Registry so tests can substitute their
// own.
type Recorder interface {
	IncrementCounter(name, labels string)
	AddToCounter(name string, value float64, labels string)
	ObserveHistogram(name string, value float64, labels string)
	SetGauge(name string, value float64, labels string)
}

// Exporter is the read side of the registry.
type Exporter interface {
	RenderPrometheus() string
	RenderJSON() string
	Reset()
}
