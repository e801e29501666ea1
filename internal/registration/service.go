package registration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/daap14/flightclub/internal/metrics"
)

// ServiceDeps holds the collaborators of a Service.
type ServiceDeps struct {
	Sink Sink
	// SinkErr is set when the sink could not be configured. Submissions that
	// pass validation then fail with ErrConfiguration without an append.
	SinkErr error
	Driver  string
	Metrics *metrics.Metrics
}

// Service validates, normalizes and appends registrations.
type Service struct {
	sink    Sink
	sinkErr error
	driver  string
	metrics *metrics.Metrics
}

// NewService creates a new registration Service.
func NewService(deps ServiceDeps) *Service {
	sinkErr := deps.SinkErr
	if deps.Sink == nil && sinkErr == nil {
		sinkErr = ErrConfiguration
	}
	return &Service{
		sink:    deps.Sink,
		sinkErr: sinkErr,
		driver:  deps.Driver,
		metrics: deps.Metrics,
	}
}

// Ready reports whether the sink is configured.
func (s *Service) Ready() bool {
	return s.sinkErr == nil
}

// Driver returns the name of the configured sink driver.
func (s *Service) Driver() string {
	return s.driver
}

// Pinger is implemented by sinks that can check their backend cheaply.
type Pinger interface {
	Ping(ctx context.Context) error
}

// SinkStatus reports whether submissions can currently reach the sink.
type SinkStatus struct {
	Driver     string
	Configured bool
	Reachable  bool
}

// CheckSink reports the sink status. Sinks that do not implement Pinger are
// assumed reachable once configured.
func (s *Service) CheckSink(ctx context.Context) SinkStatus {
	status := SinkStatus{Driver: s.driver, Configured: s.Ready()}
	if !status.Configured {
		return status
	}

	status.Reachable = true
	if p, ok := s.sink.(Pinger); ok {
		if err := p.Ping(ctx); err != nil {
			slog.Warn("sink ping failed", "driver", s.driver, "error", err)
			status.Reachable = false
		}
	}
	return status
}

// Submit validates req and appends its normalized record to the sink exactly
// once. Nothing is retried.
func (s *Service) Submit(ctx context.Context, req Request) (Record, error) {
	kind := string(req.Kind)
	if !req.Kind.Valid() {
		kind = metrics.KindUnknown
	}

	if err := Validate(req); err != nil {
		s.metrics.IncrementSubmission(kind, metrics.OutcomeInvalid)
		return Record{}, err
	}

	if s.sinkErr != nil {
		s.metrics.IncrementSubmission(kind, metrics.OutcomeConfigError)
		if errors.Is(s.sinkErr, ErrConfiguration) {
			return Record{}, s.sinkErr
		}
		return Record{}, fmt.Errorf("%w: %w", ErrConfiguration, s.sinkErr)
	}

	rec := Normalize(req)

	start := time.Now()
	err := s.sink.Append(ctx, rec)
	s.metrics.ObserveAppendLatency(s.driver, time.Since(start))
	if err != nil {
		s.metrics.IncrementSubmission(kind, metrics.OutcomeSinkError)
		var sinkErr *SinkError
		if !errors.As(err, &sinkErr) {
			err = NewSinkError(SinkUnknown, err)
		}
		return Record{}, fmt.Errorf("appending registration: %w", err)
	}

	members := 0
	if req.Kind == KindTeam {
		members = CountMembers(req.MemberNames)
	}

	s.metrics.IncrementSubmission(kind, metrics.OutcomeAccepted)
	slog.Info("registration appended",
		"kind", kind,
		"submitter", Fingerprint(req.LeaderEmail),
		"members", members,
		"driver", s.driver,
	)

	return rec, nil
}
