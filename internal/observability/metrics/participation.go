// Package metrics holds the metric names and tag conventions emitted by services.
package metrics

import (
	"maps"
	"time"

	obserrors "github.com/intervue/intervue-api/internal/observability/errors"
	"github.com/intervue/intervue-api/internal/observability/statsd"
)

// Result constants for metric tagging.
const (
	ResultSuccess = "success"
	ResultError   = "error"
	ResultNoop    = "noop"
)

// Metric names.
const (
	ParticipationOutcome  = "participation.outcome"
	ParticipationDuration = "participation.duration"
	AttemptTransition     = "attempt.transition"
	InterviewsExpired     = "interviews.expired"
	ExpirySweep           = "expiry.sweep"
	ExpirySweepDuration   = "expiry.sweep_duration"
	ExpiryLastSuccess     = "expiry.last_success_epoch"
)

// ParticipationMetric describes one initiate-participation call.
type ParticipationMetric struct {
	Outcome  string // outcome kind, empty when Err is set
	Category string
	Created  bool
	Duration time.Duration
	Err      error
}

// EmitParticipation emits the outcome counter and call duration.
func EmitParticipation(sink statsd.Sink, in ParticipationMetric) {
	if sink == nil {
		return
	}
	tags := map[string]string{"outcome": in.Outcome}
	if in.Category != "" {
		tags["category"] = in.Category
	}
	if in.Err != nil {
		tags["outcome"] = ResultError
		if class := obserrors.Classify(in.Err); class != "" {
			tags["error_class"] = class
		}
	} else if in.Outcome == "success" {
		tags["created"] = boolTag(in.Created)
	}

	sink.Count(ParticipationOutcome, 1, tags)
	if in.Duration > 0 {
		sink.Timing(ParticipationDuration, in.Duration, CloneTags(tags))
	}
}

// EmitAttemptTransition counts attempt status changes.
func EmitAttemptTransition(sink statsd.Sink, to string, err error) {
	if sink == nil {
		return
	}
	tags := map[string]string{"to": to, "result": ResultSuccess}
	if err != nil {
		tags["result"] = ResultError
		if class := obserrors.Classify(err); class != "" {
			tags["error_class"] = class
		}
	}
	sink.Count(AttemptTransition, 1, tags)
}

// EmitInterviewsExpired counts interviews flipped to expired by source (policy or sweeper).
func EmitInterviewsExpired(sink statsd.Sink, source string, n int64) {
	if sink == nil || n <= 0 {
		return
	}
	sink.Count(InterviewsExpired, n, map[string]string{"source": source})
}

// CloneTags creates a shallow copy of a tag map.
func CloneTags(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	return maps.Clone(src)
}

func boolTag(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
