// Package monitoring defines error reporting used by the view controller and
// the dataset API.
package monitoring

import (
	"time"

	"github.com/kilianp07/fleethealth/core/fault"
)

// Monitor defines methods used for error reporting.
type Monitor interface {
	CaptureException(err error, tags map[string]string)
	Flush(timeout time.Duration)
}

type NopMonitor struct{}

func (NopMonitor) CaptureException(error, map[string]string) {}
func (NopMonitor) Flush(time.Duration)                       {}

// OrNop returns m, or NopMonitor when m is nil.
func OrNop(m Monitor) Monitor {
	if m == nil {
		return NopMonitor{}
	}
	return m
}

// FetchTags builds the tags attached to a failed fetch.
func FetchTags(kind, target string, err error) map[string]string {
	tags := map[string]string{"fetch": kind, "error_kind": fault.Kind(err)}
	if target != "" {
		tags["target"] = target
	}
	return tags
}
