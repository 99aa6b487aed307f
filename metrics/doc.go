// Package metrics exposes render activity as Prometheus counters.
//
// A Recorder is attached to a renderer through renderer.Config.Recorder. It
// counts renders per output mode and link or image destinations per scheme
// policy outcome, which makes a misconfigured allow-list visible as a spike
// of stripped targets.
package metrics
