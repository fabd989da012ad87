package profiling

import (
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Lightweight per-pass CPU profiler. Every tracked section is accumulated
// into the current pass totals and observed into a Prometheus histogram.

var (
	mu         sync.Mutex
	passTotals = make(map[string]time.Duration)
	passCounts = make(map[string]int)

	registry = prometheus.NewRegistry()
	sections = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "voxelkit",
		Name:      "section_duration_seconds",
		Help:      "Wall time spent in tracked sections.",
		Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
	}, []string{"section"})
)

func init() {
	registry.MustRegister(sections)
}

// Registry exposes the collectors of this package, e.g. for promhttp or a
// text dump at the end of a batch run.
func Registry() *prometheus.Registry {
	return registry
}

// Track returns a stop function that records the elapsed time under the given name.
// Usage: defer profiling.Track("subsystem.Operation")()
func Track(name string) func() {
	start := time.Now()
	return func() {
		d := time.Since(start)
		sections.WithLabelValues(name).Observe(d.Seconds())
		mu.Lock()
		passTotals[name] += d
		passCounts[name]++
		mu.Unlock()
	}
}

// ResetPass clears current per-pass totals.
func ResetPass() {
	mu.Lock()
	clear(passTotals)
	clear(passCounts)
	mu.Unlock()
}

// Snapshot returns a copy of current per-pass totals.
func Snapshot() map[string]time.Duration {
	mu.Lock()
	defer mu.Unlock()
	out := make(map[string]time.Duration, len(passTotals))
	for k, v := range passTotals {
		out[k] = v
	}
	return out
}

// Count returns how many times a section was tracked in the current pass.
func Count(name string) int {
	mu.Lock()
	defer mu.Unlock()
	return passCounts[name]
}

// TopN formats top N durations from the current pass totals.
// Example: "meshing.Build:4.2ms, lighting.Spread:2.1ms"
func TopN(n int) string {
	ss := Snapshot()
	type pair struct {
		name string
		dur  time.Duration
	}
	list := make([]pair, 0, len(ss))
	for k, v := range ss {
		list = append(list, pair{name: k, dur: v})
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].dur != list[j].dur {
			return list[i].dur > list[j].dur
		}
		return list[i].name < list[j].name
	})
	if n > len(list) {
		n = len(list)
	}
	parts := make([]string, 0, n)
	for i := 0; i < n; i++ {
		ms := float64(list[i].dur.Microseconds()) / 1000.0
		parts = append(parts, list[i].name+":"+formatMs(ms))
	}
	return strings.Join(parts, ", ")
}

func formatMs(ms float64) string {
	// one decimal, drop ".0"
	s := strconv.FormatFloat(ms, 'f', 1, 64)
	return strings.TrimSuffix(s, ".0") + "ms"
}
