// Package statuslog implements the status bar's message classification:
// transient informational overlays that disappear on their own, and
// stored warnings/errors that stick around per a target-specific TTL
// until superseded or dismissed.
package statuslog

import (
	"fmt"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/prometheus/client_golang/prometheus"
)

// Severity mirrors the three levels the status bar can render a message
// at.
type Severity int

const (
	Information Severity = iota
	Warning
	Error
)

func (s Severity) String() string {
	switch s {
	case Information:
		return "information"
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Target classifies which subsystem a message concerns, since different
// targets linger for different durations: a playback failure matters
// until explicitly cleared, but a volume-change confirmation should
// vanish quickly.
type Target int

const (
	TargetGeneral Target = iota
	TargetPlayback
	TargetVolume
	TargetKeymap
	TargetFeedUpdate
)

func (t Target) String() string {
	switch t {
	case TargetGeneral:
		return "general"
	case TargetPlayback:
		return "playback"
	case TargetVolume:
		return "volume"
	case TargetKeymap:
		return "keymap"
	case TargetFeedUpdate:
		return "feed-update"
	default:
		return "unknown"
	}
}

// ttlFor returns how long a stored (non-Information) entry for target
// stays visible before it's eligible for automatic expiry. Playback
// errors stay until dismissed (a zero duration, meaning "forever");
// volume and keymap feedback is brief; everything else is sticky.
func ttlFor(target Target, severity Severity) time.Duration {
	if severity == Error && target == TargetPlayback {
		return 0
	}
	switch target {
	case TargetVolume, TargetKeymap:
		return 4 * time.Second
	default:
		return 0
	}
}

// Entry is one message recorded in the log.
type Entry struct {
	Target   Target
	Severity Severity
	Text     string
	At       time.Time
	ttl      time.Duration
}

// Expired reports whether the entry's TTL has elapsed as of now. A zero
// TTL never expires.
func (e Entry) Expired(now time.Time) bool {
	if e.ttl == 0 {
		return false
	}
	return now.Sub(e.At) >= e.ttl
}

// Age renders how long ago the entry was recorded, in the same
// human-friendly style used elsewhere for relative timestamps.
func (e Entry) Age(now time.Time) string {
	return humanize.RelTime(e.At, now, "ago", "from now")
}

var (
	eventsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hedgepod_statuslog_events_total",
		Help: "Count of status log events by target and severity.",
	}, []string{"target", "severity"})
	refreshesInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "hedgepod_feed_refreshes_in_flight",
		Help: "Number of feed refreshes currently running.",
	})
)

func init() {
	prometheus.MustRegister(eventsTotal, refreshesInFlight)
}

// RefreshesInFlight exposes the in-flight-refresh gauge to the library
// actor, which is the only thing that knows the current count.
func RefreshesInFlight() prometheus.Gauge { return refreshesInFlight }

// Log holds the stored (Warning/Error) entries currently tracked, at most
// one per target. Transient Information messages are not held here:
// Report rejects them, and callers render and expire them on their own.
type Log struct {
	mu      sync.Mutex
	entries map[Target]Entry
}

func New() *Log {
	return &Log{entries: make(map[Target]Entry)}
}

// Report records a Warning or Error for target, replacing any existing
// entry for that target, and increments the corresponding metric.
func (l *Log) Report(target Target, severity Severity, format string, args ...any) Entry {
	if severity == Information {
		panic("statuslog: Report is for stored entries; use a transient overlay for Information")
	}
	e := Entry{
		Target:   target,
		Severity: severity,
		Text:     fmt.Sprintf(format, args...),
		At:       time.Now(),
		ttl:      ttlFor(target, severity),
	}
	l.mu.Lock()
	l.entries[target] = e
	l.mu.Unlock()
	eventsTotal.WithLabelValues(target.String(), severity.String()).Inc()
	return e
}

// Clear removes any stored entry for target, e.g. once a feed update
// that previously failed succeeds.
func (l *Log) Clear(target Target) {
	l.mu.Lock()
	delete(l.entries, target)
	l.mu.Unlock()
}

// Active returns every stored entry that hasn't expired as of now,
// pruning expired ones as a side effect.
func (l *Log) Active(now time.Time) []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []Entry
	for target, e := range l.entries {
		if e.Expired(now) {
			delete(l.entries, target)
			continue
		}
		out = append(out, e)
	}
	return out
}
