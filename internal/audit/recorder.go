// Package audit keeps a bounded in-process trail of admission decisions.
//
// The trail backs the UI's session log panel and the analysis assistant's
// prompt assembly. It is deliberately not durable: the authoritative state
// lives in the stores, the trail only narrates it.
package audit

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// DeniedMarker tags every denied admission line. The assistant filters on it.
const DeniedMarker = "DENIED"

type Recorder struct {
	mu    sync.Mutex
	lines []string
	next  int
	full  bool
	clock clockwork.Clock
}

// NewRecorder creates a recorder keeping the most recent capacity lines.
func NewRecorder(capacity int, clock clockwork.Clock) *Recorder {
	if capacity <= 0 {
		capacity = 1
	}
	return &Recorder{
		lines: make([]string, capacity),
		clock: clock,
	}
}

// Denied records a denied admission with its reason.
func (r *Recorder) Denied(userID, detail, reason string) {
	line := fmt.Sprintf("%s %s user=%s %s reason=%s",
		r.clock.Now().UTC().Format(time.RFC3339), DeniedMarker, userID, detail, reason)
	r.append(line)
	slog.Warn("Admission denied", "user_id", userID, "detail", detail, "reason", reason)
}

// Granted records a successful operation.
func (r *Recorder) Granted(userID, detail string) {
	line := fmt.Sprintf("%s GRANTED user=%s %s",
		r.clock.Now().UTC().Format(time.RFC3339), userID, detail)
	r.append(line)
}

func (r *Recorder) append(line string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.lines[r.next] = line
	r.next = (r.next + 1) % len(r.lines)
	if r.next == 0 {
		r.full = true
	}
}

// Recent returns the recorded lines, oldest first.
func (r *Recorder) Recent() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.full {
		out := make([]string, r.next)
		copy(out, r.lines[:r.next])
		return out
	}

	out := make([]string, 0, len(r.lines))
	out = append(out, r.lines[r.next:]...)
	out = append(out, r.lines[:r.next]...)
	return out
}
