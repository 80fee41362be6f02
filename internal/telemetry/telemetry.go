// Package telemetry wraps github.com/rs/zerolog the way the corpus's own
// config package wraps it (cristian1one-virtual-vectorfs/vvfs/globals.go's
// GetLogger): a single constructor returning a configured zerolog.Logger,
// here extended with a console-writer dev mode and a per-run correlation
// id from github.com/google/uuid.
package telemetry

import (
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// NewRunID returns a fresh run-correlation id, attached to every log line
// a merge run emits so concurrent runs sharing a temp directory can be
// told apart in aggregated logs.
func NewRunID() string {
	return uuid.NewString()
}

// New returns a zerolog.Logger tagged with runID, writing JSON to w in
// batch/CI mode or a human-readable console format in dev mode.
func New(w io.Writer, runID string, dev bool) zerolog.Logger {
	if dev {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	}
	return zerolog.New(w).With().Timestamp().Str("run_id", runID).Logger()
}

// Default returns a dev-mode logger over os.Stderr with a fresh run id,
// for command-line use outside of tests.
func Default() zerolog.Logger {
	return New(os.Stderr, NewRunID(), true)
}

// Stage logs the start and completion of one pipeline stage (rank-array
// build, flush, interleave), mirroring the teacher's progress prints but
// structured with counts and duration.
type Stage struct {
	log   zerolog.Logger
	name  string
	start time.Time
}

// StartStage logs a stage's start and returns a handle whose Done method
// logs its completion with the given counts.
func StartStage(log zerolog.Logger, name string) *Stage {
	log.Info().Str("stage", name).Msg("start")
	return &Stage{log: log, name: name, start: time.Now()}
}

// Done logs the stage's completion with its duration, attaching fields
// (e.g. "runs", "bytes") supplied as a map from field name to count.
func (s *Stage) Done(fields map[string]uint64) {
	ev := s.log.Info().Str("stage", s.name).Dur("duration", time.Since(s.start))
	for k, v := range fields {
		ev = ev.Uint64(k, v)
	}
	ev.Msg("done")
}
