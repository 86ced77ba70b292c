// Package nlog is the nucleus's boot/runtime trace logger: a stdlib
// *log.Logger writing to stdout and a logfile via io.MultiWriter, with
// durations and counts rendered human-readable for the boot trace.
package nlog

import (
	"io"
	"log"
	"os"
	"time"

	"github.com/dustin/go-humanize"
)

// Logger wraps a stdlib logger configured to write to stdout and to a
// truncated logfile simultaneously.
type Logger struct {
	l *log.Logger
}

// New creates a Logger writing to stdout and, if path is non-empty, also
// to the named logfile, created/truncated on open.
func New(path string) (*Logger, error) {
	out := io.Writer(os.Stdout)
	if path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0666)
		if err != nil {
			return nil, err
		}
		out = io.MultiWriter(os.Stdout, f)
	}
	return &Logger{l: log.New(out, "", log.LstdFlags)}, nil
}

// Boot logs a boot-time trace line.
func (lg *Logger) Boot(format string, args ...any) {
	lg.l.Printf("[boot] "+format, args...)
}

// Trap logs a trap-handling trace line, prefixed with the elapsed CPU
// time charged so far for readability during debugging.
func (lg *Logger) Trap(charged time.Duration, format string, args ...any) {
	lg.l.Printf("[trap +%s] "+format, append([]any{charged}, args...)...)
}

// Counts logs a comma-grouped integer count alongside a label, using
// go-humanize for readability on large pool sizes.
func (lg *Logger) Counts(label string, n int) {
	lg.l.Printf("%s: %s", label, humanize.Comma(int64(n)))
}

// Printf logs a plain trace line.
func (lg *Logger) Printf(format string, args ...any) {
	lg.l.Printf(format, args...)
}
