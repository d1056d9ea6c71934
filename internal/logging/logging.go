// Package logging builds the slog logger used by every sitedeploy component.
//
// Components never reach for slog.Default; the CLI builds one logger from the resolved
// verbosity and passes it down, and components derive per-site and per-page loggers with
// With(logfields.Site(...)).
package logging

import (
	"io"
	"log/slog"
	"strings"
)

// Verbosity is the resolved output level of a run.
type Verbosity int

const (
	VerbosityQuiet Verbosity = iota // no log output
	VerbosityInfo                   // progress messages
	VerbosityDebug                  // per-site and per-page detail
	VerbosityTrace                  // debug plus verbose transfer tool output
)

// Level maps a verbosity onto the minimum slog level it lets through.
func (v Verbosity) Level() slog.Level {
	if v >= VerbosityDebug {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

func (v Verbosity) String() string {
	switch {
	case v <= VerbosityQuiet:
		return "quiet"
	case v == VerbosityInfo:
		return "info"
	case v == VerbosityDebug:
		return "debug"
	default:
		return "trace"
	}
}

// Format enumerates supported log output formats.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// NormalizeFormat maps free-form input onto a supported format, defaulting to text.
func NormalizeFormat(raw string) Format {
	if strings.EqualFold(strings.TrimSpace(raw), string(FormatJSON)) {
		return FormatJSON
	}
	return FormatText
}

// New returns a logger writing to w at the level implied by v. A quiet verbosity
// yields a logger that discards everything.
func New(w io.Writer, v Verbosity, format Format) *slog.Logger {
	if v <= VerbosityQuiet || w == nil {
		return Discard()
	}
	opts := &slog.HandlerOptions{Level: v.Level()}
	if format == FormatJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// OrDiscard returns logger, or a discarding logger when it is nil.
func OrDiscard(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return Discard()
	}
	return logger
}
