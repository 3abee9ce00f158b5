package log

import (
	"context"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"
)

var enabledSections = []string{
	"relate",
	"infer",
	"higher-ranked",
	"generalize",
	"cli",
}

var level = &slog.LevelVar{}

var LoggerOpts = &slog.HandlerOptions{
	AddSource: true,
	Level:     level,
	ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
		if a.Key == "time" {
			return slog.Attr{}
		}
		return a
	},
}

var DefaultLogger = slog.New(NewFilteringHandler(os.Stderr))

func init() {
	level.Set(slog.LevelWarn)
}

// SetLevel changes the level of DefaultLogger and of every logger derived from it
func SetLevel(l slog.Level) {
	level.Set(l)
}

// EnableSections restricts debug records to loggers whose section starts with one of sections.
// No sections enables every section.
func EnableSections(sections ...string) {
	enabledSections = sections
}

// EnabledSections returns the sections debug records are restricted to
func EnabledSections() []string {
	return slices.Clone(enabledSections)
}

// NewFilteringHandler writes records of enabled sections to w as text
func NewFilteringHandler(w io.Writer) slog.Handler {
	return &filteringHandler{underlying: slog.NewTextHandler(w, LoggerOpts)}
}

var _ slog.Handler = &filteringHandler{}

type filteringHandler struct {
	underlying slog.Handler
	// section is the section a logger was created for with With("section", ...)
	section string
}

func sectionEnabled(section string) bool {
	return len(enabledSections) == 0 || slices.ContainsFunc(enabledSections, func(enabled string) bool {
		return strings.HasPrefix(section, enabled)
	})
}

func (f filteringHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return f.underlying.Enabled(ctx, level)
}

func (f filteringHandler) Handle(ctx context.Context, record slog.Record) error {
	if record.Level >= slog.LevelWarn {
		return f.underlying.Handle(ctx, record)
	}
	// records may also carry their section themselves
	wantSection := f.section != "" && sectionEnabled(f.section)
	record.Attrs(func(attr slog.Attr) bool {
		wantSection = wantSection || attr.Key == "section" && sectionEnabled(attr.Value.String())
		// iterate as long as we have not found our section
		return !wantSection
	})
	if !wantSection {
		return nil
	}
	return f.underlying.Handle(ctx, record)
}

func (f filteringHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	section := f.section
	for _, attr := range attrs {
		if attr.Key == "section" {
			section = attr.Value.String()
		}
	}
	return &filteringHandler{
		underlying: f.underlying.WithAttrs(attrs),
		section:    section,
	}
}

func (f filteringHandler) WithGroup(name string) slog.Handler {
	return &filteringHandler{
		underlying: f.underlying.WithGroup(name),
		section:    f.section,
	}
}
