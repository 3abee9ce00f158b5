package log

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSectionFiltering(t *testing.T) {
	defer EnableSections(enabledSections...)
	defer SetLevel(level.Level())
	SetLevel(slog.LevelDebug)
	EnableSections("infer")

	out := &bytes.Buffer{}
	logger := slog.New(NewFilteringHandler(out))

	logger.With("section", "infer").Debug("kept")
	logger.With("section", "cli").Debug("dropped")
	logger.Debug("tagged", "section", "infer")
	logger.With("section", "cli").Warn("warnings always pass")

	assert.Contains(t, out.String(), "msg=kept")
	assert.NotContains(t, out.String(), "dropped")
	assert.Contains(t, out.String(), "msg=tagged")
	assert.Contains(t, out.String(), "warnings always pass")
}

func TestNoSectionsEnablesAll(t *testing.T) {
	defer EnableSections(enabledSections...)
	defer SetLevel(level.Level())
	SetLevel(slog.LevelDebug)
	EnableSections()

	out := &bytes.Buffer{}
	slog.New(NewFilteringHandler(out)).With("section", "anything").Debug("kept")
	assert.Contains(t, out.String(), "msg=kept")
}
