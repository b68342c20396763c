package logger

import (
	"bytes"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func capture(t *testing.T, verboseOn bool) *bytes.Buffer {
	t.Helper()
	prev := color.NoColor
	color.NoColor = true
	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(verboseOn)
	t.Cleanup(func() {
		color.NoColor = prev
		SetVerbose(false)
		SetOutput(os.Stderr)
	})
	return &buf
}

func TestSetVerbose(t *testing.T) {
	capture(t, false)
	assert.False(t, IsVerbose())
	SetVerbose(true)
	assert.True(t, IsVerbose())
	SetVerbose(false)
	assert.False(t, IsVerbose())
}

func TestVerboseGatedOutput(t *testing.T) {
	tests := []struct {
		name    string
		verbose bool
		log     func()
		want    string
	}{
		{"debug verbose", true, func() { Debug("parsed %d tuples", 3) }, "[DEBUG] parsed 3 tuples\n"},
		{"debug quiet", false, func() { Debug("parsed %d tuples", 3) }, ""},
		{"info verbose", true, func() { Info("loaded %s", "a.sql") }, "[INFO] loaded a.sql\n"},
		{"info quiet", false, func() { Info("loaded %s", "a.sql") }, ""},
		{"section verbose", true, func() { Section("Guides") }, "\n=== Guides ===\n"},
		{"section quiet", false, func() { Section("Guides") }, ""},
		{"warn verbose", true, func() { Warn("missing %s", "b.sql") }, "[WARN] missing b.sql\n"},
		{"warn quiet", false, func() { Warn("missing %s", "b.sql") }, "[WARN] missing b.sql\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := capture(t, tt.verbose)
			tt.log()
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestWarn_ConcurrentLinesStayWhole(t *testing.T) {
	buf := capture(t, false)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			Warn("missing seed %d", n)
		}(i)
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	assert.Len(t, lines, 20)
	for _, l := range lines {
		assert.True(t, strings.HasPrefix(l, "[WARN] missing seed "), l)
	}
}
