package testsupport

import (
	"bytes"
	"log/slog"
	"strings"
	"sync"

	"stackreel/internal/logging"
	"stackreel/internal/media"
)

// Clip returns an in-memory handle with the given geometry.
func Clip(name string, width, height int, duration float64) *media.Clip {
	return media.NewClip(name, "/media/"+name, width, height, duration)
}

// LogBuffer captures JSON log output for assertions.
type LogBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *LogBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

// String returns everything logged so far.
func (b *LogBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// Count returns the number of log lines containing substr.
func (b *LogBuffer) Count(substr string) int {
	n := 0
	for _, line := range strings.Split(b.String(), "\n") {
		if line != "" && strings.Contains(line, substr) {
			n++
		}
	}
	return n
}

// NewLogger returns a debug-level JSON logger writing into a LogBuffer.
func NewLogger() (*slog.Logger, *LogBuffer) {
	buf := &LogBuffer{}
	logger, err := logging.New(logging.Options{Level: "debug", Format: "json", Writer: buf})
	if err != nil {
		panic(err)
	}
	return logger, buf
}
