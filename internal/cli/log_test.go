package cli

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, log.InfoLevel)
	logger.Info("converted", "file", "deck.html")

	if !strings.Contains(buf.String(), "file=deck.html") {
		t.Errorf("log output = %q", buf.String())
	}
}

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name    string
		level   log.Level
		logFunc func(*log.Logger)
		wantLog bool
	}{
		{"info at info level", log.InfoLevel, func(l *log.Logger) { l.Info("test") }, true},
		{"debug at info level", log.InfoLevel, func(l *log.Logger) { l.Debug("test") }, false},
		{"debug at debug level", log.DebugLevel, func(l *log.Logger) { l.Debug("test") }, true},
		{"error at info level", log.InfoLevel, func(l *log.Logger) { l.Error("test") }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.logFunc(newLogger(&buf, tt.level))
			if got := buf.Len() > 0; got != tt.wantLog {
				t.Errorf("got log output = %v, want %v", got, tt.wantLog)
			}
		})
	}
}

func TestProgress(t *testing.T) {
	var buf bytes.Buffer
	prog := newProgress(newLogger(&buf, log.InfoLevel))
	time.Sleep(5 * time.Millisecond)
	prog.done("extracted 3 slides")

	if !strings.Contains(buf.String(), "extracted 3 slides (") {
		t.Errorf("progress output = %q", buf.String())
	}
}

func TestHeldLog(t *testing.T) {
	var held heldLog
	logger := newLogger(&held, log.InfoLevel)

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			logger.With("worker", i).Info("converted")
		}()
	}
	wg.Wait()

	var out bytes.Buffer
	if err := held.flush(&out); err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(out.String(), "converted"); n != 8 {
		t.Errorf("flushed %d lines, want 8", n)
	}

	out.Reset()
	held.flush(&out)
	if out.Len() != 0 {
		t.Error("second flush should be empty")
	}
}
