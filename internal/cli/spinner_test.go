package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"
)

func TestSpinnerAnimates(t *testing.T) {
	var buf bytes.Buffer
	s := newSpinnerTo(context.Background(), &buf, true, "converting deck.html")
	s.Start()
	time.Sleep(200 * time.Millisecond)
	s.SetMessage("writing deck.pptx")
	time.Sleep(200 * time.Millisecond)
	s.Stop()

	out := buf.String()
	if !strings.Contains(out, "converting deck.html") || !strings.Contains(out, "writing deck.pptx") {
		t.Errorf("spinner output = %q", out)
	}
	if !strings.HasSuffix(out, "\r") {
		t.Error("Stop should clear the line")
	}
}

func TestSpinnerQuietOffTerminal(t *testing.T) {
	var buf bytes.Buffer
	s := newSpinnerTo(context.Background(), &buf, false, "converting")
	s.Start()
	time.Sleep(100 * time.Millisecond)
	s.Stop()
	if buf.Len() != 0 {
		t.Errorf("non-terminal spinner wrote %q", buf.String())
	}
}

func TestSpinnerCancelled(t *testing.T) {
	tests := []struct {
		name   string
		cancel bool
		want   bool
	}{
		{"parent cancelled", true, true},
		{"stopped", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			s := newSpinnerTo(ctx, &bytes.Buffer{}, true, "x")
			s.Start()
			if tt.cancel {
				cancel()
			}
			s.Stop()
			if got := s.Cancelled(); got != tt.want {
				t.Errorf("Cancelled() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	s := newSpinnerTo(context.Background(), &bytes.Buffer{}, true, "x")
	s.Stop() // before Start
	s.Start()
	s.Stop()
	s.Stop()
}

func TestSpinnerStopWithTimeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	s := newSpinnerTo(ctx, &bytes.Buffer{}, true, "waiting for fonts")
	s.Start()
	time.Sleep(100 * time.Millisecond)
	if !s.Cancelled() {
		t.Error("spinner should report the timeout")
	}
	s.Stop()
}
