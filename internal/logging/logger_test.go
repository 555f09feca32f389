package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(WARN, &buf)

	log.Debugf("hidden %d", 1)
	log.Infof("hidden %d", 2)
	log.Warnf("shown %d", 3)
	log.Errorf("shown %d", 4)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("messages below the level must be suppressed:\n%s", out)
	}
	if !strings.Contains(out, "shown 3") || !strings.Contains(out, "shown 4") {
		t.Fatalf("warn and error must be emitted:\n%s", out)
	}
}

func TestUnknownLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("VERBOSE", &buf)
	log.Info("hello")
	log.Debug("quiet")
	out := buf.String()
	if !strings.Contains(out, "hello") || strings.Contains(out, "quiet") {
		t.Fatalf("unknown level must fall back to INFO:\n%s", out)
	}
}

func TestNopDiscards(t *testing.T) {
	log := Nop()
	log.Error("goes nowhere")
}
