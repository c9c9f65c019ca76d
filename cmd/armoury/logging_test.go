package main

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestLevelRouter(t *testing.T) {
	var out, errOut bytes.Buffer
	logger := slog.New(newLevelRouter(&out, &errOut)).With("component", "test")

	logger.Debug("hidden")
	logger.Info("started")
	logger.Warn("slow")
	logger.Error("failed")

	if strings.Contains(out.String(), "hidden") || strings.Contains(errOut.String(), "hidden") {
		t.Error("expected debug records to be dropped")
	}
	if !strings.Contains(out.String(), "started") || !strings.Contains(out.String(), "slow") {
		t.Errorf("expected info and warn on stdout, got %q", out.String())
	}
	if strings.Contains(out.String(), "failed") || !strings.Contains(errOut.String(), "failed") {
		t.Errorf("expected error only on stderr, got %q", errOut.String())
	}
	if !strings.Contains(errOut.String(), "component=test") {
		t.Errorf("expected attrs to carry over, got %q", errOut.String())
	}
}
